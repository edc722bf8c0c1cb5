package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/drivingschool/internal/auth"
	"github.com/geocoder89/drivingschool/internal/db"
	apphttp "github.com/geocoder89/drivingschool/internal/http"
	"github.com/geocoder89/drivingschool/internal/http/handlers"
	"github.com/geocoder89/drivingschool/internal/http/middlewares"
	"github.com/geocoder89/drivingschool/internal/media"
	"github.com/geocoder89/drivingschool/internal/notifications"
	"github.com/geocoder89/drivingschool/internal/otp"
	"github.com/geocoder89/drivingschool/internal/repo"
	"github.com/geocoder89/drivingschool/internal/repo/memory"
	"github.com/geocoder89/drivingschool/internal/repo/postgres"
	"github.com/geocoder89/drivingschool/internal/security"
	"github.com/geocoder89/drivingschool/internal/service/logsheets"
	"github.com/geocoder89/drivingschool/internal/service/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const ownerEmail = "owner@academy.test"

type backend struct {
	store   repo.Store
	courses handlers.CourseStore
	videos  handlers.VideoStore
}

type app struct {
	router http.Handler
	mailer *notifications.LogMailer
}

func memoryBackend(t *testing.T) backend {
	t.Helper()
	return backend{store: memory.NewStore(), courses: memory.NewCoursesRepo(), videos: memory.NewVideosRepo()}
}

// postgresBackend migrates and truncates the database named by TEST_DB_DSN.
func postgresBackend(t *testing.T) backend {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE users, logsheets, courses, videos`)
	require.NoError(t, err)

	return backend{
		store:   postgres.NewStore(pool, nil),
		courses: postgres.NewCoursesRepo(pool, nil),
		videos:  postgres.NewVideosRepo(pool, nil),
	}
}

func newApp(t *testing.T, b backend) app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := notifications.NewLogMailer(logger)

	hasher, err := security.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	jwt := auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)

	sessions := session.New(session.Config{OwnerEmail: ownerEmail, ContactInbox: "inbox@academy.test"}, session.Deps{
		Users:    b.store.Users(),
		Hasher:   hasher,
		Tokens:   jwt,
		Mailer:   mailer,
		Uploader: media.DisabledUploader{},
		OTPs:     otp.NewMemoryStore(),
		Logger:   logger,
	})
	sheets := logsheets.New(b.store, logger)

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Env:            "test",
		ServiceName:    "drivingschool-test",
		MaxBodyBytes:   64 * 1024,
		MaxUploadBytes: 1024 * 1024,
	}, apphttp.RouterDeps{
		Auth:      middlewares.NewAuthMiddleware(jwt, b.store.Users(), ownerEmail),
		Users:     handlers.NewUsersHandler(sessions, sheets, handlers.CookieConfig{AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}, t.TempDir()),
		Logsheets: handlers.NewLogsheetsHandler(sheets),
		Messages:  handlers.NewMessagesHandler(sessions),
		Courses:   handlers.NewCoursesHandler(b.courses),
		Videos:    handlers.NewVideosHandler(b.videos, media.DisabledUploader{}, t.TempDir()),
		Health:    handlers.NewHealthHandler(nil),
	})

	return app{router: router, mailer: mailer}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Success    bool            `json:"success"`
}

// function that runs a request and returns a recorder and parsed envelope
func (a app) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func cookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}

	t.Fatalf("%s cookie not found in response", name)
	return nil
}

func registration(username, email, contact string) map[string]any {
	return map[string]any{
		"username":        username,
		"name":            username,
		"age":             "25",
		"contactNumber":   contact,
		"termsAccepted":   "true",
		"email":           email,
		"password":        "Abcdef1!",
		"confirmPassword": "Abcdef1!",
		"vehicleToLearn":  "car",
	}
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}
