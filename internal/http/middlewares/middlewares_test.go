package middlewares_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/drivingschool/internal/auth"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const ownerEmail = "owner@academy.test"

type fakeLoader map[string]user.User

func (f fakeLoader) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func setup(t *testing.T) (*gin.Engine, *auth.Manager) {
	t.Helper()

	jwt := auth.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	users := fakeLoader{
		"owner":      {ID: "owner", Email: ownerEmail, Role: user.RoleCandidate},
		"candidate":  {ID: "candidate", Email: "c@academy.test", Role: user.RoleCandidate},
		"instructor": {ID: "instructor", Email: "i@academy.test", Role: user.RoleInstructor},
	}
	m := middlewares.NewAuthMiddleware(jwt, users, ownerEmail)

	ok := func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.String(http.StatusOK, id)
	}

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/me", m.RequireAuth(), ok)
	r.PATCH("/approve/:userId", m.RequireAuth(), m.RequireOwner(), ok)
	r.GET("/logsheet/:userId", m.RequireAuth(), m.RequireSelfOrStaff("userId"), ok)
	return r, jwt
}

func token(t *testing.T, jwt *auth.Manager, id string) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(id, id+"@academy.test", id)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_CookieAndBearer(t *testing.T) {
	r, jwt := setup(t)
	tok := token(t, jwt, "candidate")

	w := do(r, http.MethodGet, "/me", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: middlewares.AccessTokenCookie, Value: tok})
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "candidate", w.Body.String())

	w = do(r, http.MethodGet, "/me", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	r, jwt := setup(t)

	cases := map[string]func(*http.Request){
		"missing":      nil,
		"garbage":      func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") },
		"deleted user": func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token(t, jwt, "ghost")) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/me", mutate)
			require.Equal(t, http.StatusUnauthorized, w.Code)

			var body struct {
				StatusCode int    `json:"statusCode"`
				Success    bool   `json:"success"`
				RequestID  string `json:"requestId"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRequireAuth_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	r, jwt := setup(t)

	refresh, err := jwt.GenerateRefreshToken("candidate", "c@academy.test", "candidate")
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/me", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+refresh)
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireOwner(t *testing.T) {
	r, jwt := setup(t)

	for id, want := range map[string]int{"owner": http.StatusOK, "candidate": http.StatusForbidden, "instructor": http.StatusForbidden} {
		tok := token(t, jwt, id)
		w := do(r, http.MethodPatch, "/approve/x", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+tok)
		})
		assert.Equal(t, want, w.Code, id)
	}
}

func TestRequireSelfOrStaff(t *testing.T) {
	r, jwt := setup(t)

	cases := []struct {
		actor  string
		target string
		want   int
	}{
		{"candidate", "candidate", http.StatusOK},
		{"candidate", "someone-else", http.StatusForbidden},
		{"instructor", "candidate", http.StatusOK},
		{"owner", "candidate", http.StatusOK},
	}

	for _, tc := range cases {
		tok := token(t, jwt, tc.actor)
		w := do(r, http.MethodGet, "/logsheet/"+tc.target, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+tok)
		})
		assert.Equal(t, tc.want, w.Code, "%s -> %s", tc.actor, tc.target)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.POST("/x", middlewares.RequireJSON(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, http.MethodPost, "/x", func(req *http.Request) { req.Header.Set("Content-Type", "text/plain") })
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = do(r, http.MethodPost, "/x", func(req *http.Request) { req.Header.Set("Content-Type", "application/json; charset=utf-8") })
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSMiddleware_AllowsCredentials(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"https://academy.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodOptions, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://academy.test") })
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://academy.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(r, http.MethodGet, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://evil.test") })
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
