package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/drivingschool/internal/auth"
	"github.com/geocoder89/drivingschool/internal/config"
	"github.com/geocoder89/drivingschool/internal/db"
	httpx "github.com/geocoder89/drivingschool/internal/http"
	"github.com/geocoder89/drivingschool/internal/http/handlers"
	"github.com/geocoder89/drivingschool/internal/http/middlewares"
	"github.com/geocoder89/drivingschool/internal/media"
	"github.com/geocoder89/drivingschool/internal/notifications"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/geocoder89/drivingschool/internal/otp"
	"github.com/geocoder89/drivingschool/internal/redisclient"
	"github.com/geocoder89/drivingschool/internal/repo"
	"github.com/geocoder89/drivingschool/internal/repo/memory"
	"github.com/geocoder89/drivingschool/internal/repo/postgres"
	"github.com/geocoder89/drivingschool/internal/security"
	"github.com/geocoder89/drivingschool/internal/service/logsheets"
	"github.com/geocoder89/drivingschool/internal/service/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "drivingschool-api"

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, cfg.LogFile)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: serviceName,
			Environment: cfg.Env,
			Endpoint:    cfg.OTELEndpoint,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			sctx, scancel := config.WithTimeout(5 * time.Second)
			defer scancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	readiness := map[string]handlers.Pinger{}

	// storage
	var (
		store   repo.Store
		courses handlers.CourseStore
		videos  handlers.VideoStore
	)

	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store = memory.NewStore()
		courses = memory.NewCoursesRepo()
		videos = memory.NewVideosRepo()
	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		store = postgres.NewStore(pool, prom)
		courses = postgres.NewCoursesRepo(pool, prom)
		videos = postgres.NewVideosRepo(pool, prom)
		readiness["postgres"] = pool
	}

	// otp codes live in redis when it is configured
	var otps otp.Store = otp.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		otps = otp.NewRedisStore(rdb.Raw())
		readiness["redis"] = rdb
	}

	// mail transport, built once and shared
	var transport notifications.Mailer = notifications.NewLogMailer(log)
	if cfg.SMTPHost != "" {
		transport = notifications.NewSMTPMailer(notifications.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}
	mailer := notifications.NewProtectedMailer(transport, notifications.ProtectedMailerConfig{
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})

	var uploader media.Uploader = media.DisabledUploader{}
	if cfg.S3Bucket != "" {
		s3u, err := media.NewS3Uploader(ctx, media.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			log.Error("media uploader init failed", "err", err)
			os.Exit(1)
		}
		uploader = s3u
	}

	hasher, err := security.NewHasher(cfg.BcryptCost)
	if err != nil {
		log.Error("invalid bcrypt cost", "err", err)
		os.Exit(1)
	}

	jwtManager := auth.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	sessions := session.New(session.Config{
		OwnerEmail:         cfg.OwnerEmail,
		DefaultAvatar:      cfg.DefaultAvatar,
		ContactInbox:       cfg.ContactInbox,
		CertificateFormURL: cfg.CertificateFormURL,
		OTPTTL:             cfg.OTPTTL,
	}, session.Deps{
		Users:    store.Users(),
		Hasher:   hasher,
		Tokens:   jwtManager,
		Mailer:   mailer,
		Uploader: uploader,
		OTPs:     otps,
		Logger:   log,
	})
	sheets := logsheets.New(store, log)

	router := httpx.NewRouter(httpx.RouterConfig{
		Env:            cfg.Env,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, httpx.RouterDeps{
		Auth: middlewares.NewAuthMiddleware(jwtManager, store.Users(), cfg.OwnerEmail),
		Users: handlers.NewUsersHandler(sessions, sheets, handlers.CookieConfig{
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		}, cfg.UploadTmpDir),
		Logsheets: handlers.NewLogsheetsHandler(sheets),
		Messages:  handlers.NewMessagesHandler(sessions),
		Courses:   handlers.NewCoursesHandler(courses),
		Videos:    handlers.NewVideosHandler(videos, uploader, cfg.UploadTmpDir),
		Health:    handlers.NewHealthHandler(readiness),
		Prom:      prom,
		Gatherer:  reg,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, scancel := config.WithTimeout(10 * time.Second)
		defer scancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")
	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
