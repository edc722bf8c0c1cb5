package http

import (
	"net/http"

	"github.com/geocoder89/drivingschool/internal/http/handlers"
	"github.com/geocoder89/drivingschool/internal/http/middlewares"
	"github.com/geocoder89/drivingschool/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	Env            string
	ServiceName    string
	CORSOrigins    []string
	MaxBodyBytes   int64
	MaxUploadBytes int64
}

// RouterDeps are built once in main and shared by every request.
type RouterDeps struct {
	Auth      *middlewares.AuthMiddleware
	Users     *handlers.UsersHandler
	Logsheets *handlers.LogsheetsHandler
	Messages  *handlers.MessagesHandler
	Courses   *handlers.CoursesHandler
	Videos    *handlers.VideosHandler
	Health    *handlers.HealthHandler
	Prom      *observability.Prom
	Gatherer  prometheus.Gatherer
}

func NewRouter(cfg RouterConfig, d RouterDeps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	r.GET("/healthz", d.Health.Healthz)
	r.GET("/readyz", d.Health.Readyz)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/", func(ctx *gin.Context) {
		handlers.RespondOK(ctx, http.StatusOK, gin.H{}, "Driving school API is running")
	})

	api := r.Group("/api")

	auth := d.Auth.RequireAuth()
	owner := d.Auth.RequireOwner()
	selfOrStaff := d.Auth.RequireSelfOrStaff("userId")
	jsonOnly := middlewares.RequireJSON()

	users := api.Group("/user")
	{
		users.POST("/register", d.Users.Register)
		users.POST("/login", jsonOnly, d.Users.Login)
		users.POST("/logout", auth, d.Users.Logout)
		users.GET("/auth", auth, d.Users.AuthCheck)
		users.POST("/refresh-token", d.Users.Refresh)
		users.PUT("/update", auth, jsonOnly, d.Users.UpdateProfile)

		users.GET("/allCandidates", d.Users.ListCandidates)
		users.GET("/allInstructors", d.Users.ListInstructors)

		users.DELETE("/delete/:userId", auth, owner, d.Users.Delete)
		users.PATCH("/approveUser/:userId", auth, owner, d.Users.Approve)
		users.PATCH("/suspendUser/:userId", auth, owner, d.Users.Suspend)
		users.PATCH("/markEligible/:userId", auth, owner, d.Users.MarkEligible)

		users.GET("/logsheet/:userId", auth, selfOrStaff, d.Logsheets.List)
		users.POST("/logsheet/upload/:userId", auth, selfOrStaff, jsonOnly, d.Logsheets.Upload)
		users.PUT("/logsheet/update/:userId/:logId", auth, selfOrStaff, jsonOnly, d.Logsheets.Update)
		users.DELETE("/logsheet/delete/:userId/:logId", auth, selfOrStaff, d.Logsheets.Delete)

		users.POST("/sendOtp", jsonOnly, d.Messages.SendOTP)
		users.POST("/verifyOtp", jsonOnly, d.Messages.VerifyOTP)
		users.POST("/sendMsg", jsonOnly, d.Messages.SendContact)
	}

	courses := api.Group("/course")
	{
		courses.GET("/all/:category", d.Courses.ListByCategory)
		courses.POST("/upload", auth, owner, jsonOnly, d.Courses.Create)
		courses.DELETE("/delete/:courseId", auth, owner, d.Courses.Delete)
		courses.PUT("/update/:courseId", auth, owner, jsonOnly, d.Courses.Update)
	}

	videos := api.Group("/video")
	{
		videos.GET("/all", d.Videos.List)
		videos.POST("/upload", auth, owner, d.Videos.Create)
		videos.DELETE("/delete/:videoId", auth, owner, d.Videos.Delete)
		videos.PUT("/update/:videoId", auth, owner, d.Videos.Update)
	}

	return r
}
