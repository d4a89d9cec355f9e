package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/handlers"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AuthMiddleware  *middleware.AuthMiddleware
	SessionHandler  *handlers.SessionHandler
	ActivityHandler *handlers.ActivityHandler
	CohortHandler   *handlers.CohortHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Sessions
	api.POST("/sessions", cfg.SessionHandler.CreateSession)
	api.GET("/sessions", cfg.SessionHandler.ListSessions)
	api.GET("/sessions/:id/state/:stage", cfg.SessionHandler.GetStageState)
	api.POST("/sessions/:id/turns", cfg.SessionHandler.PostTurn)
	api.POST("/sessions/:id/advance", cfg.SessionHandler.AdvanceStage)
	// Activity
	api.POST("/activity-logs", cfg.ActivityHandler.Submit)
	api.GET("/activity-logs", cfg.ActivityHandler.List)
	// Cohorts
	api.GET("/cohorts/active", cfg.CohortHandler.Active)
	api.POST("/cohorts/join", cfg.CohortHandler.Join)

	// ===============
	// || Teacher   ||
	// ===============
	admin := api.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireTeacher())
	admin.POST("/cohorts", cfg.CohortHandler.Create)
	admin.GET("/cohorts", cfg.CohortHandler.List)
	admin.POST("/cohorts/:id/activate", cfg.CohortHandler.Activate)

	return router
}
