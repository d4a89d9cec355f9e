package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/config"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/db"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/handlers"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/middleware"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/observability"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/repos"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/server"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/services"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: utils.GetEnv("SERVICE_NAME", "opt-ia", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Redis (optional, used as the active-cohort cache)
	var rdb *goredis.Client
	if addr := utils.GetEnv("REDIS_ADDR", "", log); addr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable, continuing without cache", "error", err)
			rdb = nil
		}
		cancel()
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(gdb, log)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	stateRepo := repos.NewStageStateRepo(gdb, log)
	messageRepo := repos.NewChatMessageRepo(gdb, log)
	cohortRepo := repos.NewCohortRepo(gdb, log)
	activityRepo := repos.NewActivityLogRepo(gdb, log)

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	gate := services.NewAccessGate(cfg.Policy)
	verifier := services.NewJWTVerifier(cfg.JWTSecretKey)
	authService := services.NewAuthService(gdb, log, verifier, gate, userRepo)
	stateService := services.NewStageStateService(gdb, log, sessionRepo, stateRepo)
	cohortService := services.NewCohortService(gdb, log, cohortRepo, rdb)
	activityService := services.NewActivityService(gdb, log, activityRepo, cohortRepo)
	engine := services.NewBrainstormEngine(log, openaiClient)
	chatService := services.NewChatService(gdb, log, sessionRepo, messageRepo, stateService, cohortService, engine, cfg.MinIdeas, cfg.HistoryLimit)

	// Handlers
	log.Info("Setting up handlers from main...")
	sessionHandler := handlers.NewSessionHandler(chatService, stateService)
	activityHandler := handlers.NewActivityHandler(activityService)
	cohortHandler := handlers.NewCohortHandler(cohortService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     utils.GetEnv("SERVICE_NAME", "opt-ia", log),
		AuthMiddleware:  authMiddleware,
		SessionHandler:  sessionHandler,
		ActivityHandler: activityHandler,
		CohortHandler:   cohortHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
