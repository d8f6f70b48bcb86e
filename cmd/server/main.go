// Package main runs the OneTeam API server with WebSocket change feeds and
// graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oneteam-app/backend/config"
	"github.com/oneteam-app/backend/internal/auth"
	"github.com/oneteam-app/backend/internal/escalation"
	"github.com/oneteam-app/backend/internal/hierarchy"
	"github.com/oneteam-app/backend/internal/invites"
	"github.com/oneteam-app/backend/internal/middleware"
	"github.com/oneteam-app/backend/internal/projects"
	"github.com/oneteam-app/backend/internal/realtime"
	"github.com/oneteam-app/backend/internal/settings"
	"github.com/oneteam-app/backend/internal/users"
	"github.com/oneteam-app/backend/pkg/database"
	"github.com/oneteam-app/backend/pkg/queue"
	"github.com/oneteam-app/backend/pkg/redis"
	"github.com/oneteam-app/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Directory
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, hub, logger)

	// Auth
	authHandler := auth.NewHandler(userRepo, jwtService, cfg.Invite.AdminDomain, logger)

	// Projects
	projectRepo := projects.NewRepository(pool)
	projectHandler := projects.NewHandler(projectRepo, hub, logger)

	// Settings (countries, designations)
	settingsRepo := settings.NewRepository(pool)
	settingsHandler := settings.NewHandler(settingsRepo, hub, logger)

	// Derived views
	hierarchyHandler := hierarchy.NewHandler(userRepo, logger)
	escalationHandler := escalation.NewHandler(projectRepo, userRepo, settingsRepo, logger)

	// Invites
	inviteRepo := invites.NewRepository(pool)
	inviteHandler := invites.NewHandler(inviteRepo, jobQueue, cfg.Invite, logger)

	jwtValidate := func(token string) (userID string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/admin/login", authHandler.AdminLogin)
	}

	// Public: invite validation and redemption (registration page)
	router.GET("/invites/:token/validate", inviteHandler.ValidateToken)
	router.POST("/invites/:token/redeem", inviteHandler.Redeem)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// User directory
		api.GET("/users", userHandler.List)
		api.GET("/users/:id", userHandler.GetByID)
		api.POST("/users", middleware.RequireAdmin(), userHandler.Create)
		api.PUT("/users/:id", middleware.RequireAdmin(), userHandler.Update)
		api.DELETE("/users/:id", middleware.RequireAdmin(), userHandler.Delete)

		// Project registry
		api.GET("/projects", projectHandler.List)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.GET("/projects/:id/escalation-matrix", escalationHandler.Matrix)
		api.POST("/projects", middleware.RequireAdmin(), projectHandler.Create)
		api.PUT("/projects/:id", middleware.RequireAdmin(), projectHandler.Update)
		api.DELETE("/projects/:id", middleware.RequireAdmin(), projectHandler.Delete)

		// Derived hierarchy
		api.GET("/hierarchy", hierarchyHandler.Tree)
		api.GET("/hierarchy/flat", hierarchyHandler.Flat)

		// Settings
		api.GET("/settings/countries", settingsHandler.ListCountries)
		api.POST("/settings/countries", middleware.RequireAdmin(), settingsHandler.AddCountry)
		api.DELETE("/settings/countries/:code", middleware.RequireAdmin(), settingsHandler.DeleteCountry)
		api.GET("/settings/designations", settingsHandler.ListDesignations)
		api.POST("/settings/designations", middleware.RequireAdmin(), settingsHandler.AddDesignation)
		api.DELETE("/settings/designations/:name", middleware.RequireAdmin(), settingsHandler.DeleteDesignation)

		// Invites
		api.POST("/invites", middleware.RequireAdmin(), inviteHandler.Send)
	}

	// WebSocket change feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
