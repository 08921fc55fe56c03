package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avilaj/tablero-api/internal/config"
	"github.com/avilaj/tablero-api/internal/database"
	"github.com/avilaj/tablero-api/internal/handlers"
	authmw "github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/observ"
	"github.com/avilaj/tablero-api/internal/presence"
	"github.com/avilaj/tablero-api/internal/services"
	"github.com/avilaj/tablero-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to parse redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	boardService := services.NewBoardService(db)
	taskService := services.NewTaskService(db)
	invitationService := services.NewInvitationService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	presenceService := presence.NewService(redisClient, cfg.PresenceTTL)

	storageService, err := services.NewStorageService(cfg.UploadDir, cfg.BaseURL, cfg.UploadURLExpiry)
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}

	hub := sse.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService, storageService, cfg.BaseURL, int64(cfg.UploadURLExpiry.Seconds()))
	boardHandler := handlers.NewBoardHandler(boardService, hub)
	taskHandler := handlers.NewTaskHandler(taskService, boardService, hub)
	invitationHandler := handlers.NewInvitationHandler(invitationService, boardService, userService, emailService, hub, cfg.FrontendBaseURL)
	presenceHandler := handlers.NewPresenceHandler(presenceService, boardService, userService)
	sseHandler := handlers.NewSSEHandler(hub, boardService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	api.Post("/uploads", userHandler.Upload)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)
	protected.Post("/users/me/avatar-upload-url", userHandler.GenerateUploadURL)

	protected.Get("/boards", boardHandler.List)
	protected.Post("/boards", boardHandler.Create)
	protected.Get("/boards/:boardId", boardHandler.Get)
	protected.Patch("/boards/:boardId", boardHandler.Update)
	protected.Delete("/boards/:boardId", boardHandler.Delete)
	protected.Get("/boards/:boardId/participants", boardHandler.GetParticipants)
	protected.Get("/boards/:boardId/members", boardHandler.GetMembers)

	protected.Get("/boards/:boardId/tasks", taskHandler.List)
	protected.Post("/boards/:boardId/tasks", taskHandler.Create)
	protected.Patch("/tasks/:taskId", taskHandler.Update)
	protected.Post("/tasks/:taskId/move", taskHandler.Move)
	protected.Post("/tasks/:taskId/place", taskHandler.Place)
	protected.Delete("/tasks/:taskId", taskHandler.Delete)

	protected.Get("/boards/:boardId/invitations", invitationHandler.ListForBoard)
	protected.Post("/boards/:boardId/invitations", invitationHandler.Create)
	protected.Get("/invitations", invitationHandler.ListMine)
	protected.Post("/invitations/:invitationId/accept", invitationHandler.Accept)
	protected.Post("/invitations/:invitationId/reject", invitationHandler.Reject)

	protected.Post("/boards/:boardId/presence/heartbeat", presenceHandler.Heartbeat)
	protected.Get("/boards/:boardId/presence", presenceHandler.List)
	protected.Post("/boards/:boardId/presence/disconnect", presenceHandler.Disconnect)

	protected.Get("/boards/:boardId/events", sseHandler.Connect)
	protected.Get("/events", sseHandler.ConnectUser)
	protected.Post("/sse/:clientId/subscribe/:boardId", sseHandler.Subscribe)
	protected.Post("/sse/:clientId/unsubscribe/:boardId", sseHandler.Unsubscribe)

	api.Get("/health", func(c *drift.Context) {
		if err := db.Health(context.Background()); err != nil {
			_ = c.JSON(503, map[string]string{"status": "unavailable"})
			return
		}
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			deleted, err := tokenService.CleanupExpired(context.Background())
			if err != nil {
				logger.Warn("refresh token cleanup failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				logger.Info("cleaned up expired refresh tokens", zap.Int64("deleted", deleted))
			}
		}
	}()

	// The drift app handles the API; uploaded avatars are plain files
	// served straight off disk.
	mux := http.NewServeMux()
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(storageService.Dir()))))
	mux.Handle("/", app)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
