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

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/background"
	"github.com/McKadeW/COS498-FinalForum/internal/chat"
	"github.com/McKadeW/COS498-FinalForum/internal/config"
	"github.com/McKadeW/COS498-FinalForum/internal/database"
	"github.com/McKadeW/COS498-FinalForum/internal/handlers"
	middlewareCustom "github.com/McKadeW/COS498-FinalForum/internal/middleware"
	"github.com/McKadeW/COS498-FinalForum/internal/repositories"
	"github.com/McKadeW/COS498-FinalForum/internal/routes"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
	pkghttp "github.com/McKadeW/COS498-FinalForum/pkg/http"
	pkglogger "github.com/McKadeW/COS498-FinalForum/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 1*time.Minute)
	if err := database.Migrate(migrateCtx, db); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	messageRepo := repositories.NewMessageRepository(db)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Login attempt tracking and lockout policy
	tracker := services.NewLoginTracker(loginAttemptRepo, services.LockoutConfig{
		MaxFailures:     cfg.Auth.MaxFailures,
		AttemptWindow:   cfg.Auth.AttemptWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
		FailOpen:        cfg.Auth.LockoutFailOpen,
	}, logger)

	// Durable session store
	sessionStore := services.NewSessionStore(sessionRepo, cfg.Session.TTL, logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tracker, sessionStore, logger, auditLogger)
	userService := services.NewUserService(userRepo, sessionStore, logger)
	forumService := services.NewForumService(commentRepo, messageRepo, logger)

	// Chat hub
	hub := chat.NewHub(sessionStore, forumService, cfg.Chat.SessionRecheckInterval, logger)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Periodic session sweep and attempt pruning
	cleanupManager := background.NewCleanupManager(
		sessionStore, tracker, cfg.Auth.AttemptRetention, cfg.Session.SweepInterval, logger)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	cookieConfig := auth.CookieConfig{
		Secure:   cfg.Session.CookieSecure,
		SameSite: cfg.Session.CookieSameSite,
		MaxAge:   int(cfg.Session.TTL.Seconds()),
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, ipConfig, cookieConfig)
	commentsHandler := handlers.NewCommentsHandler(forumService)
	chatHandler := handlers.NewChatHandler(forumService, hub, cfg.Server.AllowedOrigins)
	profileHandler := handlers.NewProfileHandler(userService)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	lockout := middlewareCustom.LoginLockout(tracker, ipConfig, logger)
	routes.RegisterRoutes(router,
		authHandler, commentsHandler, chatHandler, profileHandler,
		sessionStore, lockout, cookieConfig)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		stats := db.Stats()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","database":"up","pool_total":%d,"pool_idle":%d}`,
			stats.TotalConns(), stats.IdleConns())
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()
	hubCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
