package routes

import (
	"net/http"

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/handlers"
	"github.com/McKadeW/COS498-FinalForum/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	commentsHandler *handlers.CommentsHandler,
	chatHandler *handlers.ChatHandler,
	profileHandler *handlers.ProfileHandler,
	sessions auth.SessionReader,
	lockout func(http.Handler) http.Handler,
	cookieConfig auth.CookieConfig,
) {
	authRate := middleware.DefaultAuthRateLimit()
	writeRate := middleware.DefaultWriteRateLimit()

	// Public routes. Login goes through the lockout gate before any
	// credential work; registration only gets the volume brake.
	router.With(middleware.RateLimitByIP(authRate), lockout).Post("/api/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(authRate)).Post("/api/register", authHandler.Register)
	router.Get("/api/comments", commentsHandler.List)

	// Protected routes - live authenticated session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions, cookieConfig))

		r.Post("/api/logout", authHandler.Logout)

		r.Get("/api/profile", profileHandler.Me)
		r.With(middleware.RateLimitBySession(writeRate)).Put("/api/profile", profileHandler.Update)

		r.With(middleware.RateLimitBySession(writeRate)).Post("/api/comments", commentsHandler.Create)

		r.Get("/api/chat/history", chatHandler.History)
		r.Get("/ws/chat", chatHandler.ServeWS)
	})
}
