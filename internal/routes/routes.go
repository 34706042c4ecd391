package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/whisperwall/whisperwall-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes (profile owners only; senders are never authenticated)
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/logout", handlers.Logout)
	r.Get("/api/auth/me", handlers.GetMe)

	// Public profile lookup
	r.Get("/api/profile", handlers.GetProfile)

	// Anonymous message submission (runs the full ingestion pipeline)
	r.Post("/api/messages", handlers.SubmitMessage)

	// Recipient inbox
	r.Get("/api/messages/inbox", handlers.GetInbox)
	r.Put("/api/messages/read", handlers.MarkMessageRead)
	r.Delete("/api/messages", handlers.DeleteMessage)

	// Block registry
	r.Post("/api/blocks", handlers.AddBlock)
	r.Get("/api/blocks", handlers.ListBlocks)
	r.Delete("/api/blocks", handlers.RemoveBlock)

	// Report intake
	r.Post("/api/reports", handlers.SubmitReport)

	// Admin visibility into rejected submissions
	r.Get("/api/admin/abuse-events", handlers.GetAbuseEvents)
}
