package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/handlers"
	"github.com/whisperwall/whisperwall-backend/internal/middleware"
	"github.com/whisperwall/whisperwall-backend/internal/routes"
	"github.com/whisperwall/whisperwall-backend/internal/services"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Identity salt must be set, or sender identities rotate on every deploy
	if cfg.IdentitySalt == "" {
		log.Println("⚠️  WARNING: IDENTITY_SALT not set. Sender identities will not be stable across restarts.")
		log.Println("   To generate a salt, run: openssl rand -hex 32")
		log.Println("   Set it in your environment: IDENTITY_SALT=<generated-salt>")
	} else {
		log.Println("✅ Identity salt configured")
	}

	// Connect to PostgreSQL (system of record: users, messages, blocks, reports)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions + per-IP request limiting)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (advisory abuse-event log; the service runs without it)
	if cfg.MongoURI != "" {
		log.Printf("Connecting to MongoDB...")
		if err := database.Connect(cfg.MongoURI); err != nil {
			log.Printf("⚠️  WARNING: failed to connect to MongoDB: %v", err)
			log.Println("   Abuse-event logging will not be available")
		} else {
			defer database.Disconnect()
			// Clean up abuse events older than 24 hours, run every hour
			services.StartAbuseEventCleanup(1, 24)
			log.Println("✅ Abuse-event cleanup service started (removes events older than 24 hours)")
		}
	} else {
		log.Println("MongoDB not configured. Abuse-event logging will not be available")
	}

	// Wire handlers to config and build the ingestion pipeline
	handlers.InitAbuseControl(cfg)
	log.Printf("✅ Abuse control configured (%d msgs per %s per sender per recipient)",
		cfg.Abuse.RateLimitMax, cfg.Abuse.RateLimitWindow)

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/signup")
	log.Println("  POST /api/auth/signin")
	log.Println("  POST /api/auth/logout")
	log.Println("  GET  /api/auth/me")
	log.Println("  GET  /api/profile")
	log.Println("  POST /api/messages")
	log.Println("  GET  /api/messages/inbox")
	log.Println("  PUT  /api/messages/read")
	log.Println("  DELETE /api/messages")
	log.Println("  POST /api/blocks")
	log.Println("  GET  /api/blocks")
	log.Println("  DELETE /api/blocks")
	log.Println("  POST /api/reports")
	log.Println("  GET  /api/admin/abuse-events")

	log.Printf("🚀 WhisperWall backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
