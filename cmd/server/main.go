package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vedran77/konekt/internal/config"
	"github.com/vedran77/konekt/internal/database"
	"github.com/vedran77/konekt/internal/presence"
	postgresrepo "github.com/vedran77/konekt/internal/repository/postgres"
	"github.com/vedran77/konekt/internal/service"
	"github.com/vedran77/konekt/internal/transport/http/handlers"
	"github.com/vedran77/konekt/internal/transport/http/middleware"
	"github.com/vedran77/konekt/internal/transport/http/middleware/metrics"
	"github.com/vedran77/konekt/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to database")

	// Presence (optional)
	var tracker service.PresenceTracker
	if cfg.RedisURL != "" {
		store, err := presence.NewStore(cfg.RedisURL)
		if err != nil {
			log.Printf("presence disabled: %v", err)
		} else {
			defer store.Close()
			tracker = store
			log.Println("Connected to redis")
		}
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	threadRepo := postgresrepo.NewThreadRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	authz := service.NewMembership(service.AdminPrincipal(cfg.AdminUsername))
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPassword)
	threadService := service.NewThreadService(threadRepo, messageRepo, userRepo, authz)
	messageService := service.NewMessageService(messageRepo, threadRepo, userRepo, authz)
	adminService := service.NewAdminService(threadService, userRepo)
	if tracker != nil {
		authService.SetPresence(tracker)
		messageService.SetPresence(tracker)
		adminService.SetPresence(tracker)
	}

	// Realtime hub
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewHubNotifier(hub)
	threadService.SetNotifier(notifier)
	messageService.SetNotifier(notifier)
	gate := ws.NewGateway(threadService, messageService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	threadHandler := handlers.NewThreadHandler(threadService)
	messageHandler := handlers.NewMessageHandler(messageService)
	adminHandler := handlers.NewAdminHandler(adminService)

	auth := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.AdminOnly()

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "status": "ok", "message": "Konekt API is running"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Threads
	mux.HandleFunc("POST /api/threads", threadHandler.Create)
	mux.HandleFunc("GET /api/threads", threadHandler.List)
	mux.HandleFunc("PUT /api/threads/{id}", threadHandler.Update)
	mux.HandleFunc("DELETE /api/threads/{id}", threadHandler.Delete)
	mux.HandleFunc("POST /api/threads/{id}/join", threadHandler.Join)
	mux.HandleFunc("POST /api/threads/{id}/requests", threadHandler.DecideRequest)
	mux.HandleFunc("POST /api/threads/{id}/messages", messageHandler.Send)

	// Admin
	mux.Handle("GET /api/admin/dashboard", auth(adminOnly(http.HandlerFunc(adminHandler.Dashboard))))

	// Realtime
	mux.Handle("GET /ws", ws.ServeWS(hub, gate, cfg.JWTSecret))

	// Expiry sweep
	go runExpirySweeper(threadService, cfg.SweepInterval)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	handler := middleware.CORS(cfg.AllowedOrigins)(metrics.Middleware(mux))
	log.Fatal(http.ListenAndServe(addr, handler))
}

// runExpirySweeper hard-deletes expired threads and their messages. The
// listing query already filters on expiry, so the sweep only reclaims
// storage; a missed tick is harmless.
func runExpirySweeper(threads *service.ThreadService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := threads.PurgeExpired(ctx)
		cancel()
		if err != nil {
			log.Printf("expiry sweep: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("expiry sweep: removed %d expired threads", n)
		}
	}
}
