// ABOUTME: HTTP server setup: router, middleware stack and graceful shutdown
// ABOUTME: The embedding layer around the protocol-free optimizer core

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"coderush-optimizer/competition"
	"coderush-optimizer/config"
)

// Options configures the HTTP server
type Options struct {
	Addr        string
	DatasetPath string // optional YAML dataset to seed the store
	AuthSecret  string // empty disables bearer-token auth
}

// corsMiddleware adds CORS headers for cross-origin requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter builds the API router over a handler and auth middleware
func NewRouter(handler *Handler, auth *AuthMiddleware) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", healthCheckHandler)

	r.Get("/tasks", handler.ListTasks)
	r.Get("/agents", handler.ListAgents)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Post("/optimize", handler.Optimize)
		r.Post("/optimize/stored", handler.OptimizeStored)
		r.Get("/solutions/{rank}/metrics", handler.SolutionMetrics)
	})

	return r
}

// Run starts the server and blocks until shutdown
func Run(opts Options) error {
	cfg, _ := config.LoadConfig(config.GetConfigPath())

	store := NewStore()

	if opts.DatasetPath != "" {
		dataset, err := competition.LoadDataset(opts.DatasetPath)
		if err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}

		store.Seed(*dataset)
		log.Printf("Seeded store with %d tasks and %d agents", len(dataset.Tasks), len(dataset.Agents))
	}

	handler := NewHandler(store, cfg)
	auth := NewAuthMiddleware(opts.AuthSecret)

	server := &http.Server{
		Addr:         opts.Addr,
		Handler:      NewRouter(handler, auth),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Could not gracefully shutdown the server: %v", err)
		}

		close(done)
	}()

	log.Printf("Server is starting on %s", opts.Addr)

	if auth.Enabled() {
		log.Printf("Bearer-token authentication enabled")
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not listen on %s: %w", opts.Addr, err)
	}

	<-done
	log.Println("Server stopped")

	return nil
}

// healthCheckHandler handles the /health endpoint
func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "coderush-optimizer",
	}

	_ = json.NewEncoder(w).Encode(response)
}
