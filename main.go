// Command augmentations-api is the entry point of the AugmentationsAPI
// server. It loads configuration, connects the database, runs
// migrations, wires the services and handlers, assembles the middleware
// pipeline and serves HTTP until interrupted. Everything here runs once
// at startup; a missing required configuration key aborts the process
// before any request is accepted.
//
// @title AugmentationsAPI
// @version v1
// @description API exposing CRUD operations over the augmentations of a fictional game, with CSV import and PDF export.
// @contact.name API Support
// @contact.email support@augmentations.example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type 'Bearer' followed by a space and a JWT, e.g. "Bearer eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/augmentations-api/apperror"
	"github.com/user/augmentations-api/augmentations"
	"github.com/user/augmentations-api/auth"
	"github.com/user/augmentations-api/cache"
	"github.com/user/augmentations-api/config"
	"github.com/user/augmentations-api/db"
	"github.com/user/augmentations-api/docgen"
	"github.com/user/augmentations-api/docs"
	"github.com/user/augmentations-api/links"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	// Configuration first: every later step depends on it, and a missing
	// key must stop the process here.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Response cache. A nil client (no REDIS_URL) leaves the middleware
	// chain intact but inert.
	redisClient, err := cache.NewClient(cfg.Cache.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to cache backend: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	respCache := cache.NewResponseCache(redisClient, cfg.Cache.TTL)
	if respCache.Enabled() {
		log.Printf("Response cache enabled (TTL %s)", cfg.Cache.TTL)
	} else {
		log.Println("Response cache disabled (REDIS_URL not set)")
	}

	loadAPIDescription(cfg.Docs)

	// Services and handlers, wired by hand. Each constructor is called
	// exactly once; calling a constructor twice is unsupported.
	userStore := auth.NewPostgresUserStore(pool)
	authService := auth.NewService(userStore, *cfg.Auth, *cfg.Password)
	authHandlers := auth.NewHandlers(authService)

	augRepo := augmentations.NewPostgresRepository(pool)
	augService := augmentations.NewCatalogueService(augRepo)
	augHandlers := augmentations.NewHandler(
		augService,
		links.NewGenerator(),
		docgen.NewPDFGenerator("Augmentation Catalogue"),
		respCache,
	)

	r := chi.NewRouter()

	// Global middleware, registered before any route (chi requirement).
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic translator: converts anything a handler lets escape into the
	// standard JSON error shape instead of a bare 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	// Swagger UI, served before authentication so the documentation is
	// reachable without a token.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public identity endpoints.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefreshToken())
	})

	// Protected catalogue endpoints: authentication, then authorization
	// (role guard inside RegisterRoutes), then caching, then dispatch.
	r.Route("/api/augmentations", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		augHandlers.RegisterRoutes(r, auth.RequireRole(auth.RoleAdmin))
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// loadAPIDescription replaces the generated API description with the
// contents of the configured description file, when it exists. Absence
// degrades gracefully: the generated description stands.
func loadAPIDescription(cfg *config.DocsConfig) {
	if cfg.DescriptionFile == "" {
		return
	}
	content, err := os.ReadFile(cfg.DescriptionFile)
	if err != nil {
		log.Printf("API description file %s not loaded: %v", cfg.DescriptionFile, err)
		return
	}
	docs.SwaggerInfo.Description = string(content)
}

// writeError is the panic recovery path's response writer, kept local
// to avoid an import cycle between main and the handler helpers.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
