package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/pharmstock/pharmstock-backend/internal/auth/handler"
	"github.com/pharmstock/pharmstock-backend/internal/auth/jwt"
	authmw "github.com/pharmstock/pharmstock-backend/internal/auth/middleware"
	authservice "github.com/pharmstock/pharmstock-backend/internal/auth/service"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/events"
	invhandler "github.com/pharmstock/pharmstock-backend/internal/inventory/handler"
	invservice "github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/internal/store"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

func main() {
	cfg, err := config.LoadWithValidation("pharmacy-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("pharmacy-service", cfg.Server.Environment)
	log.Info().Str("data_dir", cfg.Data.Dir).Msg("starting Pharmacy Service")

	// Open the record store
	st, err := store.New(cfg.Data.Dir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open data directory")
	}

	inventoryStore := store.NewInventoryStore(st)
	transactionStore := store.NewTransactionStore(st)
	userStore := store.NewUserStore(st)
	accessLogStore := store.NewAccessLogStore(st)

	// Connect to RabbitMQ when enabled; the service runs standalone without it
	var rmq *messaging.RabbitMQ
	var publisher *events.InventoryEventPublisher
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewInventoryEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Info().Msg("RabbitMQ disabled, events will not be published")
	}

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	authSvc := authservice.NewAuthService(userStore, accessLogStore, jwtManager, log)
	inventorySvc := invservice.NewInventoryService(inventoryStore, transactionStore, publisher, cfg.Inventory, log)

	// Initialize handlers
	authHandler := authhandler.NewAuthHandler(authSvc, log)
	inventoryHandler := invhandler.NewInventoryHandler(inventorySvc, log)

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": "pharmacy-service",
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// Public auth routes
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authmw.Authenticate(jwtManager, log))
			r.Get("/me", authHandler.Me)
		})
	})

	// Admin-only user management
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(authmw.Authenticate(jwtManager, log))
		r.Use(authmw.RequireAdmin)

		r.Get("/", authHandler.ListUsers)
		r.Post("/", authHandler.CreateUser)
		r.Delete("/{id}", authHandler.DeactivateUser)
		r.Get("/access-log", authHandler.AccessLog)
	})

	// Inventory routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(authmw.Authenticate(jwtManager, log))
		inventoryHandler.Routes(r)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
