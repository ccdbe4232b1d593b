// Package main is the entry point for the API server.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/college-essay-ai/essay-platform/internal/config"
	"github.com/college-essay-ai/essay-platform/internal/events"
	"github.com/college-essay-ai/essay-platform/internal/handler"
	"github.com/college-essay-ai/essay-platform/internal/llm"
	"github.com/college-essay-ai/essay-platform/internal/middleware"
	"github.com/college-essay-ai/essay-platform/internal/service"
	"github.com/college-essay-ai/essay-platform/internal/store"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
	"github.com/college-essay-ai/essay-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	ctx := context.Background()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "essay-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when eventing is enabled
	var eventsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsClient, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer eventsClient.Close()

		publisher, err = events.NewPublisher(ctx, eventsClient)
		if err != nil {
			log.Error("failed to ensure event stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Initialize the thread store
	backend, err := newStoreBackend(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize store backend", zap.Error(err))
		os.Exit(1)
	}
	threadStore := store.New(backend, log)
	if err := threadStore.Load(ctx); err != nil {
		log.Error("failed to load thread state", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the completion client factory
	var clients llm.Factory
	switch cfg.LLMProvider {
	case "anthropic":
		clients = llm.NewAnthropicFactory(cfg.AnthropicAPIKey)
	default:
		clients = llm.NewOpenRouterFactory(llm.OpenRouterConfig{
			BaseURL:       cfg.OpenRouterBaseURL,
			SiteURL:       cfg.OpenRouterSiteURL,
			AppName:       cfg.OpenRouterAppName,
			DefaultAPIKey: cfg.OpenRouterAPIKey,
			Timeout:       cfg.CompletionTimeout,
		})
	}

	// Initialize services
	threadSvc := service.NewThreadService(threadStore, publisher, log)
	essaySvc := service.NewEssayService(threadStore, clients, publisher, service.Options{
		DefaultModel:     cfg.DefaultModel,
		MaxTokens:        cfg.MaxTokens,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(eventsClient)
	threadHandler := handler.NewThreadHandler(threadSvc, log)
	essayHandler := handler.NewEssayHandler(essaySvc, log)
	streamHandler := handler.NewStreamHandler(essaySvc, threadSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.OpenRouterKeyHeader},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.CompletionKey)
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Threads
		r.Route("/threads", func(r chi.Router) {
			r.Post("/", threadHandler.Create)
			r.Get("/", threadHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", threadHandler.Get)
				r.Put("/", threadHandler.Update)
				r.Delete("/", threadHandler.Delete)
				r.Post("/activate", threadHandler.Activate)
				r.Put("/personal-details", threadHandler.SetPersonalDetails)
				r.Get("/messages", threadHandler.Messages)

				// Streaming
				r.Get("/stream", streamHandler.Stream)
				r.Post("/stream", streamHandler.Generate)
			})
		})

		// Essay operations
		r.Route("/essays", func(r chi.Router) {
			r.Post("/generate", essayHandler.Generate)
			r.Post("/edit", essayHandler.Edit)
			r.Post("/analyze", essayHandler.Analyze)
			r.Post("/analyze-image", essayHandler.AnalyzeImage)
		})

		r.Post("/chat", essayHandler.Chat)
		r.Post("/keys/test", essayHandler.TestKey)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func newStoreBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return store.NewPostgresBackend(ctx, cfg.PostgresDSN, cfg.StoreKey)
	default:
		return store.NewFileBackend(cfg.StorePath)
	}
}
