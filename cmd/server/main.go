package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/receiptsplit/internal/auth"
	"github.com/mmynk/receiptsplit/internal/cache"
	"github.com/mmynk/receiptsplit/internal/config"
	"github.com/mmynk/receiptsplit/internal/events"
	"github.com/mmynk/receiptsplit/internal/gemini"
	"github.com/mmynk/receiptsplit/internal/metrics"
	"github.com/mmynk/receiptsplit/internal/middleware"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/service"
	"github.com/mmynk/receiptsplit/internal/storage"
	"github.com/mmynk/receiptsplit/internal/storage/memory"
	"github.com/mmynk/receiptsplit/internal/storage/sqlite"
	"github.com/mmynk/receiptsplit/pkg/logging"
	"github.com/mmynk/receiptsplit/pkg/receiptv1/receiptv1connect"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", logging.FieldError, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", logging.FieldError, err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("Server failed", logging.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	publisher, err := openPublisher(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize events: %w", err)
	}
	defer publisher.Close()

	secret := cfg.SessionSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		slog.Warn("SESSION_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	tokens := auth.NewSessionTokens(secret, cfg.SessionTTL)

	gem := gemini.NewClient(gemini.Config{
		APIKey:        cfg.GeminiAPIKey,
		Model:         cfg.GeminiModel,
		BaseURL:       cfg.GeminiBaseURL,
		Timeout:       cfg.ExternalTimeout,
		ReplyLanguage: cfg.ReplyLanguage,
	})
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, receipt scans and commands will fail")
	}

	var scanCache *cache.LRUCache[models.RawReceipt]
	if cfg.ScanCacheSize > 0 {
		scanCache = cache.NewLRUCache[models.RawReceipt](cfg.ScanCacheSize, cfg.ScanCacheTTL)
	}

	m := metrics.New()
	svc := service.NewSessionService(service.Deps{
		Store:           store,
		Tokens:          tokens,
		Scanner:         gem,
		Interpreter:     gem,
		ScanCache:       scanCache,
		Events:          publisher,
		Metrics:         m,
		DefaultCurrency: cfg.DefaultCurrency,
	})

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireSession(tokens, receiptv1connect.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)
	sessionPath, sessionHandler := receiptv1connect.NewSessionServiceHandler(svc, interceptors)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)
	r.Mount(sessionPath, sessionHandler)
	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS, which Connect clients use for streaming
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr, "url", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return svc.RunJanitor(gctx, cfg.JanitorInterval, cfg.SessionTTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped gracefully")
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.StoreBackend, "database", sqlite.DescribePath(cfg.SQLitePath))
		return store, nil
	default:
		slog.Info("Storage initialized", "backend", config.BackendMemory)
		return memory.New(), nil
	}
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Noop{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	slog.Info("Publishing events", logging.FieldComponent, logging.ComponentEvents, "exchange", cfg.AMQPExchange)
	return publisher, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			logging.FieldComponent, logging.ComponentHTTP,
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
			"status", ww.Status(),
			"remote_addr", r.RemoteAddr,
			logging.FieldDuration, time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
