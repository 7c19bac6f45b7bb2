package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kate-app/backend/internal/auth"
	"github.com/kate-app/backend/internal/config"
	"github.com/kate-app/backend/internal/metrics"
	"github.com/kate-app/backend/internal/middleware"
	"github.com/kate-app/backend/internal/notify"
	"github.com/kate-app/backend/internal/payment"
	"github.com/kate-app/backend/internal/service"
	"github.com/kate-app/backend/internal/storage/sqlite"
	"github.com/kate-app/backend/pkg/api/apiconnect"
	"github.com/kate-app/backend/pkg/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	policy, err := payment.ParsePolicy(cfg.Settlement.PaidPolicy)
	if err != nil {
		slog.Error("Invalid paid policy", "error", err)
		os.Exit(1)
	}
	tracker := payment.NewTracker(store, policy)

	renderer, err := notify.NewRenderer(cfg.Settlement.MessageTemplate, cfg.Settlement.CurrencySymbol)
	if err != nil {
		slog.Error("Invalid message template", "error", err)
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authenticator := auth.NewTelegramAuthenticator(cfg.Auth.BotToken, cfg.Auth.InitDataMaxAge())

	bot := notify.NewBotClient(cfg.Auth.BotAPIURL, cfg.Auth.BotToken)
	if cfg.Auth.BotUsername == "" {
		slog.Warn("Bot username not set, invite links are disabled")
	}

	// Auth runs first so the logging interceptor sees the caller.
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, service.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	settlementService := service.NewSettlementService(store, tracker, renderer)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(apiconnect.NewSettlementServiceHandler(settlementService, interceptors))
	mux.Handle(apiconnect.NewEventServiceHandler(service.NewEventService(store, cfg.Auth.BotUsername), interceptors))
	mux.Handle(apiconnect.NewNotificationServiceHandler(service.NewNotificationService(store, settlementService, bot), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, slog.Default()), interceptors))

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			slog.Warn("Health check failed", "error", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	if cfg.Server.StaticPath != "" {
		if err := serveStatic(mux, cfg.Server.StaticPath); err != nil {
			slog.Error("Failed to resolve static path", "error", err)
			os.Exit(1)
		}
	}

	// Add logging and CORS middleware
	handler := middleware.HTTPLogging(middleware.CORS(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "paid_policy", tracker.Policy())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// serveStatic serves the Mini-App bundle for all non-API routes.
func serveStatic(mux *http.ServeMux, staticPath string) error {
	staticDir, err := filepath.Abs(staticPath)
	if err != nil {
		return err
	}
	slog.Info("Serving static files", "path", staticDir)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if apiconnect.IsProcedure(r.URL.Path) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))

		// Unknown paths fall back to index.html for client-side routing
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})
	return nil
}
