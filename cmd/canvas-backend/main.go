package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pribylovaa/canvas-ai-backend/internal/clients/openai"
	"github.com/pribylovaa/canvas-ai-backend/internal/clients/removebg"
	"github.com/pribylovaa/canvas-ai-backend/internal/config"
	"github.com/pribylovaa/canvas-ai-backend/internal/password"
	"github.com/pribylovaa/canvas-ai-backend/internal/service"
	"github.com/pribylovaa/canvas-ai-backend/internal/storage/postgres"
	"github.com/pribylovaa/canvas-ai-backend/internal/tokens"
	apphttp "github.com/pribylovaa/canvas-ai-backend/internal/transport/http"
	"github.com/pribylovaa/canvas-ai-backend/internal/transport/http/handlers"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting canvas-backend", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	store, err := postgres.New(rootCtx, cfg.DB.DatabaseURL, cfg.Timeouts.Store)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(rootCtx); err != nil {
		log.Error("migrations_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("storage_initialized")

	tm, err := tokens.NewManager(cfg.Auth)
	if err != nil {
		log.Error("tokens_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	hasher := password.NewHasher(cfg.Hasher.Cost, cfg.Hasher.MaxParallel)
	auth := service.New(store, tm, hasher, cfg.Auth)

	// Клиенты апстримов опциональны: без ключа эндпоинт отвечает 500.
	var ai handlers.AIClient
	if cfg.OpenAI.APIKey != "" {
		ai = openai.New(cfg.OpenAI.APIKey)
	} else {
		log.Warn("openai_key_missing", slog.String("hint", "ai generation endpoints disabled"))
	}

	var bg handlers.BackgroundRemover
	if cfg.RemoveBG.APIKey != "" {
		bg = removebg.New(cfg.RemoveBG.APIKey)
	} else {
		log.Warn("removebg_key_missing", slog.String("hint", "background removal endpoint disabled"))
	}

	h := handlers.New(auth, ai, bg)

	router := apphttp.NewRouter(h, auth, apphttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Pinger:  store,
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
