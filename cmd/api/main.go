package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"viralstudio/internal/http/handlers"
	httpapi "viralstudio/internal/http/httpapi"
	"viralstudio/internal/infra"
	"viralstudio/internal/ledger"
	"viralstudio/internal/metrics"
	"viralstudio/internal/pricing"
	"viralstudio/internal/providers/content"
	"viralstudio/internal/providers/thumbnail"
	"viralstudio/internal/storage"
	"viralstudio/internal/studio"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := ledger.OpenBadger(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open ledger store")
	}
	defer func() {
		_ = store.Close()
	}()
	wallet := ledger.New(store, int64(cfg.WelcomeGrant))

	contentClient, err := content.NewClient(content.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiTextModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build content client")
	}
	thumbClient, err := thumbnail.NewClient(thumbnail.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiImageModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build thumbnail client")
	}
	archive, err := storage.NewFileStore(cfg.AssetsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare asset archive")
	}

	m := metrics.New()
	st, err := studio.New(studio.Options{
		Content:    contentClient,
		Thumbnails: thumbClient,
		Ledger:     wallet,
		CostPerRun: int64(cfg.CostPerRun),
		Archive:    archive,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build studio")
	}

	app := handlers.NewApp(logger, st, wallet, pricing.NewPurchaser(wallet, logger), m)
	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
