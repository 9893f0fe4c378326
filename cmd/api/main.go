package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/http/handlers"
	httpapi "github.com/CodeMasters-AiFactory/Stargate-sub006/internal/http/httpapi"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra/credentials"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra/geoip"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/middleware"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/pipeline"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/providers/assetgen"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	// A key stored via genkey wins over the environment.
	apiKey := cfg.GenerationAPIKey
	credStore := credentials.NewStore(sqlRunner)
	keyCtx, cancelKey := context.WithTimeout(ctx, 5*time.Second)
	if stored, err := credStore.AssetGenAPIKey(keyCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to load assetgen key from credential store")
	} else if stored != "" {
		apiKey = stored
	}
	cancelKey()

	client, err := assetgen.NewClient(assetgen.Options{
		APIKey:  apiKey,
		BaseURL: cfg.GenerationURL,
		Model:   cfg.GenerationModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}
	generator := assetgen.NewRemoteGenerator(client, assetgen.NewSyntheticGenerator())
	if !client.HasCredentials() {
		logger.Warn().Msg("no assetgen credentials configured, using synthetic references")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	} else if resolver != nil {
		lookup = resolver.CountryCode
		defer func() {
			if closer, ok := resolver.(interface{ Close() error }); ok {
				_ = closer.Close()
			}
		}()
	}

	app := &handlers.App{
		Config:    cfg,
		Logger:    logger,
		SQL:       sqlRunner,
		Runs:      pipeline.NewManager(),
		Store:     store,
		Generator: generator,
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !strings.Contains(err.Error(), "Server closed") {
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
