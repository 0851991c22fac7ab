package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/curionet/curio/internal/api"
	"github.com/curionet/curio/internal/config"
	"github.com/curionet/curio/internal/engine"
	"github.com/curionet/curio/internal/gating"
	"github.com/curionet/curio/internal/hooks"
	"github.com/curionet/curio/internal/model"
	"github.com/curionet/curio/internal/platform/logger"
	"github.com/curionet/curio/internal/services"
	"github.com/curionet/curio/internal/storage"
	"github.com/curionet/curio/internal/storage/postgres"
	"github.com/curionet/curio/internal/storage/sqlite"
)

func main() {
	log := logger.New("curio-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("gating_mode", cfg.GatingMode).
		Int("http_port", cfg.HTTPPort).
		Msg("Curio service starting…")

	// -------- Storage layer -----------------
	var store storage.Store
	switch cfg.DBDriver {
	case "postgres":
		store, err = postgres.Open(cfg.PostgresDSN)
	default:
		store, err = sqlite.NewStore(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Storage adapter unavailable")
	}
	defer func() { _ = store.Close() }()

	// -------- Gating collaborator -----------
	var verifier gating.Verifier
	switch cfg.GatingMode {
	case "merkle":
		verifier = gating.NewMerkleVerifier(common.HexToHash(cfg.MerkleRoot))
	case "signature":
		verifier = gating.NewSignatureVerifier(common.HexToAddress(cfg.AttestorAddr))
	default:
		verifier = gating.NewStaticVerifier(cfg.DefaultWeight)
	}

	// -------- Engine & service --------------
	eng := engine.New(engine.Params{
		Logger:   log,
		Verifier: verifier,
		Owner:    cfg.Owner,
		Operating: model.OperatingConfig{
			PeriodDuration:         cfg.PeriodDuration,
			ReactionsPerWeightUnit: cfg.ReactionsPerWeightUnit,
			MessagesPerWeightUnit:  cfg.MessagesPerWeightUnit,
			EditionPrice:           cfg.EditionPrice,
			CreatorEditions:        cfg.CreatorEditions,
			CuratorEditions:        cfg.CuratorEditions,
			PublicEditions:         cfg.PublicEditions,
			MaxSessionsPerPeriod:   cfg.MaxSessionsPerPeriod,
			Treasury:               cfg.Treasury,
			SelectionMode:          model.SelectionMode(cfg.SelectionMode),
			TieBreak:               model.TieBreak(cfg.TieBreak),
			NoWinnerPolicy:         model.NoWinnerPolicy(cfg.NoWinnerPolicy),
		},
	})

	var notifier hooks.Notifier
	if cfg.WebhookURL != "" {
		notifier = hooks.NewWebhook(cfg.WebhookURL, log)
	}

	svc := services.NewCurationService(eng, store, notifier, log)

	ctx := context.Background()
	if err := svc.Recover(ctx); err != nil {
		log.Fatal().Err(err).Msg("Engine recovery failed")
	}

	// -------- Router & Server --------------
	router := api.NewRouter(svc, store)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := svc.Checkpoint(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("Final snapshot failed")
	}
	log.Info().Msg("Server exited")
}
