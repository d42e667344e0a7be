package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ecshop/internal/config"
	"ecshop/internal/infra/db"
	"ecshop/internal/logger"
	"ecshop/internal/server"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}

	log := logger.New(cfg.GoEnv, cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Error().Err(err).Msg("db close")
		}
	}()

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	srv := server.Wire(cfg, log, gormDB)

	//Server起動
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}
}
