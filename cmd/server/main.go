// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FieldSync

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fieldsync/casesync/internal/cache"
	"github.com/fieldsync/casesync/internal/config"
	httphandler "github.com/fieldsync/casesync/internal/handler/http"
	"github.com/fieldsync/casesync/internal/logger"
	"github.com/fieldsync/casesync/internal/server"
	"github.com/fieldsync/casesync/internal/service"
	"github.com/fieldsync/casesync/internal/store"
	"github.com/fieldsync/casesync/internal/workers"
	"github.com/fieldsync/casesync/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("casesync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	payloadCache, err := cache.NewBadgerCache(cfg.Storage.Cache, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening payload cache")
	}
	defer payloadCache.Close()

	repos := store.NewRepositories(db)

	queue := workers.NewQueue(cfg.Workers, log)
	sweeper := workers.NewRetentionSweeper(
		repos.SyncStates,
		cfg.Restore.RetentionWindow,
		cfg.Workers.GCInterval,
		log,
	)
	go workers.New(queue, sweeper).Run(ctx)

	services := service.NewServices(repos, payloadCache, queue, repos.Cases, repos.Fixtures, cfg, log)

	handler := httphandler.NewHandler(services, cfg.App.Version, log)

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
