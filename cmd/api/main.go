/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/sprint-sense/internal/adapters/jira"
	"github.com/example/sprint-sense/internal/adapters/openai"
	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/engine"
	httpapi "github.com/example/sprint-sense/internal/http"
	"github.com/example/sprint-sense/internal/jobs"
	"github.com/example/sprint-sense/internal/logger"
	"github.com/example/sprint-sense/internal/repo"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db := repo.MustOpen(ctx, cfg, log)
	defer db.Close()
	repository := repo.NewRepository(db, log)
	{
		ctx2, cancel2 := context.WithTimeout(ctx, 15*time.Second)
		err := repository.EnsureSchema(ctx2)
		cancel2()
		if err != nil { log.Fatal().Err(err).Msg("schema migration failed") }
	}

	// Adapters
	jc := jira.NewClient(cfg, log)
	llm := openai.NewClient(cfg, log)

	// Analytics engine
	eng := engine.New(jc, cfg.Thresholds, cfg.JiraBoardID, log)

	// Cron digest
	digest := jobs.NewDigest(cfg, log, eng, repository, llm)
	cron := jobs.NewCron(cfg, log, digest, repository)
	cron.Start()
	defer cron.Stop()

	// HTTP server (Gin)
	handlers := httpapi.NewHandlers(cfg, log, eng)
	router := httpapi.NewRouter(cfg, log, handlers)

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil { log.Error().Err(err).Msg("http server error") }
	}

	time.Sleep(500 * time.Millisecond)
}
