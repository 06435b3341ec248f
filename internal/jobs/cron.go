/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */
package jobs

import (
	"context"
	"time"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/repo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type service interface {
	RunDailyDigest(ctx context.Context) error
}

// lockKey serializes digest runs across replicas.
const lockKey int64 = 424242

type Cron struct {
	cfg  config.Config
	log  zerolog.Logger
	svc  service
	repo *repo.Repository
	c    *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, r *repo.Repository) *Cron {
	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil { loc = time.UTC }
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, svc: svc, repo: r, c: c}
	_, _ = c.AddFunc(cfg.DigestCron, cr.daily)
	return cr
}

func (cr *Cron) Start() {
	cr.c.Start()
	cr.log.Info().Str("spec", cr.cfg.DigestCron).Str("tz", cr.cfg.TZ).Msg("digest cron scheduled")
}

func (cr *Cron) Stop() { cr.c.Stop() }

func (cr *Cron) daily() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute); defer cancel()
	ok, err := cr.repo.TryAdvisoryLock(ctx, lockKey)
	if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
	if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
	defer func() { _ = cr.repo.AdvisoryUnlock(context.Background(), lockKey) }()

	if err := cr.svc.RunDailyDigest(ctx); err != nil {
		cr.log.Error().Err(err).Msg("cron: daily digest failed")
	}
}
