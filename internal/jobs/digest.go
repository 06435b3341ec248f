package jobs

import (
	"context"
	"errors"
	"strings"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/domain"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/example/sprint-sense/internal/repo"
	"github.com/rs/zerolog"
)

type summarizer interface {
	Summarize(ctx context.Context, m domain.SprintMetrics, risks []domain.Risk) (string, error)
}

type store interface {
	SaveSnapshot(ctx context.Context, s repo.Snapshot) error
	LastSnapshot(ctx context.Context, sprintID int64) (*repo.Snapshot, error)
	RecordVelocities(ctx context.Context, rows []repo.VelocityRow) error
	RecentVelocities(ctx context.Context, limit int) ([]float64, error)
}

// Digest snapshots the active sprint once a day and records velocities of
// freshly closed sprints.
type Digest struct {
	cfg   config.Config
	log   zerolog.Logger
	eng   *engine.Engine
	store store
	llm   summarizer
}

func NewDigest(cfg config.Config, log zerolog.Logger, eng *engine.Engine, st store, llm summarizer) *Digest {
	return &Digest{cfg: cfg, log: log, eng: eng, store: st, llm: llm}
}

func (d *Digest) RunDailyDigest(ctx context.Context) error {
	prog, err := d.eng.ActiveSprintAnalysis(ctx)
	if errors.Is(err, engine.ErrNoActiveSprint) {
		d.log.Info().Msg("no active sprint, digest skipped")
		return d.recordVelocities(ctx)
	}
	if err != nil { return err }

	// day-over-day delta against the previous snapshot
	prev, err := d.store.LastSnapshot(ctx, prog.Sprint.ID)
	if err != nil {
		d.log.Warn().Err(err).Msg("previous snapshot lookup failed")
	} else if prev != nil {
		d.log.Info().Int64("sprint_id", prog.Sprint.ID).
			Float64("completion_pct", prog.Metrics.CompletionPercentage).
			Float64("completion_delta_pct", prog.Metrics.CompletionPercentage-prev.CompletionPct).
			Time("since", prev.TakenAt).
			Msg("sprint completion since last digest")
	}

	snap := repo.Snapshot{
		SprintID:        prog.Sprint.ID,
		SprintName:      prog.Sprint.Name,
		TotalPoints:     prog.Metrics.TotalPoints,
		CompletedPoints: prog.Metrics.CompletedPoints,
		RemainingPoints: prog.Metrics.RemainingPoints,
		CompletionPct:   prog.Metrics.CompletionPercentage,
		Risks:           prog.Risks,
	}
	if err := d.store.SaveSnapshot(ctx, snap); err != nil { return err }
	d.log.Info().Int64("sprint_id", prog.Sprint.ID).
		Float64("completion_pct", prog.Metrics.CompletionPercentage).
		Msg("sprint snapshot saved")

	if err := d.recordVelocities(ctx); err != nil { return err }

	if d.llm != nil && strings.TrimSpace(d.cfg.OpenAIKey) != "" {
		summary, err := d.llm.Summarize(ctx, prog.Metrics, prog.Risks)
		if err != nil {
			d.log.Warn().Err(err).Msg("digest summary generation failed")
		} else {
			d.log.Info().Str("summary", summary).Msg("daily digest summary")
		}
	}
	return nil
}

func (d *Digest) recordVelocities(ctx context.Context) error {
	vels, err := d.eng.ClosedSprintVelocities(ctx)
	if err != nil { return err }
	rows := make([]repo.VelocityRow, 0, len(vels))
	for _, v := range vels {
		rows = append(rows, repo.VelocityRow{
			SprintID:        v.SprintID,
			SprintName:      v.Name,
			ClosedAt:        v.Sprint.EndDate,
			CompletedPoints: v.Points,
		})
	}
	if err := d.store.RecordVelocities(ctx, rows); err != nil { return err }
	if len(rows) == 0 { return nil }

	recent, err := d.store.RecentVelocities(ctx, d.cfg.Thresholds.VelocityWindow)
	if err != nil {
		d.log.Warn().Err(err).Msg("recent velocity lookup failed")
		return nil
	}
	var sum float64
	for _, v := range recent { sum += v }
	avg := 0.0
	if len(recent) > 0 { avg = sum / float64(len(recent)) }
	d.log.Info().Int("sprints", len(rows)).Float64("rolling_average", avg).
		Msg("closed sprint velocities recorded")
	return nil
}
