package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
	if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
	return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
	db  *DB
	log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
	return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
	if !ok && err == nil { return errors.New("advisory unlock returned false") }
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS sprint_snapshots(
    id              BIGSERIAL PRIMARY KEY,
    sprint_id       BIGINT NOT NULL,
    sprint_name     TEXT NOT NULL,
    taken_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    total_points    DOUBLE PRECISION NOT NULL,
    completed_points DOUBLE PRECISION NOT NULL,
    remaining_points DOUBLE PRECISION NOT NULL,
    completion_pct  DOUBLE PRECISION NOT NULL,
    risks           JSONB NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_snapshots_sprint ON sprint_snapshots(sprint_id, taken_at DESC);

CREATE TABLE IF NOT EXISTS sprint_velocities(
    sprint_id       BIGINT PRIMARY KEY,
    sprint_name     TEXT NOT NULL,
    closed_at       TIMESTAMPTZ,
    completed_points DOUBLE PRECISION NOT NULL
);`

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, schema)
	return err
}

// Snapshot is one persisted progress reading of a sprint.
type Snapshot struct {
	SprintID        int64
	SprintName      string
	TakenAt         time.Time
	TotalPoints     float64
	CompletedPoints float64
	RemainingPoints float64
	CompletionPct   float64
	Risks           []domain.Risk
}

func (r *Repository) SaveSnapshot(ctx context.Context, s Snapshot) error {
	risks, err := json.Marshal(s.Risks)
	if err != nil { return err }
	const q = `
        INSERT INTO sprint_snapshots(sprint_id, sprint_name, total_points,
            completed_points, remaining_points, completion_pct, risks)
        VALUES($1,$2,$3,$4,$5,$6,$7)`
	_, err = r.db.Pool.Exec(ctx, q, s.SprintID, s.SprintName, s.TotalPoints,
		s.CompletedPoints, s.RemainingPoints, s.CompletionPct, risks)
	return err
}

// LastSnapshot returns the most recent snapshot of a sprint, or nil when
// none has been taken yet.
func (r *Repository) LastSnapshot(ctx context.Context, sprintID int64) (*Snapshot, error) {
	const q = `
        SELECT sprint_id, sprint_name, taken_at, total_points,
               completed_points, remaining_points, completion_pct, risks
        FROM sprint_snapshots WHERE sprint_id=$1
        ORDER BY taken_at DESC LIMIT 1`
	var s Snapshot
	var risks []byte
	err := r.db.Pool.QueryRow(ctx, q, sprintID).Scan(&s.SprintID, &s.SprintName, &s.TakenAt,
		&s.TotalPoints, &s.CompletedPoints, &s.RemainingPoints, &s.CompletionPct, &risks)
	if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
	if err != nil { return nil, err }
	if err := json.Unmarshal(risks, &s.Risks); err != nil { return nil, err }
	return &s, nil
}

// VelocityRow is one closed sprint's realized velocity.
type VelocityRow struct {
	SprintID        int64
	SprintName      string
	ClosedAt        *time.Time
	CompletedPoints float64
}

// RecordVelocities upserts closed-sprint velocities in one batch.
func (r *Repository) RecordVelocities(ctx context.Context, rows []VelocityRow) error {
	if len(rows) == 0 { return nil }
	batch := &pgx.Batch{}
	const q = `
        INSERT INTO sprint_velocities(sprint_id, sprint_name, closed_at, completed_points)
        VALUES($1,$2,$3,$4)
        ON CONFLICT(sprint_id) DO UPDATE SET
            sprint_name=EXCLUDED.sprint_name,
            closed_at=EXCLUDED.closed_at,
            completed_points=EXCLUDED.completed_points`
	for _, v := range rows {
		batch.Queue(q, v.SprintID, v.SprintName, v.ClosedAt, v.CompletedPoints)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows { if _, err := br.Exec(); err != nil { return err } }
	return nil
}

// RecentVelocities returns the latest completed-point figures, newest first.
func (r *Repository) RecentVelocities(ctx context.Context, limit int) ([]float64, error) {
	const q = `
        SELECT completed_points FROM sprint_velocities
        ORDER BY closed_at DESC NULLS LAST LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []float64{}
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil { return nil, err }
		out = append(out, v)
	}
	return out, rows.Err()
}
