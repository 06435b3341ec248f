package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/domain"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/example/sprint-sense/internal/repo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	active *domain.Sprint
	issues map[int64][]domain.Issue
	closed []domain.Sprint
}

func (f *fakeGateway) Sprint(ctx context.Context, sprintID int64) (domain.Sprint, error) {
	if f.active != nil && f.active.ID == sprintID { return *f.active, nil }
	return domain.Sprint{ID: sprintID}, nil
}
func (f *fakeGateway) SprintIssues(ctx context.Context, sprintID int64) ([]domain.Issue, error) {
	return f.issues[sprintID], nil
}
func (f *fakeGateway) BacklogIssues(ctx context.Context, boardID int64) ([]domain.Issue, error) {
	return nil, nil
}
func (f *fakeGateway) AssignedIssues(ctx context.Context, username string) ([]domain.Issue, error) {
	return nil, nil
}
func (f *fakeGateway) IssueHistory(ctx context.Context, key string) ([]domain.StatusTransition, error) {
	return nil, nil
}
func (f *fakeGateway) ActiveSprint(ctx context.Context, boardID int64) (domain.Sprint, bool, error) {
	if f.active == nil { return domain.Sprint{}, false, nil }
	return *f.active, true, nil
}
func (f *fakeGateway) ClosedSprints(ctx context.Context, boardID int64, limit int) ([]domain.Sprint, error) {
	return f.closed, nil
}
func (f *fakeGateway) ScopeChanges(ctx context.Context, boardID, sprintID int64) (domain.ScopeChanges, error) {
	return domain.ScopeChanges{}, nil
}
func (f *fakeGateway) SearchIssues(ctx context.Context, jql string, max int) ([]domain.Issue, error) {
	return nil, nil
}
func (f *fakeGateway) CreateIssue(ctx context.Context, req domain.IssueCreate) (string, error) {
	return "", nil
}

type fakeStore struct {
	last        *repo.Snapshot
	lastQueried []int64
	saved       []repo.Snapshot
	saveErr     error
	rows        []repo.VelocityRow
	recent      []float64
	recentLimit int
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, s repo.Snapshot) error {
	if f.saveErr != nil { return f.saveErr }
	f.saved = append(f.saved, s)
	return nil
}
func (f *fakeStore) LastSnapshot(ctx context.Context, sprintID int64) (*repo.Snapshot, error) {
	f.lastQueried = append(f.lastQueried, sprintID)
	return f.last, nil
}
func (f *fakeStore) RecordVelocities(ctx context.Context, rows []repo.VelocityRow) error {
	f.rows = append(f.rows, rows...)
	return nil
}
func (f *fakeStore) RecentVelocities(ctx context.Context, limit int) ([]float64, error) {
	f.recentLimit = limit
	return f.recent, nil
}

func digestIssue(key string, points float64, status domain.Status) domain.Issue {
	i := domain.Issue{Key: key, Status: status}
	if points > 0 { i.StoryPoints = &points }
	return i
}

func newTestDigest(gw *fakeGateway, st *fakeStore) *Digest {
	cfg := config.Config{Thresholds: config.DefaultThresholds()}
	eng := engine.New(gw, cfg.Thresholds, 7, zerolog.Nop())
	return NewDigest(cfg, zerolog.Nop(), eng, st, nil)
}

func TestRunDailyDigestSnapshotsActiveSprint(t *testing.T) {
	end := time.Date(2026, 8, 14, 17, 0, 0, 0, time.UTC)
	gw := &fakeGateway{
		active: &domain.Sprint{ID: 5, BoardID: 7, Name: "Sprint 5", State: domain.SprintActive},
		issues: map[int64][]domain.Issue{
			5: {digestIssue("S-1", 5, domain.StatusDone), digestIssue("S-2", 5, domain.StatusToDo)},
			3: {digestIssue("S-0", 8, domain.StatusDone)},
		},
		closed: []domain.Sprint{{ID: 3, BoardID: 7, Name: "Sprint 3", State: domain.SprintClosed, EndDate: &end}},
	}
	st := &fakeStore{
		last:   &repo.Snapshot{SprintID: 5, CompletionPct: 30},
		recent: []float64{8, 12},
	}

	require.NoError(t, newTestDigest(gw, st).RunDailyDigest(context.Background()))

	assert.Equal(t, []int64{5}, st.lastQueried)
	require.Len(t, st.saved, 1)
	snap := st.saved[0]
	assert.Equal(t, int64(5), snap.SprintID)
	assert.Equal(t, "Sprint 5", snap.SprintName)
	assert.Equal(t, 10.0, snap.TotalPoints)
	assert.Equal(t, 5.0, snap.CompletedPoints)
	assert.Equal(t, 50.0, snap.CompletionPct)

	require.Len(t, st.rows, 1)
	assert.Equal(t, int64(3), st.rows[0].SprintID)
	assert.Equal(t, 8.0, st.rows[0].CompletedPoints)
	require.NotNil(t, st.rows[0].ClosedAt)
	assert.Equal(t, end, *st.rows[0].ClosedAt)
	assert.Equal(t, config.DefaultThresholds().VelocityWindow, st.recentLimit)
}

func TestRunDailyDigestNoActiveSprintStillRecordsVelocities(t *testing.T) {
	gw := &fakeGateway{
		issues: map[int64][]domain.Issue{3: {digestIssue("S-0", 8, domain.StatusDone)}},
		closed: []domain.Sprint{{ID: 3, BoardID: 7, Name: "Sprint 3", State: domain.SprintClosed}},
	}
	st := &fakeStore{}

	require.NoError(t, newTestDigest(gw, st).RunDailyDigest(context.Background()))

	assert.Empty(t, st.saved)
	assert.Empty(t, st.lastQueried)
	require.Len(t, st.rows, 1)
	assert.Equal(t, int64(3), st.rows[0].SprintID)
}

func TestRunDailyDigestSaveErrorPropagates(t *testing.T) {
	gw := &fakeGateway{
		active: &domain.Sprint{ID: 5, BoardID: 7, Name: "Sprint 5", State: domain.SprintActive},
		issues: map[int64][]domain.Issue{5: {digestIssue("S-1", 5, domain.StatusDone)}},
	}
	st := &fakeStore{saveErr: errors.New("db down")}

	err := newTestDigest(gw, st).RunDailyDigest(context.Background())
	require.Error(t, err)
	assert.Empty(t, st.rows)
}
