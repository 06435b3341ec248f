package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyStandupNoActiveSprint(t *testing.T) {
	e := newTestEngine(&fakeGateway{})
	_, err := e.DailyStandup(context.Background())
	require.ErrorIs(t, err, ErrNoActiveSprint)
}

func TestDailyStandupBuckets(t *testing.T) {
	now := time.Now()
	recent := now.Add(-2 * time.Hour)
	old := now.Add(-72 * time.Hour)

	done := issue("S-1", 5, domain.StatusDone, "alice")
	done.Updated = &recent
	staleDone := issue("S-2", 3, domain.StatusDone, "alice")
	staleDone.Updated = &old
	inProg := issue("S-3", 2, domain.StatusInProgress, "bob")
	blocked := issue("S-4", 2, domain.StatusBlocked, "bob")
	urgent := issue("S-5", 1, domain.StatusToDo, "carol")
	urgent.Priority = domain.PriorityHighest

	gw := &fakeGateway{
		active: &domain.Sprint{ID: 9, Name: "Sprint 9", State: domain.SprintActive},
		issues: []domain.Issue{done, staleDone, inProg, blocked, urgent},
	}
	e := newTestEngine(gw)

	rep, err := e.DailyStandup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(9), rep.SprintID)
	require.Len(t, rep.CompletedYesterday, 1)
	assert.Equal(t, "S-1", rep.CompletedYesterday[0].Key)
	require.Len(t, rep.InProgress, 1)
	assert.Equal(t, "S-3", rep.InProgress[0].Key)
	require.Len(t, rep.Blocked, 1)
	assert.Equal(t, "S-4", rep.Blocked[0].Key)
	require.Len(t, rep.Priorities, 1)
	assert.Equal(t, "S-5", rep.Priorities[0].Key)

	// Done work does not appear under team updates.
	assert.NotContains(t, rep.TeamUpdates, "alice")
	assert.Len(t, rep.TeamUpdates["bob"], 2)
	assert.Len(t, rep.TeamUpdates["carol"], 1)

	assert.Equal(t, 13.0, rep.Metrics.TotalPoints)
	assert.Equal(t, 8.0, rep.Metrics.CompletedPoints)
}

func TestAverageCycleTime(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	gw := &fakeGateway{history: map[string][]domain.StatusTransition{
		"S-1": {
			{Status: domain.StatusToDo, From: base, To: base.AddDate(0, 0, 1)},
			{Status: domain.StatusInProgress, From: base.AddDate(0, 0, 1), To: base.AddDate(0, 0, 4)},
			{Status: domain.StatusDone, From: base.AddDate(0, 0, 4), To: base.AddDate(0, 0, 5)},
		},
		"S-2": {
			{Status: domain.StatusInProgress, From: base, To: base.AddDate(0, 0, 1)},
		},
	}}
	e := newTestEngine(gw)

	issues := []domain.Issue{
		issue("S-1", 5, domain.StatusDone, ""),
		issue("S-2", 3, domain.StatusDone, ""),
		issue("S-3", 2, domain.StatusInProgress, ""), // not done, not counted
	}
	avg, err := e.AverageCycleTime(context.Background(), issues)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 1e-9) // (3 + 1) / 2
}

func TestAverageCycleTimeNoCompletedIssues(t *testing.T) {
	e := newTestEngine(&fakeGateway{})
	avg, err := e.AverageCycleTime(context.Background(), []domain.Issue{
		issue("S-1", 5, domain.StatusInProgress, ""),
	})
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestAverageCycleTimeNoHistory(t *testing.T) {
	// Completed issues without in-progress history contribute zero but
	// still count in the denominator.
	gw := &fakeGateway{history: map[string][]domain.StatusTransition{}}
	e := newTestEngine(gw)

	avg, err := e.AverageCycleTime(context.Background(), []domain.Issue{
		issue("S-1", 5, domain.StatusDone, ""),
	})
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestAverageCycleTimePropagatesHistoryError(t *testing.T) {
	gw := &fakeGateway{historyErr: errors.New("status=502")}
	e := newTestEngine(gw)

	_, err := e.AverageCycleTime(context.Background(), []domain.Issue{
		issue("S-1", 5, domain.StatusDone, ""),
	})
	require.Error(t, err)
}
