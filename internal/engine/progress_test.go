package engine

import (
	"context"
	"testing"
	"time"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risksOfType(risks []domain.Risk, typ string) []domain.Risk {
	out := []domain.Risk{}
	for _, r := range risks {
		if r.Type == typ { out = append(out, r) }
	}
	return out
}

func tp(t time.Time) *time.Time { return &t }

func TestAnalyzeProgressScenario(t *testing.T) {
	// 5 done, 3 blocked, 2 to-do points: metrics 10/5/5/50%, blocked share
	// 0.3 crosses the 0.2 threshold.
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 5, domain.StatusDone, "alice"),
		issue("S-2", 3, domain.StatusBlocked, "bob"),
		issue("S-3", 2, domain.StatusToDo, "carol"),
	}}
	e := newTestEngine(gw)

	rep, err := e.AnalyzeProgress(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 10.0, rep.Metrics.TotalPoints)
	assert.Equal(t, 5.0, rep.Metrics.CompletedPoints)
	assert.Equal(t, 5.0, rep.Metrics.RemainingPoints)
	assert.Equal(t, 50.0, rep.Metrics.CompletionPercentage)

	require.Len(t, rep.Blocked, 1)
	assert.Equal(t, "S-2", rep.Blocked[0].Key)
	assert.Equal(t, 3.0, rep.Blocked[0].Points)

	blocked := risksOfType(rep.Risks, domain.RiskBlocked)
	require.Len(t, blocked, 1)
	assert.Equal(t, domain.SeverityHigh, blocked[0].Severity)
	assert.InDelta(t, 30.0, blocked[0].Details["blocked_pct"], 1e-9)

	assert.Equal(t, 1, rep.StatusDistribution[domain.StatusDone].Count)
	assert.Equal(t, 1, rep.StatusDistribution[domain.StatusBlocked].Count)
	assert.Equal(t, 1, rep.StatusDistribution[domain.StatusToDo].Count)
}

func TestAnalyzeProgressMissingDates(t *testing.T) {
	// No start/end dates: zero elapsed and total days, no panic, and no
	// schedule risk.
	gw := &fakeGateway{
		sprint: domain.Sprint{ID: 1, Name: "Sprint 1", State: domain.SprintActive},
		issues: []domain.Issue{issue("S-1", 2, domain.StatusToDo, "")},
	}
	e := newTestEngine(gw)

	rep, err := e.AnalyzeProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, risksOfType(rep.Risks, domain.RiskSchedule))
}

func TestAnalyzeProgressBehindSchedule(t *testing.T) {
	// Halfway through a 10-day sprint with 20% done: ideal 50%, gap 30
	// points, beyond the 20-point tolerance.
	now := time.Now()
	gw := &fakeGateway{
		sprint: domain.Sprint{
			ID:        1,
			Name:      "Sprint 1",
			State:     domain.SprintActive,
			StartDate: tp(now.AddDate(0, 0, -5)),
			EndDate:   tp(now.AddDate(0, 0, 5)),
		},
		issues: []domain.Issue{
			issue("S-1", 2, domain.StatusDone, ""),
			issue("S-2", 8, domain.StatusToDo, ""),
		},
	}
	e := newTestEngine(gw)

	rep, err := e.AnalyzeProgress(context.Background(), 1)
	require.NoError(t, err)

	sched := risksOfType(rep.Risks, domain.RiskSchedule)
	require.Len(t, sched, 1)
	assert.Equal(t, domain.SeverityHigh, sched[0].Severity)
	assert.InDelta(t, -30.0, sched[0].Details["variance_pct"].(float64), 0.5)
}

func TestAnalyzeProgressOnPace(t *testing.T) {
	now := time.Now()
	gw := &fakeGateway{
		sprint: domain.Sprint{
			ID:        1,
			State:     domain.SprintActive,
			StartDate: tp(now.AddDate(0, 0, -5)),
			EndDate:   tp(now.AddDate(0, 0, 5)),
		},
		issues: []domain.Issue{
			issue("S-1", 5, domain.StatusDone, ""),
			issue("S-2", 5, domain.StatusToDo, ""),
		},
	}
	e := newTestEngine(gw)

	rep, err := e.AnalyzeProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, risksOfType(rep.Risks, domain.RiskSchedule))
}

func TestAnalyzeProgressEmptySprint(t *testing.T) {
	e := newTestEngine(&fakeGateway{})
	rep, err := e.AnalyzeProgress(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, rep.Metrics.CompletionPercentage)
	assert.Empty(t, rep.Risks)
	assert.Empty(t, rep.Blocked)
}

func TestSprintDaysClamping(t *testing.T) {
	now := time.Now()
	s := domain.Sprint{StartDate: tp(now.AddDate(0, 0, -20)), EndDate: tp(now.AddDate(0, 0, -10))}
	total, elapsed := sprintDays(s, now)
	assert.InDelta(t, 10, total, 0.01)
	assert.Equal(t, total, elapsed)

	s = domain.Sprint{StartDate: tp(now.AddDate(0, 0, 5)), EndDate: tp(now.AddDate(0, 0, 15))}
	_, elapsed = sprintDays(s, now)
	assert.Zero(t, elapsed)

	// inverted dates collapse to zero duration
	s = domain.Sprint{StartDate: tp(now), EndDate: tp(now.AddDate(0, 0, -10))}
	total, _ = sprintDays(s, now)
	assert.Zero(t, total)
}
