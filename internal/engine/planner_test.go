package engine

import (
	"context"
	"testing"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recsOfType(recs []domain.Recommendation, typ string) []domain.Recommendation {
	out := []domain.Recommendation{}
	for _, r := range recs {
		if r.Type == typ { out = append(out, r) }
	}
	return out
}

func TestPlanSprintValidation(t *testing.T) {
	e := newTestEngine(&fakeGateway{})
	var ii *InvalidInputError

	_, err := e.PlanSprint(context.Background(), 1, 0, []string{"alice"})
	require.ErrorAs(t, err, &ii)

	_, err = e.PlanSprint(context.Background(), 1, -5, []string{"alice"})
	require.ErrorAs(t, err, &ii)

	_, err = e.PlanSprint(context.Background(), 1, 20, nil)
	require.ErrorAs(t, err, &ii)
}

func TestValidateSprintDates(t *testing.T) {
	assert.NoError(t, ValidateSprintDates("", ""))
	assert.NoError(t, ValidateSprintDates("2026-08-10", ""))
	assert.NoError(t, ValidateSprintDates("", "2026-08-24"))
	assert.NoError(t, ValidateSprintDates("2026-08-10", "2026-08-24"))
	assert.NoError(t, ValidateSprintDates("2026-08-10T08:00:00Z", "2026-08-24T17:00:00Z"))

	var ii *InvalidInputError

	err := ValidateSprintDates("next tuesday", "2026-08-24")
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "start_date", ii.Field)

	err = ValidateSprintDates("2026-08-10", "24/08/2026")
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "end_date", ii.Field)

	err = ValidateSprintDates("2026-08-24", "2026-08-10")
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "date_range", ii.Field)

	err = ValidateSprintDates("2026-08-10", "2026-08-10")
	require.ErrorAs(t, err, &ii)
}

func TestPlanSprintOvercommitment(t *testing.T) {
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 10, domain.StatusToDo, ""),
		issue("S-2", 10, domain.StatusToDo, ""),
		issue("S-3", 5, domain.StatusToDo, ""),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)

	over := recsOfType(recs, domain.RecOvercommitment)
	require.Len(t, over, 1)
	assert.Equal(t, domain.SeverityHigh, over[0].Severity)
	assert.InDelta(t, 5.0, over[0].Details["overage"], 1e-9)
	assert.InDelta(t, 25.0, over[0].Details["planned_points"], 1e-9)
}

func TestPlanSprintNoOvercommitmentAtBoundary(t *testing.T) {
	// 23 points against a target of 20 stays within the 1.2x tolerance.
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 10, domain.StatusToDo, ""),
		issue("S-2", 13, domain.StatusToDo, ""),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Empty(t, recsOfType(recs, domain.RecOvercommitment))
	assert.Empty(t, recsOfType(recs, domain.RecLowCommitment))
}

func TestPlanSprintLowCommitment(t *testing.T) {
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 10, domain.StatusToDo, ""),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)

	low := recsOfType(recs, domain.RecLowCommitment)
	require.Len(t, low, 1)
	assert.Equal(t, domain.SeverityLow, low[0].Severity)
	assert.InDelta(t, 10.0, low[0].Details["headroom"], 1e-9)
}

func TestPlanSprintGreedySelection(t *testing.T) {
	// Backlog of 10+10+5 against a target of 20: selection stops at 20,
	// the 5-pointer is never pulled in.
	gw := &fakeGateway{backlog: []domain.Issue{
		issue("B-1", 10, domain.StatusToDo, ""),
		issue("B-2", 10, domain.StatusToDo, ""),
		issue("B-3", 5, domain.StatusToDo, ""),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Empty(t, recsOfType(recs, domain.RecOvercommitment))
	assert.Empty(t, recsOfType(recs, domain.RecLowCommitment))
}

func TestPlanSprintSkipsOversizedCandidate(t *testing.T) {
	// A candidate that would push past target*1.1 is skipped but scanning
	// continues with smaller ones.
	gw := &fakeGateway{backlog: []domain.Issue{
		issue("B-1", 15, domain.StatusToDo, ""),
		issue("B-2", 10, domain.StatusToDo, ""),
		issue("B-3", 5, domain.StatusToDo, ""),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)
	// 15 + 5 = 20 planned; the 10-pointer would have overshot to 25.
	assert.Empty(t, recsOfType(recs, domain.RecOvercommitment))
	assert.Empty(t, recsOfType(recs, domain.RecLowCommitment))
}

func TestPlanSprintWorkloadImbalance(t *testing.T) {
	// Target 20 across two members: average 10, threshold 13. 13.5 fires.
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 13.5, domain.StatusToDo, "alice"),
		issue("S-2", 6.5, domain.StatusToDo, "bob"),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)

	imb := recsOfType(recs, domain.RecWorkloadImbalance)
	require.Len(t, imb, 1)
	assert.Equal(t, "alice", imb[0].Details["assignee"])
	assert.Equal(t, domain.SeverityMedium, imb[0].Severity)
}

func TestPlanSprintWorkloadWithinMargin(t *testing.T) {
	// 12.9 sits below the 13.0 threshold; no imbalance.
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 12.9, domain.StatusToDo, "alice"),
		issue("S-2", 7.1, domain.StatusToDo, "bob"),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Empty(t, recsOfType(recs, domain.RecWorkloadImbalance))
}

func TestPlanSprintLargeStories(t *testing.T) {
	gw := &fakeGateway{issues: []domain.Issue{
		issue("S-1", 13, domain.StatusToDo, ""),
		issue("S-2", 5, domain.StatusToDo, ""),
	}}
	e := newTestEngine(gw)

	recs, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice"})
	require.NoError(t, err)

	large := recsOfType(recs, domain.RecLargeStories)
	require.Len(t, large, 1)
	assert.Equal(t, map[int]int{13: 1}, large[0].Details["distribution"])
}

func TestPlanSprintIdempotent(t *testing.T) {
	gw := &fakeGateway{
		issues: []domain.Issue{
			issue("S-1", 13, domain.StatusToDo, "alice"),
			issue("S-2", 8, domain.StatusToDo, "alice"),
		},
		backlog: []domain.Issue{
			issue("B-1", 3, domain.StatusToDo, "bob"),
		},
	}
	e := newTestEngine(gw)

	first, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)
	second, err := e.PlanSprint(context.Background(), 1, 20, []string{"alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
