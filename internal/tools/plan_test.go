package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanner struct {
	sprintID int64
	target   float64
	team     []string
	recs     []domain.Recommendation
	err      error
}

func (f *fakePlanner) PlanSprint(ctx context.Context, sprintID int64, target float64, team []string) ([]domain.Recommendation, error) {
	f.sprintID, f.target, f.team = sprintID, target, team
	return f.recs, f.err
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestPlanSprintParsesArguments(t *testing.T) {
	svc := &fakePlanner{}
	tool := NewPlanSprint(svc)

	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"sprint_id":       float64(42),
		"target_velocity": float64(20),
		"team_members":    "alice, bob ,carol",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	assert.Equal(t, int64(42), svc.sprintID)
	assert.Equal(t, 20.0, svc.target)
	assert.Equal(t, []string{"alice", "bob", "carol"}, svc.team)
	assert.Contains(t, textOf(t, res), "No planning concerns")
}

func TestPlanSprintRendersRecommendations(t *testing.T) {
	svc := &fakePlanner{recs: []domain.Recommendation{{
		Type:            domain.RecOvercommitment,
		Severity:        domain.SeverityHigh,
		Message:         "planned 25 pts against a target of 20",
		SuggestedAction: "drop 5 pts from the plan",
	}}}
	tool := NewPlanSprint(svc)

	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"sprint_id":       float64(1),
		"target_velocity": float64(20),
		"team_members":    "alice",
	}))
	require.NoError(t, err)
	text := textOf(t, res)
	assert.Contains(t, text, string(domain.RecOvercommitment))
	assert.Contains(t, text, "planned 25 pts")
	assert.Contains(t, text, "drop 5 pts")
}

func TestPlanSprintEngineErrorBecomesToolError(t *testing.T) {
	svc := &fakePlanner{err: errors.New("boom")}
	tool := NewPlanSprint(svc)

	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"sprint_id":       float64(1),
		"target_velocity": float64(20),
		"team_members":    "alice",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPlanSprintRejectsInvertedDates(t *testing.T) {
	svc := &fakePlanner{}
	tool := NewPlanSprint(svc)

	res, err := tool.Handle(context.Background(), callReq(map[string]any{
		"sprint_id":       float64(1),
		"target_velocity": float64(20),
		"team_members":    "alice",
		"start_date":      "2026-08-24",
		"end_date":        "2026-08-10",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Zero(t, svc.sprintID)
}

func TestSplitMembers(t *testing.T) {
	assert.Empty(t, splitMembers(""))
	assert.Equal(t, []string{"a"}, splitMembers("a"))
	assert.Equal(t, []string{"a", "b"}, splitMembers(" a , b ,"))
}
