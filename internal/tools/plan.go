package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

type planner interface {
	PlanSprint(ctx context.Context, sprintID int64, targetVelocity float64, team []string) ([]domain.Recommendation, error)
}

// PlanSprint checks a sprint plan against a target velocity and flags
// commitment and balance problems.
type PlanSprint struct {
	svc planner
}

func NewPlanSprint(svc planner) *PlanSprint { return &PlanSprint{svc: svc} }

func (t *PlanSprint) Definition() mcp.Tool {
	return mcp.NewTool("plan_sprint",
		mcp.WithDescription("Analyze a sprint plan against a target velocity: greedy backlog selection, commitment level, workload balance, and large-story warnings."),
		mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint ID to plan")),
		mcp.WithNumber("target_velocity", mcp.Required(), mcp.Description("Target velocity in story points")),
		mcp.WithString("team_members", mcp.Required(), mcp.Description("Comma-separated team member names")),
		mcp.WithString("start_date", mcp.Description("Optional sprint start date (YYYY-MM-DD)")),
		mcp.WithString("end_date", mcp.Description("Optional sprint end date (YYYY-MM-DD)")),
	)
}

func (t *PlanSprint) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := int64(req.GetFloat("sprint_id", 0))
	target := req.GetFloat("target_velocity", 0)
	team := splitMembers(req.GetString("team_members", ""))
	if err := engine.ValidateSprintDates(req.GetString("start_date", ""), req.GetString("end_date", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	recs, err := t.svc.PlanSprint(ctx, sprintID, target, team)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	fmt.Fprintf(&b, "## Sprint %d plan (target %s pts, %d members)\n\n", sprintID, fmtPts(target), len(team))
	if len(recs) == 0 {
		b.WriteString("✅ No planning concerns found.\n")
	} else {
		writeRecommendations(&b, recs)
	}
	return mcp.NewToolResultText(b.String()), nil
}
