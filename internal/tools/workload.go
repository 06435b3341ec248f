package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

type balancer interface {
	BalanceWorkload(ctx context.Context, sprintID int64, members []string) (*engine.WorkloadPlan, error)
}

// BalanceWorkload proposes issue reassignments to even out sprint load.
type BalanceWorkload struct {
	svc balancer
}

func NewBalanceWorkload(svc balancer) *BalanceWorkload { return &BalanceWorkload{svc: svc} }

func (t *BalanceWorkload) Definition() mcp.Tool {
	return mcp.NewTool("balance_workload",
		mcp.WithDescription("Propose issue reassignments that bring every member within the imbalance margin of the team average. Advisory only, nothing is changed in the tracker."),
		mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint ID to balance")),
		mcp.WithString("team_members", mcp.Required(), mcp.Description("Comma-separated team member names")),
	)
}

func (t *BalanceWorkload) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := int64(req.GetFloat("sprint_id", 0))
	team := splitMembers(req.GetString("team_members", ""))

	plan, err := t.svc.BalanceWorkload(ctx, sprintID, team)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	fmt.Fprintf(&b, "## Sprint %d workload (team average %s pts)\n\n", sprintID, fmtPts(plan.TeamAverage))
	for _, member := range sortedKeys(plan.Loads) {
		fmt.Fprintf(&b, "- %s: %s pts\n", member, fmtPts(plan.Loads[member]))
	}
	if len(plan.Moves) == 0 {
		b.WriteString("\n✅ Workload already balanced.\n")
	} else {
		b.WriteString("\n### Suggested moves\n")
		for _, m := range plan.Moves {
			fmt.Fprintf(&b, "- %s (%s pts): %s → %s\n", m.IssueKey, fmtPts(m.Points), m.From, m.To)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

type workloader interface {
	TeamWorkload(ctx context.Context, members []string) ([]engine.MemberLoad, error)
}

// TeamWorkload reports assigned load and remaining capacity per member.
type TeamWorkload struct {
	svc workloader
}

func NewTeamWorkload(svc workloader) *TeamWorkload { return &TeamWorkload{svc: svc} }

func (t *TeamWorkload) Definition() mcp.Tool {
	return mcp.NewTool("get_team_workload",
		mcp.WithDescription("Show each member's open assigned points and remaining capacity across the board."),
		mcp.WithString("team_members", mcp.Required(), mcp.Description("Comma-separated team member names")),
	)
}

func (t *TeamWorkload) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	team := splitMembers(req.GetString("team_members", ""))
	loads, err := t.svc.TeamWorkload(ctx, team)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	b.WriteString("## Team workload\n\n")
	for _, l := range loads {
		fmt.Fprintf(&b, "- %s: %s pts over %d open issues, capacity %.0f%%\n",
			l.Member, fmtPts(l.AssignedPoints), l.OpenIssues, l.Capacity*100)
	}
	return mcp.NewToolResultText(b.String()), nil
}
