package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

type reporter interface {
	DailyStandup(ctx context.Context) (*engine.StandupReport, error)
}

type StandupReport struct {
	svc reporter
}

func NewStandupReport(svc reporter) *StandupReport { return &StandupReport{svc: svc} }

func (t *StandupReport) Definition() mcp.Tool {
	return mcp.NewTool("generate_standup_report",
		mcp.WithDescription("Generate a daily standup report for the active sprint: recent completions, in-progress and blocked work, per-member updates, and cycle time."),
	)
}

func (t *StandupReport) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := t.svc.DailyStandup(ctx)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	fmt.Fprintf(&b, "## 🏃 Standup — %s (%s)\n\n", rep.SprintName, rep.Date)
	fmt.Fprintf(&b, "Progress: %.1f%% (%s/%s pts), avg cycle time %.1f days\n",
		rep.Metrics.CompletionPercentage,
		fmtPts(rep.Metrics.CompletedPoints), fmtPts(rep.Metrics.TotalPoints),
		rep.Metrics.AvgCycleTimeDays)

	writeSection := func(title string, items []engine.StandupItem) {
		if len(items) == 0 { return }
		fmt.Fprintf(&b, "\n### %s\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s %s (%s pts", it.Key, it.Summary, fmtPts(it.Points))
			if it.Assignee != "" { fmt.Fprintf(&b, ", %s", it.Assignee) }
			b.WriteString(")\n")
		}
	}
	writeSection("✅ Completed yesterday", rep.CompletedYesterday)
	writeSection("🔨 In progress", rep.InProgress)
	writeSection("🚫 Blocked", rep.Blocked)
	writeSection("⭐ Priorities", rep.Priorities)

	if len(rep.TeamUpdates) > 0 {
		b.WriteString("\n### Team\n")
		for _, member := range sortedKeys(rep.TeamUpdates) {
			fmt.Fprintf(&b, "- **%s**:", member)
			for _, it := range rep.TeamUpdates[member] {
				fmt.Fprintf(&b, " %s (%s)", it.Key, it.Status)
			}
			b.WriteString("\n")
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
