package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

type analyzer interface {
	AnalyzeProgress(ctx context.Context, sprintID int64) (*engine.SprintProgress, error)
}

type AnalyzeProgress struct {
	svc analyzer
}

func NewAnalyzeProgress(svc analyzer) *AnalyzeProgress { return &AnalyzeProgress{svc: svc} }

func (t *AnalyzeProgress) Definition() mcp.Tool {
	return mcp.NewTool("analyze_progress",
		mcp.WithDescription("Analyze sprint progress: completion metrics, status distribution, blocked issues, and schedule risks."),
		mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint ID to analyze")),
	)
}

func (t *AnalyzeProgress) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := int64(req.GetFloat("sprint_id", 0))
	prog, err := t.svc.AnalyzeProgress(ctx, sprintID)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }
	return mcp.NewToolResultText(renderProgress(prog)), nil
}

func renderProgress(p *engine.SprintProgress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (sprint %d, %s)\n\n", p.Sprint.Name, p.Sprint.ID, p.Sprint.State)
	if p.Sprint.Goal != "" { fmt.Fprintf(&b, "Goal: %s\n\n", p.Sprint.Goal) }
	fmt.Fprintf(&b, "**Progress: %.1f%%** — %s of %s pts done, %s remaining\n\n",
		p.Metrics.CompletionPercentage,
		fmtPts(p.Metrics.CompletedPoints), fmtPts(p.Metrics.TotalPoints), fmtPts(p.Metrics.RemainingPoints))

	b.WriteString("### Status\n")
	for _, st := range []domain.Status{domain.StatusToDo, domain.StatusInProgress, domain.StatusBlocked, domain.StatusDone, domain.StatusOther} {
		bucket, ok := p.StatusDistribution[st]
		if !ok { continue }
		fmt.Fprintf(&b, "- %s: %d issues (%s pts)\n", st, bucket.Count, fmtPts(bucket.Points))
	}

	if len(p.Blocked) > 0 {
		b.WriteString("\n### Blocked\n")
		for _, bi := range p.Blocked {
			fmt.Fprintf(&b, "- 🚫 %s %s (%s pts", bi.Key, bi.Summary, fmtPts(bi.Points))
			if bi.Assignee != "" { fmt.Fprintf(&b, ", %s", bi.Assignee) }
			b.WriteString(")\n")
		}
	}

	if len(p.Risks) > 0 {
		b.WriteString("\n### Risks\n")
		writeRisks(&b, p.Risks)
	}
	return b.String()
}
