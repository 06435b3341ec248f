package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type suggester interface {
	SuggestPriorityUpdates(ctx context.Context, sprintID int64) ([]domain.Recommendation, error)
}

type SuggestPriorities struct {
	svc suggester
}

func NewSuggestPriorities(svc suggester) *SuggestPriorities { return &SuggestPriorities{svc: svc} }

func (t *SuggestPriorities) Definition() mcp.Tool {
	return mcp.NewTool("suggest_priority_updates",
		mcp.WithDescription("Suggest priority changes: raise low-priority issues that block others, escalate blocked high-priority work."),
		mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint ID to inspect")),
	)
}

func (t *SuggestPriorities) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := int64(req.GetFloat("sprint_id", 0))
	recs, err := t.svc.SuggestPriorityUpdates(ctx, sprintID)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	fmt.Fprintf(&b, "## Sprint %d priority suggestions\n\n", sprintID)
	if len(recs) == 0 {
		b.WriteString("✅ Priorities look consistent.\n")
	} else {
		writeRecommendations(&b, recs)
	}
	return mcp.NewToolResultText(b.String()), nil
}
