package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type riskFinder interface {
	IdentifyRisks(ctx context.Context, sprintID int64) ([]domain.Risk, error)
}

type IdentifyRisks struct {
	svc riskFinder
}

func NewIdentifyRisks(svc riskFinder) *IdentifyRisks { return &IdentifyRisks{svc: svc} }

func (t *IdentifyRisks) Definition() mcp.Tool {
	return mcp.NewTool("identify_risks",
		mcp.WithDescription("Identify sprint risks: velocity deviation from history, unresolved dependencies, capacity shortfall, and scope churn."),
		mcp.WithNumber("sprint_id", mcp.Required(), mcp.Description("Sprint ID to inspect")),
	)
}

func (t *IdentifyRisks) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := int64(req.GetFloat("sprint_id", 0))
	risks, err := t.svc.IdentifyRisks(ctx, sprintID)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	fmt.Fprintf(&b, "## Sprint %d risks\n\n", sprintID)
	if len(risks) == 0 {
		b.WriteString("✅ No risks identified.\n")
	} else {
		writeRisks(&b, risks)
	}
	return mcp.NewToolResultText(b.String()), nil
}
