package tools

import (
	"context"

	"github.com/example/sprint-sense/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
)

type statuser interface {
	AnalyzeProgress(ctx context.Context, sprintID int64) (*engine.SprintProgress, error)
	ActiveSprintAnalysis(ctx context.Context) (*engine.SprintProgress, error)
}

// SprintStatus reports a sprint's state, falling back to the board's
// active sprint when no ID is given.
type SprintStatus struct {
	svc statuser
}

func NewSprintStatus(svc statuser) *SprintStatus { return &SprintStatus{svc: svc} }

func (t *SprintStatus) Definition() mcp.Tool {
	return mcp.NewTool("get_sprint_status",
		mcp.WithDescription("Show a sprint's status and progress. Without sprint_id the board's active sprint is used."),
		mcp.WithNumber("sprint_id", mcp.Description("Sprint ID (omit for the active sprint)")),
	)
}

func (t *SprintStatus) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sprintID := int64(req.GetFloat("sprint_id", 0))
	var (
		prog *engine.SprintProgress
		err  error
	)
	if sprintID > 0 {
		prog, err = t.svc.AnalyzeProgress(ctx, sprintID)
	} else {
		prog, err = t.svc.ActiveSprintAnalysis(ctx)
	}
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }
	return mcp.NewToolResultText(renderProgress(prog)), nil
}
