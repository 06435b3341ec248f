package tools

import (
	"context"
	"fmt"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type creator interface {
	CreateIssue(ctx context.Context, in domain.IssueCreate) (string, error)
}

type CreateIssue struct {
	svc creator
}

func NewCreateIssue(svc creator) *CreateIssue { return &CreateIssue{svc: svc} }

func (t *CreateIssue) Definition() mcp.Tool {
	return mcp.NewTool("create_issue",
		mcp.WithDescription("Create a new issue in the tracker, optionally assigning it to a sprint."),
		mcp.WithString("summary", mcp.Required(), mcp.Description("One-line summary")),
		mcp.WithString("description", mcp.Description("Longer description")),
		mcp.WithString("issue_type", mcp.Description("Issue type, e.g. Story, Task, Bug (default Task)")),
		mcp.WithString("priority", mcp.Description("Priority name, e.g. Highest, High, Medium, Low")),
		mcp.WithString("assignee", mcp.Description("Assignee username")),
		mcp.WithNumber("story_points", mcp.Description("Story point estimate")),
		mcp.WithString("labels", mcp.Description("Comma-separated labels")),
		mcp.WithNumber("sprint_id", mcp.Description("Sprint to add the issue to")),
	)
}

func (t *CreateIssue) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := domain.IssueCreate{
		Summary:     req.GetString("summary", ""),
		Description: req.GetString("description", ""),
		Type:        domain.IssueType(req.GetString("issue_type", "")),
		Priority:    domain.Priority(req.GetString("priority", "")),
		Assignee:    req.GetString("assignee", ""),
		Labels:      splitMembers(req.GetString("labels", "")),
	}
	if pts := req.GetFloat("story_points", 0); pts > 0 { in.StoryPoints = &pts }
	if id := int64(req.GetFloat("sprint_id", 0)); id > 0 { in.SprintID = &id }

	key, err := t.svc.CreateIssue(ctx, in)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }
	return mcp.NewToolResultText(fmt.Sprintf("✅ Created issue **%s**: %s", key, in.Summary)), nil
}
