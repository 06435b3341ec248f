package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/sprint-sense/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type searcher interface {
	SearchIssues(ctx context.Context, jql string, max int) ([]domain.Issue, error)
}

type SearchIssues struct {
	svc searcher
}

func NewSearchIssues(svc searcher) *SearchIssues { return &SearchIssues{svc: svc} }

func (t *SearchIssues) Definition() mcp.Tool {
	return mcp.NewTool("search_issues",
		mcp.WithDescription("Search issues with a JQL query."),
		mcp.WithString("jql", mcp.Required(), mcp.Description("JQL query, e.g. `project = PROJ AND status != Done`")),
		mcp.WithNumber("max_results", mcp.Description("Maximum issues to return (default 50)")),
	)
}

func (t *SearchIssues) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jql := req.GetString("jql", "")
	max := int(req.GetFloat("max_results", 0))

	issues, err := t.svc.SearchIssues(ctx, jql, max)
	if err != nil { return mcp.NewToolResultError(err.Error()), nil }

	var b strings.Builder
	fmt.Fprintf(&b, "## %d issues\n\n", len(issues))
	for _, i := range issues {
		fmt.Fprintf(&b, "- **%s** %s — %s", i.Key, i.Summary, i.Status)
		if i.Assignee != "" { fmt.Fprintf(&b, ", %s", i.Assignee) }
		if p := i.Points(); p > 0 { fmt.Fprintf(&b, ", %s pts", fmtPts(p)) }
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
