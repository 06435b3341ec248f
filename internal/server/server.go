// Package server wires the analytics engine into an MCP server exposed
// over stdio.
package server

import (
	"github.com/example/sprint-sense/internal/engine"
	"github.com/example/sprint-sense/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func New(eng *engine.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"sprint-sense",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	planTool := tools.NewPlanSprint(eng)
	s.AddTool(planTool.Definition(), planTool.Handle)

	progressTool := tools.NewAnalyzeProgress(eng)
	s.AddTool(progressTool.Definition(), progressTool.Handle)

	risksTool := tools.NewIdentifyRisks(eng)
	s.AddTool(risksTool.Definition(), risksTool.Handle)

	standupTool := tools.NewStandupReport(eng)
	s.AddTool(standupTool.Definition(), standupTool.Handle)

	balanceTool := tools.NewBalanceWorkload(eng)
	s.AddTool(balanceTool.Definition(), balanceTool.Handle)

	workloadTool := tools.NewTeamWorkload(eng)
	s.AddTool(workloadTool.Definition(), workloadTool.Handle)

	prioritiesTool := tools.NewSuggestPriorities(eng)
	s.AddTool(prioritiesTool.Definition(), prioritiesTool.Handle)

	createTool := tools.NewCreateIssue(eng)
	s.AddTool(createTool.Definition(), createTool.Handle)

	searchTool := tools.NewSearchIssues(eng)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	statusTool := tools.NewSprintStatus(eng)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	return s
}
