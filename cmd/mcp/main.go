/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"fmt"
	"os"

	"github.com/example/sprint-sense/internal/adapters/jira"
	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/example/sprint-sense/internal/logger"
	mcpserver "github.com/example/sprint-sense/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	// stdout carries the MCP stdio transport, logs go to stderr
	log := logger.NewStderr(cfg)

	jc := jira.NewClient(cfg, log)
	eng := engine.New(jc, cfg.Thresholds, cfg.JiraBoardID, log)

	s := mcpserver.New(eng)
	log.Info().Str("version", mcpserver.Version).Msg("mcp server listening on stdio")
	return server.ServeStdio(s)
}
