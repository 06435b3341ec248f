/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"github.com/example/sprint-sense/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func NewRouter(cfg config.Config, log zerolog.Logger, h *Handlers) *gin.Engine {
	if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(log))

	r.GET("/health", h.Health)

	api := r.Group("/", apiKeyAuth(cfg, log))
	{
		api.POST("/issues", h.CreateIssue)
		api.POST("/sprints/:id/plan", h.PlanSprint)
		api.GET("/sprints/:id/analysis", h.SprintAnalysis)
		api.GET("/sprints/:id/risks", h.SprintRisks)
		api.GET("/daily-standup", h.DailyStandup)
		api.POST("/sprints/:id/workload-balance", h.WorkloadBalance)
		api.GET("/sprints/:id/priority-suggestions", h.PrioritySuggestions)
	}
	return r
}
