/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/domain"
	"github.com/example/sprint-sense/internal/engine"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type analytics interface {
	PlanSprint(ctx context.Context, sprintID int64, targetVelocity float64, team []string) ([]domain.Recommendation, error)
	AnalyzeProgress(ctx context.Context, sprintID int64) (*engine.SprintProgress, error)
	IdentifyRisks(ctx context.Context, sprintID int64) ([]domain.Risk, error)
	DailyStandup(ctx context.Context) (*engine.StandupReport, error)
	BalanceWorkload(ctx context.Context, sprintID int64, team []string) (*engine.WorkloadPlan, error)
	SuggestPriorityUpdates(ctx context.Context, sprintID int64) ([]domain.Recommendation, error)
	CreateIssue(ctx context.Context, in domain.IssueCreate) (string, error)
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc analytics
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc analytics) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) CreateIssue(c *gin.Context) {
	var in domain.IssueCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := h.svc.CreateIssue(c.Request.Context(), in)
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

type planRequest struct {
	TargetVelocity float64  `json:"target_velocity"`
	TeamMembers    []string `json:"team_members"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
}

func (h *Handlers) PlanSprint(c *gin.Context) {
	id, ok := sprintID(c)
	if !ok { return }
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := engine.ValidateSprintDates(req.StartDate, req.EndDate); err != nil {
		h.fail(c, err)
		return
	}
	if len(req.TeamMembers) == 0 { req.TeamMembers = h.cfg.TeamMembers }
	recs, err := h.svc.PlanSprint(c.Request.Context(), id, req.TargetVelocity, req.TeamMembers)
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusOK, gin.H{"sprint_id": id, "recommendations": recs})
}

func (h *Handlers) SprintAnalysis(c *gin.Context) {
	id, ok := sprintID(c)
	if !ok { return }
	prog, err := h.svc.AnalyzeProgress(c.Request.Context(), id)
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusOK, prog)
}

func (h *Handlers) SprintRisks(c *gin.Context) {
	id, ok := sprintID(c)
	if !ok { return }
	risks, err := h.svc.IdentifyRisks(c.Request.Context(), id)
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusOK, gin.H{"sprint_id": id, "risks": risks})
}

func (h *Handlers) DailyStandup(c *gin.Context) {
	rep, err := h.svc.DailyStandup(c.Request.Context())
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusOK, rep)
}

type balanceRequest struct {
	TeamMembers []string `json:"team_members"`
}

func (h *Handlers) WorkloadBalance(c *gin.Context) {
	id, ok := sprintID(c)
	if !ok { return }
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.TeamMembers) == 0 { req.TeamMembers = h.cfg.TeamMembers }
	plan, err := h.svc.BalanceWorkload(c.Request.Context(), id, req.TeamMembers)
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusOK, plan)
}

func (h *Handlers) PrioritySuggestions(c *gin.Context) {
	id, ok := sprintID(c)
	if !ok { return }
	recs, err := h.svc.SuggestPriorityUpdates(c.Request.Context(), id)
	if err != nil { h.fail(c, err); return }
	c.JSON(http.StatusOK, gin.H{"sprint_id": id, "recommendations": recs})
}

func sprintID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sprint id"})
		return 0, false
	}
	return id, true
}

// fail maps engine errors to HTTP status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	var nf *engine.NotFoundError
	var inv *engine.InvalidInputError
	var up *engine.UpstreamError
	switch {
	case errors.Is(err, engine.ErrNoActiveSprint):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &inv):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &up):
		h.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
