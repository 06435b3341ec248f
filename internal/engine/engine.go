/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */

// Package engine holds the sprint analytics: planning, progress analysis,
// risk identification, workload balancing, and standup reporting. All
// analyses are pure functions over gateway data; the engine never writes
// back to the tracker to enact a recommendation.
package engine

import (
	"context"
	"strings"

	"github.com/example/sprint-sense/internal/config"
	"github.com/example/sprint-sense/internal/domain"
	"github.com/rs/zerolog"
)

// Gateway is the tracker surface the engine depends on. Implemented by
// adapters/jira; tests supply a fake.
type Gateway interface {
	Sprint(ctx context.Context, sprintID int64) (domain.Sprint, error)
	SprintIssues(ctx context.Context, sprintID int64) ([]domain.Issue, error)
	BacklogIssues(ctx context.Context, boardID int64) ([]domain.Issue, error)
	AssignedIssues(ctx context.Context, username string) ([]domain.Issue, error)
	IssueHistory(ctx context.Context, key string) ([]domain.StatusTransition, error)
	ActiveSprint(ctx context.Context, boardID int64) (domain.Sprint, bool, error)
	ClosedSprints(ctx context.Context, boardID int64, limit int) ([]domain.Sprint, error)
	ScopeChanges(ctx context.Context, boardID, sprintID int64) (domain.ScopeChanges, error)
	SearchIssues(ctx context.Context, jql string, max int) ([]domain.Issue, error)
	CreateIssue(ctx context.Context, req domain.IssueCreate) (string, error)
}

type Engine struct {
	gw      Gateway
	th      config.Thresholds
	boardID int64
	log     zerolog.Logger
}

func New(gw Gateway, th config.Thresholds, boardID int64, log zerolog.Logger) *Engine {
	return &Engine{gw: gw, th: th, boardID: boardID, log: log}
}

// CreateIssue validates and forwards an issue creation to the tracker.
func (e *Engine) CreateIssue(ctx context.Context, req domain.IssueCreate) (string, error) {
	if strings.TrimSpace(req.Summary) == "" {
		return "", &InvalidInputError{Field: "summary", Reason: "must not be empty"}
	}
	if req.StoryPoints != nil && *req.StoryPoints < 0 {
		return "", &InvalidInputError{Field: "story_points", Reason: "must not be negative"}
	}
	key, err := e.gw.CreateIssue(ctx, req)
	if err != nil { return "", err }
	e.log.Info().Str("key", key).Msg("issue created")
	return key, nil
}

// SearchIssues runs a raw JQL query through the gateway.
func (e *Engine) SearchIssues(ctx context.Context, jql string, max int) ([]domain.Issue, error) {
	if strings.TrimSpace(jql) == "" {
		return nil, &InvalidInputError{Field: "jql", Reason: "must not be empty"}
	}
	if max <= 0 { max = 50 }
	return e.gw.SearchIssues(ctx, jql, max)
}

// ActiveSprintAnalysis analyzes the board's active sprint, or returns
// ErrNoActiveSprint.
func (e *Engine) ActiveSprintAnalysis(ctx context.Context) (*SprintProgress, error) {
	s, ok, err := e.gw.ActiveSprint(ctx, e.boardID)
	if err != nil { return nil, err }
	if !ok { return nil, ErrNoActiveSprint }
	return e.AnalyzeProgress(ctx, s.ID)
}
