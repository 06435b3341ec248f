package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/example/sprint-sense/internal/domain"
)

// SprintVelocity is the realized velocity of one closed sprint.
type SprintVelocity struct {
	SprintID int64         `json:"sprint_id"`
	Name     string        `json:"name"`
	Sprint   domain.Sprint `json:"-"`
	Points   float64       `json:"points"`
}

// IdentifyRisks runs the four risk passes in order: velocity deviation,
// dependency chains, capacity shortfall, scope churn.
func (e *Engine) IdentifyRisks(ctx context.Context, sprintID int64) ([]domain.Risk, error) {
	s, err := e.gw.Sprint(ctx, sprintID)
	if err != nil { return nil, err }
	issues, err := e.gw.SprintIssues(ctx, sprintID)
	if err != nil { return nil, err }

	m := SprintMetricsFor(issues)
	risks := []domain.Risk{}

	// Velocity: current completion rate vs the recent closed-sprint average.
	hist, err := e.ClosedSprintVelocities(ctx)
	if err != nil { return nil, err }
	if r, ok := velocityRisk(m.CompletedPoints, hist, e.th.VelocityVariance); ok {
		risks = append(risks, r)
	}

	// Dependencies: not-done issues still waiting on unresolved blockers.
	if r, ok := dependencyRisk(issues, e.th.BlockingIssues); ok {
		risks = append(risks, r)
	}

	// Capacity: remaining work vs what the assignees can still absorb.
	members := assignees(issues)
	caps, err := e.TeamCapacities(ctx, members)
	if err != nil { return nil, err }
	var available float64
	for _, member := range members { available += caps[member] * e.th.CapacityPoints }
	if m.RemainingPoints > available {
		risks = append(risks, domain.Risk{
			Type:     domain.RiskCapacity,
			Severity: domain.SeverityHigh,
			Message: fmt.Sprintf("%.1f points remain but the team can absorb only %.1f",
				m.RemainingPoints, available),
			Details: map[string]any{
				"remaining_points": m.RemainingPoints,
				"available_points": available,
			},
			SuggestedAction: "Drop or defer scope to match remaining capacity",
		})
	}

	// Scope churn since sprint start.
	sc, err := e.gw.ScopeChanges(ctx, s.BoardID, sprintID)
	if err != nil { return nil, err }
	if r, ok := scopeRisk(sc, e.th.ScopeChange); ok {
		risks = append(risks, r)
	}

	return risks, nil
}

// ClosedSprintVelocities returns the realized velocity of the most recent
// closed sprints on the board, newest first, capped at the velocity window.
func (e *Engine) ClosedSprintVelocities(ctx context.Context) ([]SprintVelocity, error) {
	sprints, err := e.gw.ClosedSprints(ctx, e.boardID, e.th.VelocityWindow)
	if err != nil { return nil, err }
	out := make([]SprintVelocity, 0, len(sprints))
	for _, sp := range sprints {
		issues, err := e.gw.SprintIssues(ctx, sp.ID)
		if err != nil { return nil, err }
		out = append(out, SprintVelocity{
			SprintID: sp.ID,
			Name:     sp.Name,
			Sprint:   sp,
			Points:   SprintMetricsFor(issues).CompletedPoints,
		})
	}
	return out, nil
}

func velocityRisk(current float64, hist []SprintVelocity, variance float64) (domain.Risk, bool) {
	if len(hist) == 0 { return domain.Risk{}, false }
	var sum float64
	for _, v := range hist { sum += v.Points }
	avg := sum / float64(len(hist))
	if avg <= 0 { return domain.Risk{}, false }
	dev := math.Abs(avg-current) / avg
	if dev <= variance { return domain.Risk{}, false }

	sev := domain.SeverityMedium
	if current < avg { sev = domain.SeverityHigh }
	return domain.Risk{
		Type:     domain.RiskVelocity,
		Severity: sev,
		Message: fmt.Sprintf("Current velocity %.1f deviates %.0f%% from the recent average %.1f",
			current, dev*100, avg),
		Details: map[string]any{
			"current_velocity":   current,
			"historical_average": avg,
			"deviation_pct":      dev * 100,
		},
		SuggestedAction: "Revisit the sprint commitment against the team's real velocity",
	}, true
}

func dependencyRisk(issues []domain.Issue, maxBlocked int) (domain.Risk, bool) {
	done := map[string]bool{}
	for _, i := range issues {
		if i.Done() { done[i.Key] = true }
	}
	blocked := []string{}
	for _, i := range issues {
		if i.Done() { continue }
		for _, dep := range i.BlockedBy {
			if !done[dep] {
				blocked = append(blocked, i.Key)
				break
			}
		}
	}
	if len(blocked) <= maxBlocked { return domain.Risk{}, false }
	sort.Strings(blocked)
	return domain.Risk{
		Type:     domain.RiskDependency,
		Severity: domain.SeverityHigh,
		Message:  fmt.Sprintf("%d issues are stuck behind unresolved blockers", len(blocked)),
		Details: map[string]any{
			"blocked_count": len(blocked),
			"issues":        blocked,
		},
		SuggestedAction: "Resolve or re-route the blocking chain",
	}, true
}

func scopeRisk(sc domain.ScopeChanges, maxChurn float64) (domain.Risk, bool) {
	if sc.InitialCount <= 0 { return domain.Risk{}, false }
	churn := float64(sc.Added+sc.Removed) / float64(sc.InitialCount)
	if churn <= maxChurn { return domain.Risk{}, false }
	return domain.Risk{
		Type:     domain.RiskScope,
		Severity: domain.SeverityMedium,
		Message:  fmt.Sprintf("Sprint scope changed by %.0f%% since start", churn*100),
		Details: map[string]any{
			"initial_count": sc.InitialCount,
			"added":         sc.Added,
			"removed":       sc.Removed,
			"change_pct":    churn * 100,
		},
		SuggestedAction: "Lock the sprint scope and route new work to the backlog",
	}, true
}

func assignees(issues []domain.Issue) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, i := range issues {
		if i.Assignee == "" || seen[i.Assignee] { continue }
		seen[i.Assignee] = true
		out = append(out, i.Assignee)
	}
	sort.Strings(out)
	return out
}
