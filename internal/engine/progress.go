package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sprint-sense/internal/domain"
)

// SprintProgress is the full progress report for one sprint.
type SprintProgress struct {
	Sprint             domain.Sprint                  `json:"sprint"`
	Metrics            domain.SprintMetrics           `json:"metrics"`
	StatusDistribution map[domain.Status]StatusBucket `json:"status_distribution"`
	Blocked            []BlockedItem                  `json:"blocked_issues"`
	Risks              []domain.Risk                  `json:"risks"`
}

// AnalyzeProgress computes sprint metrics, the status distribution, the
// blocked list, and the schedule/blocked-work risks.
func (e *Engine) AnalyzeProgress(ctx context.Context, sprintID int64) (*SprintProgress, error) {
	s, err := e.gw.Sprint(ctx, sprintID)
	if err != nil { return nil, err }
	issues, err := e.gw.SprintIssues(ctx, sprintID)
	if err != nil { return nil, err }

	m := SprintMetricsFor(issues)
	risks := []domain.Risk{}

	if r, ok := scheduleRisk(s, m, time.Now(), e.th.ScheduleGapPts); ok {
		risks = append(risks, r)
	}
	if r, ok := blockedWorkRisk(issues, m, e.th.BlockedShare); ok {
		risks = append(risks, r)
	}

	return &SprintProgress{
		Sprint:             s,
		Metrics:            m,
		StatusDistribution: StatusDistribution(issues),
		Blocked:            blockedItems(issues),
		Risks:              risks,
	}, nil
}

// scheduleRisk compares actual completion against the ideal linear burndown.
// Sprints with missing or inverted dates have zero duration and produce no
// schedule signal.
func scheduleRisk(s domain.Sprint, m domain.SprintMetrics, now time.Time, gapPts float64) (domain.Risk, bool) {
	total, elapsed := sprintDays(s, now)
	if total <= 0 { return domain.Risk{}, false }
	ideal := elapsed / total * 100
	if ideal-m.CompletionPercentage <= gapPts { return domain.Risk{}, false }
	return domain.Risk{
		Type:     domain.RiskSchedule,
		Severity: domain.SeverityHigh,
		Message: fmt.Sprintf("Sprint is %.0f%% complete where %.0f%% would be on pace",
			m.CompletionPercentage, ideal),
		Details: map[string]any{
			"ideal_completion_pct":  ideal,
			"actual_completion_pct": m.CompletionPercentage,
			"variance_pct":          m.CompletionPercentage - ideal,
		},
		SuggestedAction: "Re-scope the sprint or raise the slip with stakeholders",
	}, true
}

func blockedWorkRisk(issues []domain.Issue, m domain.SprintMetrics, maxShare float64) (domain.Risk, bool) {
	if m.TotalPoints <= 0 { return domain.Risk{}, false }
	var blockedPts float64
	keys := []string{}
	for _, i := range issues {
		if i.Status != domain.StatusBlocked { continue }
		blockedPts += i.Points()
		keys = append(keys, i.Key)
	}
	share := blockedPts / m.TotalPoints
	if share <= maxShare { return domain.Risk{}, false }
	return domain.Risk{
		Type:     domain.RiskBlocked,
		Severity: domain.SeverityHigh,
		Message:  fmt.Sprintf("%.0f%% of sprint points are blocked", share*100),
		Details: map[string]any{
			"blocked_points": blockedPts,
			"blocked_pct":    share * 100,
			"issues":         keys,
		},
		SuggestedAction: "Run a blocker triage with the issue owners",
	}, true
}

func sprintDays(s domain.Sprint, now time.Time) (total, elapsed float64) {
	if s.StartDate == nil || s.EndDate == nil { return 0, 0 }
	total = s.EndDate.Sub(*s.StartDate).Hours() / 24
	if total <= 0 { return 0, 0 }
	elapsed = now.Sub(*s.StartDate).Hours() / 24
	if elapsed < 0 { elapsed = 0 }
	if elapsed > total { elapsed = total }
	return total, elapsed
}
