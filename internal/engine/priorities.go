package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/sprint-sense/internal/domain"
)

// SuggestPriorityUpdates proposes priority changes for sprint issues:
// raise anything below High that other work is waiting on, and escalate
// high-priority issues that are themselves blocked. Advisory only.
func (e *Engine) SuggestPriorityUpdates(ctx context.Context, sprintID int64) ([]domain.Recommendation, error) {
	issues, err := e.gw.SprintIssues(ctx, sprintID)
	if err != nil { return nil, err }

	sorted := append([]domain.Issue{}, issues...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Key < sorted[b].Key })

	recs := []domain.Recommendation{}
	for _, i := range sorted {
		if i.Done() { continue }
		if len(i.Blocks) > 0 && i.Priority.Rank() > domain.PriorityHigh.Rank() {
			recs = append(recs, domain.Recommendation{
				Type:     domain.RecRaisePriority,
				Severity: domain.SeverityMedium,
				Message:  fmt.Sprintf("%s blocks %d issue(s) but is only %s", i.Key, len(i.Blocks), i.Priority),
				Details: map[string]any{
					"issue":            i.Key,
					"current_priority": string(i.Priority),
					"blocks":           i.Blocks,
				},
				SuggestedAction: fmt.Sprintf("Raise %s to High", i.Key),
			})
		}
		if i.Status == domain.StatusBlocked &&
			(i.Priority == domain.PriorityHighest || i.Priority == domain.PriorityHigh) {
			recs = append(recs, domain.Recommendation{
				Type:     domain.RecEscalateBlocked,
				Severity: domain.SeverityHigh,
				Message:  fmt.Sprintf("%s is %s priority and blocked", i.Key, i.Priority),
				Details: map[string]any{
					"issue":      i.Key,
					"priority":   string(i.Priority),
					"blocked_by": i.BlockedBy,
				},
				SuggestedAction: fmt.Sprintf("Escalate the blockers of %s today", i.Key),
			})
		}
	}
	return recs, nil
}
