package engine

import (
	"sort"

	"github.com/example/sprint-sense/internal/domain"
)

// SprintMetricsFor aggregates story points over a set of sprint issues.
// Invariant: total == completed + remaining; completion is 0 when the
// sprint carries no estimated work.
func SprintMetricsFor(issues []domain.Issue) domain.SprintMetrics {
	var m domain.SprintMetrics
	for _, i := range issues {
		p := i.Points()
		m.TotalPoints += p
		if i.Done() { m.CompletedPoints += p }
	}
	m.RemainingPoints = m.TotalPoints - m.CompletedPoints
	if m.TotalPoints > 0 {
		m.CompletionPercentage = m.CompletedPoints / m.TotalPoints * 100
	}
	return m
}

// StatusBucket is one slot of a status distribution.
type StatusBucket struct {
	Count  int      `json:"count"`
	Points float64  `json:"points"`
	Issues []string `json:"issues"`
}

// StatusDistribution buckets issues by canonical status. Statuses outside
// the four workflow buckets land under StatusOther so nothing silently
// disappears from the report.
func StatusDistribution(issues []domain.Issue) map[domain.Status]StatusBucket {
	out := make(map[domain.Status]StatusBucket)
	for _, i := range issues {
		b := out[i.Status]
		b.Count++
		b.Points += i.Points()
		b.Issues = append(b.Issues, i.Key)
		out[i.Status] = b
	}
	for s, b := range out {
		sort.Strings(b.Issues)
		out[s] = b
	}
	return out
}

// BlockedItem is a blocked issue as surfaced in progress and standup reports.
type BlockedItem struct {
	Key      string  `json:"key"`
	Summary  string  `json:"summary"`
	Points   float64 `json:"points"`
	Assignee string  `json:"assignee,omitempty"`
}

func blockedItems(issues []domain.Issue) []BlockedItem {
	out := []BlockedItem{}
	for _, i := range issues {
		if i.Status != domain.StatusBlocked { continue }
		out = append(out, BlockedItem{Key: i.Key, Summary: i.Summary, Points: i.Points(), Assignee: i.Assignee})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Key < out[b].Key })
	return out
}
