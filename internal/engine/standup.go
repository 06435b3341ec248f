package engine

import (
	"context"
	"sort"
	"time"

	"github.com/example/sprint-sense/internal/domain"
)

// StandupItem is one issue line in a standup report.
type StandupItem struct {
	Key      string        `json:"key"`
	Summary  string        `json:"summary"`
	Points   float64       `json:"points"`
	Assignee string        `json:"assignee,omitempty"`
	Status   domain.Status `json:"status"`
}

// StandupMetrics extends sprint metrics with the average cycle time of
// completed work.
type StandupMetrics struct {
	domain.SprintMetrics
	AvgCycleTimeDays float64 `json:"avg_cycle_time_days"`
}

// StandupReport is the daily standup summary for the active sprint.
type StandupReport struct {
	SprintID           int64                    `json:"sprint_id"`
	SprintName         string                   `json:"sprint_name"`
	Date               string                   `json:"date"`
	CompletedYesterday []StandupItem            `json:"completed_yesterday"`
	InProgress         []StandupItem            `json:"in_progress"`
	Blocked            []StandupItem            `json:"blocked"`
	TeamUpdates        map[string][]StandupItem `json:"team_updates"`
	Priorities         []StandupItem            `json:"priorities"`
	Metrics            StandupMetrics           `json:"metrics"`
}

// DailyStandup builds the standup report for the board's active sprint.
// Returns ErrNoActiveSprint when the board has none.
func (e *Engine) DailyStandup(ctx context.Context) (*StandupReport, error) {
	s, ok, err := e.gw.ActiveSprint(ctx, e.boardID)
	if err != nil { return nil, err }
	if !ok { return nil, ErrNoActiveSprint }

	issues, err := e.gw.SprintIssues(ctx, s.ID)
	if err != nil { return nil, err }

	now := time.Now()
	rep := &StandupReport{
		SprintID:    s.ID,
		SprintName:  s.Name,
		Date:        now.Format("2006-01-02"),
		TeamUpdates: map[string][]StandupItem{},
	}

	cutoff := now.Add(-24 * time.Hour)
	for _, i := range issues {
		item := StandupItem{Key: i.Key, Summary: i.Summary, Points: i.Points(), Assignee: i.Assignee, Status: i.Status}
		switch i.Status {
		case domain.StatusDone:
			if i.Updated != nil && i.Updated.After(cutoff) {
				rep.CompletedYesterday = append(rep.CompletedYesterday, item)
			}
		case domain.StatusInProgress:
			rep.InProgress = append(rep.InProgress, item)
		case domain.StatusBlocked:
			rep.Blocked = append(rep.Blocked, item)
		}
		if !i.Done() && i.Assignee != "" {
			rep.TeamUpdates[i.Assignee] = append(rep.TeamUpdates[i.Assignee], item)
		}
		if !i.Done() && (i.Priority == domain.PriorityHighest || i.Priority == domain.PriorityHigh) {
			rep.Priorities = append(rep.Priorities, item)
		}
	}
	sortItems(rep.CompletedYesterday)
	sortItems(rep.InProgress)
	sortItems(rep.Blocked)
	sortItems(rep.Priorities)
	for _, items := range rep.TeamUpdates { sortItems(items) }

	cycle, err := e.AverageCycleTime(ctx, issues)
	if err != nil { return nil, err }
	rep.Metrics = StandupMetrics{SprintMetrics: SprintMetricsFor(issues), AvgCycleTimeDays: cycle}
	return rep, nil
}

// AverageCycleTime averages the in-progress days of completed issues,
// summing every in-progress period from each issue's status history.
// Completed issues with no in-progress history contribute zero; with no
// completed issues at all the average is zero.
func (e *Engine) AverageCycleTime(ctx context.Context, issues []domain.Issue) (float64, error) {
	var total float64
	n := 0
	for _, i := range issues {
		if !i.Done() { continue }
		n++
		hist, err := e.gw.IssueHistory(ctx, i.Key)
		if err != nil { return 0, err }
		for _, tr := range hist {
			if tr.Status != domain.StatusInProgress { continue }
			if d := tr.To.Sub(tr.From); d > 0 { total += d.Hours() / 24 }
		}
	}
	if n == 0 { return 0, nil }
	return total / float64(n), nil
}

func sortItems(items []StandupItem) {
	sort.Slice(items, func(a, b int) bool { return items[a].Key < items[b].Key })
}
