package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/sprint-sense/internal/domain"
)

// Story sizes considered too large to finish inside one sprint.
var largeStorySizes = [...]float64{13, 21}

var sprintDateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidateSprintDates checks an optional start/end date pair supplied with
// a planning request. The dates do not influence the plan; they are only
// rejected when malformed or inverted. Empty values are fine.
func ValidateSprintDates(start, end string) error {
	parse := func(field, v string) (time.Time, error) {
		for _, l := range sprintDateLayouts {
			if t, err := time.Parse(l, v); err == nil { return t, nil }
		}
		return time.Time{}, &InvalidInputError{Field: field, Reason: "must be a YYYY-MM-DD or RFC3339 date"}
	}
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = parse("start_date", start); err != nil { return err }
	}
	if end != "" {
		if e, err = parse("end_date", end); err != nil { return err }
	}
	if start != "" && end != "" && !e.After(s) {
		return &InvalidInputError{Field: "date_range", Reason: "end_date must be after start_date"}
	}
	return nil
}

// PlanSprint selects backlog candidates up to the target velocity and
// returns advisory recommendations about the resulting plan. Running it
// twice with the same inputs yields the same output; nothing is written
// back to the tracker.
func (e *Engine) PlanSprint(ctx context.Context, sprintID int64, targetVelocity float64, team []string) ([]domain.Recommendation, error) {
	if targetVelocity <= 0 {
		return nil, &InvalidInputError{Field: "target_velocity", Reason: "must be positive"}
	}
	if len(team) == 0 {
		return nil, &InvalidInputError{Field: "team_members", Reason: "must not be empty"}
	}

	committed, err := e.gw.SprintIssues(ctx, sprintID)
	if err != nil { return nil, err }
	backlog, err := e.gw.BacklogIssues(ctx, e.boardID)
	if err != nil { return nil, err }

	var planned float64
	for _, i := range committed { planned += i.Points() }

	// Greedy selection: fill until the target is reached, allowing a 10%
	// overshoot on any single pick. Unestimated candidates are skipped.
	selected := make([]domain.Issue, 0, len(backlog))
	for _, cand := range backlog {
		if planned >= targetVelocity { break }
		p := cand.Points()
		if p <= 0 { continue }
		if planned+p > targetVelocity*1.1 { continue }
		selected = append(selected, cand)
		planned += p
	}

	plan := append(append([]domain.Issue{}, committed...), selected...)
	recs := []domain.Recommendation{}

	switch {
	case planned > targetVelocity*1.2:
		recs = append(recs, domain.Recommendation{
			Type:     domain.RecOvercommitment,
			Severity: domain.SeverityHigh,
			Message:  fmt.Sprintf("Planned %.1f points against a target of %.1f", planned, targetVelocity),
			Details: map[string]any{
				"planned_points":  planned,
				"target_velocity": targetVelocity,
				"overage":         planned - targetVelocity,
			},
			SuggestedAction: "Defer lower-priority items to a future sprint",
		})
	case planned < targetVelocity*0.9:
		recs = append(recs, domain.Recommendation{
			Type:     domain.RecLowCommitment,
			Severity: domain.SeverityLow,
			Message:  fmt.Sprintf("Planned %.1f points against a target of %.1f", planned, targetVelocity),
			Details: map[string]any{
				"planned_points":  planned,
				"target_velocity": targetVelocity,
				"headroom":        targetVelocity - planned,
			},
			SuggestedAction: "Pull additional backlog items into the sprint",
		})
	}

	recs = append(recs, workloadImbalances(plan, targetVelocity, team, e.th.WorkloadImbalance)...)

	if dist := largeStoryDistribution(plan); len(dist) > 0 {
		recs = append(recs, domain.Recommendation{
			Type:            domain.RecLargeStories,
			Severity:        domain.SeverityMedium,
			Message:         "Plan contains stories too large to finish in one sprint",
			Details:         map[string]any{"distribution": dist},
			SuggestedAction: "Split large stories before the sprint starts",
		})
	}
	return recs, nil
}

// workloadImbalances flags members whose planned load exceeds the per-head
// share of the target by more than the configured margin.
func workloadImbalances(plan []domain.Issue, target float64, team []string, margin float64) []domain.Recommendation {
	loads := map[string]float64{}
	byMember := map[string][]string{}
	for _, i := range plan {
		if i.Assignee == "" { continue }
		loads[i.Assignee] += i.Points()
		byMember[i.Assignee] = append(byMember[i.Assignee], i.Key)
	}

	avg := target / float64(len(team))
	names := make([]string, 0, len(loads))
	for n := range loads { names = append(names, n) }
	sort.Strings(names)

	recs := []domain.Recommendation{}
	for _, n := range names {
		if loads[n] <= avg*(1+margin) { continue }
		keys := byMember[n]
		sort.Strings(keys)
		recs = append(recs, domain.Recommendation{
			Type:     domain.RecWorkloadImbalance,
			Severity: domain.SeverityMedium,
			Message:  fmt.Sprintf("%s carries %.1f points, team average is %.1f", n, loads[n], avg),
			Details: map[string]any{
				"assignee":        n,
				"assigned_points": loads[n],
				"team_average":    avg,
				"issues":          keys,
			},
			SuggestedAction: fmt.Sprintf("Move work off %s before committing the plan", n),
		})
	}
	return recs
}

func largeStoryDistribution(plan []domain.Issue) map[int]int {
	dist := map[int]int{}
	for _, i := range plan {
		p := i.Points()
		for _, size := range largeStorySizes {
			if p == size { dist[int(size)]++ }
		}
	}
	return dist
}
