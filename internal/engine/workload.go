package engine

import (
	"context"
	"sort"

	"github.com/example/sprint-sense/internal/domain"
)

// TeamCapacities returns each member's remaining capacity as a 0..1
// fraction: 1 minus their open assigned points over a full load, floored
// at zero for anyone already overloaded.
func (e *Engine) TeamCapacities(ctx context.Context, members []string) (map[string]float64, error) {
	out := make(map[string]float64, len(members))
	for _, member := range members {
		issues, err := e.gw.AssignedIssues(ctx, member)
		if err != nil { return nil, err }
		var pts float64
		for _, i := range issues {
			if !i.Done() { pts += i.Points() }
		}
		c := 1 - pts/e.th.CapacityPoints
		if c < 0 { c = 0 }
		out[member] = c
	}
	return out, nil
}

// MemberLoad is one member's standing in a team workload report.
type MemberLoad struct {
	Member         string  `json:"member"`
	AssignedPoints float64 `json:"assigned_points"`
	OpenIssues     int     `json:"open_issues"`
	Capacity       float64 `json:"capacity"`
}

// TeamWorkload reports cross-sprint assigned load and remaining capacity
// per member, sorted by member name.
func (e *Engine) TeamWorkload(ctx context.Context, members []string) ([]MemberLoad, error) {
	if len(members) == 0 {
		return nil, &InvalidInputError{Field: "team_members", Reason: "must not be empty"}
	}
	out := make([]MemberLoad, 0, len(members))
	for _, member := range members {
		issues, err := e.gw.AssignedIssues(ctx, member)
		if err != nil { return nil, err }
		ml := MemberLoad{Member: member}
		for _, i := range issues {
			if i.Done() { continue }
			ml.AssignedPoints += i.Points()
			ml.OpenIssues++
		}
		ml.Capacity = 1 - ml.AssignedPoints/e.th.CapacityPoints
		if ml.Capacity < 0 { ml.Capacity = 0 }
		out = append(out, ml)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Member < out[b].Member })
	return out, nil
}

// Reassignment is one proposed move in a workload balancing plan.
type Reassignment struct {
	IssueKey string  `json:"issue_key"`
	Points   float64 `json:"points"`
	From     string  `json:"from"`
	To       string  `json:"to"`
}

// WorkloadPlan is an advisory rebalancing proposal. Nothing is applied to
// the tracker; callers decide whether to act on the moves.
type WorkloadPlan struct {
	Loads       map[string]float64 `json:"loads"`
	TeamAverage float64            `json:"team_average"`
	Moves       []Reassignment     `json:"moves"`
}

// BalanceWorkload proposes moving the smallest open issues off overloaded
// members onto the least-loaded ones until everyone sits within the
// imbalance margin of the team average.
func (e *Engine) BalanceWorkload(ctx context.Context, sprintID int64, members []string) (*WorkloadPlan, error) {
	if len(members) == 0 {
		return nil, &InvalidInputError{Field: "team_members", Reason: "must not be empty"}
	}
	issues, err := e.gw.SprintIssues(ctx, sprintID)
	if err != nil { return nil, err }

	loads := map[string]float64{}
	open := map[string][]domain.Issue{}
	for _, member := range members { loads[member] = 0 }
	var total float64
	for _, i := range issues {
		if i.Done() || i.Assignee == "" { continue }
		if _, ok := loads[i.Assignee]; !ok { continue }
		loads[i.Assignee] += i.Points()
		open[i.Assignee] = append(open[i.Assignee], i)
		total += i.Points()
	}
	for _, is := range open {
		sort.Slice(is, func(a, b int) bool {
			if is[a].Points() != is[b].Points() { return is[a].Points() < is[b].Points() }
			return is[a].Key < is[b].Key
		})
	}

	avg := total / float64(len(members))
	limit := avg * (1 + e.th.WorkloadImbalance)

	names := append([]string{}, members...)
	sort.Strings(names)

	moves := []Reassignment{}
	for _, from := range names {
		for loads[from] > limit && len(open[from]) > 0 {
			cand := open[from][0]
			open[from] = open[from][1:]
			if cand.Points() <= 0 { continue }
			to := leastLoaded(names, loads, from)
			if to == "" { break }
			if loads[to]+cand.Points() > limit { break }
			loads[from] -= cand.Points()
			loads[to] += cand.Points()
			moves = append(moves, Reassignment{IssueKey: cand.Key, Points: cand.Points(), From: from, To: to})
		}
	}

	return &WorkloadPlan{Loads: loads, TeamAverage: avg, Moves: moves}, nil
}

func leastLoaded(names []string, loads map[string]float64, exclude string) string {
	best := ""
	for _, n := range names {
		if n == exclude { continue }
		if best == "" || loads[n] < loads[best] { best = n }
	}
	return best
}
