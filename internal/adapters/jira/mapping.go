/* Copyright (c) 2025 the sprint-sense authors
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/sprint-sense/internal/domain"
)

func toStr(v any) string {
	if v == nil { return "" }
	if s, ok := v.(string); ok { return s }
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

func toInt64(v any) int64 {
	f, ok := toFloat(v)
	if !ok { return 0 }
	return int64(f)
}

func parseTimeUTC(v any) *time.Time {
	s, _ := v.(string)
	if s == "" { return nil }
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			tt := t.UTC()
			return &tt
		}
	}
	return nil
}

// named extracts the "name" of a nested Jira field object.
func named(v any) string {
	m, _ := v.(map[string]any)
	if m == nil { return "" }
	return toStr(m["name"])
}

func parseSprint(m map[string]any) domain.Sprint {
	if m == nil { return domain.Sprint{} }
	s := domain.Sprint{
		ID:      toInt64(m["id"]),
		BoardID: toInt64(m["originBoardId"]),
		Name:    toStr(m["name"]),
		State:   domain.SprintState(toStr(m["state"])),
		Goal:    toStr(m["goal"]),
	}
	s.StartDate = parseTimeUTC(m["startDate"])
	s.EndDate = parseTimeUTC(m["endDate"])
	return s
}

func parseIssue(m map[string]any, pointsField string) domain.Issue {
	i := domain.Issue{Key: toStr(m["key"])}
	fields, _ := m["fields"].(map[string]any)
	if fields == nil { return i }

	i.Summary = toStr(fields["summary"])
	if d, ok := fields["description"].(string); ok { i.Description = d }
	i.Type = domain.IssueType(named(fields["issuetype"]))
	i.Priority = domain.Priority(named(fields["priority"]))
	i.RawStatus = named(fields["status"])
	i.Status = domain.NormalizeStatus(i.RawStatus)
	i.Created = parseTimeUTC(fields["created"])
	i.Updated = parseTimeUTC(fields["updated"])

	if a, ok := fields["assignee"].(map[string]any); ok {
		name := toStr(a["name"])
		if name == "" { name = toStr(a["displayName"]) }
		i.Assignee = name
	}
	if p, ok := toFloat(fields[pointsField]); ok {
		i.StoryPoints = &p
	}
	if sm, ok := fields["sprint"].(map[string]any); ok {
		if id := toInt64(sm["id"]); id > 0 { i.SprintID = &id }
	}
	if ls, ok := fields["labels"].([]any); ok {
		for _, l := range ls {
			if s := toStr(l); s != "" { i.Labels = append(i.Labels, s) }
		}
	}
	i.BlockedBy, i.Blocks = parseLinks(fields["issuelinks"])
	return i
}

// parseLinks splits issue links into blocked-by and blocks key sets,
// matching on the link direction names Jira uses for the Blocks link type.
func parseLinks(v any) (blockedBy, blocks []string) {
	links, _ := v.([]any)
	for _, l0 := range links {
		l, _ := l0.(map[string]any)
		if l == nil { continue }
		typ, _ := l["type"].(map[string]any)
		if typ == nil { continue }
		if in, ok := l["inwardIssue"].(map[string]any); ok && toStr(typ["inward"]) == "is blocked by" {
			if k := toStr(in["key"]); k != "" { blockedBy = append(blockedBy, k) }
		}
		if out, ok := l["outwardIssue"].(map[string]any); ok && toStr(typ["outward"]) == "blocks" {
			if k := toStr(out["key"]); k != "" { blocks = append(blocks, k) }
		}
	}
	return blockedBy, blocks
}

// parseStatusHistory rebuilds contiguous status periods from the issue
// changelog. The period in the current status stays open until now.
func parseStatusHistory(m map[string]any, now time.Time) []domain.StatusTransition {
	type event struct {
		at   time.Time
		from string
		to   string
	}
	events := []event{}
	if cl, ok := m["changelog"].(map[string]any); ok {
		histories, _ := cl["histories"].([]any)
		for _, h0 := range histories {
			h, _ := h0.(map[string]any)
			if h == nil { continue }
			at := parseTimeUTC(h["created"])
			if at == nil { continue }
			items, _ := h["items"].([]any)
			for _, it0 := range items {
				it, _ := it0.(map[string]any)
				if it == nil || toStr(it["field"]) != "status" { continue }
				events = append(events, event{at: *at, from: toStr(it["fromString"]), to: toStr(it["toString"])})
			}
		}
	}
	if len(events) == 0 { return nil }
	sort.Slice(events, func(a, b int) bool { return events[a].at.Before(events[b].at) })

	out := []domain.StatusTransition{}
	// opening period in the original status, if the creation time is known
	var created time.Time
	if fields, ok := m["fields"].(map[string]any); ok {
		if t := parseTimeUTC(fields["created"]); t != nil { created = *t }
	}
	if !created.IsZero() && events[0].from != "" {
		out = append(out, domain.StatusTransition{
			Status: domain.NormalizeStatus(events[0].from),
			From:   created,
			To:     events[0].at,
		})
	}
	for idx, ev := range events {
		end := now
		if idx+1 < len(events) { end = events[idx+1].at }
		out = append(out, domain.StatusTransition{
			Status: domain.NormalizeStatus(ev.to),
			From:   ev.at,
			To:     end,
		})
	}
	return out
}

// parseScopeChanges derives churn counters from a GreenHopper sprint
// report payload.
func parseScopeChanges(m map[string]any) domain.ScopeChanges {
	contents, _ := m["contents"].(map[string]any)
	if contents == nil { return domain.ScopeChanges{} }
	added := 0
	if keys, ok := contents["issueKeysAddedDuringSprint"].(map[string]any); ok { added = len(keys) }
	removed := 0
	if punted, ok := contents["puntedIssues"].([]any); ok { removed = len(punted) }
	current := 0
	if done, ok := contents["completedIssues"].([]any); ok { current += len(done) }
	if open, ok := contents["issuesNotCompletedInCurrentSprint"].([]any); ok { current += len(open) }
	initial := current + removed - added
	if initial < 0 { initial = 0 }
	return domain.ScopeChanges{InitialCount: initial, Added: added, Removed: removed}
}
