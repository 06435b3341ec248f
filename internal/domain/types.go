package domain

import "time"

type IssueType string

const (
	TypeEpic    IssueType = "Epic"
	TypeStory   IssueType = "Story"
	TypeTask    IssueType = "Task"
	TypeBug     IssueType = "Bug"
	TypeSubTask IssueType = "Sub-task"
)

type Priority string

const (
	PriorityHighest Priority = "Highest"
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
	PriorityLowest  Priority = "Lowest"
)

// Rank orders priorities from most urgent (0) to least urgent.
// Unknown values rank after Lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHighest:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	case PriorityLowest:
		return 4
	}
	return 5
}

type SprintState string

const (
	SprintFuture SprintState = "future"
	SprintActive SprintState = "active"
	SprintClosed SprintState = "closed"
)

type Issue struct {
	Key         string     `json:"key"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Type        IssueType  `json:"type"`
	Priority    Priority   `json:"priority"`
	Assignee    string     `json:"assignee,omitempty"`
	StoryPoints *float64   `json:"story_points,omitempty"`
	Status      Status     `json:"status"`
	RawStatus   string     `json:"raw_status,omitempty"`
	SprintID    *int64     `json:"sprint_id,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	Created     *time.Time `json:"created,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
	BlockedBy   []string   `json:"blocked_by,omitempty"`
	Blocks      []string   `json:"blocks,omitempty"`
}

// Points returns the story point estimate, treating unestimated issues as zero.
func (i Issue) Points() float64 {
	if i.StoryPoints == nil {
		return 0
	}
	return *i.StoryPoints
}

func (i Issue) Done() bool { return i.Status == StatusDone }

type Sprint struct {
	ID        int64       `json:"id"`
	BoardID   int64       `json:"board_id,omitempty"`
	Name      string      `json:"name"`
	State     SprintState `json:"state"`
	StartDate *time.Time  `json:"start_date,omitempty"`
	EndDate   *time.Time  `json:"end_date,omitempty"`
	Goal      string      `json:"goal,omitempty"`
}

type TeamMember struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
}

type SprintMetrics struct {
	TotalPoints          float64 `json:"total_points"`
	CompletedPoints      float64 `json:"completed_points"`
	RemainingPoints      float64 `json:"remaining_points"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// StatusTransition is one contiguous period an issue spent in a status,
// reconstructed from the tracker changelog.
type StatusTransition struct {
	Status Status    `json:"status"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// ScopeChanges summarizes scope churn since the sprint started.
type ScopeChanges struct {
	InitialCount int `json:"initial_count"`
	Added        int `json:"added"`
	Removed      int `json:"removed"`
}

// IssueCreate carries the fields accepted when creating a tracker issue.
type IssueCreate struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Type        IssueType `json:"type,omitempty"`
	Priority    Priority  `json:"priority,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	StoryPoints *float64  `json:"story_points,omitempty"`
	SprintID    *int64    `json:"sprint_id,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Risk types emitted by the analysis passes.
const (
	RiskVelocity   = "velocity"
	RiskDependency = "dependency"
	RiskCapacity   = "capacity"
	RiskScope      = "scope_change"
	RiskSchedule   = "behind_schedule"
	RiskBlocked    = "blocked_work"
)

type Risk struct {
	Type            string         `json:"type"`
	Severity        Severity       `json:"severity"`
	Message         string         `json:"message"`
	Details         map[string]any `json:"details,omitempty"`
	SuggestedAction string         `json:"suggested_action,omitempty"`
}

// Recommendation types emitted by planning and priority passes.
const (
	RecOvercommitment    = "overcommitment"
	RecLowCommitment     = "low_commitment"
	RecWorkloadImbalance = "workload_imbalance"
	RecLargeStories      = "large_stories"
	RecRaisePriority     = "raise_priority"
	RecEscalateBlocked   = "escalate_blocked"
)

type Recommendation struct {
	Type            string         `json:"type"`
	Severity        Severity       `json:"severity"`
	Message         string         `json:"message"`
	Details         map[string]any `json:"details,omitempty"`
	SuggestedAction string         `json:"suggested_action,omitempty"`
}
