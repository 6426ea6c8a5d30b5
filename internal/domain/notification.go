// Package domain defines the records, rules and collaborator contracts of the insight engine.
package domain

import "time"

// Rule types double as notification types.
const (
	TypeStreak     = "streak"
	TypeNutrition  = "nutrition"
	TypeWorkout    = "workout"
	TypeMilestone  = "milestone"
	TypeMotivation = "motivation"
	TypeWarning    = "warning"
	TypeAdHoc      = "ad_hoc"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ReadStatus is the UI-owned lifecycle state of a notification.
type ReadStatus string

const (
	ReadStatusUnread    ReadStatus = "unread"
	ReadStatusRead      ReadStatus = "read"
	ReadStatusDismissed ReadStatus = "dismissed"
)

// Rule is a named heuristic and the template used to render its notification.
// DataKeys lists every key an Insight for this rule supplies.
type Rule struct {
	ID              string
	Name            string
	Type            string
	Priority        string
	Title           string
	MessageTemplate string
	DataKeys        []string
}

// Insight is a candidate notification produced by evaluating a rule.
type Insight struct {
	Rule Rule
	Data map[string]any
}

// Notification is the persisted result of rendering an Insight.
type Notification struct {
	ID         string     `json:"id"`
	ClientID   string     `json:"client_id"`
	RuleID     string     `json:"rule_id,omitempty"`
	Type       string     `json:"type"`
	Priority   string     `json:"priority"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadStatus ReadStatus `json:"read_status"`
}

// Cursor models the pagination token for notification listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EventType names a lifecycle event handled on the trigger path.
type EventType string

const (
	EventWorkoutCompleted EventType = "workout_completed"
	EventMealLogged       EventType = "meal_logged"
	EventWeightLogged     EventType = "weight_logged"
	EventGoalAchieved     EventType = "goal_achieved"
)

// EventData is the loosely typed payload attached to a lifecycle event.
type EventData map[string]any
