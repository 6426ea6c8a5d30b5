// Package events defines the payloads exchanged with other services over Kafka.
package events

import (
	"time"

	"example.com/insights/internal/domain"
)

// Event types and topics.
const (
	NotificationCreatedType = "notification.created"
	NotificationTopic       = "notification_events"
)

// NotificationCreated is published once a notification has been stored.
type NotificationCreated struct {
	NotificationID string    `json:"notification_id"`
	ClientID       string    `json:"client_id"`
	RuleID         string    `json:"rule_id,omitempty"`
	Type           string    `json:"type"`
	Priority       string    `json:"priority"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewNotificationCreated builds the event for n.
func NewNotificationCreated(n domain.Notification) NotificationCreated {
	return NotificationCreated{
		NotificationID: n.ID,
		ClientID:       n.ClientID,
		RuleID:         n.RuleID,
		Type:           n.Type,
		Priority:       n.Priority,
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt.UTC(),
	}
}

// ClientEvent is an application lifecycle event consumed by the trigger path.
type ClientEvent struct {
	ClientID  string           `json:"client_id"`
	EventType domain.EventType `json:"event_type"`
	Data      domain.EventData `json:"data"`
}
