package models

import "time"

type UserEventType string

const (
	EventUserRegistered UserEventType = "user_registered"
	EventUserUpdated    UserEventType = "user_updated"
	EventUserDeleted    UserEventType = "user_deleted"
)

type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     uint          `json:"user_id"`
	Email      string        `json:"email,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
