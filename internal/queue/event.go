package queue

import (
	"context"
	"time"
)

const (
	EventContactCreated = "contact.created"
	EventContactUpdated = "contact.updated"
	EventContactDeleted = "contact.deleted"

	EventCampaignCreated        = "campaign.created"
	EventCampaignUpdated        = "campaign.updated"
	EventCampaignDeleted        = "campaign.deleted"
	EventCampaignSent           = "campaign.sent"
	EventCampaignContactsAdded  = "campaign.contacts_added"
	EventCampaignContactRemoved = "campaign.contact_removed"

	EventUserRegistered = "user.registered"
)

// Event is a notification that a user's data changed. It is informational
// only; nothing in the API depends on it being delivered.
type Event struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"userId"`
	ResourceID int64     `json:"resourceId"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(eventType string, userID, resourceID int64, data any) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to whatever sink is configured.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler processes one event. A non-nil error asks for a retry.
type Handler func(e Event) error
