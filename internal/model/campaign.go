// internal/model/campaign.go
package model

import (
	"encoding/json"
	"time"
)

const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSent      = "sent"
)

type Campaign struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"-"`
	Name        string     `db:"name" json:"name"`
	Subject     string     `db:"subject" json:"subject"`
	Message     string     `db:"message" json:"message"`
	Status      string     `db:"status" json:"status"`
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduledAt"`
	SentAt      *time.Time `db:"sent_at" json:"sentAt"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// CampaignWithContacts is a campaign plus its currently assigned contacts.
type CampaignWithContacts struct {
	Campaign
	Contacts []AssignedContact `json:"contacts"`
}

type CreateCampaignParams struct {
	Name        string     `json:"name"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// UnmarshalJSON accepts a blank or null scheduledAt as absent.
func (p *CreateCampaignParams) UnmarshalJSON(data []byte) error {
	type plain CreateCampaignParams
	aux := struct {
		*plain
		ScheduledAt Optional[time.Time] `json:"scheduledAt"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ScheduledAt = nil
	if aux.ScheduledAt.IsSet() {
		at := aux.ScheduledAt.Value
		p.ScheduledAt = &at
	}
	return nil
}

// UpdateCampaignParams only touches the fields that are present.
type UpdateCampaignParams struct {
	Name        Optional[string]    `json:"name"`
	Subject     Optional[string]    `json:"subject"`
	Message     Optional[string]    `json:"message"`
	Status      Optional[string]    `json:"status"`
	ScheduledAt Optional[time.Time] `json:"scheduledAt"`
}
