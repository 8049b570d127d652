// internal/model/campaign_contact.go
package model

import "time"

// AssignedContact is the contact projection embedded in a campaign.
type AssignedContact struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	AddedAt   time.Time `json:"addedAt"`
}

// CampaignContactDetail is the projection returned when listing a campaign's contacts.
type CampaignContactDetail struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	AddedAt   time.Time `json:"addedAt"`
}
