// internal/service/campaign_service.go
package service

import (
	"context"

	"github.com/unclebandit/campaignhub-backend/internal/db"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/validate"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	Events       queue.Publisher
}

// PreviewResult is a campaign rendered for one contact.
type PreviewResult struct {
	CampaignID int64  `json:"campaignId"`
	ContactID  int64  `json:"contactId"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
}

// ListCampaigns returns the owner's campaigns, optionally filtered by status.
func (s *CampaignService) ListCampaigns(ctx context.Context, ownerID int64, status string) ([]model.Campaign, error) {
	return s.CampaignRepo.List(ctx, ownerID, status)
}

// GetCampaignDetails returns a campaign with its assigned contacts.
func (s *CampaignService) GetCampaignDetails(ctx context.Context, id, ownerID int64) (*model.CampaignWithContacts, error) {
	c, err := s.CampaignRepo.GetWithContacts(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return c, nil
}

func (s *CampaignService) CreateCampaign(ctx context.Context, ownerID int64, params model.CreateCampaignParams) (*model.Campaign, error) {
	if err := validate.CreateCampaign(params); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.Create(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, queue.NewEvent(queue.EventCampaignCreated, ownerID, c.ID, nil))
	return c, nil
}

// UpdateCampaign applies a partial update. Setting status to "sent" stamps
// sentAt in the store.
func (s *CampaignService) UpdateCampaign(ctx context.Context, id, ownerID int64, params model.UpdateCampaignParams) (*model.Campaign, error) {
	if err := validate.UpdateCampaign(params); err != nil {
		return nil, err
	}

	c, err := s.CampaignRepo.Update(ctx, id, ownerID, params)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}

	eventType := queue.EventCampaignUpdated
	if params.Status.IsSet() && params.Status.Value == model.CampaignStatusSent {
		eventType = queue.EventCampaignSent
	}
	publish(ctx, s.Events, queue.NewEvent(eventType, ownerID, c.ID, nil))
	return c, nil
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, id, ownerID int64) error {
	deleted, err := s.CampaignRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return appErrors.NewCampaignNotFound(id)
	}
	publish(ctx, s.Events, queue.NewEvent(queue.EventCampaignDeleted, ownerID, id, nil))
	return nil
}

func (s *CampaignService) ListCampaignContacts(ctx context.Context, campaignID, ownerID int64) ([]model.CampaignContactDetail, error) {
	contacts, err := s.CampaignRepo.ListContacts(ctx, campaignID, ownerID)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}
	return contacts, nil
}

// AddContacts assigns contacts to a campaign. Every precondition is checked
// before anything is written, and the insert itself is all-or-nothing.
func (s *CampaignService) AddContacts(ctx context.Context, campaignID, ownerID int64, contactIDs []int64) error {
	if len(contactIDs) == 0 {
		return appErrors.ErrContactIDsRequired
	}

	ok, err := s.CampaignRepo.VerifyOwnership(ctx, campaignID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}

	owned, err := s.ContactRepo.VerifyOwnership(ctx, contactIDs, ownerID)
	if err != nil {
		return err
	}
	if !owned {
		return appErrors.ErrContactsNotOwned
	}

	if err := s.CampaignRepo.AddContacts(ctx, campaignID, contactIDs); err != nil {
		// a contact deleted after the ownership check
		if db.IsForeignKeyViolation(err) {
			return appErrors.ErrContactsNotOwned
		}
		return err
	}

	publish(ctx, s.Events, queue.NewEvent(queue.EventCampaignContactsAdded, ownerID, campaignID, map[string]any{
		"contactIds": contactIDs,
	}))
	return nil
}

func (s *CampaignService) RemoveContact(ctx context.Context, campaignID, ownerID, contactID int64) error {
	ok, err := s.CampaignRepo.VerifyOwnership(ctx, campaignID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}

	removed, err := s.CampaignRepo.RemoveContact(ctx, campaignID, contactID)
	if err != nil {
		return err
	}
	if !removed {
		return appErrors.ErrContactNotAssigned
	}

	publish(ctx, s.Events, queue.NewEvent(queue.EventCampaignContactRemoved, ownerID, campaignID, map[string]any{
		"contactId": contactID,
	}))
	return nil
}

// RenderPreview renders the campaign's subject and message for one of the
// owner's contacts. Nothing is sent.
func (s *CampaignService) RenderPreview(ctx context.Context, campaignID, ownerID, contactID int64) (*PreviewResult, error) {
	if contactID <= 0 {
		return nil, appErrors.Validation([]appErrors.FieldError{
			{Field: "contactId", Message: "contactId is required"},
		})
	}

	campaign, err := s.CampaignRepo.Get(ctx, campaignID, ownerID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}

	contact, err := s.ContactRepo.Get(ctx, contactID, ownerID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, appErrors.NewContactNotFound(contactID)
	}

	data := map[string]string{
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"email":      contact.Email,
		"company":    deref(contact.Company),
	}

	return &PreviewResult{
		CampaignID: campaign.ID,
		ContactID:  contact.ID,
		Subject:    RenderTemplate(campaign.Subject, data),
		Message:    RenderTemplate(campaign.Message, data),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
