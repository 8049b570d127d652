// internal/service/contact_service.go
package service

import (
	"context"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/validate"
)

type ContactService struct {
	ContactRepo repository.ContactRepositoryInterface
	Events      queue.Publisher
}

func (s *ContactService) ListContacts(ctx context.Context, ownerID int64) ([]model.Contact, error) {
	return s.ContactRepo.List(ctx, ownerID)
}

func (s *ContactService) GetContact(ctx context.Context, id, ownerID int64) (*model.Contact, error) {
	c, err := s.ContactRepo.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewContactNotFound(id)
	}
	return c, nil
}

func (s *ContactService) CreateContact(ctx context.Context, ownerID int64, params model.CreateContactParams) (*model.Contact, error) {
	if err := validate.CreateContact(params); err != nil {
		return nil, err
	}

	c, err := s.ContactRepo.Create(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, queue.NewEvent(queue.EventContactCreated, ownerID, c.ID, nil))
	return c, nil
}

// UpdateContact changes only the fields present in params.
func (s *ContactService) UpdateContact(ctx context.Context, id, ownerID int64, params model.UpdateContactParams) (*model.Contact, error) {
	if err := validate.UpdateContact(params); err != nil {
		return nil, err
	}

	c, err := s.ContactRepo.Update(ctx, id, ownerID, params)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewContactNotFound(id)
	}
	publish(ctx, s.Events, queue.NewEvent(queue.EventContactUpdated, ownerID, c.ID, nil))
	return c, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id, ownerID int64) error {
	deleted, err := s.ContactRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return appErrors.NewContactNotFound(id)
	}
	publish(ctx, s.Events, queue.NewEvent(queue.EventContactDeleted, ownerID, id, nil))
	return nil
}
