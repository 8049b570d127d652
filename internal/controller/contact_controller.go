// internal/controller/contact_controller.go
package controller

import (
	"net/http"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/handler"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type ContactController struct {
	ContactService *service.ContactService
}

func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	contacts, err := c.ContactService.ListContacts(r.Context(), userID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, contacts)
}

func (c *ContactController) GetContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := handler.PathID(r, "id")
	if !ok {
		handler.Error(w, r, appErrors.NewContactNotFound(0))
		return
	}

	contact, err := c.ContactService.GetContact(r.Context(), id, userID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, contact)
}

func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var body model.CreateContactParams
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	contact, err := c.ContactService.CreateContact(r.Context(), userID, body)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, contact)
}

func (c *ContactController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := handler.PathID(r, "id")
	if !ok {
		handler.Error(w, r, appErrors.NewContactNotFound(0))
		return
	}

	var body model.UpdateContactParams
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	contact, err := c.ContactService.UpdateContact(r.Context(), id, userID, body)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, contact)
}

func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := handler.PathID(r, "id")
	if !ok {
		handler.Error(w, r, appErrors.NewContactNotFound(0))
		return
	}

	if err := c.ContactService.DeleteContact(r.Context(), id, userID); err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.Message(w, http.StatusOK, "Contact deleted successfully")
}
