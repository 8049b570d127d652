// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/handler"
	"github.com/unclebandit/campaignhub-backend/internal/model"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

// campaignID reads {id}; a malformed id is answered as a missing campaign.
func campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := handler.PathID(r, "id")
	if !ok {
		handler.Error(w, r, appErrors.NewCampaignNotFound(0))
	}
	return id, ok
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")

	campaigns, err := c.CampaignService.ListCampaigns(r.Context(), userID, status)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, campaigns)
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	campaign, err := c.CampaignService.GetCampaignDetails(r.Context(), id, userID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	var body model.CreateCampaignParams
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), userID, body)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	var body model.UpdateCampaignParams
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), id, userID, body)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	if err := c.CampaignService.DeleteCampaign(r.Context(), id, userID); err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.Message(w, http.StatusOK, "Campaign deleted successfully")
}

func (c *CampaignController) ListCampaignContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	contacts, err := c.CampaignService.ListCampaignContacts(r.Context(), id, userID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, contacts)
}

func (c *CampaignController) AddContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	var body struct {
		ContactIDs json.RawMessage `json:"contactIds"`
	}
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	// anything but a JSON array of ids counts as missing
	var contactIDs []int64
	if len(body.ContactIDs) == 0 || json.Unmarshal(body.ContactIDs, &contactIDs) != nil {
		handler.Error(w, r, appErrors.ErrContactIDsRequired)
		return
	}

	if err := c.CampaignService.AddContacts(r.Context(), id, userID, contactIDs); err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.Message(w, http.StatusCreated, "Contacts added to campaign successfully")
}

func (c *CampaignController) RemoveContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	// a malformed contact id can never be assigned
	contactID, _ := handler.PathID(r, "contactId")

	if err := c.CampaignService.RemoveContact(r.Context(), id, userID, contactID); err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.Message(w, http.StatusOK, "Contact removed from campaign successfully")
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	var body struct {
		ContactID int64 `json:"contactId"`
	}
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	preview, err := c.CampaignService.RenderPreview(r.Context(), id, userID, body.ContactID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, preview)
}
