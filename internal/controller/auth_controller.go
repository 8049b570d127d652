// internal/controller/auth_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/campaignhub-backend/internal/handler"
	"github.com/unclebandit/campaignhub-backend/internal/service"
	"github.com/unclebandit/campaignhub-backend/internal/validate"
)

type AuthController struct {
	AuthService *service.AuthService
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	result, err := c.AuthService.Register(r.Context(), validate.RegisterInput{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusCreated, result)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := handler.DecodeJSON(w, r, &body); err != nil {
		handler.Error(w, r, err)
		return
	}

	result, err := c.AuthService.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, result)
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(w, r)
	if !ok {
		return
	}

	user, err := c.AuthService.Me(r.Context(), userID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, user)
}
