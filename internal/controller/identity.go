package controller

import (
	"net/http"

	"github.com/unclebandit/campaignhub-backend/internal/auth"
	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
	"github.com/unclebandit/campaignhub-backend/internal/handler"
)

// ownerID returns the authenticated caller's id. Routes are mounted behind
// RequireAuth, so a missing identity is answered as unauthenticated.
func ownerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		handler.Error(w, r, appErrors.ErrUnauthenticated)
		return 0, false
	}
	return id.UserID, true
}
