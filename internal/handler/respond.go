// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps err to a status and a client-safe body. Internal errors are
// logged here and never echoed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := appErrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	body := map[string]any{"error": appErrors.PublicMessage(err)}
	if fields := appErrors.FieldErrors(err); len(fields) > 0 {
		body["errors"] = fields
	}
	JSON(w, status, body)
}

// DecodeJSON reads the request body into v. Any malformed body is
// ErrInvalidBody.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &appErrors.Error{Kind: appErrors.KindBadRequest, Message: appErrors.ErrInvalidBody.Message, Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return appErrors.ErrInvalidBody
	}
	return nil
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "CampaignHub API is running",
	})
}

// NotFound answers unknown routes and unsupported methods alike.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, r, appErrors.ErrRouteNotFound)
}
