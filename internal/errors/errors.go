// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP surface.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthenticated
	KindInvalidToken
	KindConflict
	KindNotFound
	KindRateLimited
)

// FieldError is a single failed field check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error carried from services to controllers.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "No token, authorization denied"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "Token is not valid"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "Invalid credentials"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "User already exists with this email"}
	ErrContactIDsRequired = &Error{Kind: KindBadRequest, Message: "contactIds array is required"}
	ErrContactsNotOwned   = &Error{Kind: KindBadRequest, Message: "One or more contacts not found"}
	ErrContactNotAssigned = &Error{Kind: KindNotFound, Message: "Contact not assigned to this campaign"}
	ErrInvalidBody        = &Error{Kind: KindBadRequest, Message: "Invalid request body"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "Too many requests, please try again later"}
	ErrRouteNotFound      = &Error{Kind: KindNotFound, Message: "Route not found"}
)

// Validation wraps every failed field check into one error.
func Validation(fields []FieldError) error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// ErrNotFound covers missing and not-owned resources alike.
type ErrNotFound struct {
	Resource string
	ID       int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

func NewCampaignNotFound(id int64) error {
	return &ErrNotFound{Resource: "campaign", ID: id}
}

func NewContactNotFound(id int64) error {
	return &ErrNotFound{Resource: "contact", ID: id}
}

func NewUserNotFound(id int64) error {
	return &ErrNotFound{Resource: "user", ID: id}
}

// KindOf reports the Kind of err; anything unknown is internal.
func KindOf(err error) Kind {
	var nf *ErrNotFound
	if errors.As(err, &nf) {
		return KindNotFound
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// HTTPStatus maps err to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidToken:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to echo to a client. Internal errors never
// leak their cause.
func PublicMessage(err error) string {
	var nf *ErrNotFound
	if errors.As(err, &nf) {
		switch nf.Resource {
		case "campaign":
			return "Campaign not found"
		case "contact":
			return "Contact not found"
		default:
			return "User not found"
		}
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "Server error"
}

// FieldErrors returns the field list of a validation error, if any.
func FieldErrors(err error) []FieldError {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}
