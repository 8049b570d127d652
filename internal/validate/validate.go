// internal/validate/validate.go
package validate

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	appErrors "github.com/unclebandit/campaignhub-backend/internal/errors"
)

// Validator collects every failed field check so a request reports all of
// its problems at once.
type Validator struct {
	fields []appErrors.FieldError
}

func (v *Validator) Add(field, message string) {
	v.fields = append(v.fields, appErrors.FieldError{Field: field, Message: message})
}

// Required fails when value is empty after trimming.
func (v *Validator) Required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, message)
	}
}

func (v *Validator) Email(field, value, message string) {
	if !IsEmail(value) {
		v.Add(field, message)
	}
}

// MinLength counts runes, not bytes.
func (v *Validator) MinLength(field, value string, n int, message string) {
	if utf8.RuneCountInString(value) < n {
		v.Add(field, message)
	}
}

func (v *Validator) Valid() bool { return len(v.fields) == 0 }

// Err returns a validation error carrying every collected field, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return appErrors.Validation(v.fields)
}

// IsEmail accepts a bare addr-spec whose domain has at least one dot.
func IsEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}
