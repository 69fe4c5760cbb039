// Package model provides value objects for API parameter validation.
package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// Email represents a canonical (trimmed, lowercased) email address.
type Email struct {
	value string
}

// NewEmail creates a new email value object.
func NewEmail(raw string) (*Email, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailRegex.MatchString(email) {
		return nil, NewValidationError("email is invalid")
	}
	return &Email{value: email}, nil
}

// String returns the canonical email string.
func (e *Email) String() string {
	return e.value
}

// Password represents a registration password.
type Password struct {
	value string
}

// NewPassword creates a new password value object.
func NewPassword(raw string) (*Password, error) {
	password := strings.TrimSpace(raw)
	if len(password) < MinPasswordLength {
		return nil, NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return &Password{value: password}, nil
}

// String returns the password.
func (p *Password) String() string {
	return p.value
}

// DesignID represents a design ID taken from a request path.
type DesignID struct {
	value string
}

// ParseDesignID creates a new design ID value object.
func ParseDesignID(raw string) (*DesignID, error) {
	if raw == "" {
		return nil, NewValidationError("design id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, NewValidationError("design id is invalid")
	}
	return &DesignID{value: id.String()}, nil
}

// String returns the canonical design ID.
func (d *DesignID) String() string {
	return d.value
}

// RejectionReason represents a reviewer's non-empty reason.
type RejectionReason struct {
	value string
}

// NewRejectionReason creates a new rejection reason value object.
func NewRejectionReason(raw string) (*RejectionReason, error) {
	reason := strings.TrimSpace(raw)
	if reason == "" {
		return nil, NewValidationError("rejection reason is required")
	}
	return &RejectionReason{value: reason}, nil
}

// String returns the trimmed reason.
func (r *RejectionReason) String() string {
	return r.value
}
