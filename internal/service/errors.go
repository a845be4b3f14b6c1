package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when no authenticated caller is present.
	ErrUnauthorized = errors.New("service: unauthorized")
	// ErrForbidden is returned when the caller lacks permission for an operation.
	ErrForbidden = errors.New("service: forbidden")
	// ErrNotFound is returned when the referenced entity does not exist.
	ErrNotFound = errors.New("service: not found")
	// ErrConflict is returned for state collisions such as a second review.
	ErrConflict = errors.New("service: conflict")
	// ErrDuplicateRegistration is returned when the caller is already registered.
	ErrDuplicateRegistration = errors.New("service: already registered for this event")
	// ErrDuplicateEmail is returned when an account with the email exists.
	ErrDuplicateEmail = errors.New("service: email already registered")
	// ErrPaymentSetupRequired is returned when a paid event is created without a bank account on file.
	ErrPaymentSetupRequired = errors.New("service: payment setup required")
	// ErrIncompleteProfile is returned when name or phone is missing.
	ErrIncompleteProfile = errors.New("service: profile incomplete")
	// ErrInvalidCredentials is returned for any failed password check.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrInvalidToken is returned for an unknown password reset token.
	ErrInvalidToken = errors.New("service: invalid token")
	// ErrExpiredToken is returned for a password reset token past its expiry.
	ErrExpiredToken = errors.New("service: token expired")
	// ErrTokenAlreadyUsed is returned for a password reset token that was consumed.
	ErrTokenAlreadyUsed = errors.New("service: token already used")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, ok := v.FieldErrors[field]; ok {
		return
	}
	v.FieldErrors[field] = message
}

// err returns v as an error when it holds entries and nil otherwise.
func (v *ValidationError) err() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

func fieldError(field, message string) error {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
