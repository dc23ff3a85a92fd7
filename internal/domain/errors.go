package domain

import "fmt"

// ValidationError reports malformed or missing input. It is surfaced
// immediately and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError reports that the caller identity does not match the
// profile referenced by the target entity. The mutation is never partially
// applied.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

func NewAuthorizationError(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// GatewayError reports a non-2xx or error-bearing response from an external
// provider (payment gateway, messaging provider).
type GatewayError struct {
	Provider    string
	StatusCode  int
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway error (status %d): %s", e.Provider, e.StatusCode, e.Description)
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a lifecycle transition that the current state does
// not allow, e.g. accepting a request that is no longer pending or renting
// a shelf that already has an active rental.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}
