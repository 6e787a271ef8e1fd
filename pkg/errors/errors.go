package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a credential is missing or invalid
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrInvalidStateTransition is returned when an order status change is not allowed
type ErrInvalidStateTransition struct {
	From fmt.Stringer
	To   fmt.Stringer
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrValidation is returned for malformed or incomplete input
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// ErrGateway is returned when the payment provider is unreachable or rejects a request
type ErrGateway struct {
	Message string
	Err     error
}

func (e *ErrGateway) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("payment gateway: %s", e.Message)
}

func (e *ErrGateway) Unwrap() error {
	return e.Err
}

// ErrProfileMissing is returned when an authenticated user has no profile yet
type ErrProfileMissing struct {
	UserID string
}

func (e *ErrProfileMissing) Error() string {
	return "user profile not found, please complete your profile first"
}

// ErrInvalidSignature is returned when a webhook payload fails authentication
type ErrInvalidSignature struct {
	Reason string
}

func (e *ErrInvalidSignature) Error() string {
	return fmt.Sprintf("invalid webhook signature: %s", e.Reason)
}

// ErrConflict is returned when a write collides with existing state
type ErrConflict struct {
	Resource string
	Message  string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// ErrForbidden is returned when an authenticated caller lacks the required role
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	return e.Message
}
