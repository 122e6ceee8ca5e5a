package models

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	ErrKindNotFound            ErrorKind = "NOT_FOUND"
	ErrKindForbidden           ErrorKind = "FORBIDDEN"
	ErrKindInvalidTransition   ErrorKind = "INVALID_TRANSITION"
	ErrKindRideNotAssignable   ErrorKind = "RIDE_NOT_ASSIGNABLE"
	ErrKindRideFinalized       ErrorKind = "RIDE_FINALIZED"
	ErrKindFieldNotEditable    ErrorKind = "FIELD_NOT_EDITABLE"
	ErrKindSelfAssignment      ErrorKind = "SELF_ASSIGNMENT"
	ErrKindActiveRideExists    ErrorKind = "ACTIVE_RIDE_EXISTS"
	ErrKindIllegalCancellation ErrorKind = "ILLEGAL_CANCELLATION"
	ErrKindValidationFailure   ErrorKind = "VALIDATION_FAILURE"
)

// AppError is the structured failure every ride operation surfaces:
// a classification the transport layer can map to a status code plus
// a human-readable message.
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// AsAppError unwraps err into an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus selects the status code for an error kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrKindNotFound:
		return http.StatusNotFound
	case ErrKindForbidden:
		return http.StatusForbidden
	case ErrKindValidationFailure:
		return http.StatusBadRequest
	case ErrKindInvalidTransition, ErrKindRideNotAssignable, ErrKindRideFinalized,
		ErrKindFieldNotEditable, ErrKindSelfAssignment, ErrKindActiveRideExists,
		ErrKindIllegalCancellation:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
