package utils

import "time"

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
)

// Ride Constants
const (
	MinCustomerRating = 1.0
	MaxCustomerRating = 5.0
)

// Dispatcher
const DefaultDispatchInterval = 100 * time.Second

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrUserNotFound     = "user not found"
	ErrRideNotFound     = "ride not found"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)
