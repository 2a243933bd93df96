package domain

import "errors"

// Domain errors
var (
	// User errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")

	// Event errors
	ErrEventNotFound    = errors.New("event not found")
	ErrEventHasBookings = errors.New("event has existing bookings")

	// Validation errors
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidEventTitle = errors.New("event title is required")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidUsername   = errors.New("username is required")
	ErrInvalidPassword   = errors.New("password is required")

	// Purchase errors
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrSoldOut            = errors.New("ticket type is sold out")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrPurchaseFailed     = errors.New("purchase could not be recorded")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketTypeNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidEventTitle) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidUsername) ||
		errors.Is(err, ErrInvalidPassword)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrUserAlreadyExists) ||
		errors.Is(err, ErrSoldOut) ||
		errors.Is(err, ErrEventHasBookings)
}
