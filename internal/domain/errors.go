package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidQuality is returned when a review grade is outside [MinQuality, MaxQuality].
	// It is never clamped or recovered; callers receive it unchanged.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrInvalidDate is returned when a textual calendar date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidDays is returned when a postponement is shorter than one day.
	ErrInvalidDays = errors.New("postpone days must be at least 1")

	// ErrNilCard is returned when an operation receives a nil card.
	ErrNilCard = errors.New("card cannot be nil")
)
