package srs

import (
	"github.com/phrazzld/kanacards/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm.
// The defaults reproduce classic SM-2 scheduling.
type Params struct {
	// Ease factor limits
	DefaultEaseFactor float64
	MinEaseFactor     float64

	// Intervals (in days) for the first and second consecutive correct review
	FirstInterval  int
	SecondInterval int

	// Interval (in days) after a failed review
	LapseInterval int

	// Decimal places kept when storing the ease factor
	EasePrecision int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values leave the corresponding default in place.
type ParamsConfig struct {
	DefaultEaseFactor float64
	MinEaseFactor     float64
	FirstInterval     int
	SecondInterval    int
	LapseInterval     int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		DefaultEaseFactor: domain.DefaultEaseFactor,
		MinEaseFactor:     domain.MinEaseFactor,
		FirstInterval:     1,
		SecondInterval:    6,
		LapseInterval:     1,
		EasePrecision:     4,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.DefaultEaseFactor > 0 {
		params.DefaultEaseFactor = config.DefaultEaseFactor
	}
	// The floor may be raised but never lowered below the SM-2 minimum
	if config.MinEaseFactor > domain.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	// The default ease can never start below the floor
	if params.DefaultEaseFactor < params.MinEaseFactor {
		params.DefaultEaseFactor = params.MinEaseFactor
	}

	return params
}
