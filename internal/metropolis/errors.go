package metropolis

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates a rejected target or ensemble parameter.
	ErrConfiguration = errors.New("metropolis: invalid configuration")

	// ErrNumericAnomaly indicates a non-finite coordinate or density ratio.
	ErrNumericAnomaly = errors.New("metropolis: non-finite value")
)

// ConfigError names the parameter that failed validation.
type ConfigError struct {
	Field string
	Value float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("metropolis: invalid %s: %v", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
