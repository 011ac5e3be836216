package gaussian

import (
	"errors"
	"fmt"
)

// ErrDomain is returned when a density is requested for a non-positive
// standard deviation.
var ErrDomain = errors.New("gaussian: standard deviation must be positive")

// DomainError carries the offending standard deviation.
type DomainError struct {
	StdDev float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("gaussian: invalid standard deviation %v", e.StdDev)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}
