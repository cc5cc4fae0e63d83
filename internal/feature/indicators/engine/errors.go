package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidPeriod is returned when a smoothing window is not positive, or MACD fast >= slow.
var ErrInvalidPeriod = errors.New("invalid indicator period")

// InsufficientDataError reports that the input is shorter than the indicator's warm-up requirement.
type InsufficientDataError struct {
	Indicator string
	Required  int // Minimum number of closes
	Got       int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs at least %d closes, got %d", e.Indicator, e.Required, e.Got)
}
