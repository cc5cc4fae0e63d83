package usecase

import "errors"

// ErrInvalidInputs is returned before any fetch when the inputs cannot start a cycle.
var ErrInvalidInputs = errors.New("invalid dashboard inputs")

// Cycle outcome labels reported to the Observer.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidInputs    = "invalid_inputs"
	OutcomeFetchError       = "fetch_error"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeError            = "error"
)
