package usecase

import "errors"

// ErrSymbolNotFound is returned when a code is not in the active catalog.
var ErrSymbolNotFound = errors.New("symbol not found")
