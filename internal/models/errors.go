package models

import (
	"errors"
	"fmt"
)

// Error kinds for the upload and analysis flows. Components wrap the
// underlying cause so callers can match with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrStorage        = errors.New("storage error")
	ErrPersistence    = errors.New("persistence error")
	ErrInference      = errors.New("inference error")
)

// ErrScanNotFound is returned when no scan matches both the id and the owner.
var ErrScanNotFound = fmt.Errorf("%w: scan not found for user", ErrPersistence)
