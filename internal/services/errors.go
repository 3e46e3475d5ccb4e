package services

import "errors"

// Reconciliation service errors
var (
	ErrUnknownVariant = errors.New("unknown report variant")
	ErrNoUnitTypes    = errors.New("no unit types allowed")
	ErrNilInput       = errors.New("input reader is nil")
)
