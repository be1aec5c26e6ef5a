package bus

import "errors"

// Error taxonomy for component (B), per spec.md §7.
var (
	ErrInvalidSocketName  = errors.New("bus: invalid socket name")
	ErrSocketExists       = errors.New("bus: socket already exists")
	ErrSocketOutOfSockets = errors.New("bus: socket table exhausted")
	ErrSocketNotFound     = errors.New("bus: socket not found")
)
