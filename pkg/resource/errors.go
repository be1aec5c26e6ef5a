package resource

import "errors"

// Error taxonomy for component (A)'s factory layer, per spec.md §7.
var (
	ErrNotFound        = errors.New("resource: not found")
	ErrAlreadyExists    = errors.New("resource: loader already registered for extension")
	ErrInvalid          = errors.New("resource: invalid argument")
	ErrOutOfResources    = errors.New("resource: descriptor table exhausted")
	ErrLoopError         = errors.New("resource: recursive Get on in-progress resource")
	ErrTypeMismatch      = errors.New("resource: type mismatch for extension")
)
