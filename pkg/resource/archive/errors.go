package archive

import "errors"

// Error taxonomy for component (A)'s archive layer, per spec.md §7.
var (
	ErrNotFound         = errors.New("archive: entry not found")
	ErrVersionMismatch  = errors.New("archive: version mismatch")
	ErrFormatError      = errors.New("archive: malformed index")
	ErrIoError          = errors.New("archive: io error")
	ErrBufferTooSmall   = errors.New("archive: decompressed size exceeds buffer")
	ErrAlreadyExists    = errors.New("archive: entry already stored")
	ErrSignatureMismatch = errors.New("archive: manifest signature mismatch")
)
