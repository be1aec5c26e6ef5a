package hashreg

import "sync"

// reverseEntry is the captured input behind a produced hash — a
// NUL-terminated copy in the original engine, a plain Go string here
// (spec.md §3's "Archive entry" NUL-termination detail is a C-string
// artifact that does not apply to a Go []byte/string value).
type reverseEntry struct {
	value string
}

// Registry is the process-wide reverse-hash lookup table: a pair of maps
// (32- and 64-bit) guarded by a single mutex, per spec.md §4.C. The
// canonical buffer may be shared between the two tables in the original
// engine's pointer-based implementation; in Go there is nothing to
// de-duplicate at teardown (the garbage collector owns the strings), so
// Registry carries no Close/teardown step.
type Registry struct {
	mu      sync.Mutex
	enabled bool
	rev32   map[uint32]reverseEntry
	rev64   map[uint64]reverseEntry
}

// NewRegistry constructs an empty reverse registry. Reverse tracking
// starts disabled; callers enable it via SetReverseEnabled (runtime.New
// does this automatically based on Runtime's debug flag).
func NewRegistry() *Registry {
	return &Registry{
		rev32: make(map[uint32]reverseEntry, 1024),
		rev64: make(map[uint64]reverseEntry, 1024),
	}
}

// SetReverseEnabled toggles reverse-hash capture at runtime. This
// promotes the original engine's dmHashEnableReverseHash — a process
// lifetime toggle that defaults on for debug builds — to an explicit
// Go API, since a single compiled binary can't carry two build flavors.
func (r *Registry) SetReverseEnabled(enabled bool) {
	r.mu.Lock()
	r.enabled = enabled
	r.mu.Unlock()
}

// ReverseEnabled reports the current toggle state.
func (r *Registry) ReverseEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *Registry) captureReverse32(h uint32, buf []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || len(buf) > MaxReverseLength {
		return
	}
	if _, ok := r.rev32[h]; ok {
		return
	}
	r.rev32[h] = reverseEntry{value: string(buf)}
}

func (r *Registry) captureReverse64(h uint64, buf []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || len(buf) > MaxReverseLength {
		return
	}
	if _, ok := r.rev64[h]; ok {
		return
	}
	r.rev64[h] = reverseEntry{value: string(buf)}
}

// Reverse32 returns the original bytes behind a 32-bit hash, if captured.
func (r *Registry) Reverse32(h uint32) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rev32[h]
	return e.value, ok
}

// Reverse64 returns the original bytes behind a 64-bit hash, if captured.
func (r *Registry) Reverse64(h uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rev64[h]
	return e.value, ok
}

// Len reports the number of captured entries in each table, for tests and
// diagnostics.
func (r *Registry) Len() (len32, len64 int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rev32), len(r.rev64)
}
