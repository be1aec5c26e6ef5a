// Package bus implements component (B) of the engine core: named
// sockets, per-socket FIFO message queues backed by a page-bumping
// allocator, and cooperative (non-blocking or condvar-blocking) dispatch.
// Grounded on message.cpp (see DESIGN.md) for the socket/handle/dispatch
// shape. The socket table and each queue are guarded by plain sync.Mutex
// locks, and New takes its logger, hash registry and metrics registry as
// positional arguments.
package bus

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/enginert/internal/pagepool"
	"github.com/Voskan/enginert/pkg/hashreg"
)

// MaxSockets is the process-wide socket table size (spec.md §4.B).
const MaxSockets = 128

// Handle is the opaque (version<<16 | index) encoding of a socket,
// matching spec.md §3's "Handle encoding" for sockets.
type Handle uint32

func makeHandle(version uint16, index uint16) Handle {
	return Handle(uint32(version)<<16 | uint32(index))
}

func (h Handle) version() uint16 { return uint16(h >> 16) }
func (h Handle) index() uint16   { return uint16(h & 0xffff) }

// DispatchCallback is invoked once per message in FIFO order during
// Dispatch/DispatchBlocking. It must not block (spec.md §5: "No lock may
// be held across a user callback").
type DispatchCallback func(msg *Message)

type socket struct {
	id       uint16
	name     string
	nameHash uint64
	version  uint16

	mu    sync.Mutex
	cond  sync.Cond
	head  *Message
	tail  *Message
	alloc pagepool.Allocator
}

// Bus owns the process-wide socket table (spec.md §5: "Global mutable
// state ... becomes an explicit Runtime handle"). A Bus is constructed
// once and shared by every message-posting component.
type Bus struct {
	log  *zap.Logger
	hash *hashreg.Registry

	tableMu sync.Mutex
	sockets [MaxSockets]*socket
	free    []uint16 // stack of available indices
	nextVer atomic.Uint32

	metrics *busMetrics
}

// New constructs an empty Bus. log may be nil (defaults to a no-op
// logger); reg may be nil to disable Prometheus metrics, both matching
// the teacher's pkg/config.go option defaults.
func New(log *zap.Logger, hashReg *hashreg.Registry, reg *prometheus.Registry) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bus{log: log, hash: hashReg}
	b.free = make([]uint16, MaxSockets)
	for i := range b.free {
		b.free[i] = uint16(MaxSockets - 1 - i)
	}
	b.nextVer.Store(1)
	b.metrics = newBusMetrics(reg)
	return b
}

func isValidSocketName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, "#:")
}

// NewSocket creates a socket with the given name, rejecting duplicate
// names and names containing '#' or ':' (spec.md §3, §4.B).
func (b *Bus) NewSocket(name string) (Handle, error) {
	if !isValidSocketName(name) {
		return 0, ErrInvalidSocketName
	}

	b.tableMu.Lock()
	defer b.tableMu.Unlock()

	nameHash := hashreg.String64(b.hash, name)
	for _, s := range b.sockets {
		if s != nil && s.nameHash == nameHash {
			return 0, ErrSocketExists
		}
	}

	if len(b.free) == 0 {
		return 0, ErrSocketOutOfSockets
	}

	idx := b.free[len(b.free)-1]
	b.free = b.free[:len(b.free)-1]

	version := uint16(b.nextVer.Add(1))
	if version == 0 {
		version = uint16(b.nextVer.Add(1))
	}

	s := &socket{id: idx, name: name, nameHash: nameHash, version: version}
	s.cond.L = &s.mu
	b.sockets[idx] = s
	b.metrics.setSocketCount(len(b.sockets) - len(b.free))

	return makeHandle(version, idx), nil
}

// lookup resolves a handle to its socket, verifying the version matches
// (a stale handle from a deleted-and-reused slot returns ErrSocketNotFound).
func (b *Bus) lookup(h Handle) *socket {
	if h == 0 {
		return nil
	}
	idx := h.index()
	if int(idx) >= MaxSockets {
		return nil
	}
	b.tableMu.Lock()
	s := b.sockets[idx]
	b.tableMu.Unlock()
	if s == nil || s.version != h.version() {
		return nil
	}
	return s
}

// IsSocketValid reports whether h still names a live socket (supplemented
// from message.cpp's IsSocketValid, see SPEC_FULL.md).
func (b *Bus) IsSocketValid(h Handle) bool {
	return b.lookup(h) != nil
}

// GetSocket resolves an existing socket by name without creating one
// (supplemented from message.cpp's GetSocket).
func (b *Bus) GetSocket(name string) (Handle, error) {
	if !isValidSocketName(name) {
		return 0, ErrInvalidSocketName
	}
	nameHash := hashreg.String64(b.hash, name)

	b.tableMu.Lock()
	defer b.tableMu.Unlock()
	for _, s := range b.sockets {
		if s != nil && s.nameHash == nameHash {
			return makeHandle(s.version, s.id), nil
		}
	}
	return 0, ErrSocketNotFound
}

// GetSocketName returns the name a handle was created with, or "" if the
// handle is stale or unknown.
func (b *Bus) GetSocketName(h Handle) string {
	s := b.lookup(h)
	if s == nil {
		return ""
	}
	return s.name
}

// DeleteSocket drains all queued messages (no destructors in this port —
// Go values need none) and frees every page, then invalidates the
// handle by returning its slot to the free-list (spec.md §3).
func (b *Bus) DeleteSocket(h Handle) error {
	b.tableMu.Lock()
	idx := h.index()
	if int(idx) >= MaxSockets {
		b.tableMu.Unlock()
		return ErrSocketNotFound
	}
	s := b.sockets[idx]
	if s == nil || s.version != h.version() {
		b.tableMu.Unlock()
		return ErrSocketNotFound
	}
	b.sockets[idx] = nil
	b.free = append(b.free, idx)
	b.metrics.setSocketCount(len(b.sockets) - len(b.free))
	b.tableMu.Unlock()

	s.mu.Lock()
	s.head, s.tail = nil, nil
	s.alloc.Close()
	s.mu.Unlock()
	return nil
}
