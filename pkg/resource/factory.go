// Package resource implements component (A) of the engine core: a
// content-addressed, reference-counted resource factory sitting on top of
// the archive format in pkg/resource/archive. Grounded on resource.h's
// Get/Release/GetRaw/ReloadResource contract (spec.md §4.A) and on the
// teacher's pkg/cache.go for the slot-table shape (guarded here by one plain
// sync.Mutex) and pkg/loader.go for singleflight-based de-duplication of
// concurrent byte fetches.
package resource

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Voskan/enginert/pkg/hashreg"
	"github.com/Voskan/enginert/pkg/resource/archive"
)

// ByteSource resolves a normalized path to its raw bytes, abstracting over
// the archive, plain filesystem, and (via httpcache.go) an HTTP byte cache
// (spec.md §4.A "locate the file bytes (archive first, then filesystem)").
type ByteSource interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// archiveSource resolves bytes from a mounted archive, hashing the
// normalized path with the factory's own hash registry to match the
// archive's content-hash domain.
type archiveSource struct {
	a    *archive.Archive
	hash *hashreg.Registry
}

func (s *archiveSource) Fetch(_ context.Context, path string) ([]byte, error) {
	digest := pathDigest(s.hash, path)
	buf, err := s.a.Read(digest)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func pathDigest(reg *hashreg.Registry, path string) []byte {
	h := hashreg.String64(reg, archive.NormalizePath(path))
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(h >> (56 - 8*i))
	}
	return out
}

// filesystemSource resolves bytes directly from disk, rooted at dir, used
// as the fallback when the archive has no matching entry (or none is
// mounted at all — the common case during local development).
type filesystemSource struct {
	dir string
}

func (s *filesystemSource) Fetch(_ context.Context, path string) ([]byte, error) {
	buf, err := os.ReadFile(s.dir + archive.NormalizePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return buf, nil
}

// chainSource tries each source in order, returning the first hit.
type chainSource struct {
	sources []ByteSource
}

func (s *chainSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for _, src := range s.sources {
		buf, err := src.Fetch(ctx, path)
		if err == nil {
			return buf, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return nil, lastErr
}

// Factory owns the descriptor table, loader registry, and byte sources for
// one resource domain. Concurrency (spec.md §4.A): "used from a single
// thread per instance; the only cross-thread interaction is the reload
// message ... posts work back to the owning thread via the message bus."
// Get/Release/ReloadResource therefore assume single-threaded callers;
// fetchBytes (shared with GetRaw) is the one operation safe to call
// concurrently, deduplicated via singleflight.
type Factory struct {
	log  *zap.Logger
	hash *hashreg.Registry

	mu      sync.Mutex
	table   *slotTable
	loaders map[string]Loader

	inProgress map[uint64]struct{} // cycle guard for recursive Get

	reloadCallbacks []ReloadCallback

	source    ByteSource
	group     singleflight.Group
	httpCache *HTTPCache

	metrics *factoryMetrics
}

// ReloadCallback is notified after ReloadResource successfully recreates a
// resource in place (spec.md §4.A "notifies every reload-callback with the
// descriptor and path").
type ReloadCallback func(path string, resourcePtr any)

// Config bundles the construction parameters for New (mirrors the teacher's
// functional-option config shape, generalized with a plain struct here
// since the factory's knobs are all fixed at construction, unlike the
// runtime-tunable cache options in pkg/config.go).
type Config struct {
	Capacity       int
	Archive        *archive.Archive
	FilesystemRoot string
	// HTTPCacheDir, if non-empty, opens a badger-backed HTTPCache rooted
	// at this directory and appends it to the byte-source chain, so
	// http:// and https:// resource paths are served from a durable,
	// restart-surviving cache instead of re-fetched over the network
	// every time (spec.md §6: "surrounding host code configures the
	// factory via a URI ... http://, https://, or archive path").
	HTTPCacheDir string
	Hash         *hashreg.Registry
	Log          *zap.Logger
	Metrics      *prometheus.Registry
}

// New constructs a Factory with a slot table of the given capacity.
func New(cfg Config) *Factory {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 4096
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Hash == nil {
		cfg.Hash = hashreg.NewRegistry()
	}

	var sources []ByteSource
	if cfg.Archive != nil {
		sources = append(sources, &archiveSource{a: cfg.Archive, hash: cfg.Hash})
	}
	sources = append(sources, &filesystemSource{dir: cfg.FilesystemRoot})

	f := &Factory{
		log:        cfg.Log,
		hash:       cfg.Hash,
		table:      newSlotTable(cfg.Capacity),
		loaders:    make(map[string]Loader),
		inProgress: make(map[uint64]struct{}),
		metrics:    newFactoryMetrics(cfg.Metrics),
	}

	if cfg.HTTPCacheDir != "" {
		hc, err := NewHTTPCache(cfg.HTTPCacheDir)
		if err != nil {
			f.log.Error("resource: failed to open http cache, http:// sources will be unavailable",
				zap.String("dir", cfg.HTTPCacheDir), zap.Error(err))
		} else {
			f.httpCache = hc
			sources = append(sources, hc)
		}
	}

	f.source = &chainSource{sources: sources}
	return f
}

// Close releases resources the Factory itself opened — currently just the
// HTTPCache's badger database, if one was configured via HTTPCacheDir.
func (f *Factory) Close() error {
	if f.httpCache != nil {
		return f.httpCache.Close()
	}
	return nil
}

// AddReloadCallback registers a function invoked after every successful
// ReloadResource.
func (f *Factory) AddReloadCallback(cb ReloadCallback) {
	f.mu.Lock()
	f.reloadCallbacks = append(f.reloadCallbacks, cb)
	f.mu.Unlock()
}

// LoadContext is handed to CreateFunc/DestroyFunc/RecreateFunc so they can
// pull in or release dependent resources through the same factory instance
// (spec.md §4.A: "Recursive Get calls from within a create_fn are allowed
// and participate in the same table").
type LoadContext struct {
	f   *Factory
	ctx context.Context
}

func (c *LoadContext) Get(path string) (any, error)     { return c.f.Get(c.ctx, path) }
func (c *LoadContext) Release(r any, path string) error  { return c.f.Release(r, path) }

// fetchBytes resolves path's raw bytes through the byte-source chain,
// de-duplicating concurrent fetches of the same path via singleflight —
// the one piece of the factory safe to call from multiple loader-thread
// goroutines at once (grounded on the teacher's pkg/loader.go loaderGroup).
func (f *Factory) fetchBytes(ctx context.Context, path string) ([]byte, error) {
	v, err, _ := f.group.Do(path, func() (any, error) {
		return f.source.Fetch(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Get resolves path to a live, typed resource, incrementing its reference
// count if already loaded (spec.md §4.A "Get(path) semantics").
func (f *Factory) Get(ctx context.Context, path string) (any, error) {
	nameHash := hashreg.String64(f.hash, archive.NormalizePath(path))

	f.mu.Lock()
	if d, ok := f.table.lookup(nameHash); ok {
		d.refCount++
		f.mu.Unlock()
		f.metrics.incHit()
		return d.resourcePtr, nil
	}
	if _, inProgress := f.inProgress[nameHash]; inProgress {
		f.mu.Unlock()
		return nil, ErrLoopError
	}
	f.inProgress[nameHash] = struct{}{}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.inProgress, nameHash)
		f.mu.Unlock()
	}()

	ext := extensionOf(path)
	f.mu.Lock()
	loader, ok := f.loaders[ext]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for extension %q", ErrInvalid, ext)
	}

	buf, err := f.fetchBytes(ctx, path)
	if err != nil {
		return nil, err
	}

	lctx := &LoadContext{f: f, ctx: ctx}
	acquiredBefore := f.snapshotRefs()

	res, err := loader.Create(lctx, buf)
	if err != nil {
		f.rollback(acquiredBefore)
		return nil, fmt.Errorf("resource: create %q: %w", path, err)
	}

	d := &descriptor{
		nameHash:    nameHash,
		path:        path,
		extension:   ext,
		resourcePtr: res,
		refCount:    1,
	}

	f.mu.Lock()
	if err := f.table.insert(d); err != nil {
		f.mu.Unlock()
		_ = loader.Destroy(lctx, res)
		f.rollback(acquiredBefore)
		return nil, err
	}
	f.mu.Unlock()

	f.metrics.incMiss()
	f.metrics.setLive(f.table.len())
	return res, nil
}

// snapshotRefs captures the current refCount of every live descriptor, used
// by rollback to detect and release resources newly acquired by a failed
// create_fn (spec.md §4.A: "Failure rolls back: any resources acquired
// during the failed create are released").
func (f *Factory) snapshotRefs() map[uint64]uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[uint64]uint32, len(f.table.byName))
	for hash, idx := range f.table.byName {
		snap[hash] = f.table.slots[idx].refCount
	}
	return snap
}

// rollback releases every descriptor whose refCount increased (or which is
// entirely new) since before, one decrement per resource so a create_fn
// that acquired N dependents via ctx.Get is fully unwound.
func (f *Factory) rollback(before map[uint64]uint32) {
	f.mu.Lock()
	type pending struct {
		d     *descriptor
		times int
	}
	var toRelease []pending
	for hash, idx := range f.table.byName {
		d := f.table.slots[idx]
		prior, existed := before[hash]
		if !existed {
			toRelease = append(toRelease, pending{d: d, times: int(d.refCount)})
			continue
		}
		if d.refCount > prior {
			toRelease = append(toRelease, pending{d: d, times: int(d.refCount - prior)})
		}
	}
	f.mu.Unlock()

	for _, p := range toRelease {
		for i := 0; i < p.times; i++ {
			f.releaseDescriptor(p.d)
		}
	}
}

// Release decrements resource's reference count, invoking the registered
// DestroyFunc and freeing the slot once it reaches zero (spec.md §4.A
// "Release(resource)").
func (f *Factory) Release(resourcePtr any, path string) error {
	nameHash := hashreg.String64(f.hash, archive.NormalizePath(path))

	f.mu.Lock()
	d, ok := f.table.lookup(nameHash)
	if !ok || d.resourcePtr != resourcePtr {
		f.mu.Unlock()
		return ErrNotFound
	}
	f.mu.Unlock()

	f.releaseDescriptor(d)
	return nil
}

func (f *Factory) releaseDescriptor(d *descriptor) {
	f.mu.Lock()
	if d.refCount == 0 {
		f.mu.Unlock()
		return
	}
	d.refCount--
	dead := d.refCount == 0
	loader := f.loaders[d.extension]
	if dead {
		f.table.remove(d.nameHash)
	}
	f.mu.Unlock()

	if dead {
		lctx := &LoadContext{f: f, ctx: context.Background()}
		if err := loader.Destroy(lctx, d.resourcePtr); err != nil {
			f.log.Error("resource destroy failed", zap.String("path", d.path), zap.Error(err))
		}
		f.metrics.setLive(f.table.len())
	}
}

// GetRaw bypasses the typed cache entirely and returns a freshly-fetched
// byte buffer owned by the caller (spec.md §4.A "GetRaw(path)").
func (f *Factory) GetRaw(ctx context.Context, path string) ([]byte, error) {
	return f.fetchBytes(ctx, path)
}

// ReloadResource re-fetches path's bytes and invokes the loader's
// RecreateFunc in place, so handles held by clients remain valid (spec.md
// §4.A "ReloadResource(path)"). Returns ErrNotFound without mutating
// anything if the resource is not currently loaded, or if the underlying
// bytes are gone.
func (f *Factory) ReloadResource(ctx context.Context, path string) error {
	nameHash := hashreg.String64(f.hash, archive.NormalizePath(path))

	f.mu.Lock()
	d, ok := f.table.lookup(nameHash)
	f.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	buf, err := f.fetchBytes(ctx, path)
	if err != nil {
		return ErrNotFound
	}

	f.mu.Lock()
	loader, hasLoader := f.loaders[d.extension]
	f.mu.Unlock()
	if !hasLoader || loader.Recreate == nil {
		return fmt.Errorf("%w: extension %q does not support reload", ErrInvalid, d.extension)
	}

	lctx := &LoadContext{f: f, ctx: ctx}
	if err := loader.Recreate(lctx, d.resourcePtr, buf); err != nil {
		return fmt.Errorf("resource: recreate %q: %w", path, err)
	}

	f.mu.Lock()
	callbacks := append([]ReloadCallback(nil), f.reloadCallbacks...)
	f.mu.Unlock()
	for _, cb := range callbacks {
		cb(path, d.resourcePtr)
	}
	return nil
}

// Len returns the number of live, typed resources currently held.
func (f *Factory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.table.len()
}
