package resource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResource struct {
	name     string
	destroyed bool
}

func newTestFactory(t *testing.T, root string) *Factory {
	t.Helper()
	return New(Config{Capacity: 16, FilesystemRoot: root})
}

func registerStubLoader(t *testing.T, f *Factory, ext string, destroyed *[]string) {
	t.Helper()
	require.NoError(t, f.RegisterLoader(Loader{
		Extension: ext,
		Create: func(ctx *LoadContext, buf []byte) (any, error) {
			return &stubResource{name: string(buf)}, nil
		},
		Destroy: func(ctx *LoadContext, r any) error {
			*destroyed = append(*destroyed, r.(*stubResource).name)
			return nil
		},
		Recreate: func(ctx *LoadContext, r any, buf []byte) error {
			r.(*stubResource).name = string(buf)
			return nil
		},
	}))
}

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestGetIncrementsRefCountOnRepeatedCalls(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.stub", "hello")

	var destroyed []string
	f := newTestFactory(t, root)
	registerStubLoader(t, f, "stub", &destroyed)

	r1, err := f.Get(context.Background(), "/a.stub")
	require.NoError(t, err)
	r2, err := f.Get(context.Background(), "/a.stub")
	require.NoError(t, err)
	assert.Same(t, r1, r2, "second Get must return the same resource pointer")

	require.NoError(t, f.Release(r1, "/a.stub"))
	assert.Empty(t, destroyed, "resource must survive while ref_count > 0")

	require.NoError(t, f.Release(r2, "/a.stub"))
	assert.Equal(t, []string{"hello"}, destroyed, "destroy_fn must run exactly once when ref_count reaches zero")
}

func TestGetMissingExtensionReturnsInvalid(t *testing.T) {
	root := t.TempDir()
	f := newTestFactory(t, root)
	_, err := f.Get(context.Background(), "/a.unknown")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetMissingFileReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	var destroyed []string
	f := newTestFactory(t, root)
	registerStubLoader(t, f, "stub", &destroyed)

	_, err := f.Get(context.Background(), "/missing.stub")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterLoaderRejectsDuplicateExtension(t *testing.T) {
	f := New(Config{Capacity: 4})
	var destroyed []string
	registerStubLoader(t, f, "stub", &destroyed)

	err := f.RegisterLoader(Loader{
		Extension: "stub",
		Create:    func(*LoadContext, []byte) (any, error) { return nil, nil },
		Destroy:   func(*LoadContext, any) error { return nil },
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterLoaderRejectsLeadingDot(t *testing.T) {
	f := New(Config{Capacity: 4})
	err := f.RegisterLoader(Loader{
		Extension: ".stub",
		Create:    func(*LoadContext, []byte) (any, error) { return nil, nil },
		Destroy:   func(*LoadContext, any) error { return nil },
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRecursiveGetCycleGuard(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.stub", "x")

	f := New(Config{Capacity: 16, FilesystemRoot: root})
	require.NoError(t, f.RegisterLoader(Loader{
		Extension: "stub",
		Create: func(ctx *LoadContext, buf []byte) (any, error) {
			// Recurse on the exact same path while it is still being
			// constructed: must surface ErrLoopError, not deadlock.
			return ctx.Get("/a.stub")
		},
		Destroy: func(*LoadContext, any) error { return nil },
	}))

	_, err := f.Get(context.Background(), "/a.stub")
	assert.ErrorIs(t, err, ErrLoopError)
}

func TestCreateFailureRollsBackAcquiredDependencies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dep.stub", "dep-bytes")
	writeFile(t, root, "bad.stub2", "parent-bytes")

	var destroyed []string
	f := New(Config{Capacity: 16, FilesystemRoot: root})
	registerStubLoader(t, f, "stub", &destroyed)

	require.NoError(t, f.RegisterLoader(Loader{
		Extension: "stub2",
		Create: func(ctx *LoadContext, buf []byte) (any, error) {
			if _, err := ctx.Get("/dep.stub"); err != nil {
				return nil, err
			}
			return nil, assert.AnError
		},
		Destroy: func(*LoadContext, any) error { return nil },
	}))

	_, err := f.Get(context.Background(), "/bad.stub2")
	require.Error(t, err)

	assert.Equal(t, []string{"dep-bytes"}, destroyed, "dependency acquired during the failed create must be released")
	assert.Equal(t, 0, f.Len(), "no descriptor should remain after a failed create")
}

func TestReloadResourceRecreatesInPlace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.stub", "v1")

	var destroyed []string
	var reloaded []string
	f := newTestFactory(t, root)
	registerStubLoader(t, f, "stub", &destroyed)
	f.AddReloadCallback(func(path string, r any) { reloaded = append(reloaded, path) })

	r, err := f.Get(context.Background(), "/a.stub")
	require.NoError(t, err)
	require.Equal(t, "v1", r.(*stubResource).name)

	writeFile(t, root, "a.stub", "v2")
	require.NoError(t, f.ReloadResource(context.Background(), "/a.stub"))

	assert.Equal(t, "v2", r.(*stubResource).name, "handle held by client must reflect the reloaded content")
	assert.Equal(t, []string{"/a.stub"}, reloaded)
}

func TestReloadResourceNotFoundForUnloadedPath(t *testing.T) {
	f := New(Config{Capacity: 4})
	err := f.ReloadResource(context.Background(), "/never-loaded.stub")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPCacheDirWiresIntoSourceChain(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("remote-bytes"))
	}))
	defer srv.Close()

	f := New(Config{Capacity: 4, HTTPCacheDir: t.TempDir()})
	require.NotNil(t, f.httpCache, "HTTPCacheDir must open and wire an HTTPCache into the source chain")
	defer f.Close()

	buf, err := f.GetRaw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "remote-bytes", string(buf))
	assert.Equal(t, 1, hits)

	// Second fetch of the same URL must be served from the badger cache,
	// not a second network round trip.
	buf2, err := f.GetRaw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "remote-bytes", string(buf2))
	assert.Equal(t, 1, hits, "repeated GetRaw must not re-hit the network")
}

func TestGetRawBypassesTypedCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "raw.bin", "raw-bytes")
	f := New(Config{Capacity: 4, FilesystemRoot: root})

	buf, err := f.GetRaw(context.Background(), "/raw.bin")
	require.NoError(t, err)
	assert.Equal(t, "raw-bytes", string(buf))
	assert.Equal(t, 0, f.Len(), "GetRaw must not populate the typed descriptor table")
}
