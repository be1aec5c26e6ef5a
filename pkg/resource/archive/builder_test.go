package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildThenOpenRoundTrips(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "game")

	entries := []BuildEntry{
		{Digest: []byte{0, 0, 0, 2}, Payload: []byte("second resource")},
		{Digest: []byte{0, 0, 0, 1}, Payload: []byte("hello world")},
	}
	require.NoError(t, Build(base, entries))

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 2, a.EntryCount())

	buf, err := a.Read([]byte{0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf))

	buf, err = a.Read([]byte{0, 0, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, "second resource", string(buf))
}

func TestBuildRejectsDuplicateDigests(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "dup")

	entries := []BuildEntry{
		{Digest: []byte{0, 0, 0, 1}, Payload: []byte("a")},
		{Digest: []byte{0, 0, 0, 1}, Payload: []byte("b")},
	}
	err := Build(base, entries)
	assert.ErrorIs(t, err, ErrFormatError)
}
