package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestIndex(t *testing.T, digests [][]byte) *index {
	t.Helper()
	n := len(digests)
	hashes := make([]byte, n*HashLength)
	entries := make([]entryData, n)
	for i, d := range digests {
		padded := paddedHash(d)
		copy(hashes[i*HashLength:(i+1)*HashLength], padded[:])
		entries[i] = entryData{
			resourceOffset: uint32(i * 100),
			resourceSize:   10,
			compressedSize: uncompressedSentinel,
		}
	}
	return &index{
		header:  header{version: Version, entryCount: uint32(n), hashLength: 4},
		hashes:  hashes,
		entries: entries,
	}
}

func TestFindEntryBinarySearch(t *testing.T) {
	digests := [][]byte{{0, 0, 0, 1}, {0, 0, 0, 5}, {0, 0, 0, 9}, {0, 1, 0, 0}}
	idx := buildTestIndex(t, digests)

	e, ok := idx.findEntry([]byte{0, 0, 0, 5})
	require.True(t, ok)
	assert.Equal(t, uint32(100), e.resourceOffset)

	_, ok = idx.findEntry([]byte{9, 9, 9, 9})
	assert.False(t, ok)
}

func TestInsertionIndexRejectsDuplicate(t *testing.T) {
	digests := [][]byte{{0, 0, 0, 1}, {0, 0, 0, 5}, {0, 0, 0, 9}}
	idx := buildTestIndex(t, digests)

	pos, exists := idx.insertionIndex([]byte{0, 0, 0, 3})
	assert.False(t, exists)
	assert.Equal(t, 1, pos)

	_, exists = idx.insertionIndex([]byte{0, 0, 0, 5})
	assert.True(t, exists)
}

func TestSpliceIndexPreservesOrder(t *testing.T) {
	digests := [][]byte{{0, 0, 0, 1}, {0, 0, 0, 9}}
	idx := buildTestIndex(t, digests)

	next := spliceIndex(idx, 1, []byte{0, 0, 0, 5}, entryData{resourceOffset: 999, compressedSize: uncompressedSentinel})
	require.Equal(t, uint32(3), next.entryCount)

	e, ok := next.findEntry([]byte{0, 0, 0, 5})
	require.True(t, ok)
	assert.Equal(t, uint32(999), e.resourceOffset)

	// Original entries still resolve at their new positions.
	e, ok = next.findEntry([]byte{0, 0, 0, 9})
	require.True(t, ok)
	assert.Equal(t, uint32(100), e.resourceOffset)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := header{version: Version, userdata: 42, entryCount: 3, entryOffset: 48, hashOffset: 96, hashLength: 20}
	buf := make([]byte, headerSize)
	encodeHeader(h, buf)

	got, err := decodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h.version, got.version)
	assert.Equal(t, h.userdata, got.userdata)
	assert.Equal(t, h.entryCount, got.entryCount)
	assert.Equal(t, h.hashLength, got.hashLength)
}
