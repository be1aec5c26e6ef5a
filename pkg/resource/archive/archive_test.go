package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestArchive builds a minimal .arci/.arcd pair on disk directly from
// entryData records, bypassing the liveupdate insertion path so these tests
// exercise Open/Lookup/Read against a hand-built bundled archive the way a
// build pipeline's output would look.
func writeTestArchive(t *testing.T, dir, name string, digests [][]byte, payloads [][]byte, encrypt []bool) string {
	t.Helper()
	base := filepath.Join(dir, name)

	dataBuf := []byte{}
	entries := make([]entryData, len(digests))
	for i, p := range payloads {
		buf := append([]byte(nil), p...)
		flags := entryFlag(0)
		if encrypt[i] {
			require.NoError(t, xteaEncrypt(buf))
			flags |= flagEncrypted
		}
		entries[i] = entryData{
			resourceOffset: uint32(len(dataBuf)),
			resourceSize:   uint32(len(p)),
			compressedSize: uncompressedSentinel,
			flags:          flags,
		}
		dataBuf = append(dataBuf, buf...)
	}

	idx := &index{
		header:  header{version: Version, entryCount: uint32(len(digests)), hashLength: 4},
		hashes:  make([]byte, len(digests)*HashLength),
		entries: entries,
	}
	for i, d := range digests {
		padded := paddedHash(d)
		copy(idx.hashes[i*HashLength:(i+1)*HashLength], padded[:])
	}

	require.NoError(t, os.WriteFile(base+".arci", marshalIndex(idx), 0o644))
	require.NoError(t, os.WriteFile(base+".arcd", dataBuf, 0o644))
	return base
}

func TestOpenAndReadUncompressedUnencrypted(t *testing.T) {
	dir := t.TempDir()
	digests := [][]byte{{0, 0, 0, 1}, {0, 0, 0, 2}}
	payloads := [][]byte{[]byte("hello world"), []byte("second resource")}
	base := writeTestArchive(t, dir, "game", digests, payloads, []bool{false, false})

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()

	require.Equal(t, 2, a.EntryCount())

	got, err := a.Read([]byte{0, 0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))

	got, err = a.Read([]byte{0, 0, 0, 2})
	require.NoError(t, err)
	require.Equal(t, "second resource", string(got))
}

func TestReadEncryptedEntry(t *testing.T) {
	dir := t.TempDir()
	digests := [][]byte{{0, 0, 0, 1}}
	payloads := [][]byte{[]byte("top secret bytes")}
	base := writeTestArchive(t, dir, "game", digests, payloads, []bool{true})

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()

	got, err := a.Read([]byte{0, 0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, "top secret bytes", string(got))
}

func TestReadMissingEntry(t *testing.T) {
	dir := t.TempDir()
	base := writeTestArchive(t, dir, "game", [][]byte{{0, 0, 0, 1}}, [][]byte{[]byte("x")}, []bool{false})

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Read([]byte{9, 9, 9, 9})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenRejectsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	base := writeTestArchive(t, dir, "game", [][]byte{{0, 0, 0, 1}}, [][]byte{[]byte("x")}, []bool{false})

	buf, err := os.ReadFile(base + ".arci")
	require.NoError(t, err)
	buf[3] = 0xFF // corrupt the low byte of the big-endian version word
	require.NoError(t, os.WriteFile(base+".arci", buf, 0o644))

	_, err = Open(base)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestMountLiveupdateAndInsert(t *testing.T) {
	dir := t.TempDir()
	bundleDigests := [][]byte{{0, 0, 0, 1}, {0, 0, 0, 9}}
	bundlePayloads := [][]byte{[]byte("bundled one"), []byte("bundled nine")}
	base := writeTestArchive(t, dir, "game", bundleDigests, bundlePayloads, []bool{false, false})

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()

	luDir := t.TempDir()
	require.NoError(t, a.MountLiveupdate(luDir))

	newDigest := []byte{0, 0, 0, 5}
	require.NoError(t, a.InsertResource(newDigest, []byte("liveupdate resource"), false))

	got, err := a.Read(newDigest)
	require.NoError(t, err)
	require.Equal(t, "liveupdate resource", string(got))

	// Duplicate insertion is rejected.
	err = a.InsertResource(newDigest, []byte("again"), false)
	require.ErrorIs(t, err, ErrAlreadyExists)

	// Bundled entries still resolve through the merged lookup.
	got, err = a.Read([]byte{0, 0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, "bundled one", string(got))

	// The on-disk liveupdate index was persisted.
	_, err = os.Stat(filepath.Join(luDir, "liveupdate.arci"))
	require.NoError(t, err)
}

func TestManifestRoundTripWithEngineWhitelist(t *testing.T) {
	m := &Manifest{
		ResourceHashAlgorithm:  HashAlgorithmSHA1,
		SignatureHashAlgorithm: HashAlgorithmSHA256,
		SignatureAlgorithm:     SignatureAlgorithmRSA,
		EngineVersions:         []string{"1.2.3", "1.2.4"},
		Signature:              []byte{1, 2, 3, 4},
		Entries: []ManifestEntry{
			{URL: "/main/main.collectionc", URLHash: []byte{0xAA}, ContentHash: []byte{0xBB, 0xCC}, Flags: ManifestEntryBundled},
		},
	}

	buf := EncodeManifest(m)
	got, err := DecodeManifest(buf)
	require.NoError(t, err)

	require.Equal(t, m.ResourceHashAlgorithm, got.ResourceHashAlgorithm)
	require.Equal(t, m.EngineVersions, got.EngineVersions)
	require.Equal(t, m.Signature, got.Signature)
	require.Len(t, got.Entries, 1)
	require.Equal(t, m.Entries[0].URL, got.Entries[0].URL)
	require.True(t, got.VerifyEngineVersion("1.2.3"))
	require.False(t, got.VerifyEngineVersion("9.9.9"))
}

func TestDecodeManifestRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 8)
	_, err := DecodeManifest(buf)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestNormalizePath(t *testing.T) {
	require.Equal(t, "/main/menu", NormalizePath("main//menu/"))
	require.Equal(t, "/main/menu", NormalizePath("/main/menu"))
}
