package archive

import (
	"context"
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyManifestDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	digest := []byte{0, 0, 0, 1}
	base := writeTestArchive(t, dir, "game", [][]byte{digest}, [][]byte{[]byte("correct bytes")}, []bool{false})

	a, err := Open(base)
	require.NoError(t, err)
	defer a.Close()

	goodSum := md5.Sum([]byte("correct bytes"))
	m := &Manifest{
		ResourceHashAlgorithm: HashAlgorithmMD5,
		Entries: []ManifestEntry{
			{URL: "/ok.stub", URLHash: digest, ContentHash: goodSum[:]},
		},
	}
	require.NoError(t, VerifyManifest(context.Background(), a, m))

	badSum := md5.Sum([]byte("wrong bytes"))
	m.Entries[0].ContentHash = badSum[:]
	require.Error(t, VerifyManifest(context.Background(), a, m))
}
