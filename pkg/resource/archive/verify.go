package archive

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/sync/errgroup"
)

// digestFor returns a fresh hash.Hash for algo, or an error for an unknown
// enum value.
func digestFor(algo HashAlgorithm) (hash.Hash, error) {
	switch algo {
	case HashAlgorithmMD5:
		return md5.New(), nil
	case HashAlgorithmSHA1:
		return sha1.New(), nil
	case HashAlgorithmSHA256:
		return sha256.New(), nil
	case HashAlgorithmSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown hash algorithm %d", ErrFormatError, algo)
	}
}

// VerifyManifest reads every entry's resource bytes from a (by digest)
// and recomputes its content hash against the manifest's declared
// resource-hash algorithm, running comparisons concurrently — this is the
// only place in the archive layer doing meaningful concurrent I/O, so it's
// the natural home for golang.org/x/sync/errgroup rather than a bespoke
// WaitGroup+error-channel. The first mismatch or read failure cancels the
// remaining work and is returned.
func VerifyManifest(ctx context.Context, a *Archive, m *Manifest) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, entry := range m.Entries {
		entry := entry
		if entry.Flags&ManifestEntryExcluded != 0 {
			continue
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			buf, err := a.Read(entry.URLHash)
			if err != nil {
				return fmt.Errorf("archive: verify %s: %w", entry.URL, err)
			}

			h, err := digestFor(m.ResourceHashAlgorithm)
			if err != nil {
				return err
			}
			h.Write(buf)
			sum := h.Sum(nil)

			if string(sum) != string(entry.ContentHash) {
				return fmt.Errorf("archive: content hash mismatch for %s", entry.URL)
			}
			return nil
		})
	}

	return g.Wait()
}
