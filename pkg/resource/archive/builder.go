package archive

import (
	"fmt"
	"os"
	"sort"
)

// BuildEntry is one resource destined for a freshly built archive: its
// content digest (the index's sort/search key, padded to HashLength) and
// its raw payload, already compressed by the caller if desired.
type BuildEntry struct {
	Digest         []byte
	Payload        []byte
	CompressedSize uint32 // 0 means "stored uncompressed"
	Encrypted      bool
}

// Build writes a complete .arci/.arcd pair at outBasePath from entries, the
// offline counterpart to Open/decodeIndex: entries are sorted by digest
// (mirroring the bundled index's binary-search precondition) and laid out
// back to back in the data file. The index itself is encoded via
// marshalIndex, the same routine persistIndex uses for the liveupdate
// index, so the on-disk layout and MD5 computation have one definition
// shared between the bundled and liveupdate paths. Grounded on
// resource_archive.cpp's offline archive-building tool, described at a
// high level in spec.md §4.A/§6.
func Build(outBasePath string, entries []BuildEntry) error {
	sorted := append([]BuildEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return compareDigests(sorted[i].Digest, sorted[j].Digest) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if compareDigests(sorted[i-1].Digest, sorted[i].Digest) == 0 {
			return fmt.Errorf("%w: duplicate digest in archive build set", ErrFormatError)
		}
	}

	hashLength := 0
	if len(sorted) > 0 {
		hashLength = len(sorted[0].Digest)
	}
	for _, e := range sorted {
		if len(e.Digest) != hashLength || hashLength == 0 || hashLength > HashLength {
			return fmt.Errorf("%w: all digests in a build set must share one non-zero length <= %d", ErrFormatError, HashLength)
		}
	}

	dataBuf := make([]byte, 0, 1<<16)
	hashes := make([]byte, len(sorted)*HashLength)
	entryRecords := make([]entryData, len(sorted))
	for i, e := range sorted {
		off := uint32(len(dataBuf))
		dataBuf = append(dataBuf, e.Payload...)

		compressedSize := e.CompressedSize
		if compressedSize == 0 {
			compressedSize = uncompressedSentinel
		}
		var flags entryFlag
		if e.Encrypted {
			flags |= flagEncrypted
		}
		if compressedSize != uncompressedSentinel {
			flags |= flagCompressed
		}
		entryRecords[i] = entryData{
			resourceOffset: off,
			resourceSize:   uint32(len(e.Payload)),
			compressedSize: compressedSize,
			flags:          flags,
		}

		padded := paddedHash(e.Digest)
		copy(hashes[i*HashLength:(i+1)*HashLength], padded[:])
	}

	idx := &index{
		header: header{
			version:    Version,
			entryCount: uint32(len(sorted)),
			hashLength: uint32(hashLength),
		},
		hashes:  hashes,
		entries: entryRecords,
	}

	if err := os.WriteFile(outBasePath+".arci", marshalIndex(idx), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}
	if err := os.WriteFile(outBasePath+".arcd", dataBuf, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}
	return nil
}

func compareDigests(a, b []byte) int {
	pa, pb := paddedHash(a), paddedHash(b)
	for i := range pa {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
