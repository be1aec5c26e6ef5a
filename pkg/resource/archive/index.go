package archive

import (
	"bytes"
	"crypto/md5"
	"fmt"
)

// index is the in-memory decoded form of an archive index: the header plus
// the two parallel arrays described in resource_archive.h's format comment
// (hash[entry_count] and entry[entry_count], both already sorted
// lexicographically by hash when read from disk).
type index struct {
	header
	hashes  []byte      // entryCount * HashLength bytes, flat
	entries []entryData // parallel to hashes
}

// decodeIndex parses a complete index buffer (as read from an .arci file or
// mapped from memory) into an index, verifying the embedded MD5 as it goes
// (supplemented from spec.md's SUPPLEMENTED FEATURES: "archive index_md5
// verified at mount").
func decodeIndex(buf []byte) (*index, error) {
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.version != Version {
		return nil, fmt.Errorf("%w: got %d want %d", ErrVersionMismatch, h.version, Version)
	}
	if h.hashLength == 0 || h.hashLength > HashLength {
		return nil, fmt.Errorf("%w: hash_length %d out of range", ErrFormatError, h.hashLength)
	}

	hashesTotal := h.entryCount * HashLength
	entriesTotal := h.entryCount * entrySize

	if uint64(h.hashOffset)+uint64(hashesTotal) > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: hash table past end of index", ErrFormatError)
	}
	if uint64(h.entryOffset)+uint64(entriesTotal) > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: entry table past end of index", ErrFormatError)
	}

	hashes := buf[h.hashOffset : h.hashOffset+hashesTotal]

	if err := verifyIndexMD5(h, buf); err != nil {
		return nil, err
	}

	entries := make([]entryData, h.entryCount)
	entryBuf := buf[h.entryOffset : h.entryOffset+entriesTotal]
	for i := range entries {
		entries[i] = decodeEntry(entryBuf[i*entrySize : (i+1)*entrySize])
	}

	return &index{header: h, hashes: append([]byte(nil), hashes...), entries: entries}, nil
}

func md5Sum(buf []byte) [16]byte {
	return md5.Sum(buf)
}

// verifyIndexMD5 recomputes the MD5 over the hash table and entry table
// (everything after the 48-byte fixed header) and compares it to the header's
// recorded digest. A zero digest in the header (as written by tooling that
// predates this check) is treated as "unverified" rather than a mismatch.
func verifyIndexMD5(h header, buf []byte) error {
	if h.indexMD5 == ([16]byte{}) {
		return nil
	}
	sum := md5.Sum(buf[headerSize:])
	if !bytes.Equal(sum[:], h.indexMD5[:]) {
		return fmt.Errorf("%w: index md5 mismatch", ErrFormatError)
	}
	return nil
}

// findEntry binary-searches the sorted hash table for digest, comparing
// only the first hashLength bytes of each 64-byte padded slot (spec.md
// §4.A "Lookup"). Mirrors resource_archive.cpp's FindEntry.
func (ix *index) findEntry(digest []byte) (entryData, bool) {
	n := int(ix.entryCount)
	hl := int(ix.hashLength)
	first, last := 0, n-1
	for first <= last {
		mid := first + (last-first)/2
		slot := ix.hashes[mid*HashLength : mid*HashLength+hl]
		cmp := bytes.Compare(digest[:hl], slot)
		switch {
		case cmp == 0:
			return ix.entries[mid], true
		case cmp > 0:
			first = mid + 1
		default:
			last = mid - 1
		}
	}
	return entryData{}, false
}

// insertionIndex returns the sorted position at which digest should be
// spliced, and whether digest is already present (mirrors
// resource_archive.cpp's CalcInsertionIndex).
func (ix *index) insertionIndex(digest []byte) (int, bool) {
	n := int(ix.entryCount)
	hl := int(ix.hashLength)
	first, last := 0, n-1
	for first <= last {
		mid := first + (last-first)/2
		slot := ix.hashes[mid*HashLength : mid*HashLength+hl]
		cmp := bytes.Compare(digest[:hl], slot)
		switch {
		case cmp == 0:
			return mid, true
		case cmp > 0:
			first = mid + 1
		default:
			last = mid - 1
		}
	}
	return first, false
}
