package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// InsertResource adds a new resource to the liveupdate overlay: it computes
// the sorted insertion index, rejects duplicates, appends the bytes to the
// liveupdate data file, splices a new hash/entry pair into a freshly
// allocated index, and atomically replaces both the in-memory index and the
// on-disk liveupdate.arci (spec.md §4.A "Insertion (liveupdate)"). Failure
// at any step leaves the prior archive untouched.
func (a *Archive) InsertResource(digest []byte, buf []byte, compressed bool) error {
	if a.liveupdateData == nil || a.liveupdateDataFile == nil {
		return fmt.Errorf("%w: no liveupdate overlay mounted", ErrIoError)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.liveupdateIndex
	if idx == nil {
		idx = emptyLiveupdateIndex(a.index.hashLength)
	}

	pos, exists := idx.insertionIndex(digest)
	if exists {
		return ErrAlreadyExists
	}

	offset, err := appendToDataFile(a.liveupdateDataFile, buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}

	flags := flagLiveupdate
	csize := uint32(uncompressedSentinel)
	if compressed {
		flags |= flagCompressed
		csize = uint32(len(buf))
	}

	newEntry := entryData{
		resourceOffset: offset,
		resourceSize:   uint32(len(buf)),
		compressedSize: csize,
		flags:          flags,
	}

	next := spliceIndex(idx, pos, digest, newEntry)

	if err := persistIndex(a.liveupdatePath, next); err != nil {
		return err
	}

	a.liveupdateIndex = next
	return nil
}

// spliceIndex returns a new index with hashDigest/entry inserted at pos,
// shifting everything at/after pos down by one slot (mirrors
// resource_archive.cpp's shift-and-memcpy sequence in InsertResource).
func spliceIndex(idx *index, pos int, hashDigest []byte, e entryData) *index {
	n := int(idx.entryCount)
	hashes := make([]byte, (n+1)*HashLength)
	entries := make([]entryData, n+1)

	copy(hashes, idx.hashes[:pos*HashLength])
	copy(entries, idx.entries[:pos])

	padded := paddedHash(hashDigest)
	copy(hashes[pos*HashLength:(pos+1)*HashLength], padded[:])
	entries[pos] = e

	copy(hashes[(pos+1)*HashLength:], idx.hashes[pos*HashLength:])
	copy(entries[pos+1:], idx.entries[pos:])

	h := idx.header
	h.entryCount = uint32(n + 1)
	return &index{header: h, hashes: hashes, entries: entries}
}

func emptyLiveupdateIndex(hashLength uint32) *index {
	return &index{
		header: header{version: Version, hashLength: hashLength},
	}
}

// appendToDataFile seeks to the end of f and writes buf, returning the
// offset the bytes were written at.
func appendToDataFile(f *os.File, buf []byte) (uint32, error) {
	off, err := f.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, err
	}
	if _, err := f.Write(buf); err != nil {
		return 0, err
	}
	return uint32(off), nil
}

// persistIndex serializes idx and writes it to path via write-temp-then-
// rename (spec.md §4.A: "Atomically replace the in-memory archive index
// ... and persist it to liveupdate.arci via write-to-temp-then-rename"),
// using natefinch/atomic for the write-and-rename step.
func persistIndex(path string, idx *index) error {
	buf := marshalIndex(idx)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}
	return nil
}

// marshalIndex encodes idx back into its on-disk layout, recomputing the
// index MD5 over the hash and entry tables.
func marshalIndex(idx *index) []byte {
	n := int(idx.entryCount)
	hashesTotal := n * HashLength
	entriesTotal := n * entrySize

	h := idx.header
	h.entryOffset = headerSize
	h.hashOffset = uint32(headerSize + entriesTotal)

	buf := make([]byte, headerSize+entriesTotal+hashesTotal)
	for i, e := range idx.entries {
		encodeEntry(e, buf[int(h.entryOffset)+i*entrySize:])
	}
	copy(buf[h.hashOffset:], idx.hashes)

	h.indexMD5 = md5Sum(buf[headerSize:])
	encodeHeader(h, buf)
	return buf
}
