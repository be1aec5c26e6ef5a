// Package archive implements the on-disk/mmapped resource archive format
// (component A of the engine core): a sorted hash index paired with a data
// blob, optionally overlaid by a liveupdate index/data pair. Grounded on
// resource_archive.cpp/.h and resource_archive_private.h (see DESIGN.md);
// the page-free binary search and shift-and-splice insertion mirror those
// files closely, translated into Go's byte-slice idiom in place of raw
// pointer arithmetic over `ArchiveIndex*`.
package archive

import (
	"encoding/binary"
	"fmt"
)

// Version is the archive index format version. Unlike the original engine,
// which bumps this in lockstep with engine releases, this port pins it to
// the Go port's own format revision; mismatches are always fatal at load.
const Version uint32 = 1

// HashLength is the fixed, zero-padded width reserved for each content
// hash slot in the index (spec.md §4.A: "hash width ≤ 64 bytes").
const HashLength = 64

// headerSize is the byte length of the fixed index header, matching the
// field layout documented in spec.md §4.A:
//
//	u32 version
//	u32 pad
//	u64 userdata
//	u32 entry_count
//	u32 entry_offset
//	u32 hash_offset
//	u32 hash_length
//	u8  index_md5[16]
const headerSize = 4 + 4 + 8 + 4 + 4 + 4 + 4 + 16

// entrySize is the byte length of one on-disk EntryData record.
const entrySize = 4 + 4 + 4 + 4

// entryFlag bits, matching resource_archive_private.h's EntryFlag enum.
type entryFlag uint32

const (
	flagEncrypted entryFlag = 1 << iota
	flagCompressed
	flagLiveupdate
)

// uncompressedSentinel marks an entry whose resource_compressed_size field
// should be read as "stored uncompressed" rather than a real size.
const uncompressedSentinel = 0xFFFFFFFF

// header is the decoded form of the fixed-size index header.
type header struct {
	version        uint32
	userdata       uint64
	entryCount     uint32
	entryOffset    uint32
	hashOffset     uint32
	hashLength     uint32
	indexMD5       [16]byte
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, fmt.Errorf("%w: index shorter than header (%d bytes)", ErrFormatError, len(buf))
	}
	var h header
	be := binary.BigEndian
	h.version = be.Uint32(buf[0:4])
	h.userdata = be.Uint64(buf[8:16])
	h.entryCount = be.Uint32(buf[16:20])
	h.entryOffset = be.Uint32(buf[20:24])
	h.hashOffset = be.Uint32(buf[24:28])
	h.hashLength = be.Uint32(buf[28:32])
	copy(h.indexMD5[:], buf[32:48])
	return h, nil
}

func encodeHeader(h header, buf []byte) {
	be := binary.BigEndian
	be.PutUint32(buf[0:4], h.version)
	be.PutUint32(buf[4:8], 0) // pad
	be.PutUint64(buf[8:16], h.userdata)
	be.PutUint32(buf[16:20], h.entryCount)
	be.PutUint32(buf[20:24], h.entryOffset)
	be.PutUint32(buf[24:28], h.hashOffset)
	be.PutUint32(buf[28:32], h.hashLength)
	copy(buf[32:48], h.indexMD5[:])
}

// entryData is one decoded on-disk EntryData record (spec.md §3 "Archive
// entry"): the resource's location and size in the data file, its optional
// compressed size, and a bitset of encrypted/compressed/liveupdate flags.
type entryData struct {
	resourceOffset uint32
	resourceSize   uint32
	compressedSize uint32 // uncompressedSentinel if stored uncompressed
	flags          entryFlag
}

func (e entryData) isCompressed() bool  { return e.compressedSize != uncompressedSentinel }
func (e entryData) isEncrypted() bool   { return e.flags&flagEncrypted != 0 }
func (e entryData) isLiveupdate() bool  { return e.flags&flagLiveupdate != 0 }

func decodeEntry(buf []byte) entryData {
	be := binary.BigEndian
	return entryData{
		resourceOffset: be.Uint32(buf[0:4]),
		resourceSize:   be.Uint32(buf[4:8]),
		compressedSize: be.Uint32(buf[8:12]),
		flags:          entryFlag(be.Uint32(buf[12:16])),
	}
}

func encodeEntry(e entryData, buf []byte) {
	be := binary.BigEndian
	be.PutUint32(buf[0:4], e.resourceOffset)
	be.PutUint32(buf[4:8], e.resourceSize)
	be.PutUint32(buf[8:12], e.compressedSize)
	be.PutUint32(buf[12:16], uint32(e.flags))
}

// paddedHash returns digest zero-padded (or truncated, which the index
// writer must never do) to HashLength bytes.
func paddedHash(digest []byte) [HashLength]byte {
	var out [HashLength]byte
	copy(out[:], digest)
	return out
}
