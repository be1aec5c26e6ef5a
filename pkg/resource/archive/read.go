package archive

import (
	"fmt"

	"github.com/klauspost/compress/lz4"
)

// DecryptFunc is the pluggable decryption hook spec.md §4.A describes
// ("the factory exposes a single 'set decryption function' hook"). The
// default is xteaDecrypt; callers may override it via Archive.SetDecryptFunc.
type DecryptFunc func(buf []byte) error

// read resolves entry's bytes: liveupdate data file, or the bundled data
// source (mmap/pread), then decrypts and decompresses as the flags direct.
// Mirrors resource_archive.cpp's Read, collapsing its four branch
// combinations (mem-mapped × liveupdate × compressed × encrypted) into one
// linear pipeline since Go's dataSource abstraction already hides the
// mmap/file distinction.
func (a *Archive) read(e entryData) ([]byte, error) {
	var src dataSource
	if e.isLiveupdate() {
		if a.liveupdateData == nil {
			return nil, fmt.Errorf("%w: liveupdate entry but no liveupdate data file mounted", ErrIoError)
		}
		src = a.liveupdateData
	} else {
		src = a.data
	}

	readSize := e.resourceSize
	if e.isCompressed() {
		readSize = e.compressedSize
	}

	raw, err := src.readAt(e.resourceOffset, readSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoError, err)
	}

	// raw may alias mmapped memory; decryption/decompression never mutate
	// caller-visible state in place without first taking an owned copy.
	buf := append([]byte(nil), raw...)

	if e.isEncrypted() {
		if err := a.decrypt(buf); err != nil {
			return nil, fmt.Errorf("archive: decrypt failed: %w", err)
		}
	}

	if !e.isCompressed() {
		return buf, nil
	}

	out := make([]byte, e.resourceSize)
	n, err := lz4.UncompressBlock(buf, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBufferTooSmall, err)
	}
	if uint32(n) != e.resourceSize {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", ErrBufferTooSmall, n, e.resourceSize)
	}
	return out, nil
}
