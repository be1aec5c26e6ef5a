package archive

import "os"

// dataSource abstracts the bundled resource data blob: either memory-mapped
// (the common case for a read-only bundled archive) or accessed via pread on
// platforms/paths where mmap isn't available (spec.md §4.A "Read path":
// "mmapped if available, otherwise pread from the .arcd file handle").
type dataSource interface {
	readAt(off, size uint32) ([]byte, error)
	close() error
}

// fileDataSource reads directly from an open *os.File with pread, copying
// into a caller-owned buffer each time. Used as the portable fallback and
// for the liveupdate data file, which per spec.md §4.A "Read path" step 1 is
// "never mmapped".
type fileDataSource struct {
	f *os.File
}

func newFileDataSource(f *os.File) *fileDataSource {
	return &fileDataSource{f: f}
}

func (d *fileDataSource) readAt(off, size uint32) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := d.f.ReadAt(buf, int64(off)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *fileDataSource) close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

// memDataSource serves reads from an in-memory (possibly mmapped) byte
// slice without copying; callers must not retain slices past close().
type memDataSource struct {
	buf []byte
	rel func() error
}

func (d *memDataSource) readAt(off, size uint32) ([]byte, error) {
	end := uint64(off) + uint64(size)
	if end > uint64(len(d.buf)) {
		return nil, ErrIoError
	}
	return d.buf[off:end], nil
}

func (d *memDataSource) close() error {
	if d.rel == nil {
		return nil
	}
	return d.rel()
}
