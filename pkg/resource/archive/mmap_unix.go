//go:build linux || darwin

package archive

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps the whole of f read-only, returning a dataSource backed
// directly by the kernel page cache. Grounded on the mmap/munmap pairing
// shown in the corpus's uffd_linux.go; this port needs only
// a flat read-only mapping, not the userfaultfd machinery that file builds
// on, so only unix.Mmap/unix.Munmap are reused.
func mmapFile(f *os.File) (dataSource, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(fi.Size())
	if size == 0 {
		return &memDataSource{buf: nil, rel: func() error { return nil }}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	// The mapping stays valid after the descriptor is closed; Open() hands
	// us ownership of f and expects mmapFile to dispose of it one way or
	// another.
	f.Close()
	return &memDataSource{
		buf: data,
		rel: func() error { return unix.Munmap(data) },
	}, nil
}
