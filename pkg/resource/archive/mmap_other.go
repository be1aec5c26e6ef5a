//go:build !linux && !darwin

package archive

import "os"

// mmapFile falls back to pread on platforms where this port does not wire
// up mmap (spec.md §4.A: "otherwise pread from the .arcd file handle").
func mmapFile(f *os.File) (dataSource, error) {
	return newFileDataSource(f), nil
}
