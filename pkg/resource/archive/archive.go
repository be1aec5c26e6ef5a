package archive

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Archive is a mounted archive: a bundled index+data pair, optionally
// overlaid by a liveupdate index+data pair that receives insertions and is
// searched before the bundled index on lookup; the two indexes are kept
// separate, not merged (spec.md §4.A, §6 "Liveupdate storage layout").
type Archive struct {
	mu sync.RWMutex

	index *index
	data  dataSource

	liveupdatePath     string
	liveupdateIndex    *index
	liveupdateData     dataSource
	liveupdateDataFile *os.File

	decrypt DecryptFunc
}

// Open mounts the bundled archive at basePath (basePath + ".arci" / ".arcd"),
// memory-mapping the data file when the platform supports it (spec.md §4.A
// "Read path": "mmapped if available, otherwise pread").
func Open(basePath string) (*Archive, error) {
	indexPath := basePath + ".arci"
	dataPath := basePath + ".arcd"

	indexBuf, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoError, err)
	}
	idx, err := decodeIndex(indexBuf)
	if err != nil {
		return nil, err
	}

	dataFile, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoError, err)
	}
	// mmapFile takes ownership of dataFile: it either maps it and closes
	// the descriptor (mmap_unix.go) or wraps it for pread and keeps it open
	// (mmap_other.go).
	data, err := mmapFile(dataFile)
	if err != nil {
		data = newFileDataSource(dataFile)
	}

	return &Archive{
		index:   idx,
		data:    data,
		decrypt: xteaDecrypt,
	}, nil
}

// MountLiveupdate opens (or creates) the liveupdate.arci/.arcd pair at dir
// and layers it over the bundled archive for subsequent lookups and
// insertions (spec.md §6 "Liveupdate storage layout").
func (a *Archive) MountLiveupdate(dir string) error {
	indexPath := dir + "/liveupdate.arci"
	dataPath := dir + "/liveupdate.arcd"

	dataFile, err := os.OpenFile(dataPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoError, err)
	}

	var idx *index
	if buf, err := os.ReadFile(indexPath); err == nil {
		idx, err = decodeIndex(buf)
		if err != nil {
			dataFile.Close()
			return err
		}
	}

	a.mu.Lock()
	a.liveupdatePath = indexPath
	a.liveupdateIndex = idx
	a.liveupdateData = newFileDataSource(dataFile)
	a.liveupdateDataFile = dataFile
	a.mu.Unlock()
	return nil
}

// SetDecryptFunc installs a custom decryption hook for encrypted entries,
// overriding the default XTEA implementation (spec.md §4.A: "the
// decryption implementation is pluggable").
func (a *Archive) SetDecryptFunc(fn DecryptFunc) {
	a.mu.Lock()
	a.decrypt = fn
	a.mu.Unlock()
}

// Lookup resolves digest (a hash of the canonical path, computed by the
// caller per the manifest's declared hash algorithm) to an entry, checking
// the liveupdate overlay first (spec.md §6: "Entries within reference the
// data file, never the bundled one").
func (a *Archive) Lookup(digest []byte) (entryData, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.liveupdateIndex != nil {
		if e, ok := a.liveupdateIndex.findEntry(digest); ok {
			return e, true
		}
	}
	return a.index.findEntry(digest)
}

// Read resolves digest to its entry (as Lookup) and returns its decoded
// bytes, or ErrNotFound if no entry matches.
func (a *Archive) Read(digest []byte) ([]byte, error) {
	e, ok := a.Lookup(digest)
	if !ok {
		return nil, ErrNotFound
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.read(e)
}

// EntryCount returns the number of entries in the bundled index (spec.md
// §4.A's GetEntryCount, supplemented: liveupdate entries are additional and
// not counted here).
func (a *Archive) EntryCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int(a.index.entryCount)
}

// Close releases the bundled and liveupdate data sources.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	if a.data != nil {
		if err := a.data.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.liveupdateData != nil {
		if err := a.liveupdateData.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NormalizePath canonicalizes a resource path the way the archive's hash
// domain expects: forward slashes, no duplicate slashes, no trailing slash
// (spec.md §4.A note: "Filenames must be on a normalized and canonical
// form, i.e. no duplicated slashes, .. or . in path").
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(path, "/")
}
