package resource

// httpcache.go implements a ByteSource for http:// and https:// resource
// URIs, backed by a badger key-value store so repeated fetches of the same
// URL (e.g. across engine restarts, or across many descriptors referencing
// the same remote texture-set) don't re-hit the network. This is the
// resource factory's one networked source; spec.md §6 "Environment and
// CLI" only says the factory is "configured via a URI ... http://", so the
// caching policy itself is this port's own addition, grounded on badger's
// embedded-KV idiom as reused from the teacher's arena-cache (which caches
// in-process values; this repurposes the same embedded-store approach for
// durable byte caching across process runs).
import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// HTTPCache fetches resource bytes over HTTP(S), persisting them in an
// embedded badger database keyed by the full URL so a restart does not
// re-download unchanged resources.
type HTTPCache struct {
	db     *badger.DB
	client *http.Client
}

// NewHTTPCache opens (or creates) a badger database at dir for caching
// fetched HTTP resource bytes.
func NewHTTPCache(dir string) (*HTTPCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("resource: open http cache: %w", err)
	}
	return &HTTPCache{
		db:     db,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Close releases the underlying badger database.
func (c *HTTPCache) Close() error {
	return c.db.Close()
}

// Fetch implements ByteSource: it first checks the local cache, then falls
// back to an HTTP GET, persisting a successful response before returning.
// Paths that are not http(s) URLs are declined with ErrNotFound so an
// HTTPCache can sit in a Factory's source chain alongside the archive and
// filesystem sources without issuing a network request for every ordinary
// asset path.
func (c *HTTPCache) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, ErrNotFound
	}

	if buf, ok := c.lookup(url); ok {
		return buf, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resource: http cache: unexpected status %d for %s", resp.StatusCode, url)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := c.store(url, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *HTTPCache) lookup(url string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(url))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	return out, err == nil
}

func (c *HTTPCache) store(url string, buf []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(url), buf)
	})
}
