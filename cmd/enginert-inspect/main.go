// enginert-inspect is the engine's archive/factory inspector: it either
// opens an archive file directly and reports its entry count and
// individual entry sizes, or polls a running engine process's debug HTTP
// endpoint for a resource-factory snapshot. Modeled on the teacher's
// cmd/arena-cache-inspect, generalized to two data sources instead of one.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"net/http"

	"github.com/Voskan/enginert/pkg/resource/archive"
)

var version = "dev"

func main() {
	opts := parseFlags()

	if opts.version {
		fmt.Println(version)
		return
	}

	if opts.archive != "" {
		if err := inspectArchive(opts); err != nil {
			fatal(err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := dumpOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

func inspectArchive(opts *options) error {
	a, err := archive.Open(opts.archive)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Archive:      %s\n", opts.archive)
	fmt.Printf("Entry count:  %d\n", a.EntryCount())

	if opts.digest == "" {
		return nil
	}
	digest, err := hex.DecodeString(opts.digest)
	if err != nil {
		return fmt.Errorf("decoding --digest: %w", err)
	}
	buf, err := a.Read(digest)
	if err != nil {
		return err
	}
	fmt.Printf("Entry %s: %d bytes\n", opts.digest, len(buf))
	return nil
}

func dumpOnce(ctx context.Context, opts *options) error {
	snap, err := fetchSnapshot(ctx, opts.target)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return prettyPrint(snap)
}

func fetchSnapshot(ctx context.Context, base string) (map[string]any, error) {
	url := base + "/debug/enginert/snapshot"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(data map[string]any) error {
	fmt.Printf("Live resources:  %v\n", data["live_resources"])
	fmt.Printf("Cache hits:      %v\n", data["cache_hits_total"])
	fmt.Printf("Cache misses:    %v\n", data["cache_misses_total"])
	fmt.Printf("Open sockets:    %v\n", data["open_sockets"])
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "enginert-inspect:", err)
	os.Exit(1)
}
