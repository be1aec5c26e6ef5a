package main

import (
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// options holds the parsed command-line flags, modeled directly on the
// teacher's arena-cache-inspect options shape (cmd/arena-cache-inspect).
type options struct {
	archive string
	digest  string

	target   string
	json     bool
	watch    bool
	interval time.Duration
	version  bool
}

func parseFlags() *options {
	opts := &options{}

	flag.StringVar(&opts.archive, "archive", "", "inspect a local archive at `basepath` (basepath.arci/.arcd)")
	flag.StringVar(&opts.digest, "digest", "", "hex content digest to look up within --archive")

	flag.StringVar(&opts.target, "target", "", "base URL of a running engine's debug HTTP endpoint")
	flag.BoolVar(&opts.json, "json", false, "print the remote snapshot as JSON instead of a table")
	flag.BoolVar(&opts.watch, "watch", false, "repeat the remote snapshot fetch every --interval")
	flag.DurationVar(&opts.interval, "interval", 2*time.Second, "polling interval for --watch")
	flag.BoolVar(&opts.version, "version", false, "print the inspector's version and exit")

	flag.Parse()

	if opts.archive == "" && opts.target == "" && !opts.version {
		flag.Usage()
		os.Exit(2)
	}

	return opts
}
