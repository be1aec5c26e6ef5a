// enginert-console is an interactive debug REPL over a running engine's
// message bus and resource factory: it stands in for the scripting
// surface the engine would otherwise expose to Lua, letting an operator
// drive sockets, raw resource fetches and reloads, and scene node
// inspection by hand. Modeled on calvinalkan-agent-task's cmd/sloty
// liner-based REPL (history file, tab completion, Ctrl-C abort).
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Voskan/enginert/pkg/bus"
	"github.com/Voskan/enginert/pkg/hashreg"
	"github.com/Voskan/enginert/pkg/resource"
)

func main() {
	fsRoot := flag.String("root", ".", "filesystem root resource paths are resolved against")
	archivePath := flag.String("archive", "", "base path of a bundled archive to mount (optional)")
	engineVersion := flag.String("engine-version", "", "engine version checked against the archive manifest's whitelist, if one is present")
	trustedKey := flag.String("trusted-key", "", "PEM RSA public key the archive manifest's signature must verify against, if one is present")
	flag.Parse()

	log := zap.NewNop()
	hash := hashreg.NewRegistry()
	hash.SetReverseEnabled(true)

	b := bus.New(log, hash, nil)

	factoryCfg := resource.Config{
		FilesystemRoot: *fsRoot,
		Hash:           hash,
		Log:            log,
	}
	if *archivePath != "" {
		a, err := openArchive(*archivePath, *engineVersion, *trustedKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, "enginert-console:", err)
			os.Exit(1)
		}
		factoryCfg.Archive = a
	}
	f := resource.New(factoryCfg)

	repl := &REPL{bus: b, factory: f, hash: hash}
	if err := repl.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "enginert-console:", err)
		os.Exit(1)
	}
}
