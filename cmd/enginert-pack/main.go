// enginert-pack is the offline archive builder: it walks a directory tree
// of loose resource files and produces a bundled .arci/.arcd archive plus
// a manifest, the build-time counterpart to pkg/resource/archive's runtime
// Open/Read path. Modeled on rony4d-go-opera-asset's urfave/cli.v1 + logrus
// + Sentry error-reporting stack, the one CLI in the corpus that wires all
// four of those dependencies together.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "enginert-pack"
	app.Usage = "build a bundled archive from a directory of loose resource files"
	app.Version = version
	app.Writer = os.Stdout

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "input, i",
			Usage: "directory of loose resource files to pack",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "output archive `basepath` (writes basepath.arci/.arcd)",
		},
		cli.StringSliceFlag{
			Name:  "engine-version",
			Usage: "engine version string(s) the manifest whitelists",
		},
		cli.StringFlag{
			Name:  "sign-key",
			Usage: "path to a PEM RSA private key; if set, the manifest is signed with it",
		},
		cli.StringFlag{
			Name:  "sentry-dsn",
			Usage: "Sentry DSN for build-failure error reporting (optional)",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log at debug level",
		},
	}

	app.Action = func(c *cli.Context) error {
		log := newLogger(c.Bool("verbose"), c.String("sentry-dsn"))

		input := c.String("input")
		output := c.String("output")
		if input == "" || output == "" {
			cli.ShowAppHelp(c)
			return cli.NewExitError("both --input and --output are required", 2)
		}

		if err := packDirectory(log, input, output, c.StringSlice("engine-version"), c.String("sign-key")); err != nil {
			log.WithError(err).Error("archive build failed")
			return cli.NewExitError(err.Error(), 1)
		}
		log.Info("archive build succeeded")
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
