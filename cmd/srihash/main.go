// Command srihash prints Subresource Integrity digests of files.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/cli/hashcmd"
	"github.com/nightconcept/srihash/internal/cli/initcmd"
	"github.com/nightconcept/srihash/internal/cli/list"
	"github.com/nightconcept/srihash/internal/cli/remove"
	"github.com/nightconcept/srihash/internal/cli/self"
	"github.com/nightconcept/srihash/internal/cli/update"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "srihash",
		Usage:   "Computes Subresource Integrity digests of files",
		Version: version,
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			hashcmd.HashCommand,
			initcmd.GetInitCommand(),
			list.ListCmd,
			remove.RemoveCommand(),
			update.NewUpdateCommand(),
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
