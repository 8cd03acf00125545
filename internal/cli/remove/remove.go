package remove

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/core/config"
	"github.com/nightconcept/srihash/internal/core/lockfile"
)

// RemoveCommand defines the structure for the 'remove' CLI command.
func RemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Removes files from the integrity manifest",
		ArgsUsage: "<file> [file...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("Error: Missing file argument.", 1)
			}

			cfg, err := config.Load(".")
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading %s: %v", config.ConfigFileName, err), 1)
			}

			lf, err := lockfile.Load(".", cfg.Manifest)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: Failed to load %s: %v", cfg.Manifest, err), 1)
			}

			// Check every path first so a typo leaves the manifest untouched.
			var paths []string
			for _, arg := range c.Args().Slice() {
				if _, ok := lf.Lookup(arg); !ok {
					return cli.Exit(fmt.Sprintf("Error: File '%s' not found in %s.", arg, cfg.Manifest), 1)
				}
				paths = append(paths, lockfile.Key(arg))
			}
			for _, path := range paths {
				lf.Remove(path)
			}

			if err := lockfile.Save(".", cfg.Manifest, lf); err != nil {
				return cli.Exit(fmt.Sprintf("Error: Failed to save %s: %v", cfg.Manifest, err), 1)
			}

			for _, path := range paths {
				_, _ = fmt.Fprintf(c.App.Writer, "Removed '%s' from %s.\n", path, cfg.Manifest)
			}
			return nil
		},
	}
}
