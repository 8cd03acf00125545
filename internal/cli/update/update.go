package update

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/core/config"
	"github.com/nightconcept/srihash/internal/core/hasher"
	"github.com/nightconcept/srihash/internal/core/lockfile"
	"github.com/nightconcept/srihash/internal/logging"
)

// NewUpdateCommand creates a new cli.Command for the "update" command.
func NewUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Recomputes the digests recorded in the integrity manifest",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "algorithm",
				Aliases: []string{"a"},
				Usage:   "Switch the updated entries to this algorithm",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Action: func(c *cli.Context) error {
			logger := logging.Setup(c.App.ErrWriter, c.Bool("verbose"))

			cfg, err := config.Load(".")
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading %s: %v", config.ConfigFileName, err), 1)
			}

			lf, err := lockfile.Load(".", cfg.Manifest)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading %s: %v", cfg.Manifest, err), 1)
			}

			targets := c.Args().Slice()
			if len(targets) == 0 {
				targets = lf.Paths()
				if len(targets) == 0 {
					_, _ = fmt.Fprintf(c.App.Writer, "No files recorded in %s to update.\n", cfg.Manifest)
					return nil
				}
			}
			logger.WithField("count", len(targets)).Debug("updating manifest entries")

			computer := hasher.New(hasher.WithLogger(logger))

			type job struct {
				path      string
				algorithm string
				pending   *hasher.Pending
			}
			var jobs []job
			for _, target := range targets {
				path := lockfile.Key(target)
				entry, ok := lf.Files[path]
				if !ok {
					logger.WithField("file", target).Warn("not recorded in manifest, skipping")
					continue
				}
				algorithm := entry.Algorithm
				if c.IsSet("algorithm") {
					algorithm = c.String("algorithm")
				}
				opts := hasher.FromFile(path).WithHash(algorithm).WithPrefix(true)
				p, err := computer.HashOptions(opts)
				if err != nil {
					return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
				}
				jobs = append(jobs, job{path: path, algorithm: opts.Algorithm(), pending: p})
			}

			failed := 0
			for _, j := range jobs {
				digest, err := j.pending.Wait(c.Context)
				if err != nil {
					failed++
					logger.WithField("file", j.path).WithError(err).Error("could not update entry")
					continue
				}
				previous := lf.Files[j.path].Integrity
				lf.Record(j.path, j.algorithm, digest)
				if previous == digest {
					_, _ = fmt.Fprintf(c.App.Writer, "Unchanged '%s'.\n", j.path)
				} else {
					_, _ = fmt.Fprintf(c.App.Writer, "Updated '%s': %s\n", j.path, digest)
				}
			}

			if err := lockfile.Save(".", cfg.Manifest, lf); err != nil {
				return cli.Exit(fmt.Sprintf("Error saving %s: %v", cfg.Manifest, err), 1)
			}

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("Error: %d of %d entries could not be updated.", failed, len(jobs)), 1)
			}
			return nil
		},
	}
}
