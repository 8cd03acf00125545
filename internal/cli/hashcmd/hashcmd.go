package hashcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/core/config"
	"github.com/nightconcept/srihash/internal/core/hasher"
	"github.com/nightconcept/srihash/internal/core/lockfile"
	"github.com/nightconcept/srihash/internal/logging"
)

// fileResult is one line of `hash` output.
type fileResult struct {
	File      string `json:"file"`
	Algorithm string `json:"algorithm"`
	Integrity string `json:"integrity,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`

	prefixed bool
}

// recordedIntegrity is the prefixed form stored in the manifest regardless
// of --no-prefix.
func (r fileResult) recordedIntegrity() string {
	if r.prefixed {
		return r.Integrity
	}
	return r.Algorithm + "-" + r.Integrity
}

// HashCommand defines the structure for the "hash" command.
var HashCommand = &cli.Command{
	Name:      "hash",
	Usage:     "Computes the SRI digest of one or more files",
	ArgsUsage: "<file> [file...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "algorithm",
			Aliases: []string{"a"},
			Usage:   fmt.Sprintf("Hash algorithm (%s)", strings.Join(hasher.Algorithms(), ", ")),
		},
		&cli.BoolFlag{
			Name:  "no-prefix",
			Usage: "Print the bare base64 digest without the '<algorithm>-' prefix",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print results as JSON",
		},
		&cli.BoolFlag{
			Name:    "write",
			Aliases: []string{"w"},
			Usage:   "Record the digests in the integrity manifest",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() == 0 {
			return cli.Exit("Error: at least one <file> argument is required.", 1)
		}
		files := cCtx.Args().Slice()

		logger := logging.Setup(cCtx.App.ErrWriter, cCtx.Bool("verbose"))

		cfg, err := config.Load(".")
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error loading %s: %v", config.ConfigFileName, err), 1)
		}
		logger.WithFields(logrus.Fields{
			"hash":     cfg.Hash,
			"prefix":   cfg.Prefixed(),
			"manifest": cfg.Manifest,
		}).Debug("configuration loaded")

		computer := hasher.New(hasher.WithLogger(logger))

		// Start every file before waiting on any, so reads overlap.
		results := make([]fileResult, len(files))
		pending := make([]*hasher.Pending, len(files))
		for i, file := range files {
			opts := cfg.Options(file)
			if cCtx.IsSet("algorithm") {
				opts = opts.WithHash(cCtx.String("algorithm"))
			}
			if cCtx.Bool("no-prefix") {
				opts = opts.WithPrefix(false)
			}
			results[i] = fileResult{File: file, Algorithm: opts.Algorithm(), prefixed: opts.Prefixed()}

			p, err := computer.HashOptions(opts)
			if err != nil {
				results[i].Error = err.Error()
				continue
			}
			pending[i] = p
		}

		failed := 0
		for i, p := range pending {
			if p == nil {
				failed++
				continue
			}
			digest, err := p.Wait(cCtx.Context)
			if err != nil {
				failed++
				results[i].Error = err.Error()
				var ioErr *hasher.IOError
				if errors.As(err, &ioErr) {
					results[i].Code = ioErr.Code()
				}
				continue
			}
			results[i].Integrity = digest
		}

		if cCtx.Bool("json") {
			out, err := gojson.MarshalIndent(results, "", "  ")
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error encoding results: %v", err), 1)
			}
			_, _ = fmt.Fprintln(cCtx.App.Writer, string(out))
		} else {
			printResults(cCtx, results)
		}

		if cCtx.Bool("write") {
			if err := record(cfg.Manifest, results); err != nil {
				return cli.Exit(fmt.Sprintf("Error updating %s: %v", cfg.Manifest, err), 1)
			}
			logger.WithField("manifest", cfg.Manifest).Info("manifest updated")
		}

		if failed > 0 {
			return cli.Exit(fmt.Sprintf("Error: %d of %d files could not be hashed.", failed, len(files)), 1)
		}
		return nil
	},
}

func printResults(cCtx *cli.Context, results []fileResult) {
	digestColor := color.New(color.FgYellow).SprintFunc()
	pathColor := color.New(color.FgHiBlack).SprintFunc()
	errColor := color.New(color.FgRed).SprintFunc()

	for _, r := range results {
		if r.Error != "" {
			_, _ = fmt.Fprintf(cCtx.App.ErrWriter, "%s %s\n", errColor("error:"), r.Error)
			continue
		}
		_, _ = fmt.Fprintf(cCtx.App.Writer, "%s  %s\n", digestColor(r.Integrity), pathColor(r.File))
	}
}

// record stores every successful result in the manifest.
func record(manifestName string, results []fileResult) error {
	lf, err := lockfile.Load(".", manifestName)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		lf.Record(r.File, r.Algorithm, r.recordedIntegrity())
	}
	return lockfile.Save(".", manifestName, lf)
}
