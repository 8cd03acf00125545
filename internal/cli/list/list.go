package list

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/core/config"
	"github.com/nightconcept/srihash/internal/core/lockfile"
)

// entryDisplayInfo holds what is shown for one manifest entry.
type entryDisplayInfo struct {
	Path       string
	Integrity  string
	FileExists bool
	StatusInfo string // "missing", "error checking file"
}

// ListCmd defines the structure for the 'list' command.
var ListCmd = &cli.Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Usage:   "Displays the files recorded in the integrity manifest",
	Action: func(c *cli.Context) error {
		cfg, err := config.Load(".")
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error loading %s: %v", config.ConfigFileName, err), 1)
		}

		lf, err := lockfile.Load(".", cfg.Manifest)
		if err != nil {
			// Load handles "not found" itself, so this is a real failure.
			return cli.Exit(fmt.Sprintf("Error loading %s: %v", cfg.Manifest, err), 1)
		}

		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}

		manifestColor := color.New(color.FgMagenta, color.Bold, color.Underline).SprintFunc()
		pathHeaderColor := color.New(color.FgHiBlack, color.Bold, color.Underline).SprintFunc()
		filesHeaderColor := color.New(color.FgCyan, color.Bold).SprintFunc()
		fileColor := color.New(color.FgWhite).SprintFunc()
		integrityColor := color.New(color.FgYellow).SprintFunc()
		statusColor := color.New(color.FgRed).SprintFunc()

		out := c.App.Writer
		_, _ = fmt.Fprintf(out, "%s %s\n", manifestColor(cfg.Manifest), pathHeaderColor(wd))
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, filesHeaderColor("files:"))

		if len(lf.Files) == 0 {
			_, _ = fmt.Fprintf(out, "No files recorded in %s.\n", cfg.Manifest)
			return nil
		}

		for _, path := range lf.Paths() {
			info := entryDisplayInfo{Path: path, Integrity: lf.Files[path].Integrity}

			if _, err := os.Stat(path); err == nil {
				info.FileExists = true
			} else if os.IsNotExist(err) {
				info.StatusInfo = "missing"
			} else {
				info.StatusInfo = "error checking file"
				_, _ = fmt.Fprintf(c.App.ErrWriter, "Warning: could not check status of %s: %v\n", path, err)
			}

			line := fmt.Sprintf("%s %s", fileColor(info.Path), integrityColor(info.Integrity))
			if !info.FileExists {
				line += " " + statusColor("("+info.StatusInfo+")")
			}
			_, _ = fmt.Fprintln(out, line)
		}
		return nil
	},
}
