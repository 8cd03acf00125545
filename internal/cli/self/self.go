package self

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/logging"
)

// DefaultRepository is where releases of srihash are published.
const DefaultRepository = "nightconcept/srihash"

// NewSelfCommand creates a new command for self-management.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the srihash CLI application itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update srihash to the latest version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Specify a custom GitHub update source as 'owner/repo' (e.g., '" + DefaultRepository + "')",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable verbose output",
					},
				},
				Action: updateAction,
			},
		},
	}
}

// parseCurrentVersion accepts "vX.Y.Z" or "X.Y.Z".
func parseCurrentVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing current version '%s': %w. Ensure version is like vX.Y.Z or X.Y.Z", version, err)
	}
	return v, nil
}

// resolveRepository validates an 'owner/repo' slug, falling back to
// DefaultRepository when source is empty.
func resolveRepository(source string) (string, error) {
	if source == "" {
		return DefaultRepository, nil
	}
	parts := strings.Split(source, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid --source format. Expected 'owner/repo', got: %s", source)
	}
	return source, nil
}

func updateAction(c *cli.Context) error {
	logger := logging.Setup(c.App.ErrWriter, c.Bool("verbose"))
	out := c.App.Writer
	currentVersionStr := c.App.Version

	currentSemVer, err := parseCurrentVersion(currentVersionStr)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error %v.", err), 1)
	}
	logger.WithField("version", currentSemVer.String()).Debug("parsed current version")

	repoSlug, err := resolveRepository(c.String("source"))
	if err != nil {
		return cli.Exit(err.Error()+".", 1)
	}
	logger.WithField("repository", repoSlug).Debug("using GitHub update source")

	ghSource, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating GitHub source: %v", err), 1)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source: ghSource,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to initialize updater: %v", err), 1)
	}

	logger.Debug("checking for latest version")
	latestRelease, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error detecting latest version: %v", err), 1)
	}

	if !found {
		_, _ = fmt.Fprintf(out, "Current version %s is already the latest.\n", currentVersionStr)
		return nil
	}

	logger.WithField("version", latestRelease.Version()).WithField("url", latestRelease.URL).Debug("latest release detected")
	if latestRelease.ReleaseNotes != "" {
		logger.Debugf("release notes:\n%s", latestRelease.ReleaseNotes)
	}

	if !latestRelease.GreaterThan(currentSemVer.String()) {
		_, _ = fmt.Fprintf(out, "Current version %s is already the latest or newer.\n", currentVersionStr)
		return nil
	}

	_, _ = fmt.Fprintf(out, "New version available: %s (current: %s)\n", latestRelease.Version(), currentVersionStr)

	if c.Bool("check") {
		return nil
	}

	if !c.Bool("yes") {
		_, _ = fmt.Fprint(out, "Do you want to update? (y/N): ")
		input, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
		if strings.TrimSpace(strings.ToLower(input)) != "y" {
			_, _ = fmt.Fprintln(out, "Update cancelled.")
			return nil
		}
	}

	_, _ = fmt.Fprintf(out, "Updating to %s...\n", latestRelease.Version())
	execPath, err := os.Executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Could not get executable path: %v", err), 1)
	}
	logger.WithField("path", execPath).Debug("replacing executable")

	if err := updater.UpdateTo(c.Context, latestRelease, execPath); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update: %v", err), 1)
	}

	_, _ = fmt.Fprintf(out, "Successfully updated to version %s.\n", latestRelease.Version())
	return nil
}
