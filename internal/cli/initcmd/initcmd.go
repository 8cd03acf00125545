// Package initcmd implements the "init" command, which writes .srihash.toml.
package initcmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/srihash/internal/core/config"
	"github.com/nightconcept/srihash/internal/core/hasher"
)

// promptWithDefault shows promptText and returns the trimmed answer, or
// defaultValue when the answer is empty.
func promptWithDefault(out io.Writer, reader *bufio.Reader, promptText string, defaultValue string) (string, error) {
	if defaultValue != "" {
		_, _ = fmt.Fprintf(out, "%s (default: %s): ", promptText, defaultValue)
	} else {
		_, _ = fmt.Fprintf(out, "%s: ", promptText)
	}

	input, err := reader.ReadString('\n')
	// EOF on a closed stdin counts as accepting the default.
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input for '%s': %w", promptText, err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

func parseYesNo(answer string) (bool, error) {
	switch strings.ToLower(answer) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected y or n, got %q", answer)
}

// GetInitCommand returns the definition for the "init" command.
func GetInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Creates a .srihash.toml with default hashing options",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Accept all defaults without prompting",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing .srihash.toml",
			},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer

			if _, err := os.Stat(filepath.Join(".", config.ConfigFileName)); err == nil && !c.Bool("force") {
				return cli.Exit(fmt.Sprintf("Error: %s already exists. Use --force to overwrite it.", config.ConfigFileName), 1)
			}

			cfg := config.Default()
			if !c.Bool("yes") {
				reader := bufio.NewReader(c.App.Reader)

				algorithm, err := promptWithDefault(out, reader, "Hash algorithm", cfg.Hash)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				if !hasher.Supported(algorithm) {
					return cli.Exit(fmt.Sprintf("Error: unsupported hash algorithm %q. Choose one of: %s", algorithm, strings.Join(hasher.Algorithms(), ", ")), 1)
				}
				cfg.Hash = strings.ToLower(algorithm)

				answer, err := promptWithDefault(out, reader, "Prefix digests with the algorithm name (y/n)", "y")
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				prefix, err := parseYesNo(answer)
				if err != nil {
					return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
				}
				cfg.Prefix = &prefix

				cfg.Manifest, err = promptWithDefault(out, reader, "Manifest file", cfg.Manifest)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}

			if err := config.Write(".", cfg); err != nil {
				return cli.Exit(fmt.Sprintf("Error writing %s: %v", config.ConfigFileName, err), 1)
			}

			_, _ = fmt.Fprintf(out, "\nWrote %s (hash = %s, prefix = %t, manifest = %s)\n", config.ConfigFileName, cfg.Hash, cfg.Prefixed(), cfg.Manifest)
			return nil
		},
	}
}
