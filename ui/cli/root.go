// Package cli implements the vdom command: listing the example apps,
// dumping their rendered documents and running scenario scripts.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/elizafairlady/go-vdom/ui/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "auto" | "outline" | "wire"
	Config  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"auto", "outline", "wire"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "vdom",
		Short:         "vdom - render and drive component trees",
		Long:          "Mounts the example applications on an in-memory document, dumps the rendered tree and runs scripted sessions against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "auto", "tree output format (auto|outline|wire)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "runtime configuration file (YAML)")

	cmd.AddCommand(NewAppsCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// loadConfig returns the configuration named by --config, or the
// defaults.
func (o *RootOptions) loadConfig() (config.Config, error) {
	if o.Config == "" {
		return config.Default(), nil
	}
	c, err := config.Load(o.Config)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "loading config", err)
	}
	return c, nil
}

// logger returns a text logger on w at the configured level, or at
// debug level with --verbose.
func (o *RootOptions) logger(w io.Writer, cfg config.Config) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// outline reports whether trees written to w should be shown as an
// outline rather than in the wire format.
func (o *RootOptions) outline(w io.Writer) bool {
	switch o.Format {
	case "outline":
		return true
	case "wire":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
