package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elizafairlady/go-vdom/ui/demo"
	"github.com/elizafairlady/go-vdom/ui/host"
	"github.com/elizafairlady/go-vdom/ui/script"
)

// NewAppsCommand lists the registered applications.
func NewAppsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the example applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range demo.Apps() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", a.Name, a.Description)
			}
			return nil
		},
	}
}

// NewDumpCommand renders an application, applies actions to it and
// prints the resulting tree.
func NewDumpCommand(opts *RootOptions) *cobra.Command {
	var (
		actions []string
		stdin   bool
	)

	cmd := &cobra.Command{
		Use:   "dump <app>",
		Short: "Render an application and print its document tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ok := demo.Lookup(args[0])
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown app %q (see vdom apps)", args[0]))
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log := opts.logger(cmd.ErrOrStderr(), cfg)

			h := host.New(app.Root, cfg, log)
			if err := h.Start(); err != nil {
				return WrapExitError(ExitFailure, "rendering "+app.Name, err)
			}
			for _, line := range actions {
				if err := h.ProcessAction(line); err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("action %q", line), err)
				}
			}
			if stdin {
				if err := serve(cmd, h); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if opts.outline(out) {
				fmt.Fprint(out, h.Outline())
			} else {
				fmt.Fprint(out, h.TreeText())
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&actions, "action", "a", nil, `action line to apply before dumping, e.g. "click sel=button" (repeatable)`)
	cmd.Flags().BoolVar(&stdin, "stdin", false, "also apply action lines read from standard input, after any -a actions")
	return cmd
}

// serve feeds action lines from the command's input to h. Blank lines
// and lines starting with # are skipped. The first failing line stops
// the dump.
func serve(cmd *cobra.Command, h *host.Host) error {
	lines := make(chan string)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	var failed error
	err := h.Serve(ctx, lines, func(line string, err error) {
		if err != nil && failed == nil {
			failed = WrapExitError(ExitFailure, fmt.Sprintf("action %q", line), err)
			cancel()
		}
	})
	if failed != nil {
		return failed
	}
	return err
}

// NewRunCommand runs scenario files.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var transcript bool

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenario scripts against the example applications",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log := opts.logger(cmd.ErrOrStderr(), cfg)
			out := cmd.OutOrStdout()

			failed := 0
			for _, path := range args {
				s, err := script.Load(path)
				if err != nil {
					return WrapExitError(ExitCommandError, "loading scenario", err)
				}
				res, err := script.Run(s, cfg, log)
				switch {
				case errors.Is(err, script.ErrUnknownApp):
					return WrapExitError(ExitCommandError, "running "+s.Name, err)
				case err != nil:
					failed++
					fmt.Fprintf(out, "FAIL %s\n%v\n", s.Name, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%d steps, rev %d)\n", s.Name, len(res.Steps), res.Rev)
				if transcript {
					fmt.Fprint(out, res.Transcript())
				}
			}
			if failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", failed, len(args)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&transcript, "transcript", "t", false, "print each passing scenario's transcript")
	return cmd
}
