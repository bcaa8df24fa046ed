package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aretw0/chatflow/internal/presentation/tui"
	"github.com/aretw0/chatflow/pkg/adapters/flowfile"
	"github.com/aretw0/chatflow/pkg/validation"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("flow cannot be saved")

var validateCmd = &cobra.Command{
	Use:   "validate <flow-file>",
	Short: "Check a flow file the way Save does",
	Long: `Loads a YAML or JSON flow and runs save validation: the flow must have no
loops and exactly one node without incoming edges. Document problems such as
edges to unknown nodes are listed as warnings.

With --watch the file is checked again every time it changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg, false)
		watch, _ := cmd.Flags().GetBool("watch")

		src := flowfile.NewSource(args[0], flowfile.WithLogger(logger))
		render := tui.RendererFor(os.Stdout)
		rules := validation.Default()

		if !watch {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), src, rules, render)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchValidate(ctx, cmd.OutOrStdout(), src, rules, render, logger)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Re-validate whenever the file changes")
}

func runValidate(ctx context.Context, w io.Writer, src *flowfile.Source, rules *validation.Engine, render func(string) (string, error)) error {
	g, err := src.Load(ctx)
	if err != nil {
		return err
	}
	report := rules.Evaluate(g)

	md := tui.ReportMarkdown(filepath.Base(src.Path()), g, report)
	if warnings := flowfile.Lint(g); len(warnings) > 0 {
		md += "\n## Warnings\n\n"
		for _, warn := range warnings {
			md += "- " + warn + "\n"
		}
	}

	out, err := render(md)
	if err != nil {
		out = md
	}
	fmt.Fprint(w, out)

	if !report.OK() {
		return fmt.Errorf("%w: %s", errValidationFailed, report.Message)
	}
	return nil
}

func watchValidate(ctx context.Context, w io.Writer, src *flowfile.Source, rules *validation.Engine, render func(string) (string, error), logger *slog.Logger) error {
	changes, err := src.Watch(ctx)
	if err != nil {
		return err
	}

	report := func() {
		if err := runValidate(ctx, w, src, rules, render); err != nil {
			fmt.Fprintf(w, "\n%v\n", err)
		}
	}

	report()
	logger.Info("Watching for changes", "path", src.Path())
	for range changes {
		report()
	}
	return nil
}
