package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"docsema/internal/diag"
	"docsema/internal/driver"
	"docsema/internal/fix"
	"docsema/internal/source"
)

func newFixCmd(g *globalOptions) *cobra.Command {
	var (
		all    bool
		dryRun bool
		codes  []string
	)
	cmd := &cobra.Command{
		Use:   "fix [flags] <file.dact|directory>",
		Short: "Apply suggested fixes to action scripts",
		Long:  "Check the scripts, then apply the first fix (or every fix with --all) suggested by the diagnostics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := fix.Options{Mode: fix.ModeFirst, DryRun: dryRun}
			if all {
				opts.Mode = fix.ModeAll
			}
			for _, id := range codes {
				c, ok := diag.ParseCode(id)
				if !ok {
					return fmt.Errorf("unknown diagnostic code %q", id)
				}
				opts.Codes = append(opts.Codes, c)
			}

			table, err := g.cfg.Registry()
			if err != nil {
				return err
			}
			dopts := driver.Options{
				Table:          table,
				MaxDiagnostics: g.maxDiagnostics,
				Logger:         g.logger,
			}

			target := args[0]
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("fix: %w", err)
			}
			var (
				fs      *source.FileSet
				results []*driver.Result
			)
			if info.IsDir() {
				fs, results, err = driver.CheckDir(cmd.Context(), target, dopts)
			} else {
				var res *driver.Result
				fs, res, err = driver.CheckFile(cmd.Context(), target, dopts)
				results = []*driver.Result{res}
			}
			if err != nil {
				return err
			}

			var diagnostics []diag.Diagnostic
			for _, r := range results {
				r.Bag.Sort()
				diagnostics = append(diagnostics, r.Bag.Items()...)
			}
			res, applyErr := fix.Apply(fs, diagnostics, opts)
			return printFixResult(cmd.OutOrStdout(), res, applyErr, dryRun)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "apply every non-conflicting fix instead of the first one")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the rewritten scripts instead of saving them")
	cmd.Flags().StringSliceVar(&codes, "code", nil, "only apply fixes for these diagnostic codes (e.g. REF1001)")
	return cmd
}

func printFixResult(w io.Writer, res *fix.Result, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			fmt.Fprintf(w, "  %s [%s] %s (%d edits)\n", item.Title, item.Code.ID(), item.Path, item.Edits)
		}
	}
	if len(res.Files) > 0 {
		if dryRun {
			for _, change := range res.Files {
				fmt.Fprintf(w, "--- %s (%d edits)\n", change.Path, change.Edits)
				if _, err := w.Write(change.Content); err != nil {
					return err
				}
			}
		} else {
			fmt.Fprintln(w, "Updated files:")
			for _, change := range res.Files {
				fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.Edits)
			}
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, skip.Code.ID(), skip.Reason)
		}
	}
	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
