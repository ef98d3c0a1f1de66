package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docsema/internal/diag"
	"docsema/internal/diagfmt"
	"docsema/internal/driver"
	"docsema/internal/observ"
	"docsema/internal/source"
	"docsema/internal/version"
)

type checkOptions struct {
	format           string
	jobs             int
	withNotes        bool
	suggest          bool
	warningsAsErrors bool
	noWarnings       bool
	diskCache        bool
	ui               string
	fullPath         bool
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	o := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [flags] <file.dact|directory>",
		Short: "Check an action script or every *.dact file within a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, o, args[0])
		},
	}
	cmd.Flags().StringVar(&o.format, "format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().IntVar(&o.jobs, "jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().BoolVar(&o.withNotes, "with-notes", false, "include diagnostic notes in output")
	cmd.Flags().BoolVar(&o.suggest, "suggest", false, "include fix suggestions in output")
	cmd.Flags().BoolVar(&o.warningsAsErrors, "warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&o.noWarnings, "no-warnings", false, "ignore warnings in diagnostics")
	cmd.Flags().BoolVar(&o.diskCache, "disk-cache", false, "reuse results of unchanged scripts from the on-disk cache")
	cmd.Flags().StringVar(&o.ui, "ui", "off", "progress view for directories (auto|on|off)")
	cmd.Flags().Lookup("ui").NoOptDefVal = "on"
	cmd.Flags().BoolVar(&o.fullPath, "fullpath", false, "emit absolute file paths in output")
	return cmd
}

func runCheck(cmd *cobra.Command, g *globalOptions, o *checkOptions, target string) error {
	switch o.format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unknown format: %s", o.format)
	}
	mode, err := readUIMode(o.ui)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("warnings-as-errors") {
		o.warningsAsErrors = g.cfg.Analysis.WarningsAsErrors
	}
	if o.noWarnings && o.warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if !cmd.Flags().Changed("jobs") {
		o.jobs = g.cfg.Analysis.Jobs
	}

	table, err := g.cfg.Registry()
	if err != nil {
		return err
	}
	opts := driver.Options{
		Table:            table,
		MaxDiagnostics:   g.maxDiagnostics,
		IgnoreWarnings:   o.noWarnings,
		WarningsAsErrors: o.warningsAsErrors,
		EnableTimings:    g.timings,
		Jobs:             o.jobs,
		Logger:           g.logger,
	}
	if o.diskCache || g.cfg.Cache.Enabled {
		if opts.Cache, err = openCache(g.cfg.Cache.Dir); err != nil {
			return err
		}
		g.logger.Debug().Str("dir", opts.Cache.Dir()).Msg("disk cache enabled")
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	var (
		fs      *source.FileSet
		results []*driver.Result
	)
	switch {
	case !st.IsDir():
		var res *driver.Result
		fs, res, err = driver.CheckFile(cmd.Context(), target, opts)
		if err == nil {
			results = []*driver.Result{res}
		}
	case shouldUseTUI(mode, cmd.OutOrStdout()):
		fs, results, err = checkDirWithUI(cmd.Context(), target, opts, cmd.OutOrStdout())
	default:
		fs, results, err = driver.CheckDir(cmd.Context(), target, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := renderResults(out, fs, results, o, g.useColor(out), st.IsDir()); err != nil {
		return err
	}

	errs, warns := 0, 0
	timings := make([]*observ.Report, 0, len(results))
	for _, r := range results {
		errs += r.Bag.Count(diag.SevError)
		warns += r.Bag.Count(diag.SevWarning)
		timings = append(timings, r.Timing)
	}
	if g.timings {
		fmt.Fprint(cmd.ErrOrStderr(), observ.Merge(timings...).Summary())
	}
	if !g.quiet && o.format != "json" && o.format != "sarif" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d errors, %d warnings in %d files\n", errs, warns, len(results))
	}
	if errs > 0 {
		return errDiagnostics
	}
	return nil
}

func openCache(dir string) (*driver.DiskCache, error) {
	if dir != "" {
		return driver.NewDiskCache(dir)
	}
	return driver.OpenDiskCache("docsema")
}

func renderResults(out io.Writer, fs *source.FileSet, results []*driver.Result, o *checkOptions, useColor, isDir bool) error {
	pathMode := diagfmt.PathModeRelative
	if o.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch o.format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     1,
			PathMode:    pathMode,
			ShowNotes:   o.withNotes,
			ShowFixes:   o.suggest,
			ShowPreview: o.suggest,
		}
		first := true
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(out)
			}
			first = false
			if isDir {
				fmt.Fprintf(out, "== %s ==\n", displayPath(fs, r, o.fullPath))
			}
			r.Bag.Sort()
			diagfmt.Pretty(out, r.Bag, fs, prettyOpts)
		}
		return nil
	case "short":
		return diagfmt.Short(out, mergeBags(results), fs, o.withNotes)
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     o.withNotes,
			IncludeFixes:     o.suggest,
			IncludePreviews:  o.suggest,
		}
		if !isDir && len(results) == 1 {
			return diagfmt.JSON(out, results[0].Bag, fs, jsonOpts)
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[displayPath(fs, r, o.fullPath)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts)
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
		return nil
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "docsema",
			ToolVersion:    version.Collect().Version,
			InvocationArgs: os.Args[1:],
		}
		return diagfmt.Sarif(out, mergeBags(results), fs, meta)
	}
	return fmt.Errorf("unknown format: %s", o.format)
}

func mergeBags(results []*driver.Result) *diag.Bag {
	all := diag.NewBag(0)
	for _, r := range results {
		all.Merge(r.Bag)
	}
	return all
}

func displayPath(fs *source.FileSet, r *driver.Result, fullPath bool) string {
	mode := "relative"
	if fullPath {
		mode = "absolute"
	}
	return fs.Get(r.FileID).FormatPath(mode, fs.BaseDir())
}

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "auto":
		return uiModeAuto, nil
	case "on", "true":
		return uiModeOn, nil
	case "", "off", "false":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode, out io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(out)
	}
}
