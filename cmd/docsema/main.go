package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"docsema/internal/config"
	"docsema/internal/prof"
	"docsema/internal/version"
)

// errDiagnostics завершает процесс с кодом 1 без печати: диагностики уже выведены.
var errDiagnostics = errors.New("diagnostics reported errors")

type globalOptions struct {
	color          string
	quiet          bool
	timings        bool
	maxDiagnostics int
	configPath     string
	logLevel       string

	profile prof.Options

	cfg      *config.Config
	logger   zerolog.Logger
	profiler *prof.Session
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "docsema",
		Short:         "Semantic checks for documentation comments",
		Long:          `docsema replays recorded comment actions (*.dact) against declarations and reports documentation problems`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	// Глобальные флаги
	root.PersistentFlags().StringVar(&g.color, "color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().BoolVar(&g.quiet, "quiet", false, "suppress non-essential output")
	root.PersistentFlags().BoolVar(&g.timings, "timings", false, "show timing information")
	root.PersistentFlags().IntVar(&g.maxDiagnostics, "max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to docsema.toml (default: search upwards from the working directory)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (off|error|warn|info|debug)")

	root.AddCommand(newCheckCmd(g))
	root.AddCommand(newDumpCmd(g))
	root.AddCommand(newFixCmd(g))
	root.AddCommand(newCommandsCmd(g))
	root.AddCommand(newVersionCmd(g))

	// Профилирование
	root.PersistentFlags().StringVar(&g.profile.CPU, "cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().StringVar(&g.profile.Mem, "mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().StringVar(&g.profile.Trace, "runtime-trace", "", "write a runtime trace to this file")
	for _, sub := range root.Commands() {
		g.wrapProfiling(sub)
	}
	return root
}

// wrapProfiling останавливает профили после RunE, в том числе при ошибке.
func (g *globalOptions) wrapProfiling(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if stopErr := g.profiler.Stop(); stopErr != nil && err == nil {
				err = stopErr
			}
		}()
		return run(cmd, args)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func (g *globalOptions) setup(cmd *cobra.Command) error {
	switch g.color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", g.color)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), g.logLevel)
	if err != nil {
		return err
	}
	g.logger = logger

	if g.configPath != "" {
		g.cfg, err = config.Load(g.configPath)
	} else {
		g.cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}
	if g.cfg.Path != "" {
		g.logger.Debug().Str("path", g.cfg.Path).Msg("config loaded")
	}
	if !cmd.Flags().Changed("max-diagnostics") {
		g.maxDiagnostics = g.cfg.Analysis.MaxDiagnostics
	}
	if g.maxDiagnostics < 0 {
		return fmt.Errorf("--max-diagnostics must not be negative")
	}
	if g.profile.Enabled() {
		if g.profiler, err = prof.Start(g.profile); err != nil {
			return err
		}
	}
	return nil
}

// newLogger пишет в w; ConsoleWriter только для терминала.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	var lvl zerolog.Level
	switch strings.ToLower(level) {
	case "off", "none":
		return zerolog.Nop(), nil
	case "error":
		lvl = zerolog.ErrorLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "debug":
		lvl = zerolog.DebugLevel
	default:
		return zerolog.Nop(), fmt.Errorf("invalid --log-level value %q (expected off|error|warn|info|debug)", level)
	}
	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func (g *globalOptions) useColor(w io.Writer) bool {
	switch g.color {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(w)
}

// isTerminal проверяет, является ли w терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- fd fits in int
}
