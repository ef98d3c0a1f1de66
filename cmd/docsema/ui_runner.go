package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"docsema/internal/diag"
	"docsema/internal/driver"
	"docsema/internal/source"
	"docsema/internal/ui"
)

type checkOutcome struct {
	fs      *source.FileSet
	results []*driver.Result
	err     error
}

// checkDirWithUI runs driver.CheckDir while a progress view renders to out.
func checkDirWithUI(ctx context.Context, dir string, opts driver.Options, out io.Writer) (*source.FileSet, []*driver.Result, error) {
	files, err := driver.ListScripts(dir)
	if err != nil {
		return nil, nil, err
	}
	for i := range files {
		files[i] = uiKey(files[i])
	}

	events := make(chan ui.Event, 256)
	opts.OnStart = func(path string) {
		events <- ui.Event{File: uiKey(path), Status: ui.StatusChecking}
	}
	opts.OnFile = func(r *driver.Result) {
		errs, warns := r.Bag.Count(diag.SevError), r.Bag.Count(diag.SevWarning)
		events <- ui.Event{
			File:     uiKey(r.Path),
			Status:   ui.StatusFor(errs, warns),
			Errors:   errs,
			Warnings: warns,
			Cached:   r.Cached,
		}
	}

	outcomeCh := make(chan checkOutcome, 1)
	go func() {
		fs, results, err := driver.CheckDir(ctx, dir, opts)
		outcomeCh <- checkOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(fmt.Sprintf("checking %s", dir), files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// view закрыт раньше времени: не блокируем воркеров
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}

func uiKey(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
