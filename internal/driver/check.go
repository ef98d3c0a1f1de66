package driver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"docsema/internal/commands"
	"docsema/internal/comment"
	"docsema/internal/diag"
	"docsema/internal/observ"
	"docsema/internal/script"
	"docsema/internal/sema"
	"docsema/internal/source"
)

// Options содержит опции проверки
type Options struct {
	Table            commands.Table // nil: встроенная таблица
	MaxDiagnostics   int
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	Jobs             int
	Cache            *DiskCache
	Logger           zerolog.Logger // zero value is silent
	// OnStart and OnFile are called from worker goroutines, once per file.
	OnStart func(path string)
	OnFile  func(*Result)
}

// Result is the outcome of checking one script.
type Result struct {
	Path        string
	FileID      source.FileID
	Nodes       *comment.Nodes // nil on a cache hit
	Comments    []Comment      // nil on a cache hit
	NumComments int
	Steps       int
	Bag         *diag.Bag
	Cached      bool
	Timing      *observ.Report
}

func (o *Options) table() commands.Table {
	if o.Table == nil {
		return commands.NewRegistry()
	}
	return o.Table
}

func fingerprint(t commands.Table) string {
	if fp, ok := t.(interface{ Fingerprint() string }); ok {
		return fp.Fingerprint()
	}
	return ""
}

// CheckFile loads one script and checks it.
func CheckFile(ctx context.Context, path string, opts Options) (*source.FileSet, *Result, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	res, err := CheckSource(ctx, fs, id, opts)
	if err != nil {
		return nil, nil, err
	}
	return fs, res, nil
}

// CheckSource checks a script already present in fs.
func CheckSource(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table := opts.table()
	file := fs.Get(id)
	res := &Result{Path: file.Path, FileID: id, Bag: diag.NewBag(opts.MaxDiagnostics)}

	timer := observ.NewTimer()
	defer func() {
		if opts.EnableTimings {
			report := timer.Report()
			res.Timing = &report
		}
	}()

	var key Digest
	if opts.Cache != nil {
		idx := timer.Begin("cache_lookup")
		key = cacheKey(file.Hash, fingerprint(table), &opts)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			opts.Logger.Warn().Err(err).Str("path", file.Path).Msg("disk cache read failed")
		}
		if hit {
			timer.End(idx, "hit")
			payload.restore(id, res.Bag)
			res.Steps, res.NumComments, res.Cached = payload.Steps, payload.Comments, true
			logResult(opts.Logger, res)
			return res, nil
		}
		timer.End(idx, "miss")
	}

	var reporter diag.Reporter = diag.BagReporter{Bag: res.Bag}
	if opts.WarningsAsErrors {
		reporter = diag.PromoteReporter{Next: reporter}
	}

	idx := timer.Begin("parse")
	parsed := script.Parse(file, script.Options{Reporter: reporter})
	res.Steps = parsed.Steps()
	timer.End(idx, fmt.Sprintf("steps=%d", res.Steps))

	idx = timer.Begin("replay")
	res.Nodes = comment.NewNodes(uint(res.Steps))
	b := sema.NewTreeBuilder(res.Nodes, fs, reporter, table)
	res.Comments = Replay(parsed, b, reporter)
	res.NumComments = len(res.Comments)
	timer.End(idx, fmt.Sprintf("comments=%d", res.NumComments))

	if opts.IgnoreWarnings {
		res.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, toPayload(res)); err != nil {
			opts.Logger.Warn().Err(err).Str("path", file.Path).Msg("disk cache write failed")
		}
	}
	logResult(opts.Logger, res)
	return res, nil
}

func logResult(log zerolog.Logger, res *Result) {
	log.Debug().
		Str("path", res.Path).
		Int("steps", res.Steps).
		Int("comments", res.NumComments).
		Int("diagnostics", res.Bag.Len()).
		Bool("cached", res.Cached).
		Msg("checked")
}
