package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"docsema/internal/diag"
	"docsema/internal/source"
)

// ScriptExt is the extension of action scripts.
const ScriptExt = ".dact"

// ListScripts returns all *.dact files under dir, sorted.
func ListScripts(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ScriptExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CheckDir checks every script under dir in parallel. Results are in path
// order; a file that cannot be read gets a result holding an I/O error.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []*Result, error) {
	files, err := ListScripts(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	ids := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, p := range files {
		ids[i], loadErrs[i] = fileSet.Load(p)
		if loadErrs[i] != nil {
			// пустой виртуальный файл, чтобы диагностике было на что указать
			ids[i] = fileSet.AddVirtual(p, nil)
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// таблица общая для всех воркеров, только чтение
	opts.Table = opts.table()

	results := make([]*Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if opts.OnStart != nil {
				opts.OnStart(files[i])
			}
			var res *Result
			if loadErrs[i] != nil {
				res = &Result{Path: files[i], FileID: ids[i], Bag: diag.NewBag(opts.MaxDiagnostics)}
				diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.IOLoadFileError,
					source.Span{File: ids[i]}, "failed to load file: "+loadErrs[i].Error()).Emit()
				opts.Logger.Warn().Err(loadErrs[i]).Str("path", files[i]).Msg("load failed")
			} else {
				var checkErr error
				res, checkErr = CheckSource(gctx, fileSet, ids[i], opts)
				if checkErr != nil {
					return checkErr
				}
			}
			results[i] = res
			if opts.OnFile != nil {
				opts.OnFile(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, nil, err
	}
	return fileSet, results, nil
}
