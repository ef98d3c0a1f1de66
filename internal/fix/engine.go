// Package fix applies the edits attached to diagnostics back to the .dact
// scripts they were reported against.
package fix

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"docsema/internal/diag"
	"docsema/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Mode determines selection strategy for fixes.
type Mode uint8

const (
	// ModeFirst applies only the first fix in file order.
	ModeFirst Mode = iota
	// ModeAll applies every non-conflicting fix.
	ModeAll
)

// Options configures how fixes are selected and written.
type Options struct {
	Mode Mode
	// Codes restricts fixes to diagnostics with these codes; empty means any.
	Codes []diag.Code
	// DryRun computes the new contents without touching the disk.
	DryRun bool
}

// Applied records a fix that made it into the output.
type Applied struct {
	Title   string
	Code    diag.Code
	Message string
	Path    string
	Edits   int
}

// Skipped captures a fix that was not applied and why.
type Skipped struct {
	Title  string
	Code   diag.Code
	Reason string
}

// FileChange summarises the rewrite of one file.
type FileChange struct {
	Path    string
	Edits   int
	Content []byte
}

// Result aggregates applied fixes, skipped ones and file changes.
type Result struct {
	Applied []Applied
	Skipped []Skipped
	Files   []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to opts
// and rewrites the affected files.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts Options) (*Result, error) {
	result := &Result{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	cands := gatherCandidates(diagnostics, opts.Codes)
	if len(cands) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(cands)

	accepted := make(map[source.FileID][]diag.FixEdit)
	counts := make(map[source.FileID]int)
	for _, cand := range cands {
		if opts.Mode == ModeFirst && len(result.Applied) > 0 {
			break
		}
		if reason := check(fs, cand.fix, accepted); reason != "" {
			result.Skipped = append(result.Skipped, Skipped{Title: cand.fix.Title, Code: cand.diag.Code, Reason: reason})
			continue
		}
		for _, e := range cand.fix.Edits {
			accepted[e.Span.File] = append(accepted[e.Span.File], e)
			counts[e.Span.File]++
		}
		result.Applied = append(result.Applied, Applied{
			Title:   cand.fix.Title,
			Code:    cand.diag.Code,
			Message: cand.diag.Message,
			Path:    formatFilePath(fs, cand.diag.Primary.File),
			Edits:   len(cand.fix.Edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	ids := make([]source.FileID, 0, len(accepted))
	for id := range accepted {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		file := fs.Get(id)
		content := rewrite(file.Content, accepted[id])
		if !opts.DryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, file.Restore(content), mode); err != nil {
				return result, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}
		result.Files = append(result.Files, FileChange{
			Path:    formatFilePath(fs, id),
			Edits:   counts[id],
			Content: content,
		})
	}
	return result, nil
}

// gatherCandidates берёт первый fix каждой диагностики.
func gatherCandidates(diagnostics []diag.Diagnostic, codes []diag.Code) []candidate {
	cands := make([]candidate, 0)
	for _, d := range diagnostics {
		if len(d.Fixes) == 0 || len(d.Fixes[0].Edits) == 0 {
			continue
		}
		if len(codes) > 0 && !slices.Contains(codes, d.Code) {
			continue
		}
		cands = append(cands, candidate{diag: d, fix: d.Fixes[0], order: len(cands)})
	}
	return cands
}

// sortCandidates orders by file, span start, span end and then emission order.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		return candidates[i].order < candidates[j].order
	})
}

// check returns a skip reason, or "" when every edit of f can be applied.
func check(fs *source.FileSet, f diag.Fix, accepted map[source.FileID][]diag.FixEdit) string {
	for i, edit := range f.Edits {
		if int(edit.Span.File) >= fs.Len() {
			return "target file is unknown"
		}
		file := fs.Get(edit.Span.File)
		if file.Flags&source.FileVirtual != 0 {
			return "target file is virtual"
		}
		if edit.Span.End < edit.Span.Start || int(edit.Span.End) > len(file.Content) {
			return "edit span out of range"
		}
		for _, prev := range accepted[edit.Span.File] {
			if spansConflict(prev.Span, edit.Span) {
				return fmt.Sprintf("conflicts with a previously applied edit in %s", formatFilePath(fs, edit.Span.File))
			}
		}
		for _, other := range f.Edits[:i] {
			if other.Span.File == edit.Span.File && spansConflict(other.Span, edit.Span) {
				return "fix has overlapping edits"
			}
		}
	}
	return ""
}

// spansConflict reports whether two half-open spans overlap. Two insertions
// never conflict; an insertion conflicts with a span strictly containing it.
func spansConflict(a, b source.Span) bool {
	if a.Empty() && b.Empty() {
		return false
	}
	if a.Empty() {
		return b.Start < a.Start && a.Start < b.End
	}
	if b.Empty() {
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// rewrite applies non-overlapping edits from the end of content backwards,
// so earlier offsets stay valid.
func rewrite(content []byte, edits []diag.FixEdit) []byte {
	sorted := slices.Clone(edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})
	out := slices.Clone(content)
	for _, e := range sorted {
		tail := slices.Clone(out[e.Span.End:])
		out = append(append(out[:e.Span.Start], e.NewText...), tail...)
	}
	return out
}

func formatFilePath(fs *source.FileSet, id source.FileID) string {
	if int(id) >= fs.Len() {
		return ""
	}
	file := fs.Get(id)
	if file.Flags&source.FileVirtual != 0 {
		return file.Path
	}
	return file.FormatPath("relative", fs.BaseDir())
}
