package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"docsema/internal/comment"
	"docsema/internal/diag"
	"docsema/internal/source"
)

func writeScript(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func checkScript(t *testing.T, opts Options, lines ...string) (*source.FileSet, *Result) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("mem.dact", []byte(strings.Join(lines, "\n")+"\n"))
	res, err := CheckSource(context.Background(), fs, id, opts)
	if err != nil {
		t.Fatalf("CheckSource: %v", err)
	}
	return fs, res
}

func codesOf(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func sameCodes(got, want []diag.Code) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestReplayParamTypo(t *testing.T) {
	fs, res := checkScript(t, Options{},
		"decl function name=count_items params=count",
		"comment",
		"param",
		"name cnt",
		"para",
		`text "element count"`,
		"endpara",
		"finish",
		"end",
	)
	want := "warning REF1001 mem.dact:4:6 parameter 'cnt' not found in the function declaration; did you mean 'count'?"
	if got := diag.FormatShortDiagnostics(res.Bag.Pointers(), fs, true); got != want {
		t.Fatalf("diagnostics:\n%s\nwant:\n%s", got, want)
	}
	if len(res.Comments) != 1 || res.Comments[0].Decl.DeclName != "count_items" {
		t.Fatalf("comments = %+v", res.Comments)
	}
	fc, _ := res.Nodes.FullComment(res.Comments[0].Root)
	pc, ok := res.Nodes.ParamCommand(fc.Blocks[0])
	if !ok || pc.IsResolved() || res.Nodes.PlainText(pc.Body) != "element count" {
		t.Fatalf("param command = %+v", pc)
	}
}

func TestReplayOrderErrors(t *testing.T) {
	_, res := checkScript(t, Options{},
		`text "x"`,
		"comment",
		"comment",
		"direction [in]",
		"finish",
		`line "x"`,
		"endpara",
		"block c",
		"block param",
	)
	want := []diag.Code{
		diag.ScrActionOrder, diag.ScrActionOrder, diag.ScrActionOrder, diag.ScrActionOrder,
		diag.ScrActionOrder, diag.ScrActionOrder, diag.ScrCommandKind, diag.ScrCommandKind,
		diag.ScrActionOrder,
	}
	if got := codesOf(res.Bag); !sameCodes(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if res.Bag.Count(diag.SevError) != len(want) {
		t.Fatalf("script problems must be errors")
	}
	if res.NumComments != 1 {
		t.Fatalf("the open comment must be finished at end of script")
	}
}

func TestReplayUnfinishedConstructs(t *testing.T) {
	_, res := checkScript(t, Options{},
		"decl function params=x",
		"comment",
		"block note",
		"para",
		`text "dangling"`,
		"html b",
		`text "bold"`,
		"end",
		"comment",
		"verbatim code",
		`line "int x;"`,
		"end",
	)
	want := []diag.Code{diag.HtmUnclosedTag, diag.DocVerbatimUnterminated}
	if got := codesOf(res.Bag); !sameCodes(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	fc, _ := res.Nodes.FullComment(res.Comments[0].Root)
	if len(fc.Blocks) != 1 || res.Nodes.Kind(fc.Blocks[0]) != comment.KindBlockCommand {
		t.Fatalf("blocks = %v", fc.Blocks)
	}
	body, _ := res.Nodes.Paragraph(res.Nodes.BlockOf(fc.Blocks[0]).Body)
	if body == nil || len(body.Children) != 3 {
		t.Fatalf("body = %+v", body)
	}
	fc, _ = res.Nodes.FullComment(res.Comments[1].Root)
	vb, ok := res.Nodes.VerbatimBlock(fc.Blocks[0])
	if !ok || len(vb.Lines) != 1 {
		t.Fatalf("verbatim = %+v", vb)
	}
}

func TestReplayVerbatimAndCommands(t *testing.T) {
	_, res := checkScript(t, Options{},
		"decl record name=S",
		"comment",
		"verbatim code",
		`line "S s;"`,
		"endverbatim",
		`verbatim-line struct "S"`,
		"block brif",
		"inline c",
		"block returns",
		`text "a value"`,
		"finish",
		"end",
	)
	want := []diag.Code{diag.DocUnknownCommand, diag.DocInlineMissingArg, diag.DocNotCallable}
	if got := codesOf(res.Bag); !sameCodes(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if !strings.Contains(res.Bag.Items()[0].Message, "did you mean 'brief'") {
		t.Fatalf("message = %q", res.Bag.Items()[0].Message)
	}
}

func TestWarningsAsErrorsAndIgnore(t *testing.T) {
	lines := []string{"decl function params=a", "comment", "param", "name b", `text "x"`, "finish", "end"}
	_, res := checkScript(t, Options{WarningsAsErrors: true}, lines...)
	if !res.Bag.HasErrors() {
		t.Fatalf("warnings must be promoted")
	}
	_, res = checkScript(t, Options{IgnoreWarnings: true}, lines...)
	if res.Bag.Len() != 0 {
		t.Fatalf("warnings must be dropped: %+v", res.Bag.Items())
	}
}

func TestCheckDirWithCache(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.dact", "decl function params=n", "comment", "param", "name m", "finish", "end")
	writeScript(t, dir, "b.dact", "comment", `text "fine"`, "end")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, filepath.Join(dir, "sub"), "c.dact", "bogus")
	writeScript(t, dir, "notes.txt", "ignored")

	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	var seen, started atomic.Int32
	opts := Options{
		Cache:   cache,
		Jobs:    2,
		OnStart: func(string) { started.Add(1) },
		OnFile:  func(*Result) { seen.Add(1) },
	}

	run := func() (string, []*Result) {
		fs, results, err := CheckDir(context.Background(), dir, opts)
		if err != nil {
			t.Fatalf("CheckDir: %v", err)
		}
		var all []*diag.Diagnostic
		for _, r := range results {
			all = append(all, r.Bag.Pointers()...)
		}
		return diag.FormatShortDiagnostics(all, fs, true), results
	}

	first, results := run()
	if len(results) != 3 || seen.Load() != 3 || started.Load() != 3 {
		t.Fatalf("results = %d, callbacks = %d/%d", len(results), started.Load(), seen.Load())
	}
	if filepath.Base(results[2].Path) != "c.dact" || results[0].Cached {
		t.Fatalf("unexpected first run: %+v", results[0])
	}
	want := strings.Join([]string{
		"warning REF1001 a.dact:4:6 parameter 'm' not found in the function declaration; did you mean 'n'?",
		"warning DOC2002 a.dact:4:7 empty paragraph passed to '\\param' command",
		"error SCR4002 sub/c.dact:1:1 unknown action 'bogus'",
	}, "\n")
	if first != want {
		t.Fatalf("first run:\n%s\nwant:\n%s", first, want)
	}

	second, results := run()
	for _, r := range results {
		if !r.Cached || r.Nodes != nil {
			t.Fatalf("%s: expected a cache hit", r.Path)
		}
	}
	if second != first {
		t.Fatalf("cached diagnostics differ:\n%s\nvs\n%s", second, first)
	}
	if results[0].NumComments != 1 {
		t.Fatalf("comment count not cached")
	}
}

func TestCheckFileMissing(t *testing.T) {
	_, _, err := CheckFile(context.Background(), filepath.Join(t.TempDir(), "none.dact"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}
