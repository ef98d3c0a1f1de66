package fix

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsema/internal/diag"
	"docsema/internal/driver"
	"docsema/internal/source"
)

var typoScript = []string{
	"decl function name=count_items params=count",
	"comment",
	"param",
	"name cnt",
	"para",
	`text "element count"`,
	"endpara",
	"finish",
	"verbatim code",
	`line "int x;"`,
	`endverbatim \endcod`,
	"end",
}

func writeScript(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typo.dact")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func checkPath(t *testing.T, path string) (*source.FileSet, *driver.Result) {
	t.Helper()
	fs, res, err := driver.CheckFile(context.Background(), path, driver.Options{})
	if err != nil {
		t.Fatalf("CheckFile: %v", err)
	}
	return fs, res
}

func TestApplyAllFixesScript(t *testing.T) {
	path := writeScript(t, typoScript)
	fs, res := checkPath(t, path)
	if res.Bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", res.Bag.Items())
	}

	result, err := Apply(fs, res.Bag.Items(), Options{Mode: ModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.Applied) != 2 || len(result.Skipped) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Files) != 1 || result.Files[0].Edits != 2 {
		t.Fatalf("files = %+v", result.Files)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	if lines[3] != "name count" || lines[10] != `endverbatim \endcode` {
		t.Fatalf("rewritten script:\n%s", data)
	}

	_, again := checkPath(t, path)
	if again.Bag.Len() != 0 {
		t.Fatalf("fixed script still reports %+v", again.Bag.Items())
	}
}

func TestApplyFirstAndDryRun(t *testing.T) {
	path := writeScript(t, typoScript)
	fs, res := checkPath(t, path)
	before, _ := os.ReadFile(path)

	result, err := Apply(fs, res.Bag.Items(), Options{Mode: ModeFirst, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].Code != diag.RefParamNotFound {
		t.Fatalf("applied = %+v", result.Applied)
	}
	if !strings.Contains(string(result.Files[0].Content), "name count\n") ||
		!strings.Contains(string(result.Files[0].Content), `endverbatim \endcod`+"\n") {
		t.Fatalf("content = %s", result.Files[0].Content)
	}
	after, _ := os.ReadFile(path)
	if string(after) != string(before) {
		t.Fatalf("dry run touched the file")
	}
}

func TestApplyCodeFilter(t *testing.T) {
	path := writeScript(t, typoScript)
	fs, res := checkPath(t, path)
	result, err := Apply(fs, res.Bag.Items(), Options{Mode: ModeAll, Codes: []diag.Code{diag.DocVerbatimCloseMismatch}, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].Code != diag.DocVerbatimCloseMismatch {
		t.Fatalf("applied = %+v", result.Applied)
	}
	if _, err := Apply(fs, res.Bag.Items(), Options{Codes: []diag.Code{diag.HtmUnclosedTag}}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
}

func TestApplySkipsVirtualAndConflicts(t *testing.T) {
	fs := source.NewFileSet()
	virt := fs.AddVirtual("mem.dact", []byte("name cnt\n"))
	d := diag.New(diag.SevWarning, diag.RefParamNotFound, source.Span{File: virt, Start: 5, End: 8}, "typo").
		WithFix("rename", diag.FixEdit{Span: source.Span{File: virt, Start: 5, End: 8}, NewText: "count"})
	result, err := Apply(fs, []diag.Diagnostic{d}, Options{Mode: ModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("skipped = %+v", result.Skipped)
	}

	path := writeScript(t, []string{"name cnt"})
	fs = source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sp := func(a, b uint32) source.Span { return source.Span{File: id, Start: a, End: b} }
	first := diag.New(diag.SevWarning, diag.RefParamNotFound, sp(5, 8), "typo").
		WithFix("rename", diag.FixEdit{Span: sp(5, 8), NewText: "count"})
	overlap := diag.New(diag.SevWarning, diag.RefParamNotFound, sp(6, 8), "typo").
		WithFix("rename tail", diag.FixEdit{Span: sp(6, 8), NewText: "xx"})
	insert := diag.New(diag.SevWarning, diag.RefParamNotFound, sp(0, 0), "prefix").
		WithFix("insert", diag.FixEdit{Span: sp(0, 0), NewText: "# "})
	result, err = Apply(fs, []diag.Diagnostic{overlap, first, insert}, Options{Mode: ModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.Applied) != 2 || len(result.Skipped) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if !strings.HasPrefix(result.Skipped[0].Reason, "conflicts with") {
		t.Fatalf("skip reason = %q", result.Skipped[0].Reason)
	}
	if got := string(result.Files[0].Content); got != "# name count\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestSpansConflict(t *testing.T) {
	sp := func(a, b uint32) source.Span { return source.Span{Start: a, End: b} }
	tests := []struct {
		a, b source.Span
		want bool
	}{
		{sp(0, 0), sp(0, 0), false},
		{sp(2, 2), sp(0, 4), true},
		{sp(0, 4), sp(4, 4), false},
		{sp(0, 4), sp(0, 4), true},
		{sp(0, 4), sp(4, 6), false},
		{sp(0, 5), sp(4, 6), true},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestApplyKeepsBOMAndCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.dact")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFname cnt\r\nend\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sp := source.Span{File: id, Start: 5, End: 8}
	d := diag.New(diag.SevWarning, diag.RefParamNotFound, sp, "typo").
		WithFix("rename", diag.FixEdit{Span: sp, NewText: "count"})
	if _, err := Apply(fs, []diag.Diagnostic{d}, Options{Mode: ModeAll}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "\xEF\xBB\xBFname count\r\nend\r\n" {
		t.Fatalf("rewritten = %q", data)
	}
}
