package script

import (
	"testing"

	"docsema/internal/diag"
	"docsema/internal/source"
)

func lexAll(t *testing.T, input string) ([]Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.dact", []byte(input)))
	bag := diag.NewBag(0)
	lx := NewLexer(file, diag.BagReporter{Bag: bag})
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, bag
		}
	}
}

func TestLexerKinds(t *testing.T) {
	toks, bag := lexAll(t, "html a href=\"x y\" / # trailing\n\ntext \"a\\\"b\\n\"\n")
	want := []Kind{Word, Word, Word, Assign, String, Word, Newline, Newline, Word, String, Newline, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[4].Value != "x y" || toks[4].Text != `"x y"` {
		t.Fatalf("string token = %+v", toks[4])
	}
	if toks[9].Value != "a\"b\n" {
		t.Fatalf("escapes not decoded: %q", toks[9].Value)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{"text \"open\n", diag.ScrUnterminatedString},
		{"text \"open", diag.ScrUnterminatedString},
		{"text \"bad \\q\"", diag.ScrBadEscape},
		{"text \x01", diag.ScrUnknownChar},
	}
	for _, tt := range tests {
		_, bag := lexAll(t, tt.input)
		items := bag.Items()
		if len(items) != 1 || items[0].Code != tt.code || items[0].Severity != diag.SevError {
			t.Errorf("%q: diagnostics = %+v, want one %s", tt.input, items, tt.code.ID())
		}
	}
}

func TestLexerPeekAndEOF(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("p.dact", []byte("end")))
	lx := NewLexer(file, nil)
	if lx.Peek().Text != "end" || lx.Next().Text != "end" {
		t.Fatalf("peek must not consume")
	}
	for range 2 {
		if tok := lx.Next(); tok.Kind != EOF || tok.Span.Start != 3 {
			t.Fatalf("expected sticky EOF at 3, got %+v", tok)
		}
	}
}
