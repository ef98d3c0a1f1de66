package diag

import (
	"testing"

	"docsema/internal/source"
)

func TestBagLimitAndCounts(t *testing.T) {
	b := NewBag(2)
	r := BagReporter{Bag: b}
	ReportWarning(r, DocEmptyParagraph, source.Span{}, "a").Emit()
	ReportError(r, HtmEndUnbalanced, source.Span{}, "b").Emit()
	ReportInfo(r, DocInfo, source.Span{}, "c").Emit()

	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", b.Len(), b.Dropped())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("expected errors and warnings")
	}
	if b.Count(SevWarning) != 1 {
		t.Fatalf("Count(warning) = %d", b.Count(SevWarning))
	}
}

func TestBagSortDedupFilter(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, DocUnknownCommand, source.Span{Start: 5, End: 6}, "x"))
	b.Add(New(SevError, HtmEndForbidden, source.Span{Start: 1, End: 2}, "y"))
	b.Add(New(SevWarning, DocUnknownCommand, source.Span{Start: 5, End: 6}, "x again"))
	b.Add(New(SevInfo, DocInfo, source.Span{Start: 1, End: 2}, "z"))

	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("Dedup left %d items", b.Len())
	}
	b.Sort()
	if b.Items()[0].Code != HtmEndForbidden || b.Items()[2].Code != DocUnknownCommand {
		t.Fatalf("unexpected order: %+v", b.Items())
	}
	b.Filter(func(d Diagnostic) bool { return d.Severity != SevInfo })
	if b.Len() != 2 {
		t.Fatalf("Filter left %d items", b.Len())
	}
}

func TestReportersChain(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(PromoteReporter{Next: BagReporter{Bag: b}})
	sp := source.Span{Start: 1, End: 4}
	rb := ReportWarning(r, RefParamNotFound, sp, "parameter 'cnt' not found").
		WithNote(sp, "note").
		WithFix("replace", FixEdit{Span: sp, NewText: "count"})
	rb.Emit()
	rb.Emit()
	ReportWarning(r, RefParamNotFound, sp, "parameter 'cnt' not found").Emit()

	if b.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", b.Len())
	}
	d := b.Items()[0]
	if d.Severity != SevError || len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Code.ID() != "REF1001" {
		t.Fatalf("ID = %s", d.Code.ID())
	}
}

func TestParseCode(t *testing.T) {
	if c, ok := ParseCode("ref1001"); !ok || c != RefParamNotFound {
		t.Fatalf("ParseCode(ref1001) = %v, %v", c, ok)
	}
	if c, ok := ParseCode(DocVerbatimCloseMismatch.ID()); !ok || c != DocVerbatimCloseMismatch {
		t.Fatalf("ParseCode(%s) = %v, %v", DocVerbatimCloseMismatch.ID(), c, ok)
	}
	for _, bad := range []string{"", "E0000", "REF9999"} {
		if _, ok := ParseCode(bad); ok {
			t.Fatalf("ParseCode(%q) must fail", bad)
		}
	}
}
