package sema

import (
	"fmt"
	"unicode/utf8"

	"docsema/internal/diag"
	"docsema/internal/source"
)

// SuggestCommand proposes a known command name at most one edit away from
// name. Single-character names never get a suggestion.
func SuggestCommand(name string, known []string) (string, bool) {
	if utf8.RuneCountInString(name) <= 1 {
		return "", false
	}
	return closestName(name, known, 1)
}

func (b *TreeBuilder) reportUnknownCommand(nameSpan source.Span, name string) {
	msg := fmt.Sprintf("unknown command tag name '%s'", name)
	fix, ok := SuggestCommand(name, b.table.Names())
	if !ok {
		diag.ReportWarning(b.reporter, diag.DocUnknownCommand, nameSpan, msg).Emit()
		return
	}
	diag.ReportWarning(b.reporter, diag.DocUnknownCommand, nameSpan,
		fmt.Sprintf("%s; did you mean '%s'?", msg, fix)).
		WithFix(fmt.Sprintf("replace '%s' with '%s'", name, fix), diag.FixEdit{Span: nameSpan, NewText: fix}).
		Emit()
}
