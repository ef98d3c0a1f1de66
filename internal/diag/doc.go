// Package diag defines the diagnostic model shared by the comment analyzer,
// the script replayer and the CLI.
//
// A Diagnostic carries a Severity, a numeric Code with a stable prefixed
// form (REF, DOC, HTM, SCR, IO, OBS), a message, the primary span and
// optional notes and fixes. Producers emit through a Reporter, usually with
// the ReportBuilder helpers:
//
//	diag.ReportWarning(r, diag.RefParamNotFound, span, msg).
//		WithFix("replace with 'count'", diag.FixEdit{Span: span, NewText: "count"}).
//		Emit()
//
// BagReporter stores into a Bag, which supports limits, sorting, filtering and
// deduplication. Rendering lives in internal/diagfmt.
package diag
