// Package sema validates documentation comments against the declaration they
// document and builds the comment tree.
//
// TreeBuilder is the entry point: a comment parser calls one method per
// construct it recognizes. Around it sit the pieces it consults:
//
//   - DeclProbe extracts callable/template facts and parameter lists.
//   - ResolveParam, SuggestParam and their template variants map written
//     names to declared parameters, with typo correction.
//   - TagStack matches HTML end tags against open start tags.
//   - CommandValidator and CheckApplicable enforce per-comment and
//     per-declaration rules.
//
// Problems are reported through diag.Reporter and never stop construction.
package sema
