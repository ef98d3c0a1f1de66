// Package comment is the typed AST of a documentation comment.
//
// Nodes live in 1-based arenas owned by Nodes and are addressed by NodeID;
// a Node header selects the per-kind payload arena. Block-like commands and
// verbatim blocks are created open and closed later through their handle.
package comment
