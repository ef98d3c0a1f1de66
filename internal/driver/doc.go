// Package driver replays action scripts through sema.TreeBuilder and
// collects the resulting comment trees and diagnostics, one file at a time
// or a whole directory in parallel, with an optional on-disk result cache.
package driver
