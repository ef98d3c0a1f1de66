package diagfmt

import (
	"fmt"
	"io"

	"docsema/internal/diag"
	"docsema/internal/source"
)

// Short печатает одну строку на диагностику в порядке bag.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, withNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Pointers(), fs, withNotes)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
