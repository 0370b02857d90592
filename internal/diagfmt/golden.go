package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"uscript/internal/diag"
	"uscript/internal/source"
)

// Golden writes one line per diagnostic in a stable order:
//
//	<SEVERITY> <CODE> <path>:<line>:<col> <message>
//
// The format is meant for golden-file comparison in tests.
func Golden(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			d.Severity.String(),
			d.Code.String(),
			locationText(d.Primary, fs, PathModeBasename),
			d.Message))
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// GoldenString renders the golden format into a string.
func GoldenString(bag *diag.Bag, fs *source.FileSet) string {
	var sb strings.Builder
	_ = Golden(&sb, bag, fs)
	return sb.String()
}
