package lsp

import (
	"strings"
	"unicode/utf8"
)

// applyChanges folds editor edits into the overlay text. A change without
// a range replaces the whole document.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := clampOffset(text, offsetForPosition(text, change.Range.Start))
		end := clampOffset(text, offsetForPosition(text, change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

func clampOffset(text string, off int) int {
	if off < 0 {
		return 0
	}
	if off > len(text) {
		return len(text)
	}
	return off
}

// offsetForPosition maps an editor position (zero-based line, UTF-16
// character units) to a byte offset. Positions past the end of a line
// clamp to the line's newline; lines past the end clamp to len(text).
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	off := 0
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[off:], '\n')
		if nl < 0 {
			return len(text)
		}
		off += nl + 1
	}
	units := 0
	for off < len(text) && text[off] != '\n' {
		r, size := utf8.DecodeRuneInString(text[off:])
		w := 1
		if r > 0xFFFF {
			w = 2
		}
		if units+w > pos.Character {
			break
		}
		units += w
		off += size
		if units == pos.Character {
			break
		}
	}
	return off
}
