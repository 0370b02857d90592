package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"uscript/internal/diag"
	"uscript/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	codeColor    = color.New(color.Faint)
	markerColor  = color.New(color.FgGreen, color.Bold)
)

// Pretty renders diagnostics in a human-readable format:
//
//	<path>:<line>:<col>: <SEVERITY> <CODE>: <message>
//	    <source line>
//	    ^~~~
//
// Notes follow the primary report, indented, when opts.ShowNotes is set.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, fs, opts); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	head := fmt.Sprintf("%s: %s %s: %s",
		locationText(d.Primary, fs, opts.PathMode),
		severityText(d.Severity, opts.Color),
		codeText(d.Code, opts.Color),
		d.Message)
	if _, err := fmt.Fprintln(w, clip(head, opts.Width)); err != nil {
		return err
	}
	if err := printContext(w, d.Primary, fs, opts); err != nil {
		return err
	}
	if opts.ShowNotes {
		for _, note := range d.Notes {
			line := fmt.Sprintf("  note: %s: %s", locationText(note.Span, fs, opts.PathMode), note.Msg)
			if _, err := fmt.Fprintln(w, clip(line, opts.Width)); err != nil {
				return err
			}
		}
	}
	return nil
}

// printContext emits the source line the span starts on plus an underline.
func printContext(w io.Writer, span source.Span, fs *source.FileSet, opts PrettyOpts) error {
	if !fs.Has(span.File) || span.Empty() {
		return nil
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	line := strings.TrimRight(f.GetLine(start.Line), "\r\n")
	if line == "" && span.Start >= uint32(len(f.Content)) {
		return nil
	}
	if _, err := fmt.Fprintf(w, "    %s\n", clip(line, opts.Width)); err != nil {
		return err
	}

	startCol := int(start.Col)
	endCol := len(line) + 1
	if end.Line == start.Line && int(end.Col) <= endCol {
		endCol = int(end.Col)
	}
	if startCol > len(line)+1 {
		startCol = len(line) + 1
	}
	// Tabs before the marker are reproduced so it lines up in a terminal.
	prefix := make([]byte, 0, startCol-1)
	for i := 0; i < startCol-1 && i < len(line); i++ {
		if line[i] == '\t' {
			prefix = append(prefix, '\t')
		} else {
			prefix = append(prefix, ' ')
		}
	}
	width := endCol - startCol
	if width < 1 {
		width = 1
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = markerColor.Sprint(marker)
	}
	_, err := fmt.Fprintf(w, "    %s%s\n", prefix, marker)
	return err
}

func severityText(sev diag.Severity, colored bool) string {
	if !colored {
		return sev.String()
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(sev.String())
	case diag.SevWarning:
		return warningColor.Sprint(sev.String())
	default:
		return infoColor.Sprint(sev.String())
	}
}

func codeText(code diag.Code, colored bool) string {
	if !colored {
		return code.String()
	}
	return codeColor.Sprint(code.String())
}

func locationText(span source.Span, fs *source.FileSet, mode PathMode) string {
	if !fs.Has(span.File) {
		return "<unknown>"
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(f.Path, mode, fs.BaseDir()), start.Line, start.Col)
}

func formatPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
				return rel
			}
		}
	case PathModeBasename:
		return source.BaseName(path)
	}
	return path
}

// clip truncates a line to the display width, marking the cut with an
// ellipsis. Zero width means unlimited.
func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
