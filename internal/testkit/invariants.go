// Package testkit holds structural checks shared by fuzz and parser tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"uscript/internal/ast"
	"uscript/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span stays within file content bounds
// 2) every declaration span is non-empty and fully contained in file.Span
// 3) file.Span covers the union of declaration spans (if any exist)
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	var union source.Span
	var haveDecl bool
	for _, id := range f.Decls {
		decl := b.Decls.Get(id)
		if decl == nil {
			return fmt.Errorf("nil decl for id=%d", id)
		}
		sp := decl.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty decl span: %v", sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("decl span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("decl span %v is outside file span %v", sp, f.Span)
		}
		if !haveDecl {
			union = sp
			haveDecl = true
		} else {
			union = union.Cover(sp)
		}
	}

	if haveDecl {
		if union.Start < f.Span.Start || union.End > f.Span.End {
			return fmt.Errorf("file span %v does not cover union of decls %v", f.Span, union)
		}
	}
	return nil
}
