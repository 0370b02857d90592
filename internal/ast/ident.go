package ast

import (
	"uscript/internal/names"
	"uscript/internal/source"
)

// Ident is an interned name plus the exact span where it was written. The
// same logical name can appear at many spans; the Name handle is shared,
// the span is not.
type Ident struct {
	Name names.Name
	Span source.Span
}

// IsValid reports whether the identifier carries a name.
func (id Ident) IsValid() bool { return id.Name.IsValid() }
