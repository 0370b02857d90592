package fuzztests

import (
	"testing"
	"time"

	"uscript/internal/ast"
	"uscript/internal/diag"
	"uscript/internal/lexer"
	"uscript/internal/parser"
	"uscript/internal/source"
	"uscript/internal/symbols"
	"uscript/internal/testkit"
)

// Inputs parsing longer than this indicate a recovery loop.
const parseTimeout = 5 * time.Second

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.uc", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(128)
		reporter := diag.BagReporter{Bag: bag}
		tokens := lexer.Scan(file, reporter)

		builder := ast.NewBuilder(ast.Hints{})
		res := parser.ParseFile(tokens, builder, parser.Options{
			Reporter:  reporter,
			MaxErrors: 128,
		})
		if err := testkit.CheckSpanInvariants(builder, res.File, file); err != nil {
			t.Fatalf("span invariants: %v", err)
		}

		doc := symbols.NewDocument("fuzz.uc", fileID, builder, tokens, res.File, reporter)
		doc.Build()
	})
}

// FuzzParserNoHang verifies that error recovery always makes progress.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	// Recovery-heavy shapes: missing semicolons, unclosed blocks, stray
	// tokens between declarations.
	f.Add([]byte("class A extends B\nvar int X\nfunction F()\n{\n\tX = 1\n}\n"))
	f.Add([]byte("class A; function F() { { { { } } }"))
	f.Add([]byte("class A; defaultproperties { Begin Object Class=X"))
	f.Add([]byte("class A; replication { reliable if (true)"))
	f.Add([]byte("class A; enum E { X, , Y };"))
	f.Add([]byte("class A; state S { ignores ; }"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		done := make(chan struct{})
		go func() {
			defer close(done)

			fs := source.NewFileSet()
			fileID := fs.AddVirtual("fuzz.uc", input)
			file := fs.Get(fileID)

			bag := diag.NewBag(128)
			reporter := diag.BagReporter{Bag: bag}
			tokens := lexer.Scan(file, reporter)
			builder := ast.NewBuilder(ast.Hints{})
			_ = parser.ParseFile(tokens, builder, parser.Options{
				Reporter:  reporter,
				MaxErrors: 128,
			})
		}()

		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen], []byte("...")...)
}
