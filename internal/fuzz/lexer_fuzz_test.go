package fuzztests

import (
	"testing"

	"uscript/internal/diag"
	"uscript/internal/lexer"
	"uscript/internal/source"
	"uscript/internal/token"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.uc", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		tokens := lexer.Scan(file, diag.BagReporter{Bag: bag})
		if len(tokens) == 0 {
			t.Fatalf("no tokens for %d byte input", len(input))
		}
		if tokens[len(tokens)-1].Kind != token.EOF {
			t.Fatalf("token stream not EOF-terminated")
		}
		for _, tok := range tokens {
			if tok.Span.End > uint32(len(file.Content)) {
				t.Fatalf("token span %v beyond content (%d bytes)", tok.Span, len(file.Content))
			}
		}
	})
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
