package lexer

import (
	"uscript/internal/diag"
	"uscript/internal/token"
)

// collectTrivia accumulates whitespace and comments into lx.hold until the
// next significant byte.
func (lx *Lexer) collectTrivia() {
	for !lx.eof() {
		start := lx.off
		c := lx.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			for !lx.eof() {
				c := lx.peek()
				if c != ' ' && c != '\t' && c != '\r' {
					break
				}
				lx.off++
			}
			lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaSpace, Span: lx.span(start)})

		case c == '\n':
			lx.off++
			lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaNewline, Span: lx.span(start)})

		case c == '/' && lx.peekAt(1) == '/':
			for !lx.eof() && lx.peek() != '\n' {
				lx.off++
			}
			sp := lx.span(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaLineComment,
				Span: sp,
				Text: lx.text(sp),
			})

		case c == '/' && lx.peekAt(1) == '*':
			lx.off += 2
			closed := false
			for !lx.eof() {
				if lx.peek() == '*' && lx.peekAt(1) == '/' {
					lx.off += 2
					closed = true
					break
				}
				lx.off++
			}
			sp := lx.span(start)
			if !closed {
				lx.report(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
			}
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaBlockComment,
				Span: sp,
				Text: lx.text(sp),
			})

		default:
			return
		}
	}
}
