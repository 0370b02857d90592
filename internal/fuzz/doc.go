// Package fuzztests houses Go fuzz harnesses that exercise the early
// analysis pipeline (source -> lexer -> parser -> symbol build). Its goal
// is to smoke test robustness and guard against panics or allocator
// explosions on arbitrary inputs.
package fuzztests
