package source

import "strings"

// Span is a half-open byte range [Start, End) into a source file.
type Span struct {
	Start int
	End   int
}

// Join returns the smallest span covering both s and t.
func (s Span) Join(t Span) Span {
	if t.Start < s.Start {
		s.Start = t.Start
	}
	if t.End > s.End {
		s.End = t.End
	}
	return s
}

type Pos int

// Position returns the 1-based line and column of the byte offset in src.
// Offsets past the end of src are clamped to the last byte.
func Position(src string, offset int) (line int, column int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	upTo := src[:offset]
	line = strings.Count(upTo, "\n") + 1
	column = offset + 1
	if nl := strings.LastIndex(upTo, "\n"); nl > -1 {
		column = offset - nl
	}
	return line, column
}
