package source

import "fmt"

// Error is a syntax or semantic error located at a position in CoffeeScript
// source code. The lexer, parser and code generator all report errors of
// this type so callers can test for it with errors.As.
type Error struct {
	// Err is the underlying error that caused this error.
	Err error
	// Offset is the byte offset into the source.
	Offset int
	// Line and Column are the 1-based position of Offset.
	Line   int
	Column int
}

// Errorf builds an Error at offset in src.
func Errorf(src string, offset int, format string, args ...any) *Error {
	line, col := Position(src, offset)
	return &Error{
		Err:    fmt.Errorf(format, args...),
		Offset: offset,
		Line:   line,
		Column: col,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}
