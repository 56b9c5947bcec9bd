package lexer

import (
	"fmt"

	"github.com/adhocteam/coffeemin/internal/source"
)

type Kind int

const (
	EOF Kind = iota
	// Newline separates statements.
	Newline
	// Indent and Outdent open and close an indented block.
	Indent
	Outdent
	Ident
	Keyword
	Number
	String
	Regex
	// JS is JavaScript embedded in backticks.
	JS
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Newline:
		return "NEWLINE"
	case Indent:
		return "INDENT"
	case Outdent:
		return "OUTDENT"
	case Ident:
		return "IDENT"
	case Keyword:
		return "KEYWORD"
	case Number:
		return "NUMBER"
	case String:
		return "STRING"
	case Regex:
		return "REGEX"
	case JS:
		return "JS"
	case Punct:
		return "PUNCT"
	default:
		panic(fmt.Sprintf("unexpected token kind %d", int(k)))
	}
}

// StringPart is a piece of a string literal token. Text parts hold the
// string contents escaped for use between double quotes, with literal
// newlines written as \n. Interpolated parts hold the tokens of the
// expression inside #{}.
type StringPart struct {
	Text   string
	Interp bool
	Tokens []Token
	// Offset is where the part begins in the source.
	Offset int
}

type Token struct {
	Kind Kind
	// Text is the token's source text. For strings it is the full literal
	// including quotes; use Parts for the contents.
	Text string
	Span source.Span
	// Spaced is true when whitespace or a line break precedes the token.
	Spaced bool
	// NewLine is true when the token is the first on its line.
	NewLine bool
	Parts   []StringPart
}

// Is reports whether t is punctuation or a keyword spelled s.
func (t Token) Is(s string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == s
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, Newline, Indent, Outdent:
		return t.Kind.String()
	default:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	}
}
