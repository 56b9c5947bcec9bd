package minify

import (
	"errors"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// oneLine rewrites the line breaks inside the template literals of
// minified code as \n escapes. Minifiers turn escaped newlines in
// templates back into raw ones because that is shorter.
func oneLine(code string) (string, error) {
	if !strings.ContainsAny(code, "\n\r") {
		return code, nil
	}
	l := js.NewLexer(parse.NewInputString(code))
	var b strings.Builder
	b.Grow(len(code))
	prev := js.ErrorToken
	for {
		tt, data := l.Next()
		if (tt == js.DivToken || tt == js.DivEqToken) && regExpAllowed(prev) {
			tt, data = l.RegExp()
		}
		switch tt {
		case js.ErrorToken:
			if err := l.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return b.String(), nil
		case js.TemplateToken, js.TemplateStartToken, js.TemplateMiddleToken, js.TemplateEndToken:
			data = escapeLineBreaks(data)
		}
		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
		default:
			prev = tt
		}
		b.Write(data)
	}
}

// regExpAllowed reports whether a slash after prev starts a regular
// expression rather than a division.
func regExpAllowed(prev js.TokenType) bool {
	switch prev {
	case js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.StringToken, js.RegExpToken, js.TemplateToken, js.TemplateEndToken,
		js.PrivateIdentifierToken, js.IncrToken, js.DecrToken,
		js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken:
		return false
	}
	return !js.IsNumeric(prev) && !js.IsIdentifier(prev)
}

// escapeLineBreaks replaces raw CR, LF and CRLF in a template literal
// chunk with \n, the value a template gives them, and drops line
// continuations.
func escapeLineBreaks(b []byte) []byte {
	out := make([]byte, 0, len(b)+8)
	for i := 0; i < len(b); i++ {
		switch c := b[i]; c {
		case '\\':
			if i+1 < len(b) && (b[i+1] == '\n' || b[i+1] == '\r') {
				i++
				if b[i] == '\r' && i+1 < len(b) && b[i+1] == '\n' {
					i++
				}
				continue
			}
			out = append(out, c)
			if i+1 < len(b) {
				i++
				out = append(out, b[i])
			}
		case '\r':
			if i+1 < len(b) && b[i+1] == '\n' {
				i++
			}
			out = append(out, `\n`...)
		case '\n':
			out = append(out, `\n`...)
		default:
			out = append(out, c)
		}
	}
	return out
}
