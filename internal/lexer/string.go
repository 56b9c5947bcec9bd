package lexer

import (
	"strings"
)

// piece is a raw stretch of string literal text between interpolations.
type piece struct {
	text   string
	offset int
}

func (l *lexer) string() {
	start := l.pos
	q := l.src[l.pos]
	delim := string(q)
	if strings.HasPrefix(l.src[l.pos:l.end], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	heredoc := len(delim) == 3
	l.pos += len(delim)

	var (
		pieces  []piece
		interps [][]Token
		offsets []int
	)
	textStart := l.pos
	for {
		if l.pos >= l.end {
			l.errorf(start, "missing %s", delim)
		}
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
			continue
		case strings.HasPrefix(l.src[l.pos:l.end], delim):
		case q == '"' && c == '#' && l.pos+1 < l.end && l.src[l.pos+1] == '{':
			pieces = append(pieces, piece{text: l.src[textStart:l.pos], offset: textStart})
			open := l.pos + 2
			close := l.matchBrace(open)
			interps = append(interps, lexRange(l.src, open, close))
			offsets = append(offsets, open)
			l.pos = close + 1
			textStart = l.pos
			continue
		default:
			l.pos++
			continue
		}
		break
	}
	pieces = append(pieces, piece{text: l.src[textStart:l.pos], offset: textStart})
	bodyStart, bodyEnd := start+len(delim), l.pos
	l.pos += len(delim)

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.text
	}
	if heredoc {
		formatHeredoc(texts, heredocIndent(l.src[bodyStart:bodyEnd]))
	} else {
		formatString(texts)
	}

	t := l.emit(String, start)
	for i, p := range pieces {
		t.Parts = append(t.Parts, StringPart{Text: escapeDoubleQuoted(texts[i]), Offset: p.offset})
		if i < len(interps) {
			t.Parts = append(t.Parts, StringPart{Interp: true, Tokens: interps[i], Offset: offsets[i]})
		}
	}
}

// matchBrace returns the offset of the `}' closing an interpolation whose
// contents start at i.
func (l *lexer) matchBrace(i int) int {
	start := i - 2
	depth := 1
	for i < l.end {
		switch c := l.src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '\'', '"', '`':
			i = l.skipQuoted(i)
			continue
		case '\\':
			i++
		}
		i++
	}
	l.errorf(start, "missing } to close interpolation")
	return 0
}

// skipQuoted returns the offset just past the quoted literal starting at i.
func (l *lexer) skipQuoted(i int) int {
	start := i
	q := l.src[i]
	i++
	for i < l.end {
		c := l.src[i]
		switch {
		case c == '\\':
			i += 2
			continue
		case c == q:
			return i + 1
		case q == '"' && c == '#' && i+1 < l.end && l.src[i+1] == '{':
			i = l.matchBrace(i+2) + 1
			continue
		}
		i++
	}
	l.errorf(start, "missing %c", q)
	return 0
}

// heredocIndent is the smallest indentation of the lines of a block string
// that have content.
func heredocIndent(body string) string {
	indent := ""
	found := false
	lines := strings.Split(body, "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed == "\r" {
			continue
		}
		ws := line[:len(line)-len(trimmed)]
		if !found || len(ws) < len(indent) {
			indent = ws
			found = true
		}
	}
	return indent
}

func formatHeredoc(texts []string, indent string) {
	for i := range texts {
		if indent != "" {
			texts[i] = strings.ReplaceAll(texts[i], "\n"+indent, "\n")
		}
		texts[i] = omitEscapedNewlines(texts[i])
	}
	texts[0] = trimLeadingBlankLine(texts[0])
	texts[len(texts)-1] = trimTrailingBlankLine(texts[len(texts)-1])
}

func formatString(texts []string) {
	texts[0] = trimLeadingBlankLine(texts[0])
	texts[len(texts)-1] = trimTrailingBlankLine(texts[len(texts)-1])
	for i := range texts {
		texts[i] = foldNewlines(omitEscapedNewlines(texts[i]))
	}
}

func trimLeadingBlankLine(s string) string {
	t := strings.TrimLeft(s, " \t\r")
	if strings.HasPrefix(t, "\n") {
		return t[1:]
	}
	return s
}

func trimTrailingBlankLine(s string) string {
	t := strings.TrimRight(s, " \t\r")
	if strings.HasSuffix(t, "\n") {
		return t[:len(t)-1]
	}
	return s
}

// omitEscapedNewlines removes a backslash at the end of a line together
// with the line break and the next line's indentation.
func omitEscapedNewlines(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		if s[i+1] == '\\' {
			sb.WriteString(`\\`)
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '\n' {
			j++
			for j < len(s) && (isSpace(s[j]) || s[j] == '\n') {
				j++
			}
			i = j - 1
			continue
		}
		sb.WriteByte(c)
		sb.WriteByte(s[i+1])
		i++
	}
	return sb.String()
}

// foldNewlines joins the lines of a multi-line string with single spaces.
func foldNewlines(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isSpace(c) && c != '\n' {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
			continue
		}
		j := i
		newline := false
		for j < len(s) && (isSpace(s[j]) || s[j] == '\n') {
			newline = newline || s[j] == '\n'
			j++
		}
		if newline {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(s[i:j])
		}
		i = j - 1
	}
	return sb.String()
}

// escapeDoubleQuoted rewrites raw string contents so they can be placed
// between double quotes.
func escapeDoubleQuoted(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteByte(c)
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
