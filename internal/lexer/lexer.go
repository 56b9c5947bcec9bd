// Package lexer tokenizes CoffeeScript source code.
//
// Indentation is significant in CoffeeScript, so besides the ordinary
// tokens the lexer emits layout tokens: Newline between statements, and
// Indent/Outdent around indented blocks. Lines that obviously continue the
// previous one (a trailing binary operator, or a leading `.' or `,') produce
// no layout tokens, and blocks opened inside brackets are closed when the
// bracket closes.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adhocteam/coffeemin/internal/source"
)

// Lex splits src into tokens. The token stream always ends with EOF.
// Errors are of type *source.Error.
func Lex(src string) (toks []Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*source.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	start := 0
	if strings.HasPrefix(src, "\uFEFF") {
		start = len("\uFEFF")
	}
	if i := invalidUTF8(src); i >= 0 {
		return nil, source.Errorf(src, i, "invalid UTF-8 encoding")
	}
	return lexRange(src, start, len(src)), nil
}

// invalidUTF8 returns the offset of the first byte of src that is not
// valid UTF-8, or -1.
func invalidUTF8(src string) int {
	for i, r := range src {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(src[i:]); size == 1 {
				return i
			}
		}
	}
	return -1
}

// lexRange tokenizes src[start:end]. Token spans are offsets into src.
func lexRange(src string, start, end int) []Token {
	l := &lexer{src: src, pos: start, end: end}
	l.run()
	return l.toks
}

type bracket struct {
	open  byte
	start int
	// floor is the depth of the indent stack when the bracket was opened.
	floor int
}

type lexer struct {
	src  string
	pos  int
	end  int
	toks []Token

	// indents is the stack of indentation widths of the open blocks;
	// indents[0] is the indentation of the first line.
	indents []int
	// indebt is the extra indentation of a continued line.
	indebt   int
	brackets []bracket

	spaced  bool
	newLine bool
}

var keywords = map[string]bool{
	"if": true, "else": true, "unless": true, "then": true,
	"while": true, "until": true, "loop": true,
	"for": true, "in": true, "of": true, "by": true, "when": true,
	"return": true, "break": true, "continue": true,
	"switch": true, "try": true, "catch": true, "finally": true, "throw": true,
	"class": true, "extends": true, "super": true,
	"new": true, "delete": true, "typeof": true, "instanceof": true,
	"not": true, "and": true, "or": true, "is": true, "isnt": true,
	"do": true, "this": true,
	"true": true, "false": true, "yes": true, "no": true, "on": true, "off": true,
	"null": true, "undefined": true,
	"yield": true, "await": true, "debugger": true,
}

// valueKeywords are keywords that end a value, after which a `/' is a
// division rather than a regular expression.
var valueKeywords = map[string]bool{
	"this": true, "super": true, "true": true, "false": true, "yes": true,
	"no": true, "on": true, "off": true, "null": true, "undefined": true,
}

// reserved words are JavaScript keywords that CoffeeScript does not allow
// as variable names.
var reserved = map[string]bool{
	"case": true, "default": true, "function": true, "var": true, "void": true,
	"with": true, "const": true, "let": true, "enum": true, "export": true,
	"import": true, "native": true, "implements": true, "interface": true,
	"package": true, "private": true, "protected": true, "public": true,
	"static": true,
}

// puncts is ordered longest first.
var puncts = []string{
	">>>=",
	"...", ">>>", "**=", "//=", "%%=", "<<=", ">>=", "===", "!==", "?::", "||=", "&&=",
	"..", "?.", "::", "->", "=>", "?=", "//", "%%", "**", "==", "!=", "<=", ">=",
	"&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	"(", ")", "[", "]", "{", "}", ",", ".", ":", "=", "+", "-", "*", "/", "%",
	"<", ">", "!", "~", "&", "|", "^", "?", "@",
}

// continuers are tokens that cannot end a line; the next line continues
// the expression.
var continuers = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "//": true, "%%": true,
	"&&": true, "||": true, "&": true, "|": true, "^": true, "<<": true, ">>": true, ">>>": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true, "===": true, "!==": true,
	",": true, ".": true, "?.": true, "::": true, "?::": true,
	"and": true, "or": true, "is": true, "isnt": true, "in": true, "of": true,
	"instanceof": true, "extends": true,
}

func (l *lexer) errorf(offset int, format string, args ...any) {
	panic(source.Errorf(l.src, offset, format, args...))
}

func (l *lexer) run() {
	indent, ok := l.lineIndent()
	if !ok {
		l.finish()
		return
	}
	l.indents = []int{indent}
	l.spaced, l.newLine = true, true
	for {
		l.skipSpace()
		if l.pos >= l.end {
			break
		}
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.lineBreak()
		case c == ';':
			l.pos++
			l.emitLayout(Newline)
		case isDigit(c) || (c == '.' && l.pos+1 < l.end && isDigit(l.src[l.pos+1]) && !l.valueBefore()):
			l.number()
		case c == '"' || c == '\'':
			l.string()
		case c == '`':
			l.js()
		case c == '/' && strings.HasPrefix(l.src[l.pos:l.end], "///") && l.regexContext():
			l.errorf(l.pos, "block regular expressions are not supported")
		case c == '/' && l.regexContext() && l.regexCloses():
			l.regex()
		default:
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:l.end])
			if isIdentStart(r) {
				l.word()
			} else {
				l.punct()
			}
		}
	}
	l.finish()
}

// lineIndent skips blank and comment-only lines starting at the beginning
// of a line, and returns the indentation of the next line with content.
func (l *lexer) lineIndent() (indent int, ok bool) {
	for {
		start := l.pos
		for l.pos < l.end && isSpace(l.src[l.pos]) {
			l.pos++
		}
		indent = l.pos - start
		if l.pos >= l.end {
			return 0, false
		}
		switch c := l.src[l.pos]; {
		case c == '\n':
			l.pos++
		case isBlockComment(l.src[l.pos:l.end]):
			l.blockComment()
		case c == '#':
			l.lineComment()
		default:
			return indent, true
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < l.end {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
			l.spaced = true
		case c == '\\':
			j := l.pos + 1
			for j < l.end && isSpace(l.src[j]) {
				j++
			}
			if j >= l.end || l.src[j] != '\n' {
				return
			}
			// an escaped line break joins the lines
			l.pos = j + 1
			for l.pos < l.end && isSpace(l.src[l.pos]) {
				l.pos++
			}
			l.spaced = true
		case isBlockComment(l.src[l.pos:l.end]):
			l.blockComment()
			l.spaced = true
		case c == '#':
			l.lineComment()
		default:
			return
		}
	}
}

func isBlockComment(s string) bool {
	return strings.HasPrefix(s, "###") && !strings.HasPrefix(s, "####")
}

func (l *lexer) blockComment() {
	start := l.pos
	i := strings.Index(l.src[l.pos+3:l.end], "###")
	if i < 0 {
		l.errorf(start, "missing ### to close block comment")
	}
	l.pos += 3 + i + 3
}

func (l *lexer) lineComment() {
	for l.pos < l.end && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// lineBreak handles the start of a new line, after the '\n' has been
// consumed.
func (l *lexer) lineBreak() {
	indent, ok := l.lineIndent()
	if !ok {
		return
	}
	l.spaced, l.newLine = true, true
	l.layout(indent)
}

// layout emits the layout tokens for a line indented by indent.
func (l *lexer) layout(indent int) {
	rest := l.src[l.pos:l.end]
	noNewlines := startsWithCloser(rest) || startsWithContinuer(rest) || l.unfinished()
	top := l.indents[len(l.indents)-1]
	switch {
	case indent-l.indebt == top:
		if !noNewlines {
			l.emitLayout(Newline)
		}
	case indent > top:
		if noNewlines {
			l.indebt = indent - top
			return
		}
		l.indebt = 0
		l.indents = append(l.indents, indent)
		l.emitLayout(Indent)
	default:
		l.indebt = 0
		l.outdentTo(indent)
		if top := l.indents[len(l.indents)-1]; indent > top {
			if noNewlines {
				l.indebt = indent - top
				return
			}
			l.errorf(l.pos, "inconsistent indentation")
		}
		if !noNewlines {
			l.emitLayout(Newline)
		}
	}
}

// outdentTo closes blocks indented deeper than indent, but never blocks
// that enclose the innermost open bracket.
func (l *lexer) outdentTo(indent int) {
	floor := 1
	if n := len(l.brackets); n > 0 {
		floor = l.brackets[n-1].floor
	}
	for len(l.indents) > floor && l.indents[len(l.indents)-1] > indent {
		l.indents = l.indents[:len(l.indents)-1]
		l.emitLayout(Outdent)
	}
}

func startsWithCloser(s string) bool {
	return s != "" && strings.IndexByte(")]}", s[0]) >= 0
}

func startsWithContinuer(s string) bool {
	switch {
	case strings.HasPrefix(s, ","), strings.HasPrefix(s, "::"), strings.HasPrefix(s, "?::"):
		return true
	case strings.HasPrefix(s, "?."):
		return true
	case strings.HasPrefix(s, "."):
		return len(s) == 1 || (s[1] != '.' && !isDigit(s[1]))
	}
	return false
}

// unfinished reports whether the last token requires the expression to
// continue on the next line.
func (l *lexer) unfinished() bool {
	t := l.last()
	if t == nil {
		return false
	}
	return (t.Kind == Punct || t.Kind == Keyword) && continuers[t.Text]
}

func (l *lexer) finish() {
	if n := len(l.brackets); n > 0 {
		b := l.brackets[n-1]
		l.errorf(b.start, "missing %q", closerFor(b.open))
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emitLayout(Outdent)
	}
	l.emitLayout(Newline)
	l.toks = append(l.toks, Token{Kind: EOF, Span: source.Span{Start: l.end, End: l.end}, Spaced: true, NewLine: true})
}

func (l *lexer) last() *Token {
	if len(l.toks) == 0 {
		return nil
	}
	return &l.toks[len(l.toks)-1]
}

// emit appends a token spanning from start to the current position.
func (l *lexer) emit(kind Kind, start int) *Token {
	l.toks = append(l.toks, Token{
		Kind:    kind,
		Text:    l.src[start:l.pos],
		Span:    source.Span{Start: start, End: l.pos},
		Spaced:  l.spaced,
		NewLine: l.newLine,
	})
	l.spaced, l.newLine = false, false
	return &l.toks[len(l.toks)-1]
}

func (l *lexer) emitLayout(kind Kind) {
	last := l.last()
	switch kind {
	case Newline:
		if last == nil || last.Kind == Newline || last.Kind == Indent {
			return
		}
	case Outdent:
		if last != nil && last.Kind == Newline {
			l.toks = l.toks[:len(l.toks)-1]
		}
	}
	l.toks = append(l.toks, Token{Kind: kind, Span: source.Span{Start: l.pos, End: l.pos}})
}

// valueBefore reports whether the previous token ends a value.
func (l *lexer) valueBefore() bool {
	t := l.last()
	if t == nil {
		return false
	}
	switch t.Kind {
	case Ident, Number, String, Regex, JS:
		return true
	case Keyword:
		return valueKeywords[t.Text]
	case Punct:
		return t.Text == ")" || t.Text == "]" || t.Text == "}" || t.Text == "@"
	}
	return false
}

func (l *lexer) word() {
	start := l.pos
	for l.pos < l.end {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:l.end])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	word := l.src[start:l.pos]
	name := l.propertyName() || l.followedByColon()
	switch {
	case keywords[word] && !name:
		l.emit(Keyword, start)
	case reserved[word] && !name:
		l.errorf(start, "reserved word %q", word)
	default:
		l.emit(Ident, start)
	}
}

// propertyName reports whether a word at the current position names a
// property, in which case keywords are ordinary identifiers.
func (l *lexer) propertyName() bool {
	t := l.last()
	if t == nil || t.Kind != Punct {
		return false
	}
	switch t.Text {
	case ".", "?.", "::", "?::":
		return true
	case "@":
		return !l.spaced
	}
	return false
}

// followedByColon reports whether the word just scanned is an object key.
func (l *lexer) followedByColon() bool {
	i := l.pos
	for i < l.end && isSpace(l.src[i]) {
		i++
	}
	return i < l.end && l.src[i] == ':' && (i+1 >= l.end || l.src[i+1] != ':')
}

func (l *lexer) number() {
	start := l.pos
	src := l.src[:l.end]
	digits := func(ok func(byte) bool) {
		for l.pos < l.end && (ok(src[l.pos]) || src[l.pos] == '_') {
			l.pos++
		}
	}
	if src[l.pos] == '0' && l.pos+1 < l.end {
		switch src[l.pos+1] {
		case 'x', 'X':
			l.pos += 2
			digits(isHex)
			l.endNumber(start)
			return
		case 'b', 'B':
			l.pos += 2
			digits(func(c byte) bool { return c == '0' || c == '1' })
			l.endNumber(start)
			return
		case 'o', 'O':
			l.pos += 2
			digits(func(c byte) bool { return c >= '0' && c <= '7' })
			l.endNumber(start)
			return
		}
		if isDigit(src[l.pos+1]) {
			l.errorf(start, "octal literal must be prefixed with 0o")
		}
	}
	digits(isDigit)
	if l.pos+1 < l.end && src[l.pos] == '.' && isDigit(src[l.pos+1]) {
		l.pos++
		digits(isDigit)
	}
	if l.pos < l.end && (src[l.pos] == 'e' || src[l.pos] == 'E') {
		j := l.pos + 1
		if j < l.end && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < l.end && isDigit(src[j]) {
			l.pos = j
			digits(isDigit)
		}
	}
	l.endNumber(start)
}

func (l *lexer) endNumber(start int) {
	if l.pos == start+2 && l.src[start] == '0' {
		l.errorf(start, "invalid number %q", l.src[start:l.pos])
	}
	if l.pos < l.end {
		if r, _ := utf8.DecodeRuneInString(l.src[l.pos:l.end]); isIdentPart(r) {
			l.errorf(start, "invalid number %q", l.src[start:l.pos+1])
		}
	}
	l.emit(Number, start)
}

func (l *lexer) js() {
	start := l.pos
	delim := "`"
	if strings.HasPrefix(l.src[l.pos:l.end], "```") {
		delim = "```"
	}
	l.pos += len(delim)
	var sb strings.Builder
	for {
		if l.pos >= l.end {
			l.errorf(start, "missing %s", delim)
		}
		if strings.HasPrefix(l.src[l.pos:l.end], delim) {
			l.pos += len(delim)
			break
		}
		if l.src[l.pos] == '\\' && l.pos+1 < l.end && l.src[l.pos+1] == '`' {
			sb.WriteByte('`')
			l.pos += 2
			continue
		}
		sb.WriteByte(l.src[l.pos])
		l.pos++
	}
	t := l.emit(JS, start)
	t.Text = sb.String()
}

// regexContext reports whether a regular expression may start at the
// current position, judging by the previous token.
func (l *lexer) regexContext() bool {
	t := l.last()
	if t == nil {
		return true
	}
	switch t.Kind {
	case Newline, Indent, Outdent:
		return true
	case Number, String, Regex, JS:
		return false
	case Ident:
		// `split /,/' is a call with a regex argument, `a / b' a division.
		rest := l.src[l.pos:l.end]
		return l.spaced && !(strings.HasPrefix(rest, "/ ") || strings.HasPrefix(rest, "/=") ||
			strings.HasPrefix(rest, "/\t") || strings.HasPrefix(rest, "/\n"))
	case Keyword:
		return !valueKeywords[t.Text]
	case Punct:
		switch t.Text {
		case ")", "]", "}", "++", "--", "@", "?", "::":
			return false
		}
	}
	return true
}

// scanRegex returns the end of the regular expression body (the offset
// after the closing slash) starting at the slash at i.
func (l *lexer) scanRegex(i int) (int, bool) {
	if strings.HasPrefix(l.src[i:l.end], "//") {
		return 0, false
	}
	i++
	inClass := false
	for i < l.end {
		switch c := l.src[i]; {
		case c == '\n':
			return 0, false
		case c == '\\':
			if i+1 >= l.end || l.src[i+1] == '\n' {
				return 0, false
			}
			i += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			return i + 1, true
		}
		i++
	}
	return 0, false
}

func (l *lexer) regexCloses() bool {
	_, ok := l.scanRegex(l.pos)
	return ok
}

func (l *lexer) regex() {
	start := l.pos
	end, ok := l.scanRegex(l.pos)
	if !ok {
		l.errorf(start, "missing / (unclosed regex)")
	}
	l.pos = end
	for l.pos < l.end && strings.IndexByte("dgimsuy", l.src[l.pos]) >= 0 {
		l.pos++
	}
	l.emit(Regex, start)
}

func (l *lexer) punct() {
	rest := l.src[l.pos:l.end]
	for _, p := range puncts {
		if !strings.HasPrefix(rest, p) {
			continue
		}
		start := l.pos
		switch p {
		case "(", "[", "{":
			l.brackets = append(l.brackets, bracket{open: p[0], start: start, floor: len(l.indents)})
		case ")", "]", "}":
			n := len(l.brackets)
			if n == 0 || closerFor(l.brackets[n-1].open) != p {
				l.errorf(start, "unmatched %q", p)
			}
			l.outdentTo(-1)
			l.brackets = l.brackets[:n-1]
		case "=":
			// `a or= b' is `a ||= b'
			if t := l.last(); t != nil && t.Kind == Keyword && (t.Text == "or" || t.Text == "and") {
				t.Kind = Punct
				if t.Text == "or" {
					t.Text = "||="
				} else {
					t.Text = "&&="
				}
				l.pos++
				t.Span.End = l.pos
				l.spaced = false
				return
			}
		}
		l.pos += len(p)
		l.emit(Punct, start)
		return
	}
	r, _ := utf8.DecodeRuneInString(rest)
	l.errorf(l.pos, "unexpected %q", r)
}

func closerFor(open byte) string {
	switch open {
	case '(':
		return ")"
	case '[':
		return "]"
	default:
		return "}"
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
