// Package parser builds a CoffeeScript syntax tree from source code.
package parser

import (
	"strconv"

	"github.com/adhocteam/coffeemin/internal/ast"
	"github.com/adhocteam/coffeemin/internal/lexer"
	"github.com/adhocteam/coffeemin/internal/source"
)

// Parse parses a CoffeeScript program. Errors are of type *source.Error
// and carry the line and column of the offending token.
func Parse(src string) (prog *ast.Program, err error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*source.Error); ok {
				prog = nil
				err = e
				return
			}
			panic(r)
		}
	}()
	p := &parser{src: src, toks: toks}
	body := p.parseProgram()
	return ast.Optimize(&ast.Program{Body: body, Source: src}), nil
}

type parser struct {
	src  string
	toks []lexer.Token
	pos  int

	// implicitDepth counts the implicit calls whose arguments are being
	// parsed. An access chain continued on a new line applies to the
	// outermost call, so it ends the arguments of nested ones.
	implicitDepth int
	// noIndentCall disables implicit calls with an indented object
	// argument. It is set while parsing the heads of blocks, as in
	// `class A extends B', where the indented block is the body.
	noIndentCall int
}

func (p *parser) errorf(offset int, format string, args ...any) {
	panic(source.Errorf(p.src, offset, format, args...))
}

func (p *parser) unexpected() {
	t := p.peek()
	p.errorf(t.Span.Start, "unexpected %s", describe(t))
}

func describe(t lexer.Token) string {
	switch t.Kind {
	case lexer.EOF:
		return "end of input"
	case lexer.Newline:
		return "newline"
	case lexer.Indent:
		return "indentation"
	case lexer.Outdent:
		return "outdentation"
	case lexer.String:
		return "string " + t.Text
	default:
		return strconv.Quote(t.Text)
	}
}

func (p *parser) peek() lexer.Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) lexer.Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() lexer.Token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(s string) bool {
	return p.peek().Is(s)
}

func (p *parser) atKind(k lexer.Kind) bool {
	return p.peek().Kind == k
}

func (p *parser) atIdent(name string) bool {
	t := p.peek()
	return t.Kind == lexer.Ident && t.Text == name
}

func (p *parser) accept(s string) bool {
	if p.at(s) {
		p.next()
		return true
	}
	return false
}

// acceptCont accepts the keyword kw continuing a construct, possibly on
// the next line, as with `else' and `catch'.
func (p *parser) acceptCont(kw string) bool {
	if p.atKind(lexer.Newline) && p.peekAt(1).Is(kw) {
		p.next()
	}
	return p.accept(kw)
}

func (p *parser) expect(s string) lexer.Token {
	if !p.at(s) {
		t := p.peek()
		p.errorf(t.Span.Start, "expected %q, got %s", s, describe(t))
	}
	return p.next()
}

func (p *parser) expectKind(k lexer.Kind) lexer.Token {
	if !p.atKind(k) {
		t := p.peek()
		p.errorf(t.Span.Start, "expected %s, got %s", k, describe(t))
	}
	return p.next()
}

func (p *parser) skipNewlines() {
	for p.atKind(lexer.Newline) {
		p.next()
	}
}

// skipLayout skips layout tokens, which only separate items inside
// brackets.
func (p *parser) skipLayout() {
	for {
		switch p.peek().Kind {
		case lexer.Newline, lexer.Indent, lexer.Outdent:
			p.next()
		default:
			return
		}
	}
}

func (p *parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

func (p *parser) span(start lexer.Token) source.Span {
	end := p.prevEnd()
	if end < start.Span.Start {
		end = start.Span.End
	}
	return source.Span{Start: start.Span.Start, End: end}
}

// resetContext clears the implicit call state for a nested construct
// delimited by brackets or indentation, and returns a function restoring
// it.
func (p *parser) resetContext() func() {
	depth, head := p.implicitDepth, p.noIndentCall
	p.implicitDepth, p.noIndentCall = 0, 0
	return func() {
		p.implicitDepth, p.noIndentCall = depth, head
	}
}

func (p *parser) parseProgram() *ast.NodeBlock {
	start := p.peek()
	b := &ast.NodeBlock{}
	for {
		p.skipNewlines()
		if p.atKind(lexer.EOF) {
			break
		}
		b.Stmts = append(b.Stmts, p.parseStatement())
		if !p.atKind(lexer.Newline) && !p.atKind(lexer.EOF) {
			p.unexpected()
		}
	}
	b.Span = p.span(start)
	return b
}

// parseBlock parses an indented block of statements.
func (p *parser) parseBlock() *ast.NodeBlock {
	start := p.expectKind(lexer.Indent)
	defer p.resetContext()()
	b := &ast.NodeBlock{}
	for {
		p.skipNewlines()
		if p.atKind(lexer.Outdent) {
			break
		}
		b.Stmts = append(b.Stmts, p.parseStatement())
		if !p.atKind(lexer.Newline) && !p.atKind(lexer.Outdent) {
			p.unexpected()
		}
	}
	p.next()
	b.Span = p.span(start)
	return b
}

func inlineBlock(n ast.Node) *ast.NodeBlock {
	return &ast.NodeBlock{Stmts: []ast.Node{n}, Span: n.Pos()}
}

// parseThenBody parses the body of a block construct: either `then'
// followed by a statement, or an indented block.
func (p *parser) parseThenBody() *ast.NodeBlock {
	if p.accept("then") {
		if p.atKind(lexer.Indent) {
			return p.parseBlock()
		}
		return inlineBlock(p.parseStatement())
	}
	if p.atKind(lexer.Indent) {
		return p.parseBlock()
	}
	t := p.peek()
	p.errorf(t.Span.Start, "expected then or an indented block, got %s", describe(t))
	return nil
}

// parseElseBody parses an indented block or a statement on the same line.
func (p *parser) parseElseBody() *ast.NodeBlock {
	if p.atKind(lexer.Indent) {
		return p.parseBlock()
	}
	return inlineBlock(p.parseStatement())
}

// blockValue is the value of a block used as an expression.
func blockValue(b *ast.NodeBlock) ast.Node {
	if len(b.Stmts) == 1 {
		return b.Stmts[0]
	}
	return b
}

func (p *parser) parseStatement() ast.Node {
	tok := p.peek()
	var n ast.Node
	switch {
	case tok.Is("return"):
		p.next()
		r := &ast.NodeReturn{}
		switch {
		case p.atKind(lexer.Indent):
			r.X = blockValue(p.parseBlock())
		case p.canStartExpr() && !isPostfixKeyword(p.peek()):
			r.X = p.parseExpression()
		}
		r.Span = p.span(tok)
		n = r
	case tok.Is("break"), tok.Is("continue"), tok.Is("debugger"):
		p.next()
		n = &ast.NodeJump{Keyword: tok.Text, Span: tok.Span}
	default:
		n = p.parseExpression()
	}
	return p.parsePostfixModifiers(n, tok)
}

func isPostfixKeyword(t lexer.Token) bool {
	return t.Is("if") || t.Is("unless") || t.Is("while") || t.Is("until") || t.Is("for")
}

// parsePostfixModifiers parses trailing `if', `unless', `while', `until'
// and `for' clauses applying to the statement n.
func (p *parser) parsePostfixModifiers(n ast.Node, start lexer.Token) ast.Node {
	for {
		tok := p.peek()
		switch {
		case tok.Is("if"), tok.Is("unless"):
			p.next()
			cond := p.parseHead()
			if tok.Text == "unless" {
				cond = negate(cond)
			}
			n = &ast.NodeIf{Cond: cond, Then: inlineBlock(n), Span: p.span(start)}
		case tok.Is("while"), tok.Is("until"):
			p.next()
			cond := p.parseHead()
			if tok.Text == "until" {
				cond = negate(cond)
			}
			w := &ast.NodeWhile{Cond: cond, Body: inlineBlock(n)}
			if p.accept("when") {
				w.Guard = p.parseHead()
			}
			w.Span = p.span(start)
			n = w
		case tok.Is("for"):
			f := p.parseForHead()
			f.Body = inlineBlock(n)
			f.Postfix = true
			f.Span = p.span(start)
			n = f
		default:
			return n
		}
	}
}

// parseHead parses the expression heading a block construct.
func (p *parser) parseHead() ast.Node {
	p.noIndentCall++
	defer func() { p.noIndentCall-- }()
	return p.parseExpression()
}

// negate returns the logical negation of x, inverting equality tests
// where possible.
func negate(x ast.Node) ast.Node {
	switch x := x.(type) {
	case *ast.NodeBinary:
		if inner, ok := x.X.(*ast.NodeBinary); ok && ast.IsCompare(inner.Op) {
			break
		}
		switch x.Op {
		case "==":
			x.Op = "!="
			return x
		case "!=":
			x.Op = "=="
			return x
		}
	case *ast.NodeUnary:
		if x.Op == "!" && !x.Postfix {
			if _, ok := x.X.(*ast.NodeUnary); !ok {
				return x.X
			}
		}
	}
	return &ast.NodeUnary{Op: "!", X: x, Span: x.Pos()}
}

// canStartExpr reports whether the current token can begin an expression.
func (p *parser) canStartExpr() bool {
	t := p.peek()
	switch t.Kind {
	case lexer.EOF, lexer.Newline, lexer.Indent, lexer.Outdent:
		return false
	case lexer.Punct:
		switch t.Text {
		case ")", "]", "}", ",", ":", "=":
			return false
		}
	case lexer.Keyword:
		switch t.Text {
		case "then", "else", "when", "catch", "finally", "by", "in", "of",
			"and", "or", "is", "isnt", "instanceof", "extends":
			return false
		}
	}
	return true
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "//=": true, "%%=": true, "<<=": true, ">>=": true, ">>>=": true,
	"&=": true, "|=": true, "^=": true, "?=": true, "||=": true, "&&=": true,
}

func (p *parser) parseExpression() ast.Node {
	tok := p.peek()
	switch {
	case tok.Is("yield"):
		return p.parseYield()
	case p.isKeyStart(0):
		return p.parseImplicitObject()
	case p.isFuncStart():
		return p.parseFunc()
	}
	x := p.parseBinary(0)
	if op := p.peek(); op.Kind == lexer.Punct && assignOps[op.Text] {
		p.checkAssignable(x, op.Text)
		p.next()
		var value ast.Node
		if p.atKind(lexer.Indent) {
			value = blockValue(p.parseBlock())
		} else {
			value = p.parseExpression()
		}
		return &ast.NodeAssign{Target: x, Op: op.Text, Value: value, Span: x.Pos().Join(value.Pos())}
	}
	return x
}

func (p *parser) checkAssignable(x ast.Node, op string) {
	switch x := x.(type) {
	case *ast.NodeIdent:
		if x.Name != "super" {
			return
		}
	case *ast.NodeAccess:
		if !x.Soak && x.Name != "" {
			return
		}
	case *ast.NodeIndex:
		if !x.Soak {
			return
		}
	case *ast.NodeArray, *ast.NodeObject:
		if op == "=" {
			return
		}
	}
	p.errorf(x.Pos().Start, "invalid assignment target")
}

func (p *parser) parseYield() ast.Node {
	start := p.next()
	y := &ast.NodeYield{}
	if p.atIdent("from") {
		p.next()
		y.Delegate = true
		y.X = p.parseExpression()
	} else if p.canStartExpr() && !isPostfixKeyword(p.peek()) {
		y.X = p.parseExpression()
	}
	y.Span = p.span(start)
	return y
}

// precedence of binary operators; higher binds tighter. Exponentiation is
// handled separately because it binds tighter than unary operators.
var precedence = map[string]int{
	"?":  1,
	"||": 2,
	"&&": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"==": 7, "!=": 7, "<": 7, ">": 7, "<=": 7, ">=": 7,
	"in": 8, "of": 8, "instanceof": 8, "!in": 8, "!of": 8, "!instanceof": 8,
	"<<": 9, ">>": 9, ">>>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11, "//": 11, "%%": 11,
}

// binaryOp returns the canonical binary operator at the current position
// and the number of tokens spelling it.
func (p *parser) binaryOp() (string, int) {
	t := p.peek()
	switch t.Kind {
	case lexer.Punct:
		switch t.Text {
		case "===":
			return "==", 1
		case "!==":
			return "!=", 1
		}
		if _, ok := precedence[t.Text]; ok {
			return t.Text, 1
		}
	case lexer.Keyword:
		switch t.Text {
		case "or":
			return "||", 1
		case "and":
			return "&&", 1
		case "is":
			if p.peekAt(1).Is("not") {
				return "!=", 2
			}
			return "==", 1
		case "isnt":
			return "!=", 1
		case "in", "of", "instanceof":
			return t.Text, 1
		case "not":
			if n := p.peekAt(1); n.Is("in") || n.Is("of") || n.Is("instanceof") {
				return "!" + n.Text, 2
			}
		}
	}
	return "", 0
}

func (p *parser) parseBinary(minPrec int) ast.Node {
	x := p.parsePower()
	for {
		op, n := p.binaryOp()
		prec, ok := precedence[op]
		if !ok || prec < minPrec {
			return x
		}
		for i := 0; i < n; i++ {
			p.next()
		}
		y := p.parseBinary(prec + 1)
		x = &ast.NodeBinary{Op: op, X: x, Y: y, Span: x.Pos().Join(y.Pos())}
	}
}

func (p *parser) parsePower() ast.Node {
	x := p.parseUnary()
	if p.at("**") {
		p.next()
		y := p.parsePower()
		return &ast.NodeBinary{Op: "**", X: x, Y: y, Span: x.Pos().Join(y.Pos())}
	}
	return x
}

var unaryOps = map[string]string{
	"!": "!", "not": "!", "-": "-", "+": "+", "~": "~", "++": "++", "--": "--",
	"typeof": "typeof", "delete": "delete",
}

func (p *parser) parseUnary() ast.Node {
	tok := p.peek()
	if tok.Kind == lexer.Punct || tok.Kind == lexer.Keyword {
		if op, ok := unaryOps[tok.Text]; ok {
			p.next()
			x := p.parsePower()
			return &ast.NodeUnary{Op: op, X: x, Span: p.span(tok)}
		}
	}
	switch {
	case tok.Is("new"):
		return p.parseNew()
	case tok.Is("await"):
		p.next()
		x := p.parsePower()
		return &ast.NodeAwait{X: x, Span: p.span(tok)}
	case tok.Is("do"):
		return p.parseDo()
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parseNew() ast.Node {
	start := p.next()
	callee := p.parseAccessChain(p.parsePrimary())
	call := &ast.NodeCall{Fn: callee, New: true}
	if t := p.peek(); t.Is("(") && !t.Spaced {
		call.Args = p.parseCallArgs()
	} else if p.implicitCallStart(callee, t) {
		call.Args = p.parseImplicitArgs()
	}
	call.Span = p.span(start)
	return p.parsePostfix(call)
}

// parseDo parses `do', which calls a function immediately. Parameters of
// an inline function are passed as arguments: their default values, or
// the variables of the same name.
func (p *parser) parseDo() ast.Node {
	start := p.next()
	x := p.parseUnary()
	call := &ast.NodeCall{Fn: x}
	if f, ok := x.(*ast.NodeFunc); ok {
		call.Fn = &ast.NodeParen{X: f, Span: f.Span}
		for _, param := range f.Params {
			if param.Default != nil {
				call.Args = append(call.Args, param.Default)
				param.Default = nil
			} else {
				call.Args = append(call.Args, param.Name)
			}
		}
	}
	call.Span = p.span(start)
	return p.parsePostfix(call)
}

// parseAccessChain parses property accesses and indexes, but no calls.
func (p *parser) parseAccessChain(x ast.Node) ast.Node {
	for {
		tok := p.peek()
		switch {
		case tok.Is(".") || tok.Is("?.") || tok.Is("::") || tok.Is("?::"):
			x = p.parseAccess(x)
		case tok.Is("[") && !tok.Spaced:
			x = p.parseIndex(x, false)
		default:
			return x
		}
	}
}

func (p *parser) parseAccess(x ast.Node) ast.Node {
	tok := p.next()
	a := &ast.NodeAccess{X: x, Soak: tok.Text[0] == '?'}
	if tok.Text == "::" || tok.Text == "?::" {
		a.Proto = true
		if n := p.peek(); n.Kind == lexer.Ident && !n.Spaced {
			a.Name = p.next().Text
		}
	} else {
		name := p.peek()
		if name.Kind != lexer.Ident {
			p.errorf(name.Span.Start, "expected property name, got %s", describe(name))
		}
		a.Name = p.next().Text
	}
	a.Span = x.Pos().Join(p.span(tok))
	return a
}

func (p *parser) parsePostfix(x ast.Node) ast.Node {
	if _, ok := x.(*ast.NodeFunc); ok {
		return x
	}
	for {
		tok := p.peek()
		if tok.NewLine && p.implicitDepth > 0 {
			return x
		}
		switch {
		case tok.Is(".") || tok.Is("?.") || tok.Is("::") || tok.Is("?::"):
			x = p.parseAccess(x)
		case tok.Is("[") && !tok.Spaced:
			x = p.parseIndex(x, false)
		case tok.Is("(") && !tok.Spaced:
			args := p.parseCallArgs()
			x = &ast.NodeCall{Fn: x, Args: args, Span: x.Pos().Join(p.span(tok))}
		case tok.Is("?") && !tok.Spaced:
			n := p.peekAt(1)
			p.next()
			switch {
			case n.Is("(") && !n.Spaced:
				args := p.parseCallArgs()
				x = &ast.NodeCall{Fn: x, Args: args, Soak: true, Span: x.Pos().Join(p.span(tok))}
			case n.Is("[") && !n.Spaced:
				x = p.parseIndex(x, true)
			default:
				x = &ast.NodeExistence{X: x, Span: x.Pos().Join(tok.Span)}
			}
		case (tok.Is("++") || tok.Is("--")) && !tok.Spaced:
			p.next()
			x = &ast.NodeUnary{Op: tok.Text, X: x, Postfix: true, Span: x.Pos().Join(tok.Span)}
		case p.implicitCallStart(x, tok):
			args := p.parseImplicitArgs()
			x = &ast.NodeCall{Fn: x, Args: args, Span: x.Pos().Join(p.span(tok))}
		default:
			return x
		}
	}
}

// implicitCallStart reports whether tok begins the arguments of a call to
// x written without parentheses, as in `f a, b'.
func (p *parser) implicitCallStart(x ast.Node, tok lexer.Token) bool {
	switch x.(type) {
	case *ast.NodeIdent, *ast.NodeAccess, *ast.NodeIndex, *ast.NodeCall, *ast.NodeThis, *ast.NodeParen:
	default:
		return false
	}
	if tok.Kind == lexer.Indent {
		return p.noIndentCall == 0 && p.isKeyStart(1)
	}
	if !tok.Spaced || tok.NewLine {
		return false
	}
	switch tok.Kind {
	case lexer.Ident, lexer.Number, lexer.String, lexer.Regex, lexer.JS:
		return true
	case lexer.Keyword:
		switch tok.Text {
		case "not":
			// `x not in y' is an operator, not a call
			next := p.peekAt(1)
			return !next.Is("in") && !next.Is("of") && !next.Is("instanceof")
		case "new", "typeof", "delete", "this", "null", "undefined",
			"true", "false", "yes", "no", "on", "off", "super", "do", "class",
			"switch", "try", "await":
			return true
		}
	case lexer.Punct:
		switch tok.Text {
		case "(", "[", "{", "->", "=>", "@", "!", "~", "...":
			return true
		case "-", "+":
			return !p.peekAt(1).Spaced
		}
	}
	return false
}

func (p *parser) parseImplicitArgs() []ast.Node {
	p.implicitDepth++
	defer func() { p.implicitDepth-- }()
	if p.atKind(lexer.Indent) {
		p.next()
		obj := p.parseExpression()
		p.skipNewlines()
		p.expectKind(lexer.Outdent)
		return []ast.Node{obj}
	}
	var args []ast.Node
	for {
		args = append(args, p.parseArg())
		if !p.accept(",") {
			return args
		}
	}
}

// parseCallArgs parses a parenthesized argument list.
func (p *parser) parseCallArgs() []ast.Node {
	p.expect("(")
	defer p.resetContext()()
	args := []ast.Node{}
	for {
		p.skipLayout()
		if p.at(")") {
			break
		}
		args = append(args, p.parseArg())
		p.skipLayout()
		p.accept(",")
	}
	p.next()
	return args
}

func (p *parser) parseArg() ast.Node {
	if tok := p.peek(); tok.Is("...") {
		p.next()
		x := p.parseExpression()
		return &ast.NodeSplat{X: x, Span: p.span(tok)}
	}
	return p.finishArg(p.parseExpression())
}

// finishArg wraps x in a splat if it is followed by `...'.
func (p *parser) finishArg(x ast.Node) ast.Node {
	if p.at("...") && p.endsItem(1) {
		tok := p.next()
		return &ast.NodeSplat{X: x, Span: x.Pos().Join(tok.Span)}
	}
	return x
}

// endsItem reports whether the token at offset i ends a list item.
func (p *parser) endsItem(i int) bool {
	t := p.peekAt(i)
	switch t.Kind {
	case lexer.EOF, lexer.Newline, lexer.Indent, lexer.Outdent:
		return true
	case lexer.Punct:
		switch t.Text {
		case ")", "]", "}", ",":
			return true
		}
	}
	return false
}

func (p *parser) parseIndex(x ast.Node, soak bool) ast.Node {
	start := p.expect("[")
	defer p.resetContext()()
	p.skipLayout()
	var from ast.Node
	if !p.at("..") && !p.at("...") {
		from = p.parseExpression()
		p.skipLayout()
	}
	if p.at("..") || p.at("...") {
		excl := p.next().Text == "..."
		p.skipLayout()
		var to ast.Node
		if !p.at("]") {
			to = p.parseExpression()
			p.skipLayout()
		}
		p.expect("]")
		return &ast.NodeSlice{X: x, From: from, To: to, Exclusive: excl, Span: x.Pos().Join(p.span(start))}
	}
	if from == nil {
		p.unexpected()
	}
	p.expect("]")
	return &ast.NodeIndex{X: x, Index: from, Soak: soak, Span: x.Pos().Join(p.span(start))}
}

func (p *parser) parsePrimary() ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Ident:
		p.next()
		return &ast.NodeIdent{Name: tok.Text, Span: tok.Span}
	case lexer.Number:
		p.next()
		return &ast.NodeLiteral{Kind: ast.LiteralNumber, Value: tok.Text, Span: tok.Span}
	case lexer.Regex:
		p.next()
		return &ast.NodeLiteral{Kind: ast.LiteralRegex, Value: tok.Text, Span: tok.Span}
	case lexer.JS:
		p.next()
		return &ast.NodeLiteral{Kind: ast.LiteralJS, Value: tok.Text, Span: tok.Span}
	case lexer.String:
		p.next()
		return p.parseString(tok)
	case lexer.Keyword:
		return p.parseKeyword()
	case lexer.Punct:
		switch tok.Text {
		case "@":
			return p.parseThis()
		case "(":
			if p.isFuncStart() {
				return p.parseFunc()
			}
			return p.parseParen()
		case "[":
			return p.parseArray()
		case "{":
			return p.parseObject()
		case "->", "=>":
			return p.parseFunc()
		}
	}
	p.unexpected()
	return nil
}

func (p *parser) parseKeyword() ast.Node {
	tok := p.peek()
	lit := func(kind ast.LiteralKind, value string) ast.Node {
		p.next()
		return &ast.NodeLiteral{Kind: kind, Value: value, Span: tok.Span}
	}
	switch tok.Text {
	case "this":
		p.next()
		return &ast.NodeThis{Span: tok.Span}
	case "true", "yes", "on":
		return lit(ast.LiteralBool, "true")
	case "false", "no", "off":
		return lit(ast.LiteralBool, "false")
	case "null":
		return lit(ast.LiteralNull, "null")
	case "undefined":
		return lit(ast.LiteralUndefined, "undefined")
	case "super":
		return p.parseSuper()
	case "if", "unless":
		return p.parseIf()
	case "while", "until", "loop":
		return p.parseWhile()
	case "for":
		f := p.parseForHead()
		f.Body = p.parseThenBody()
		f.Span = p.span(tok)
		return f
	case "switch":
		return p.parseSwitch()
	case "try":
		return p.parseTry()
	case "class":
		return p.parseClass()
	case "throw":
		p.next()
		x := p.parseExpression()
		return &ast.NodeThrow{X: x, Span: p.span(tok)}
	case "yield":
		return p.parseYield()
	case "new", "do", "await", "not", "typeof", "delete":
		return p.parseUnary()
	}
	p.unexpected()
	return nil
}

func (p *parser) parseThis() ast.Node {
	tok := p.expect("@")
	this := &ast.NodeThis{Span: tok.Span}
	if n := p.peek(); n.Kind == lexer.Ident && !n.Spaced {
		p.next()
		return &ast.NodeAccess{X: this, Name: n.Text, Span: p.span(tok)}
	}
	return this
}

func (p *parser) parseSuper() ast.Node {
	tok := p.next()
	n := p.peek()
	switch {
	case (n.Is(".") || n.Is("[")) && !n.Spaced:
		// super.method() and super[name]() reach the parent prototype
		return &ast.NodeIdent{Name: "super", Span: tok.Span}
	case n.Is("(") && !n.Spaced:
		args := p.parseCallArgs()
		return &ast.NodeSuper{Args: args, Span: p.span(tok)}
	case p.implicitCallStart(&ast.NodeIdent{}, n):
		args := p.parseImplicitArgs()
		return &ast.NodeSuper{Args: args, Span: p.span(tok)}
	}
	return &ast.NodeSuper{Bare: true, Span: tok.Span}
}

func (p *parser) parseString(tok lexer.Token) ast.Node {
	s := &ast.NodeString{Span: tok.Span}
	for _, part := range tok.Parts {
		if !part.Interp {
			s.Parts = append(s.Parts, ast.StringPart{Text: part.Text})
			continue
		}
		sub := &parser{src: p.src, toks: part.Tokens}
		sub.skipNewlines()
		if sub.atKind(lexer.EOF) {
			continue
		}
		expr := sub.parseStatement()
		sub.skipLayout()
		if !sub.atKind(lexer.EOF) {
			sub.unexpected()
		}
		s.Parts = append(s.Parts, ast.StringPart{Expr: expr})
	}
	return s
}

// isFuncStart reports whether a function literal starts at the current
// position: an arrow, or a parameter list followed by one.
func (p *parser) isFuncStart() bool {
	t := p.peek()
	if t.Is("->") || t.Is("=>") {
		return true
	}
	if !t.Is("(") {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		t := p.peekAt(i)
		switch {
		case t.Kind == lexer.EOF:
			return false
		case t.Is("(") || t.Is("[") || t.Is("{"):
			depth++
		case t.Is(")") || t.Is("]") || t.Is("}"):
			depth--
			if depth == 0 {
				n := p.peekAt(i + 1)
				return n.Is("->") || n.Is("=>")
			}
		}
	}
}

func (p *parser) parseFunc() ast.Node {
	start := p.peek()
	f := &ast.NodeFunc{}
	if p.at("(") {
		f.Params = p.parseParams()
	}
	arrow := p.next()
	if !arrow.Is("->") && !arrow.Is("=>") {
		p.errorf(arrow.Span.Start, "expected -> or =>, got %s", describe(arrow))
	}
	f.Bound = arrow.Text == "=>"
	f.Body = p.parseFuncBody()
	f.Span = p.span(start)
	return f
}

func (p *parser) parseFuncBody() *ast.NodeBlock {
	if p.atKind(lexer.Indent) {
		return p.parseBlock()
	}
	if !p.canStartExpr() {
		t := p.peek()
		return &ast.NodeBlock{Span: source.Span{Start: t.Span.Start, End: t.Span.Start}}
	}
	saved := p.noIndentCall
	p.noIndentCall = 0
	defer func() { p.noIndentCall = saved }()
	return inlineBlock(p.parseStatement())
}

func (p *parser) parseParams() []*ast.Param {
	p.expect("(")
	defer p.resetContext()()
	var params []*ast.Param
	for {
		p.skipLayout()
		if p.at(")") {
			break
		}
		params = append(params, p.parseParam())
		p.skipLayout()
		if !p.accept(",") && !p.at(")") {
			p.unexpected()
		}
	}
	p.next()
	return params
}

func (p *parser) parseParam() *ast.Param {
	param := &ast.Param{}
	if p.accept("...") {
		param.Splat = true
	}
	param.Name = p.parseTarget()
	if p.accept("...") {
		param.Splat = true
	}
	if p.accept("=") {
		param.Default = p.parseExpression()
	}
	return param
}

// parseTarget parses a variable name, a this-property or a destructuring
// pattern, as used by parameters and loop variables.
func (p *parser) parseTarget() ast.Node {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.Ident:
		p.next()
		return &ast.NodeIdent{Name: tok.Text, Span: tok.Span}
	case tok.Is("@"):
		return p.parseThis()
	case tok.Is("["):
		return p.parseArray()
	case tok.Is("{"):
		return p.parseObject()
	}
	p.errorf(tok.Span.Start, "expected a name, got %s", describe(tok))
	return nil
}

func (p *parser) parseParen() ast.Node {
	start := p.expect("(")
	defer p.resetContext()()
	b := &ast.NodeBlock{}
	for {
		p.skipLayout()
		if p.at(")") {
			break
		}
		b.Stmts = append(b.Stmts, p.parseStatement())
	}
	end := p.next()
	if len(b.Stmts) == 0 {
		p.errorf(end.Span.Start, "unexpected %s", describe(end))
	}
	b.Span = p.span(start)
	return &ast.NodeParen{X: blockValue(b), Span: b.Span}
}

func (p *parser) parseArray() ast.Node {
	start := p.expect("[")
	defer p.resetContext()()
	arr := &ast.NodeArray{}
	p.skipLayout()
	if !p.at("]") && !p.at("...") {
		first := p.parseExpression()
		p.skipLayout()
		if p.at("..") || (p.at("...") && !p.endsItem(1)) {
			excl := p.next().Text == "..."
			p.skipLayout()
			to := p.parseExpression()
			p.skipLayout()
			p.expect("]")
			return &ast.NodeRange{From: first, To: to, Exclusive: excl, Span: p.span(start)}
		}
		arr.Elems = append(arr.Elems, p.finishArg(first))
		p.skipLayout()
		p.accept(",")
	}
	for {
		p.skipLayout()
		if p.at("]") {
			break
		}
		arr.Elems = append(arr.Elems, p.parseArg())
		p.skipLayout()
		p.accept(",")
	}
	p.next()
	arr.Span = p.span(start)
	return arr
}

// isKeyStart reports whether the tokens at offset i begin a `key:' pair
// of an object literal.
func (p *parser) isKeyStart(i int) bool {
	t := p.peekAt(i)
	switch t.Kind {
	case lexer.Ident, lexer.Number, lexer.String:
		return p.peekAt(i + 1).Is(":")
	case lexer.Punct:
		if t.Text == "@" {
			n := p.peekAt(i + 1)
			return n.Kind == lexer.Ident && !n.Spaced && p.peekAt(i+2).Is(":")
		}
	}
	return false
}

func (p *parser) parseObject() ast.Node {
	start := p.expect("{")
	defer p.resetContext()()
	obj := &ast.NodeObject{}
	for {
		p.skipLayout()
		if p.at("}") {
			break
		}
		obj.Props = append(obj.Props, p.parseBraceProp())
		p.skipLayout()
		p.accept(",")
	}
	p.next()
	obj.Span = p.span(start)
	return obj
}

func (p *parser) parseBraceProp() ast.Node {
	tok := p.peek()
	if tok.Is("...") {
		p.next()
		x := p.parseExpression()
		return &ast.NodeSplat{X: x, Span: p.span(tok)}
	}
	key := p.parsePropKey()
	if p.accept(":") {
		value := p.parsePropValue()
		return &ast.NodeProp{Key: key, Value: value, Span: p.span(tok)}
	}
	switch key.(type) {
	case *ast.NodeIdent, *ast.NodeAccess:
	default:
		p.unexpected()
	}
	if p.at("...") {
		end := p.next()
		return &ast.NodeSplat{X: key, Span: key.Pos().Join(end.Span)}
	}
	return &ast.NodeProp{Key: key, Span: p.span(tok)}
}

func (p *parser) parsePropKey() ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Ident:
		p.next()
		return &ast.NodeIdent{Name: tok.Text, Span: tok.Span}
	case lexer.Number:
		p.next()
		return &ast.NodeLiteral{Kind: ast.LiteralNumber, Value: tok.Text, Span: tok.Span}
	case lexer.String:
		p.next()
		return p.parseString(tok)
	}
	if tok.Is("@") {
		return p.parseThis()
	}
	p.errorf(tok.Span.Start, "expected property name, got %s", describe(tok))
	return nil
}

func (p *parser) parsePropValue() ast.Node {
	if p.atKind(lexer.Indent) {
		return blockValue(p.parseBlock())
	}
	return p.parseExpression()
}

// parseImplicitObject parses an object literal written without braces.
// An object that starts a line continues on following lines that start
// with a key.
func (p *parser) parseImplicitObject() ast.Node {
	start := p.peek()
	obj := &ast.NodeObject{Implicit: true}
	for {
		tok := p.peek()
		key := p.parsePropKey()
		p.expect(":")
		value := p.parsePropValue()
		obj.Props = append(obj.Props, &ast.NodeProp{Key: key, Value: value, Span: p.span(tok)})
		if p.at(",") && p.isKeyStart(1) {
			p.next()
			continue
		}
		if start.NewLine && p.atKind(lexer.Newline) && p.isKeyStart(1) {
			p.next()
			continue
		}
		break
	}
	obj.Span = p.span(start)
	return obj
}

func (p *parser) parseIf() ast.Node {
	start := p.next()
	cond := p.parseHead()
	if start.Text == "unless" {
		cond = negate(cond)
	}
	n := &ast.NodeIf{Cond: cond, Then: p.parseThenBody()}
	if p.acceptCont("else") {
		if p.at("if") || p.at("unless") {
			n.Else = p.parseIf()
		} else {
			n.Else = p.parseElseBody()
		}
	}
	n.Span = p.span(start)
	return n
}

func (p *parser) parseWhile() ast.Node {
	start := p.next()
	w := &ast.NodeWhile{}
	if start.Text != "loop" {
		w.Cond = p.parseHead()
		if start.Text == "until" {
			w.Cond = negate(w.Cond)
		}
		if p.accept("when") {
			w.Guard = p.parseHead()
		}
		w.Body = p.parseThenBody()
	} else {
		w.Body = p.parseElseBody()
	}
	w.Span = p.span(start)
	return w
}

// parseForHead parses a `for' clause up to its body.
func (p *parser) parseForHead() *ast.NodeFor {
	start := p.expect("for")
	p.noIndentCall++
	defer func() { p.noIndentCall-- }()
	f := &ast.NodeFor{}
	if p.atIdent("own") {
		p.next()
		f.Own = true
	}
	first := p.parseTarget()
	if r, ok := first.(*ast.NodeRange); ok && !p.at("in") && !p.at("of") {
		// for [1..3]
		f.Source = r
	} else {
		f.Name = first
		if p.accept(",") {
			f.Index = p.parseTarget()
		}
		switch {
		case p.accept("in"):
			f.Kind = ast.ForIn
		case p.accept("of"):
			f.Kind = ast.ForOf
		case p.atIdent("from"):
			p.next()
			f.Kind = ast.ForFrom
		default:
			t := p.peek()
			p.errorf(t.Span.Start, "expected in, of or from, got %s", describe(t))
		}
		f.Source = p.parseExpression()
	}
	if f.Own && f.Kind != ast.ForOf {
		p.errorf(start.Span.Start, "cannot use own with for-%s", map[ast.ForKind]string{ast.ForIn: "in", ast.ForFrom: "from"}[f.Kind])
	}
	for {
		switch {
		case p.accept("by"):
			f.Step = p.parseExpression()
		case p.accept("when"):
			f.Guard = p.parseExpression()
		default:
			f.Span = p.span(start)
			return f
		}
	}
}

func (p *parser) parseSwitch() ast.Node {
	start := p.next()
	s := &ast.NodeSwitch{}
	if !p.atKind(lexer.Indent) {
		s.Subject = p.parseHead()
	}
	p.expectKind(lexer.Indent)
	for {
		p.skipNewlines()
		if p.atKind(lexer.Outdent) {
			break
		}
		switch {
		case p.accept("when"):
			c := &ast.SwitchCase{}
			for {
				c.Conds = append(c.Conds, p.parseHead())
				if !p.accept(",") {
					break
				}
			}
			c.Body = p.parseThenBody()
			s.Cases = append(s.Cases, c)
		case p.accept("else"):
			s.Default = p.parseElseBody()
		default:
			p.unexpected()
		}
	}
	p.next()
	if len(s.Cases) == 0 {
		p.errorf(start.Span.Start, "switch without when clauses")
	}
	s.Span = p.span(start)
	return s
}

func (p *parser) parseTry() ast.Node {
	start := p.next()
	t := &ast.NodeTry{Body: p.parseElseBody()}
	if p.acceptCont("catch") {
		if !p.atKind(lexer.Indent) && !p.at("then") && p.canStartExpr() {
			t.CatchParam = p.parseTarget()
		}
		if p.atKind(lexer.Indent) || p.at("then") {
			t.Catch = p.parseThenBody()
		} else {
			t.Catch = &ast.NodeBlock{}
		}
	}
	if p.acceptCont("finally") {
		t.Finally = p.parseElseBody()
	}
	t.Span = p.span(start)
	return t
}

func (p *parser) parseClass() ast.Node {
	start := p.next()
	c := &ast.NodeClass{}
	p.noIndentCall++
	if t := p.peek(); t.Kind == lexer.Ident {
		p.next()
		c.Name = p.parseAccessChain(&ast.NodeIdent{Name: t.Text, Span: t.Span})
	}
	if p.accept("extends") {
		c.Parent = p.parseExpression()
	}
	p.noIndentCall--
	if p.atKind(lexer.Indent) {
		c.Members = p.parseClassBody()
	}
	c.Span = p.span(start)
	return c
}

func (p *parser) parseClassBody() []*ast.ClassMember {
	p.expectKind(lexer.Indent)
	defer p.resetContext()()
	var members []*ast.ClassMember
	for {
		p.skipNewlines()
		if p.atKind(lexer.Outdent) {
			break
		}
		start := p.peek()
		m := &ast.ClassMember{}
		if p.accept("@") {
			m.Static = true
		}
		switch tok := p.next(); tok.Kind {
		case lexer.Ident, lexer.Number:
			m.Name = tok.Text
		case lexer.String:
			if len(tok.Parts) != 1 || tok.Parts[0].Interp {
				p.errorf(tok.Span.Start, "class member names cannot be interpolated")
			}
			m.Name = `"` + tok.Parts[0].Text + `"`
		default:
			p.errorf(tok.Span.Start, "expected class member, got %s", describe(tok))
		}
		p.expect(":")
		m.Value = p.parsePropValue()
		m.Span = p.span(start)
		members = append(members, m)
		if !p.accept(",") && !p.atKind(lexer.Newline) && !p.atKind(lexer.Outdent) {
			p.unexpected()
		}
	}
	p.next()
	return members
}
