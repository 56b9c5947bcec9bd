// Package codegen translates a CoffeeScript syntax tree into JavaScript.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adhocteam/coffeemin/internal/ast"
	"github.com/adhocteam/coffeemin/internal/source"
)

type Options struct {
	// Bare omits the (function() { ... }).call(this) wrapper around the
	// program.
	Bare bool
}

// Generate returns the JavaScript for prog. Errors for constructs that
// have no translation are of type *source.Error.
func Generate(prog *ast.Program, opts Options) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*source.Error); ok {
				code = ""
				err = e
				return
			}
			panic(r)
		}
	}()
	g := newGenerator(prog, opts)
	return g.program(prog), nil
}

const indentUnit = "  "

// mode says what becomes of the value of the last statement of a block.
type mode int

const (
	// modeStmt discards it.
	modeStmt mode = iota
	// modeReturn returns it from the enclosing function.
	modeReturn
	// modePush appends it to the results array of a comprehension.
	modePush
)

// methodCtx describes the class method being generated, for `super'.
type methodCtx struct {
	name    string
	static  bool
	ctor    bool
	derived bool
}

type generator struct {
	src  string
	opts Options

	// names is every identifier used in the file.
	names map[string]bool
	// reserved holds helper names already taken.
	reserved    map[string]bool
	helpers     map[string]string
	helperOrder []string

	root   *scope
	scope  *scope
	method *methodCtx

	// results is the array collecting values in modePush.
	results string

	// buffer for the statements being generated.
	body   *bytes.Buffer
	indent int
}

func newGenerator(prog *ast.Program, opts Options) *generator {
	g := &generator{
		src:      prog.Source,
		opts:     opts,
		names:    collectNames(prog),
		reserved: make(map[string]bool),
		helpers:  make(map[string]string),
		root:     newScope(nil),
		body:     new(bytes.Buffer),
	}
	g.scope = g.root
	return g
}

func (g *generator) errorf(n ast.Node, format string, args ...any) {
	panic(source.Errorf(g.src, n.Pos().Start, format, args...))
}

func (g *generator) pad() string {
	return strings.Repeat(indentUnit, g.indent)
}

// printf writes an indented line.
func (g *generator) printf(format string, args ...any) {
	g.body.WriteString(g.pad())
	fmt.Fprintf(g.body, format, args...)
	g.body.WriteByte('\n')
}

// capture runs f with a fresh statement buffer and returns what f wrote.
func (g *generator) capture(f func()) string {
	saved := g.body
	g.body = new(bytes.Buffer)
	f()
	out := g.body.String()
	g.body = saved
	return out
}

// block returns the statements of b indented one level deeper than the
// current line, for use between braces.
func (g *generator) block(b *ast.NodeBlock, m mode) string {
	return g.capture(func() {
		g.indent++
		g.stmts(b, m)
		g.indent--
	})
}

func (g *generator) program(prog *ast.Program) string {
	if !g.opts.Bare {
		g.indent++
	}
	body := g.capture(func() { g.stmts(prog.Body, modeStmt) })
	decl := g.declarations(g.root, true)

	var out strings.Builder
	if g.opts.Bare {
		if decl != "" {
			out.WriteString(decl)
			out.WriteString("\n")
		}
		out.WriteString(body)
		return out.String()
	}
	out.WriteString("(function() {\n")
	if decl != "" {
		out.WriteString(decl)
		out.WriteString("\n")
	}
	out.WriteString(body)
	out.WriteString("\n}).call(this);\n")
	return out.String()
}

// declarations returns the `var' statement for the variables of s, at
// the current indentation. The program scope also defines the helpers.
func (g *generator) declarations(s *scope, withHelpers bool) string {
	decls := append([]string(nil), s.vars...)
	if withHelpers {
		for _, name := range g.helperOrder {
			decls = append(decls, g.helpers[name]+" = "+helperDefs[name])
		}
	}
	if len(decls) == 0 {
		return ""
	}
	return g.pad() + "var " + strings.Join(decls, ", ") + ";\n"
}

func (g *generator) stmts(b *ast.NodeBlock, m mode) {
	for i, n := range b.Stmts {
		if i == len(b.Stmts)-1 {
			g.stmt(n, m)
		} else {
			g.stmt(n, modeStmt)
		}
	}
}

func (g *generator) stmt(n ast.Node, m mode) {
	switch n := n.(type) {
	case *ast.NodeParen:
		g.stmt(n.X, m)
	case *ast.NodeBlock:
		g.stmts(n, m)
	case *ast.NodeIf:
		g.ifStmt(n, m)
	case *ast.NodeWhile:
		g.whileStmt(n, m)
	case *ast.NodeFor:
		g.forStmt(n, m)
	case *ast.NodeSwitch:
		g.switchStmt(n, m)
	case *ast.NodeTry:
		g.tryStmt(n, m)
	case *ast.NodeReturn:
		if n.X == nil {
			g.printf("return;")
			return
		}
		g.stmt(n.X, modeReturn)
	case *ast.NodeThrow:
		g.printf("throw %s;", g.expr(n.X, precSeq))
	case *ast.NodeJump:
		g.printf("%s;", n.Keyword)
	case *ast.NodeClass:
		g.classStmt(n, m)
	default:
		g.value(g.expr(n, precSeq), m)
	}
}

// value writes a statement using the expression code according to m.
func (g *generator) value(code string, m mode) {
	switch m {
	case modeReturn:
		g.printf("return %s;", code)
	case modePush:
		g.printf("%s.push(%s);", g.results, code)
	default:
		g.exprStmt(code)
	}
}

// exprStmt writes an expression statement, parenthesized when it would
// otherwise parse as a declaration or a block.
func (g *generator) exprStmt(code string) {
	for _, prefix := range []string{"{", "function", "async function", "class "} {
		if strings.HasPrefix(code, prefix) {
			code = "(" + code + ")"
			break
		}
	}
	g.printf("%s;", code)
}

// terminal reports whether n, generated as the last statement of a block
// in mode m, always leaves the block.
func terminal(n ast.Node, m mode) bool {
	switch n := n.(type) {
	case *ast.NodeReturn, *ast.NodeThrow:
		return true
	case *ast.NodeJump:
		return n.Keyword != "debugger"
	case *ast.NodeParen:
		return terminal(n.X, m)
	case *ast.NodeIf, *ast.NodeSwitch, *ast.NodeTry, *ast.NodeBlock:
		return false
	case *ast.NodeWhile, *ast.NodeFor:
		return m == modeReturn
	}
	return m == modeReturn
}

func (g *generator) ifStmt(n *ast.NodeIf, m mode) {
	g.printf("if (%s) {", g.expr(n.Cond, precSeq))
	g.body.WriteString(g.block(n.Then, m))
	for {
		e, ok := n.Else.(*ast.NodeIf)
		if !ok {
			break
		}
		g.printf("} else if (%s) {", g.expr(e.Cond, precSeq))
		g.body.WriteString(g.block(e.Then, m))
		n = e
	}
	if n.Else != nil {
		g.printf("} else {")
		g.body.WriteString(g.block(asBlock(n.Else), m))
	}
	g.printf("}")
}

func asBlock(n ast.Node) *ast.NodeBlock {
	if b, ok := n.(*ast.NodeBlock); ok {
		return b
	}
	return &ast.NodeBlock{Stmts: []ast.Node{n}, Span: n.Pos()}
}

func (g *generator) switchStmt(n *ast.NodeSwitch, m mode) {
	if m == modePush {
		g.value(g.expr(n, precSeq), m)
		return
	}
	subject := "false"
	if n.Subject != nil {
		subject = g.expr(n.Subject, precSeq)
	}
	g.printf("switch (%s) {", subject)
	g.indent++
	for _, c := range n.Cases {
		for _, cond := range c.Conds {
			if n.Subject == nil {
				// switch (false) picks the first case whose negation is false
				g.printf("case !%s:", g.expr(cond, precUnary))
			} else {
				g.printf("case %s:", g.expr(cond, precAssign))
			}
		}
		g.body.WriteString(g.block(c.Body, m))
		if last := c.Body.Stmts[len(c.Body.Stmts)-1]; !terminal(last, m) {
			g.indent++
			g.printf("break;")
			g.indent--
		}
	}
	if n.Default != nil {
		g.printf("default:")
		g.body.WriteString(g.block(n.Default, m))
	}
	g.indent--
	g.printf("}")
}

func (g *generator) tryStmt(n *ast.NodeTry, m mode) {
	if m == modePush {
		g.value(g.expr(n, precSeq), m)
		return
	}
	g.printf("try {")
	g.body.WriteString(g.block(n.Body, m))
	switch {
	case n.Catch != nil && n.CatchParam != nil:
		param := g.catchParam(n.CatchParam)
		g.printf("} catch (%s) {", param)
		g.body.WriteString(g.block(n.Catch, m))
	case n.Catch != nil:
		g.printf("} catch {")
		g.body.WriteString(g.block(n.Catch, m))
	case n.Finally == nil:
		// a bare try swallows errors
		g.printf("} catch {")
	}
	if n.Finally != nil {
		g.printf("} finally {")
		g.body.WriteString(g.block(n.Finally, modeStmt))
	}
	g.printf("}")
}

func (g *generator) catchParam(n ast.Node) string {
	if id, ok := n.(*ast.NodeIdent); ok {
		g.scope.param(id.Name)
		return id.Name
	}
	return g.pattern(n, &patternCtx{binding: true})
}
