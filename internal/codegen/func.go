package codegen

import (
	"strings"

	"github.com/adhocteam/coffeemin/internal/ast"
)

// function returns a function expression: an arrow function for =>, a
// function expression otherwise.
func (g *generator) function(f *ast.NodeFunc) string {
	fc := g.funcParts(f, nil)
	if f.Bound {
		if fc.generator {
			g.errorf(f, "yield cannot occur inside bound (fat arrow) functions")
		}
		head := "(" + fc.params + ") =>"
		if fc.async {
			head = "async " + head
		}
		return head + " " + fc.body
	}
	head := "function"
	if fc.async {
		head = "async function"
	}
	if fc.generator {
		head += "*"
	}
	return head + "(" + fc.params + ") " + fc.body
}

type funcCode struct {
	params    string
	body      string
	async     bool
	generator bool
}

// funcParts generates the parameter list and braced body of f in a new
// scope. mctx is set for class methods.
func (g *generator) funcParts(f *ast.NodeFunc, mctx *methodCtx) funcCode {
	fc := funcCode{}
	fc.async, fc.generator = funcKinds(f.Body)

	outer, outerMethod := g.scope, g.method
	g.scope = newScope(outer)
	// arrow functions keep the method of their enclosing function
	if mctx != nil || !f.Bound {
		g.method = mctx
	}
	defer func() { g.scope, g.method = outer, outerMethod }()

	var thisAssigns []string
	pc := &patternCtx{binding: true, thisAssigns: &thisAssigns}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		code := g.pattern(p.Name, pc)
		if p.Splat {
			if i != len(f.Params)-1 {
				g.errorf(p.Name, "a splat must be the last parameter")
			}
			code = "..." + code
		}
		if p.Default != nil {
			code += " = " + g.expr(p.Default, precAssign)
		}
		params[i] = code
	}
	fc.params = strings.Join(params, ", ")

	m := modeReturn
	if mctx != nil && mctx.ctor {
		m = modeStmt
	}
	g.indent++
	inner := g.capture(func() { g.funcBody(f.Body, m, thisAssigns, mctx) })
	decl := g.declarations(g.scope, false)
	g.indent--
	if decl == "" && inner == "" {
		fc.body = "{}"
		return fc
	}
	fc.body = "{\n" + decl + inner + g.pad() + "}"
	return fc
}

// funcBody writes the statements of a function, with the assignments of
// @ parameters first. Derived constructors assign them after calling
// super, since `this' is unavailable before.
func (g *generator) funcBody(body *ast.NodeBlock, m mode, thisAssigns []string, mctx *methodCtx) {
	stmts := body.Stmts
	if len(thisAssigns) > 0 && mctx != nil && mctx.ctor && mctx.derived {
		for i, s := range stmts {
			if _, ok := s.(*ast.NodeSuper); ok {
				g.stmts(&ast.NodeBlock{Stmts: stmts[:i+1], Span: body.Span}, modeStmt)
				stmts = stmts[i+1:]
				break
			}
		}
	}
	for _, a := range thisAssigns {
		g.printf("%s;", a)
	}
	g.stmts(&ast.NodeBlock{Stmts: stmts, Span: body.Span}, m)
}

// funcKinds reports whether a function body awaits or yields, outside of
// nested functions.
func funcKinds(body *ast.NodeBlock) (async, generator bool) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.NodeFunc:
			return false
		case *ast.NodeAwait:
			async = true
		case *ast.NodeYield:
			generator = true
		}
		return true
	})
	return async, generator
}
