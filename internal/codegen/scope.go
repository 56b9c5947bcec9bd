package codegen

import (
	"regexp"
	"strconv"

	"github.com/adhocteam/coffeemin/internal/ast"
)

// scope tracks the variables of a function body, or of the program.
type scope struct {
	parent *scope
	// names holds every name known in this scope: parameters, catch
	// bindings and variables.
	names map[string]bool
	// vars are the names declared with `var' at the top of the scope, in
	// order of first assignment.
	vars []string
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]bool)}
}

// declared reports whether name is known in s or an enclosing scope.
func (s *scope) declared(name string) bool {
	for ; s != nil; s = s.parent {
		if s.names[name] {
			return true
		}
	}
	return false
}

// declare adds name to the variables of s unless an enclosing scope
// already has it. Assignment to an outer variable closes over it.
func (s *scope) declare(name string) {
	if s.declared(name) {
		return
	}
	s.names[name] = true
	s.vars = append(s.vars, name)
}

// param adds a name bound by the function signature.
func (s *scope) param(name string) {
	s.names[name] = true
}

var identRE = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// collectNames returns every identifier used in the program, including
// words in embedded JavaScript, so temporaries can avoid them.
func collectNames(prog *ast.Program) map[string]bool {
	names := make(map[string]bool)
	ast.Inspect(prog.Body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.NodeIdent:
			names[n.Name] = true
		case *ast.NodeLiteral:
			if n.Kind == ast.LiteralJS {
				for _, w := range identRE.FindAllString(n.Value, -1) {
					names[w] = true
				}
			}
		case *ast.NodeAccess:
			// `@x' parameters bind x
			if _, ok := n.X.(*ast.NodeThis); ok {
				names[n.Name] = true
			}
		}
		return true
	})
	return names
}

// tempName returns a name for a compiler temporary that no identifier in
// the file uses and no enclosing scope has declared. Index variables go
// through i, j, k and so on like hand-written loops.
func (g *generator) tempName(base string) string {
	for n := 0; ; n++ {
		var name string
		switch {
		case base == "i" && n < 18:
			name = string(rune('i' + n))
		case base == "i":
			name = "i" + strconv.Itoa(n-17)
		case n == 0:
			name = base
		default:
			name = base + strconv.Itoa(n)
		}
		if !g.names[name] && !g.scope.declared(name) && !g.reserved[name] {
			return name
		}
	}
}

// freeVar returns a new temporary declared in the current scope.
func (g *generator) freeVar(base string) string {
	name := g.tempName(base)
	g.scope.declare(name)
	return name
}

var helperDefs = map[string]string{
	"modulo":  "function(a, b) { return (+a % (b = +b) + b) % b; }",
	"indexOf": "[].indexOf",
	"hasProp": "{}.hasOwnProperty",
}

// helper returns the name of a runtime utility, declaring it at the top of
// the program the first time it is used.
func (g *generator) helper(name string) string {
	if h, ok := g.helpers[name]; ok {
		return h
	}
	h := name
	for n := 1; g.names[h] || g.root.declared(h) || g.reserved[h]; n++ {
		h = name + strconv.Itoa(n)
	}
	g.helpers[name] = h
	g.helperOrder = append(g.helperOrder, name)
	g.reserved[h] = true
	return h
}
