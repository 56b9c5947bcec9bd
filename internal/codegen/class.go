package codegen

import (
	"strings"

	"github.com/adhocteam/coffeemin/internal/ast"
)

func (g *generator) classStmt(n *ast.NodeClass, m mode) {
	if m == modePush {
		g.value(g.expr(n, precSeq), m)
		return
	}
	code, ref, after := g.class(n)
	if ref == "" {
		g.value(code, m)
		return
	}
	g.exprStmt(code)
	for _, a := range after {
		g.exprStmt(a)
	}
	if m != modeStmt {
		g.value(ref, m)
	}
}

func (g *generator) classExpr(n *ast.NodeClass) (string, int) {
	code, ref, after := g.class(n)
	switch {
	case ref == "":
		return code, precPrimary
	case len(after) == 0:
		return code, precAssign
	}
	return code + ", " + strings.Join(after, ", ") + ", " + ref, precSeq
}

// class returns the code defining n, assigned to its name if it has one.
// Members that are not functions become assignments to the prototype or
// the class, returned in after, and ref is the code naming the class.
func (g *generator) class(n *ast.NodeClass) (code, ref string, after []string) {
	var name string
	switch nm := n.Name.(type) {
	case nil:
	case *ast.NodeIdent:
		g.scope.declare(nm.Name)
		name, ref = nm.Name, nm.Name
	case *ast.NodeAccess:
		name, ref = nm.Name, g.expr(nm, precCall)
	default:
		g.errorf(n.Name, "invalid class name")
	}
	head := "class"
	if name != "" {
		head += " " + name
	}
	if n.Parent != nil {
		head += " extends " + g.expr(n.Parent, precCall)
	}

	type property struct {
		m     *ast.ClassMember
		value ast.Node
	}
	var (
		members []string
		props   []property
	)
	g.indent++
	for _, mem := range n.Members {
		f, ok := mem.Value.(*ast.NodeFunc)
		if !ok {
			props = append(props, property{mem, mem.Value})
			continue
		}
		members = append(members, g.pad()+g.classMethod(mem, f, n.Parent != nil))
	}
	g.indent--

	if len(props) > 0 && ref == "" {
		ref = g.freeVar("ref")
	}
	for _, p := range props {
		target := ref
		if !p.m.Static {
			target += ".prototype"
		}
		after = append(after, target+member(p.m.Name)+" = "+g.expr(p.value, precAssign))
	}

	body := " {}"
	if len(members) > 0 {
		body = " {\n" + strings.Join(members, "\n\n") + "\n" + g.pad() + "}"
	}
	code = head + body
	if ref != "" {
		code = ref + " = " + code
	}
	return code, ref, after
}

// classMethod returns a method definition, or a field holding an arrow
// function for bound methods.
func (g *generator) classMethod(mem *ast.ClassMember, f *ast.NodeFunc, derived bool) string {
	ctor := !mem.Static && mem.Name == "constructor"
	if ctor && f.Bound {
		g.errorf(f, "class constructor cannot be bound")
	}
	mctx := &methodCtx{name: mem.Name, static: mem.Static, ctor: ctor, derived: derived}
	fc := g.funcParts(f, mctx)
	var sb strings.Builder
	if mem.Static {
		sb.WriteString("static ")
	}
	if f.Bound {
		if fc.generator {
			g.errorf(f, "yield cannot occur inside bound (fat arrow) functions")
		}
		sb.WriteString(mem.Name + " = ")
		if fc.async {
			sb.WriteString("async ")
		}
		sb.WriteString("(" + fc.params + ") => " + fc.body + ";")
		return sb.String()
	}
	if fc.async {
		sb.WriteString("async ")
	}
	if fc.generator {
		sb.WriteString("*")
	}
	sb.WriteString(mem.Name + "(" + fc.params + ") " + fc.body)
	return sb.String()
}
