package ast

import (
	"fmt"
	"io"
	"strings"
)

const (
	indentSize = 2
	maxLineLen = 80
)

const (
	colorReset   = "\x1b[0m"
	colorKeyword = "\x1b[35m"
	colorLoop    = "\x1b[36m"
	colorString  = "\x1b[32m"
	colorLiteral = "\x1b[33m"
	colorFunc    = "\x1b[34m"
	colorClass   = "\x1b[31m"
	colorElse    = "\x1b[1;35m"
)

type prettyPrinter struct {
	w     io.Writer
	depth int
	color bool
}

// NewPrettyPrinter returns a printer that writes an indented outline of a
// syntax tree to w. ANSI colors are used when color is true.
func NewPrettyPrinter(w io.Writer, color bool) *prettyPrinter {
	return &prettyPrinter{w: w, color: color}
}

func (p *prettyPrinter) print(format string, a ...interface{}) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *prettyPrinter) println(format string, a ...interface{}) {
	p.print(strings.Repeat(" ", p.depth*indentSize))
	p.print(format+"\n", a...)
}

// label prints s in the given color, if colors are enabled.
func (p *prettyPrinter) label(color string, format string, a ...interface{}) {
	s := fmt.Sprintf(format, a...)
	if p.color {
		s = color + s + colorReset
	}
	p.println("%s", s)
}

func (p *prettyPrinter) indent() {
	p.depth++
}

func (p *prettyPrinter) dedent() {
	p.depth--
	if p.depth < 0 {
		p.depth = 0
	}
}

func (p *prettyPrinter) PrettyPrint(prog *Program) {
	p.printNode(prog.Body)
}

func (p *prettyPrinter) child(name string, n Node) {
	if n == nil {
		return
	}
	p.label(colorKeyword, "%s", name)
	p.indent()
	p.printNode(n)
	p.dedent()
}

func (p *prettyPrinter) children(nodes []Node) {
	p.indent()
	for _, n := range nodes {
		p.printNode(n)
	}
	p.dedent()
}

func (p *prettyPrinter) printNode(n Node) {
	switch node := n.(type) {
	case *NodeBlock:
		for _, stmt := range node.Stmts {
			p.printNode(stmt)
		}
	case *NodeIdent:
		p.println("%s", node.Name)
	case *NodeThis:
		p.println("this")
	case *NodeLiteral:
		p.printLiteral(node)
	case *NodeString:
		p.printString(node)
	case *NodeArray:
		p.println("ARRAY")
		p.children(node.Elems)
	case *NodeObject:
		p.println("OBJECT")
		p.children(node.Props)
	case *NodeProp:
		p.println("PROP")
		p.children([]Node{node.Key})
		if node.Value != nil {
			p.children([]Node{node.Value})
		}
	case *NodeRange:
		op := ".."
		if node.Exclusive {
			op = "..."
		}
		p.println("RANGE %s", op)
		p.children([]Node{node.From, node.To})
	case *NodeFunc:
		p.printFunc(node)
	case *NodeCall:
		name := "CALL"
		if node.New {
			name = "NEW"
		}
		if node.Soak {
			name += "?"
		}
		p.label(colorFunc, "%s", name)
		p.children([]Node{node.Fn})
		p.child("ARGS", NodeList(node.Args))
	case *NodeSuper:
		p.label(colorFunc, "SUPER")
		p.children(node.Args)
	case *NodeAccess:
		op := "."
		if node.Proto {
			op = "::"
		}
		if node.Soak {
			op = "?" + op
		}
		p.println("ACCESS %s%s", op, node.Name)
		p.children([]Node{node.X})
	case *NodeIndex:
		name := "INDEX"
		if node.Soak {
			name += "?"
		}
		p.println("%s", name)
		p.children([]Node{node.X, node.Index})
	case *NodeSlice:
		p.println("SLICE")
		p.children([]Node{node.X})
		p.child("FROM", node.From)
		p.child("TO", node.To)
	case *NodeUnary:
		p.println("UNARY %s", node.Op)
		p.children([]Node{node.X})
	case *NodeBinary:
		p.println("BINARY %s", node.Op)
		p.children([]Node{node.X, node.Y})
	case *NodeExistence:
		p.println("EXISTS?")
		p.children([]Node{node.X})
	case *NodeAssign:
		p.println("ASSIGN %s", node.Op)
		p.children([]Node{node.Target, node.Value})
	case *NodeSplat:
		p.println("SPLAT")
		p.children([]Node{node.X})
	case *NodeParen:
		p.println("PAREN")
		p.children([]Node{node.X})
	case *NodeYield:
		p.label(colorKeyword, "YIELD")
		if node.X != nil {
			p.children([]Node{node.X})
		}
	case *NodeAwait:
		p.label(colorKeyword, "AWAIT")
		p.children([]Node{node.X})
	case *NodeIf:
		p.printIf(node)
	case *NodeWhile:
		p.label(colorLoop, "WHILE")
		p.child("COND", node.Cond)
		p.child("WHEN", node.Guard)
		p.child("DO", node.Body)
	case *NodeFor:
		p.printFor(node)
	case *NodeSwitch:
		p.printSwitch(node)
	case *NodeTry:
		p.label(colorKeyword, "TRY")
		p.indent()
		p.printNode(node.Body)
		p.dedent()
		if node.Catch != nil {
			p.label(colorKeyword, "CATCH")
			p.indent()
			if node.CatchParam != nil {
				p.printNode(node.CatchParam)
			}
			p.printNode(node.Catch)
			p.dedent()
		}
		if node.Finally != nil {
			p.child("FINALLY", node.Finally)
		}
	case *NodeThrow:
		p.label(colorKeyword, "THROW")
		p.children([]Node{node.X})
	case *NodeReturn:
		p.label(colorKeyword, "RETURN")
		if node.X != nil {
			p.children([]Node{node.X})
		}
	case *NodeJump:
		p.label(colorKeyword, "%s", strings.ToUpper(node.Keyword))
	case *NodeClass:
		p.printClass(node)
	case NodeList:
		for _, n := range node {
			p.printNode(n)
		}
	}
}

func (p *prettyPrinter) printLiteral(n *NodeLiteral) {
	v := n.Value
	if len(v) > maxLineLen {
		v = v[:maxLineLen] + "..."
	}
	p.label(colorLiteral, "%s %s", strings.ToUpper(n.Kind.String()), v)
}

func (p *prettyPrinter) printString(n *NodeString) {
	if !n.Interpolated() {
		var text string
		for _, part := range n.Parts {
			text += part.Text
		}
		if len(text) > maxLineLen {
			text = text[:maxLineLen] + "..."
		}
		p.label(colorString, "%q", text)
		return
	}
	p.println("INTERPOLATION")
	p.indent()
	for _, part := range n.Parts {
		if part.Expr != nil {
			p.printNode(part.Expr)
		} else {
			p.label(colorString, "%q", part.Text)
		}
	}
	p.dedent()
}

func (p *prettyPrinter) printFunc(n *NodeFunc) {
	arrow := "->"
	if n.Bound {
		arrow = "=>"
	}
	p.label(colorFunc, "FUNC %s", arrow)
	p.indent()
	for _, param := range n.Params {
		if param.Splat {
			p.println("PARAM...")
		} else {
			p.println("PARAM")
		}
		p.children([]Node{param.Name})
		if param.Default != nil {
			p.child("DEFAULT", param.Default)
		}
	}
	p.dedent()
	p.child("BODY", n.Body)
}

func (p *prettyPrinter) printIf(n *NodeIf) {
	p.label(colorKeyword, "IF")
	p.indent()
	p.printNode(n.Cond)
	p.dedent()
	p.label(colorKeyword, "THEN")
	p.indent()
	p.printNode(n.Then)
	p.dedent()
	if n.Else != nil {
		p.label(colorElse, "ELSE")
		p.indent()
		p.printNode(n.Else)
		p.dedent()
	}
}

func (p *prettyPrinter) printFor(n *NodeFor) {
	kind := "IN"
	switch n.Kind {
	case ForOf:
		kind = "OF"
	case ForFrom:
		kind = "FROM"
	}
	if n.Own {
		kind = "OWN " + kind
	}
	p.label(colorLoop, "FOR %s", kind)
	p.indent()
	if n.Name != nil {
		p.printNode(n.Name)
	}
	if n.Index != nil {
		p.printNode(n.Index)
	}
	p.dedent()
	p.child("SOURCE", n.Source)
	p.child("BY", n.Step)
	p.child("WHEN", n.Guard)
	p.child("DO", n.Body)
}

func (p *prettyPrinter) printSwitch(n *NodeSwitch) {
	p.label(colorKeyword, "SWITCH")
	if n.Subject != nil {
		p.children([]Node{n.Subject})
	}
	for _, c := range n.Cases {
		p.label(colorKeyword, "WHEN")
		p.children(c.Conds)
		p.indent()
		p.child("DO", c.Body)
		p.dedent()
	}
	if n.Default != nil {
		p.label(colorElse, "ELSE")
		p.indent()
		p.printNode(n.Default)
		p.dedent()
	}
}

func (p *prettyPrinter) printClass(n *NodeClass) {
	p.label(colorClass, "CLASS")
	p.indent()
	if n.Name != nil {
		p.printNode(n.Name)
	}
	p.dedent()
	p.child("EXTENDS", n.Parent)
	for _, m := range n.Members {
		prefix := ""
		if m.Static {
			prefix = "@"
		}
		p.label(colorClass, "MEMBER %s%s", prefix, m.Name)
		p.children([]Node{m.Value})
	}
}

// PrettyPrint writes an uncolored outline of prog to w.
func PrettyPrint(w io.Writer, prog *Program) {
	NewPrettyPrinter(w, false).PrettyPrint(prog)
}
