package ast

import (
	"fmt"

	"github.com/adhocteam/coffeemin/internal/source"
)

// Node represents a portion of CoffeeScript syntax. CoffeeScript has no
// distinction between statements and expressions at the syntax level, so
// every construct, including `if', `for' and `class', is a Node and may
// appear wherever a value is expected. The code generator decides how to
// render a node from the context it is used in.
type Node interface {
	Pos() source.Span
}

// Program is the root of a parsed CoffeeScript source file.
type Program struct {
	Body *NodeBlock
	// Source is the text the program was parsed from, used for positions
	// in errors reported after parsing.
	Source string
}

type NodeBlock struct {
	Stmts []Node
	Span  source.Span
}

func (n *NodeBlock) Pos() source.Span { return n.Span }

var _ Node = (*NodeBlock)(nil)

type NodeIdent struct {
	Name string
	Span source.Span
}

func (n *NodeIdent) Pos() source.Span { return n.Span }

var _ Node = (*NodeIdent)(nil)

// NodeThis is `this' or a bare `@'.
type NodeThis struct {
	Span source.Span
}

func (n *NodeThis) Pos() source.Span { return n.Span }

var _ Node = (*NodeThis)(nil)

type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralBool
	LiteralNull
	LiteralUndefined
	LiteralRegex
	// LiteralJS is JavaScript embedded verbatim with backticks.
	LiteralJS
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralNumber:
		return "number"
	case LiteralBool:
		return "bool"
	case LiteralNull:
		return "null"
	case LiteralUndefined:
		return "undefined"
	case LiteralRegex:
		return "regex"
	case LiteralJS:
		return "js"
	default:
		panic(fmt.Sprintf("unexpected literal kind %d", int(k)))
	}
}

// NodeLiteral is an atom that is emitted without interpretation (apart from
// the boolean aliases, which the parser normalizes to true or false).
type NodeLiteral struct {
	Kind  LiteralKind
	Value string
	Span  source.Span
}

func (n *NodeLiteral) Pos() source.Span { return n.Span }

var _ Node = (*NodeLiteral)(nil)

// StringPart is a piece of a string literal: either raw text (escape
// sequences preserved as written) or an interpolated expression.
type StringPart struct {
	Text string
	Expr Node
}

type NodeString struct {
	Parts []StringPart
	Span  source.Span
}

func (n *NodeString) Pos() source.Span { return n.Span }

// Interpolated reports whether the string has any #{} expressions.
func (n *NodeString) Interpolated() bool {
	for _, p := range n.Parts {
		if p.Expr != nil {
			return true
		}
	}
	return false
}

var _ Node = (*NodeString)(nil)

type NodeArray struct {
	Elems []Node
	Span  source.Span
}

func (n *NodeArray) Pos() source.Span { return n.Span }

var _ Node = (*NodeArray)(nil)

// NodeProp is a property of an object literal. Value is nil for the
// shorthand form `{a}'. A key of *NodeThis-prefixed access (`{@a}') is
// represented with Key set to the *NodeAccess and Value nil.
type NodeProp struct {
	Key   Node
	Value Node
	Span  source.Span
}

func (n *NodeProp) Pos() source.Span { return n.Span }

var _ Node = (*NodeProp)(nil)

type NodeObject struct {
	// Props holds *NodeProp and *NodeSplat (object spread) nodes.
	Props []Node
	// Implicit is true for objects written without braces.
	Implicit bool
	Span     source.Span
}

func (n *NodeObject) Pos() source.Span { return n.Span }

var _ Node = (*NodeObject)(nil)

type NodeRange struct {
	From      Node
	To        Node
	Exclusive bool
	Span      source.Span
}

func (n *NodeRange) Pos() source.Span { return n.Span }

var _ Node = (*NodeRange)(nil)

type Param struct {
	// Name is a *NodeIdent, a this-access (`@name'), or a destructuring
	// pattern (*NodeArray or *NodeObject).
	Name    Node
	Default Node
	Splat   bool
}

type NodeFunc struct {
	Params []*Param
	Body   *NodeBlock
	// Bound is true for fat arrow functions (=>).
	Bound bool
	Span  source.Span
}

func (n *NodeFunc) Pos() source.Span { return n.Span }

var _ Node = (*NodeFunc)(nil)

type NodeCall struct {
	Fn   Node
	Args []Node
	Soak bool
	New  bool
	Span source.Span
}

func (n *NodeCall) Pos() source.Span { return n.Span }

var _ Node = (*NodeCall)(nil)

// NodeSuper is a call to the parent class's implementation. Args is nil for
// a bare `super', which forwards the current arguments.
type NodeSuper struct {
	Args []Node
	Bare bool
	Span source.Span
}

func (n *NodeSuper) Pos() source.Span { return n.Span }

var _ Node = (*NodeSuper)(nil)

type NodeAccess struct {
	X    Node
	Name string
	Soak bool
	// Proto is true for `a::b', which accesses a.prototype.b. Name is empty
	// for a bare `a::'.
	Proto bool
	Span  source.Span
}

func (n *NodeAccess) Pos() source.Span { return n.Span }

var _ Node = (*NodeAccess)(nil)

type NodeIndex struct {
	X     Node
	Index Node
	Soak  bool
	Span  source.Span
}

func (n *NodeIndex) Pos() source.Span { return n.Span }

var _ Node = (*NodeIndex)(nil)

type NodeSlice struct {
	X         Node
	From      Node
	To        Node
	Exclusive bool
	Span      source.Span
}

func (n *NodeSlice) Pos() source.Span { return n.Span }

var _ Node = (*NodeSlice)(nil)

type NodeUnary struct {
	Op      string
	X       Node
	Postfix bool
	Span    source.Span
}

func (n *NodeUnary) Pos() source.Span { return n.Span }

var _ Node = (*NodeUnary)(nil)

// NodeBinary is a binary operation. Op holds the CoffeeScript spelling
// normalized to a canonical form: `and' is "&&", `or' is "||", `is' is
// "==", `isnt' is "!=". The negated relations are "!in", "!of" and
// "!instanceof".
type NodeBinary struct {
	Op   string
	X    Node
	Y    Node
	Span source.Span
}

func (n *NodeBinary) Pos() source.Span { return n.Span }

var _ Node = (*NodeBinary)(nil)

// NodeExistence is the postfix existential operator `a?'.
type NodeExistence struct {
	X    Node
	Span source.Span
}

func (n *NodeExistence) Pos() source.Span { return n.Span }

var _ Node = (*NodeExistence)(nil)

type NodeAssign struct {
	Target Node
	// Op is "=" or a compound assignment operator such as "+=" or "?=".
	Op    string
	Value Node
	Span  source.Span
}

func (n *NodeAssign) Pos() source.Span { return n.Span }

var _ Node = (*NodeAssign)(nil)

type NodeSplat struct {
	X    Node
	Span source.Span
}

func (n *NodeSplat) Pos() source.Span { return n.Span }

var _ Node = (*NodeSplat)(nil)

type NodeParen struct {
	X    Node
	Span source.Span
}

func (n *NodeParen) Pos() source.Span { return n.Span }

var _ Node = (*NodeParen)(nil)

type NodeYield struct {
	X        Node
	Delegate bool
	Span     source.Span
}

func (n *NodeYield) Pos() source.Span { return n.Span }

var _ Node = (*NodeYield)(nil)

type NodeAwait struct {
	X    Node
	Span source.Span
}

func (n *NodeAwait) Pos() source.Span { return n.Span }

var _ Node = (*NodeAwait)(nil)

type NodeIf struct {
	Cond Node
	Then *NodeBlock
	// Else is nil, a *NodeBlock or a *NodeIf for `else if' chains.
	Else Node
	Span source.Span
}

func (n *NodeIf) Pos() source.Span { return n.Span }

var _ Node = (*NodeIf)(nil)

// NodeWhile covers `while', `until' (Cond negated by the parser) and
// `loop' (Cond nil).
type NodeWhile struct {
	Cond  Node
	Guard Node
	Body  *NodeBlock
	Span  source.Span
}

func (n *NodeWhile) Pos() source.Span { return n.Span }

var _ Node = (*NodeWhile)(nil)

type ForKind int

const (
	// ForIn iterates over array elements: for x, i in arr.
	ForIn ForKind = iota
	// ForOf iterates over object keys: for k, v of obj.
	ForOf
	// ForFrom iterates over an iterable: for x from gen.
	ForFrom
)

type NodeFor struct {
	Kind ForKind
	// Name is the loop variable: element for ForIn/ForFrom, key for ForOf.
	// It may be nil (`for [1..3]').
	Name Node
	// Index is the second variable: index for ForIn, value for ForOf.
	Index  Node
	Source Node
	Step   Node
	Guard  Node
	Own    bool
	Body   *NodeBlock
	// Postfix is true for comprehensions written after their body.
	Postfix bool
	Span    source.Span
}

func (n *NodeFor) Pos() source.Span { return n.Span }

var _ Node = (*NodeFor)(nil)

type SwitchCase struct {
	Conds []Node
	Body  *NodeBlock
}

type NodeSwitch struct {
	// Subject is nil for a switch without a subject, where each condition
	// is tested for truthiness.
	Subject Node
	Cases   []*SwitchCase
	Default *NodeBlock
	Span    source.Span
}

func (n *NodeSwitch) Pos() source.Span { return n.Span }

var _ Node = (*NodeSwitch)(nil)

type NodeTry struct {
	Body       *NodeBlock
	CatchParam Node
	Catch      *NodeBlock
	Finally    *NodeBlock
	Span       source.Span
}

func (n *NodeTry) Pos() source.Span { return n.Span }

var _ Node = (*NodeTry)(nil)

type NodeThrow struct {
	X    Node
	Span source.Span
}

func (n *NodeThrow) Pos() source.Span { return n.Span }

var _ Node = (*NodeThrow)(nil)

type NodeReturn struct {
	X    Node
	Span source.Span
}

func (n *NodeReturn) Pos() source.Span { return n.Span }

var _ Node = (*NodeReturn)(nil)

// NodeJump is a `break', `continue' or `debugger' statement.
type NodeJump struct {
	Keyword string
	Span    source.Span
}

func (n *NodeJump) Pos() source.Span { return n.Span }

var _ Node = (*NodeJump)(nil)

// ClassMember is a `name: value' entry in a class body.
type ClassMember struct {
	Name   string
	Value  Node
	Static bool
	Span   source.Span
}

type NodeClass struct {
	// Name is nil for anonymous classes, otherwise a *NodeIdent or a
	// *NodeAccess (`class ns.Widget').
	Name    Node
	Parent  Node
	Members []*ClassMember
	Span    source.Span
}

func (n *NodeClass) Pos() source.Span { return n.Span }

var _ Node = (*NodeClass)(nil)

type NodeList []Node

func (n NodeList) Pos() source.Span {
	if len(n) == 0 {
		return source.Span{}
	}
	return n[0].Pos().Join(n[len(n)-1].Pos())
}

type visitor interface {
	visit(Node) visitor
}

type Inspector func(Node) bool

func (f Inspector) visit(n Node) visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	walk(Inspector(f), n)
}

func walkNodeList(v visitor, list []Node) {
	for _, n := range list {
		walk(v, n)
	}
}

func walkOpt(v visitor, n Node) {
	if n != nil {
		walk(v, n)
	}
}

func walk(v visitor, n Node) {
	if v = v.visit(n); v == nil {
		return
	}

	switch n := n.(type) {
	case *NodeBlock:
		walkNodeList(v, n.Stmts)
	case *NodeIdent, *NodeThis, *NodeLiteral, *NodeJump:
		// no children
	case *NodeString:
		for _, p := range n.Parts {
			walkOpt(v, p.Expr)
		}
	case *NodeArray:
		walkNodeList(v, n.Elems)
	case *NodeProp:
		walk(v, n.Key)
		walkOpt(v, n.Value)
	case *NodeObject:
		walkNodeList(v, n.Props)
	case *NodeRange:
		walkOpt(v, n.From)
		walkOpt(v, n.To)
	case *NodeFunc:
		for _, p := range n.Params {
			walk(v, p.Name)
			walkOpt(v, p.Default)
		}
		walk(v, n.Body)
	case *NodeCall:
		walk(v, n.Fn)
		walkNodeList(v, n.Args)
	case *NodeSuper:
		walkNodeList(v, n.Args)
	case *NodeAccess:
		walk(v, n.X)
	case *NodeIndex:
		walk(v, n.X)
		walk(v, n.Index)
	case *NodeSlice:
		walk(v, n.X)
		walkOpt(v, n.From)
		walkOpt(v, n.To)
	case *NodeUnary:
		walk(v, n.X)
	case *NodeBinary:
		walk(v, n.X)
		walk(v, n.Y)
	case *NodeExistence:
		walk(v, n.X)
	case *NodeAssign:
		walk(v, n.Target)
		walk(v, n.Value)
	case *NodeSplat:
		walk(v, n.X)
	case *NodeParen:
		walk(v, n.X)
	case *NodeYield:
		walkOpt(v, n.X)
	case *NodeAwait:
		walk(v, n.X)
	case *NodeIf:
		walk(v, n.Cond)
		walk(v, n.Then)
		walkOpt(v, n.Else)
	case *NodeWhile:
		walkOpt(v, n.Cond)
		walkOpt(v, n.Guard)
		walk(v, n.Body)
	case *NodeFor:
		walkOpt(v, n.Name)
		walkOpt(v, n.Index)
		walk(v, n.Source)
		walkOpt(v, n.Step)
		walkOpt(v, n.Guard)
		walk(v, n.Body)
	case *NodeSwitch:
		walkOpt(v, n.Subject)
		for _, c := range n.Cases {
			walkNodeList(v, c.Conds)
			walk(v, c.Body)
		}
		if n.Default != nil {
			walk(v, n.Default)
		}
	case *NodeTry:
		walk(v, n.Body)
		walkOpt(v, n.CatchParam)
		if n.Catch != nil {
			walk(v, n.Catch)
		}
		if n.Finally != nil {
			walk(v, n.Finally)
		}
	case *NodeThrow:
		walk(v, n.X)
	case *NodeReturn:
		walkOpt(v, n.X)
	case *NodeClass:
		walkOpt(v, n.Name)
		walkOpt(v, n.Parent)
		for _, m := range n.Members {
			walk(v, m.Value)
		}
	case NodeList:
		walkNodeList(v, n)
	default:
		panic(fmt.Sprintf("unhandled type %T", n))
	}
	v.visit(nil)
}

// IsCompare reports whether op is a comparison operator. Comparisons
// chain: a < b < c is a < b && b < c.
func IsCompare(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}
