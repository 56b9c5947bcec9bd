package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/adhocteam/coffeemin/internal/ast"
)

// JavaScript operator precedence, lowest first.
const (
	precSeq = iota
	precAssign
	precCond
	precNullish
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEq
	precRel
	precShift
	precAdd
	precMul
	precExp
	precUnary
	precPostfix
	precCall
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEq, "!=": precEq,
	"<": precRel, ">": precRel, "<=": precRel, ">=": precRel, "instanceof": precRel,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "%": precMul,
}

// jsOp maps an operator to its JavaScript spelling. Equality is strict.
func jsOp(op string) string {
	switch op {
	case "==":
		return "==="
	case "!=":
		return "!=="
	}
	return op
}

// expr returns the code for n, parenthesized if it binds looser than prec.
func (g *generator) expr(n ast.Node, prec int) string {
	code, p := g.exprPrec(n)
	if p < prec {
		return "(" + code + ")"
	}
	return code
}

func (g *generator) exprPrec(n ast.Node) (string, int) {
	switch n := n.(type) {
	case *ast.NodeIdent:
		return n.Name, precPrimary
	case *ast.NodeThis:
		return "this", precPrimary
	case *ast.NodeLiteral:
		return literal(n)
	case *ast.NodeString:
		return g.str(n), precPrimary
	case *ast.NodeArray:
		return "[" + g.list(n.Elems) + "]", precPrimary
	case *ast.NodeObject:
		return g.object(n), precPrimary
	case *ast.NodeRange:
		return g.rangeExpr(n)
	case *ast.NodeFunc:
		return g.function(n), precAssign
	case *ast.NodeCall:
		return g.call(n), precCall
	case *ast.NodeSuper:
		return g.super(n), precCall
	case *ast.NodeAccess:
		return g.access(n), precCall
	case *ast.NodeIndex:
		open := "["
		if n.Soak {
			open = "?.["
		}
		return g.base(n.X) + open + g.expr(n.Index, precSeq) + "]", precCall
	case *ast.NodeSlice:
		return g.slice(n), precCall
	case *ast.NodeUnary:
		if n.Postfix {
			return g.expr(n.X, precPostfix) + n.Op, precPostfix
		}
		return prefix(n.Op, g.expr(n.X, precUnary)), precUnary
	case *ast.NodeBinary:
		return g.binary(n)
	case *ast.NodeExistence:
		return g.existence(n.X)
	case *ast.NodeAssign:
		return g.assign(n)
	case *ast.NodeSplat:
		g.errorf(n, "unexpected splat")
	case *ast.NodeParen:
		return g.exprPrec(n.X)
	case *ast.NodeYield:
		g.checkInFunction(n, "yield")
		kw := "yield"
		if n.Delegate {
			kw = "yield*"
		}
		if n.X == nil {
			return kw, precAssign
		}
		return kw + " " + g.expr(n.X, precAssign), precAssign
	case *ast.NodeAwait:
		g.checkInFunction(n, "await")
		return "await " + g.expr(n.X, precUnary), precUnary
	case *ast.NodeIf:
		if !isExpr(n) {
			return g.closure(n)
		}
		return g.ternary(n), precCond
	case *ast.NodeBlock:
		if !isExpr(n) {
			return g.closure(n)
		}
		if len(n.Stmts) == 1 {
			return g.exprPrec(n.Stmts[0])
		}
		parts := make([]string, len(n.Stmts))
		for i, s := range n.Stmts {
			parts[i] = g.expr(s, precAssign)
		}
		return strings.Join(parts, ", "), precSeq
	case *ast.NodeWhile, *ast.NodeFor, *ast.NodeSwitch, *ast.NodeTry, *ast.NodeThrow:
		return g.closure(n)
	case *ast.NodeClass:
		return g.classExpr(n)
	case *ast.NodeReturn:
		g.errorf(n, "cannot use return as a value")
	case *ast.NodeJump:
		g.errorf(n, "cannot use %s as a value", n.Keyword)
	}
	panic(fmt.Sprintf("unexpected node type %T", n))
}

func (g *generator) checkInFunction(n ast.Node, kw string) {
	if g.scope == g.root {
		g.errorf(n, "%s can only occur inside functions", kw)
	}
}

func literal(n *ast.NodeLiteral) (string, int) {
	switch n.Kind {
	case ast.LiteralNumber:
		return strings.ReplaceAll(n.Value, "_", ""), precPrimary
	case ast.LiteralUndefined:
		return "void 0", precUnary
	}
	return n.Value, precPrimary
}

// prefix applies a prefix operator, keeping `- -x' from becoming `--x'.
func prefix(op, x string) string {
	switch {
	case op == "typeof" || op == "delete":
		return op + " " + x
	case (op == "-" || op == "+") && strings.HasPrefix(x, op):
		return op + " " + x
	}
	return op + x
}

// isExpr reports whether n can be written as a JavaScript expression
// without wrapping it in a closure.
func isExpr(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.NodeReturn, *ast.NodeThrow, *ast.NodeJump, *ast.NodeWhile, *ast.NodeFor,
		*ast.NodeSwitch, *ast.NodeTry:
		return false
	case *ast.NodeParen:
		return isExpr(n.X)
	case *ast.NodeIf:
		return isExpr(n.Then) && (n.Else == nil || isExpr(n.Else))
	case *ast.NodeBlock:
		if len(n.Stmts) == 0 {
			return false
		}
		for _, s := range n.Stmts {
			if !isExpr(s) {
				return false
			}
		}
	}
	return true
}

// isSimple reports whether evaluating n twice is harmless and cheap.
func isSimple(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.NodeIdent, *ast.NodeThis:
		return true
	case *ast.NodeLiteral:
		return n.Kind != ast.LiteralJS
	case *ast.NodeString:
		return !n.Interpolated()
	case *ast.NodeParen:
		return isSimple(n.X)
	}
	return false
}

// intValue returns the value of an integer literal, possibly negated.
func intValue(n ast.Node) (int, bool) {
	switch n := n.(type) {
	case *ast.NodeLiteral:
		if n.Kind != ast.LiteralNumber {
			return 0, false
		}
		v, err := strconv.Atoi(strings.ReplaceAll(n.Value, "_", ""))
		return v, err == nil
	case *ast.NodeUnary:
		if n.Op == "-" && !n.Postfix {
			v, ok := intValue(n.X)
			return -v, ok
		}
	case *ast.NodeParen:
		return intValue(n.X)
	}
	return 0, false
}

func (g *generator) ternary(n *ast.NodeIf) string {
	els := "void 0"
	if n.Else != nil {
		els = g.expr(n.Else, precAssign)
	}
	return g.expr(n.Cond, precNullish) + " ? " + g.expr(n.Then, precAssign) + " : " + els
}

// closure wraps statements used as a value in an immediately invoked
// arrow function, which keeps `this' and `arguments'.
func (g *generator) closure(n ast.Node) (string, int) {
	async := false
	ast.Inspect(n, func(c ast.Node) bool {
		switch c := c.(type) {
		case *ast.NodeFunc:
			return false
		case *ast.NodeReturn:
			g.errorf(c, "cannot use return in an expression")
		case *ast.NodeYield:
			g.errorf(c, "cannot use yield in this expression")
		case *ast.NodeAwait:
			async = true
		}
		return true
	})
	g.indent++
	body := g.capture(func() { g.stmts(asBlock(n), modeReturn) })
	g.indent--
	if async {
		return "await (async () => {\n" + body + g.pad() + "})()", precUnary
	}
	return "(() => {\n" + body + g.pad() + "})()", precCall
}

func (g *generator) list(elems []ast.Node) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		if s, ok := e.(*ast.NodeSplat); ok {
			parts[i] = "..." + g.expr(s.X, precAssign)
			continue
		}
		parts[i] = g.expr(e, precAssign)
	}
	return strings.Join(parts, ", ")
}

func (g *generator) str(n *ast.NodeString) string {
	var sb strings.Builder
	if !n.Interpolated() {
		sb.WriteByte('"')
		for _, p := range n.Parts {
			sb.WriteString(p.Text)
		}
		sb.WriteByte('"')
		return sb.String()
	}
	sb.WriteByte('`')
	for _, p := range n.Parts {
		if p.Expr != nil {
			sb.WriteString("${" + g.expr(p.Expr, precSeq) + "}")
			continue
		}
		sb.WriteString(templateText(p.Text))
	}
	sb.WriteByte('`')
	return sb.String()
}

// templateText escapes double-quoted string contents for use in a
// template literal.
func templateText(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			sb.WriteByte(c)
			i++
			sb.WriteByte(s[i])
		case c == '`':
			sb.WriteString("\\`")
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			sb.WriteString("\\$")
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func (g *generator) object(n *ast.NodeObject) string {
	if len(n.Props) == 0 {
		return "{}"
	}
	props := make([]string, 0, len(n.Props))
	for _, p := range n.Props {
		switch p := p.(type) {
		case *ast.NodeSplat:
			props = append(props, "..."+g.expr(p.X, precAssign))
		case *ast.NodeProp:
			if p.Value != nil {
				props = append(props, g.propKey(p.Key)+": "+g.expr(p.Value, precAssign))
				continue
			}
			switch k := p.Key.(type) {
			case *ast.NodeIdent:
				props = append(props, k.Name)
			case *ast.NodeAccess:
				// {@a}
				props = append(props, k.Name+": "+g.expr(k, precAssign))
			default:
				g.errorf(p, "invalid object shorthand")
			}
		}
	}
	return "{" + strings.Join(props, ", ") + "}"
}

func (g *generator) propKey(k ast.Node) string {
	switch k := k.(type) {
	case *ast.NodeIdent:
		return k.Name
	case *ast.NodeAccess:
		return k.Name
	case *ast.NodeLiteral:
		code, _ := literal(k)
		return code
	case *ast.NodeString:
		if k.Interpolated() {
			return "[" + g.str(k) + "]"
		}
		return g.str(k)
	}
	g.errorf(k, "invalid property name")
	return ""
}

var identNameRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// member returns the code selecting property name, which is an
// identifier, a number or a quoted string.
func member(name string) string {
	if identNameRE.MatchString(name) {
		return "." + name
	}
	return "[" + name + "]"
}

// base returns the code for the object of a property access.
func (g *generator) base(x ast.Node) string {
	if lit, ok := x.(*ast.NodeLiteral); ok && lit.Kind == ast.LiteralNumber {
		code, _ := literal(lit)
		return "(" + code + ")"
	}
	return g.expr(x, precCall)
}

func (g *generator) access(n *ast.NodeAccess) string {
	dot := "."
	if n.Soak {
		dot = "?."
	}
	x := g.base(n.X)
	if n.Proto {
		x += dot + "prototype"
		if n.Name != "" {
			x += "." + n.Name
		}
		return x
	}
	return x + dot + n.Name
}

func (g *generator) slice(n *ast.NodeSlice) string {
	x := g.base(n.X)
	from := "0"
	if n.From != nil {
		from = g.expr(n.From, precAssign)
	}
	switch {
	case n.To == nil:
		return x + ".slice(" + from + ")"
	case n.Exclusive:
		return x + ".slice(" + from + ", " + g.expr(n.To, precAssign) + ")"
	}
	if v, ok := intValue(n.To); ok {
		if v == -1 {
			return x + ".slice(" + from + ")"
		}
		return x + ".slice(" + from + ", " + strconv.Itoa(v+1) + ")"
	}
	// an inclusive end of -1 means the rest of the array
	return x + ".slice(" + from + ", " + prefix("+", g.expr(n.To, precUnary)) + " + 1 || 9e9)"
}

// calleeHasCall reports whether a call appears in the member chain of x,
// which `new' would otherwise take as its argument list.
func calleeHasCall(x ast.Node) bool {
	for {
		switch n := x.(type) {
		case *ast.NodeCall:
			return true
		case *ast.NodeAccess:
			x = n.X
		case *ast.NodeIndex:
			x = n.X
		default:
			return false
		}
	}
}

func (g *generator) call(n *ast.NodeCall) string {
	args := g.list(n.Args)
	if n.New {
		fn := g.expr(n.Fn, precCall)
		if calleeHasCall(n.Fn) {
			fn = "(" + fn + ")"
		}
		return "new " + fn + "(" + args + ")"
	}
	fn := g.expr(n.Fn, precCall)
	if n.Soak {
		return fn + "?.(" + args + ")"
	}
	return fn + "(" + args + ")"
}

func (g *generator) super(n *ast.NodeSuper) string {
	if g.method == nil {
		g.errorf(n, "cannot call super outside of an instance method")
	}
	args := g.list(n.Args)
	if n.Bare {
		args = "...arguments"
	}
	if g.method.ctor {
		return "super(" + args + ")"
	}
	return "super" + member(g.method.name) + "(" + args + ")"
}

func (g *generator) binary(n *ast.NodeBinary) (string, int) {
	switch n.Op {
	case "**":
		return g.expr(n.X, precPostfix) + " ** " + g.expr(n.Y, precExp), precExp
	case "//":
		return "Math.floor(" + g.expr(n.X, precMul) + " / " + g.expr(n.Y, precMul+1) + ")", precCall
	case "%%":
		return g.helper("modulo") + "(" + g.expr(n.X, precAssign) + ", " + g.expr(n.Y, precAssign) + ")", precCall
	case "?":
		return g.nullish(n)
	case "in", "!in":
		return g.in(n)
	case "of":
		return g.expr(n.X, precRel) + " in " + g.expr(n.Y, precShift), precRel
	case "!of":
		return "!(" + g.expr(n.X, precRel) + " in " + g.expr(n.Y, precShift) + ")", precUnary
	case "!instanceof":
		return "!(" + g.expr(n.X, precRel) + " instanceof " + g.expr(n.Y, precShift) + ")", precUnary
	}
	if x, ok := n.X.(*ast.NodeBinary); ok && ast.IsCompare(n.Op) && ast.IsCompare(x.Op) {
		return g.compareChain(n), precAnd
	}
	p, ok := binaryPrec[n.Op]
	if !ok {
		panic(fmt.Sprintf("unexpected binary operator %q", n.Op))
	}
	return g.expr(n.X, p) + " " + jsOp(n.Op) + " " + g.expr(n.Y, p+1), p
}

// compareChain expands a < b < c into a < b && b < c, evaluating b once.
func (g *generator) compareChain(n *ast.NodeBinary) string {
	var (
		ops      []string
		operands []ast.Node
	)
	for x := n; ; {
		ops = append([]string{x.Op}, ops...)
		operands = append([]ast.Node{x.Y}, operands...)
		inner, ok := x.X.(*ast.NodeBinary)
		if !ok || !ast.IsCompare(inner.Op) {
			operands = append([]ast.Node{x.X}, operands...)
			break
		}
		x = inner
	}
	left := g.expr(operands[0], binaryPrec[ops[0]])
	parts := make([]string, len(ops))
	for i, op := range ops {
		p := binaryPrec[op]
		right := operands[i+1]
		var code, next string
		if i < len(ops)-1 && !isSimple(right) {
			ref := g.freeVar("ref")
			code = "(" + ref + " = " + g.expr(right, precAssign) + ")"
			next = ref
		} else {
			code = g.expr(right, p+1)
			next = code
		}
		parts[i] = left + " " + jsOp(op) + " " + code
		left = next
	}
	return strings.Join(parts, " && ")
}

// undeclared reports whether x is a variable this file never declares,
// which can only be tested for existence with typeof.
func (g *generator) undeclared(x ast.Node) (string, bool) {
	id, ok := x.(*ast.NodeIdent)
	if !ok || g.scope.declared(id.Name) {
		return "", false
	}
	return id.Name, true
}

func (g *generator) existence(x ast.Node) (string, int) {
	if name, ok := g.undeclared(x); ok {
		return `typeof ` + name + ` !== "undefined" && ` + name + ` !== null`, precAnd
	}
	return g.expr(x, precRel) + " != null", precEq
}

func (g *generator) nullish(n *ast.NodeBinary) (string, int) {
	if name, ok := g.undeclared(n.X); ok {
		return `typeof ` + name + ` !== "undefined" && ` + name + ` !== null ? ` + name + " : " + g.expr(n.Y, precAssign), precCond
	}
	return g.expr(n.X, precBitOr) + " ?? " + g.expr(n.Y, precBitOr), precNullish
}

// in tests array membership. Literal arrays become a chain of equality
// tests.
func (g *generator) in(n *ast.NodeBinary) (string, int) {
	neg := n.Op == "!in"
	if arr, ok := n.Y.(*ast.NodeArray); ok && isSimple(n.X) && !hasSplat(arr.Elems) {
		if len(arr.Elems) == 0 {
			return strconv.FormatBool(neg), precPrimary
		}
		op, join, p := "===", " || ", precOr
		if neg {
			op, join, p = "!==", " && ", precAnd
		}
		x := g.expr(n.X, precRel)
		parts := make([]string, len(arr.Elems))
		for i, e := range arr.Elems {
			parts[i] = x + " " + op + " " + g.expr(e, precRel)
		}
		return strings.Join(parts, join), p
	}
	code := g.helper("indexOf") + ".call(" + g.expr(n.Y, precAssign) + ", " + g.expr(n.X, precAssign) + ")"
	if neg {
		return code + " < 0", precRel
	}
	return code + " >= 0", precRel
}

func hasSplat(elems []ast.Node) bool {
	for _, e := range elems {
		if _, ok := e.(*ast.NodeSplat); ok {
			return true
		}
	}
	return false
}

func (g *generator) assign(n *ast.NodeAssign) (string, int) {
	if n.Op == "=" {
		target := g.pattern(n.Target, &patternCtx{})
		return target + " = " + g.expr(n.Value, precAssign), precAssign
	}
	if id, ok := n.Target.(*ast.NodeIdent); ok && !g.scope.declared(id.Name) {
		if n.Op != "?=" {
			g.errorf(n, "the variable %q can't be assigned with %s because it has not been declared before", id.Name, n.Op)
		}
		g.scope.declare(id.Name)
	}
	switch n.Op {
	case "?=":
		return g.expr(n.Target, precCall) + " ??= " + g.expr(n.Value, precAssign), precAssign
	case "//=":
		target, again := g.cacheTarget(n.Target)
		return target + " = Math.floor(" + again + " / " + g.expr(n.Value, precMul+1) + ")", precAssign
	case "%%=":
		target, again := g.cacheTarget(n.Target)
		return target + " = " + g.helper("modulo") + "(" + again + ", " + g.expr(n.Value, precAssign) + ")", precAssign
	}
	return g.expr(n.Target, precCall) + " " + n.Op + " " + g.expr(n.Value, precAssign), precAssign
}

// cacheTarget returns code assigning to t and code reading it again,
// evaluating the object and index expressions of t once.
func (g *generator) cacheTarget(t ast.Node) (string, string) {
	cache := func(x ast.Node) (string, string) {
		if isSimple(x) {
			code := g.expr(x, precCall)
			return code, code
		}
		ref := g.freeVar("ref")
		return "(" + ref + " = " + g.expr(x, precAssign) + ")", ref
	}
	switch t := t.(type) {
	case *ast.NodeAccess:
		first, again := cache(t.X)
		name := "." + t.Name
		if t.Proto {
			name = ".prototype" + name
		}
		return first + name, again + name
	case *ast.NodeIndex:
		xFirst, xAgain := cache(t.X)
		if isSimple(t.Index) {
			idx := g.expr(t.Index, precSeq)
			return xFirst + "[" + idx + "]", xAgain + "[" + idx + "]"
		}
		ref := g.freeVar("ref")
		return xFirst + "[" + ref + " = " + g.expr(t.Index, precAssign) + "]", xAgain + "[" + ref + "]"
	}
	code := g.expr(t, precCall)
	return code, code
}

// patternCtx configures pattern.
type patternCtx struct {
	// binding patterns bind parameters or catch variables rather than
	// declare variables.
	binding bool
	// thisAssigns collects `this.x = x' for @x parameters.
	thisAssigns *[]string
}

// pattern returns the code for an assignment target, declaring the
// variables it assigns.
func (g *generator) pattern(n ast.Node, pc *patternCtx) string {
	switch n := n.(type) {
	case *ast.NodeIdent:
		if pc.binding {
			g.scope.param(n.Name)
		} else {
			g.scope.declare(n.Name)
		}
		return n.Name
	case *ast.NodeAccess:
		if _, ok := n.X.(*ast.NodeThis); ok && pc.thisAssigns != nil {
			g.scope.param(n.Name)
			*pc.thisAssigns = append(*pc.thisAssigns, "this."+n.Name+" = "+n.Name)
			return n.Name
		}
		if !pc.binding {
			return g.expr(n, precCall)
		}
	case *ast.NodeIndex:
		if !pc.binding {
			return g.expr(n, precCall)
		}
	case *ast.NodeArray:
		elems := make([]string, len(n.Elems))
		for i, e := range n.Elems {
			if s, ok := e.(*ast.NodeSplat); ok {
				if i != len(n.Elems)-1 {
					g.errorf(s, "a splat must be the last element of a destructuring pattern")
				}
				elems[i] = "..." + g.pattern(s.X, pc)
				continue
			}
			elems[i] = g.pattern(e, pc)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.NodeObject:
		props := make([]string, 0, len(n.Props))
		for _, p := range n.Props {
			switch p := p.(type) {
			case *ast.NodeSplat:
				props = append(props, "..."+g.pattern(p.X, pc))
			case *ast.NodeProp:
				switch k := p.Key.(type) {
				case *ast.NodeIdent:
					if p.Value == nil {
						props = append(props, g.pattern(k, pc))
						continue
					}
				case *ast.NodeAccess:
					if p.Value == nil {
						// {@a}
						props = append(props, k.Name+": "+g.pattern(k, pc))
						continue
					}
				}
				if p.Value == nil {
					g.errorf(p, "invalid object shorthand")
				}
				props = append(props, g.propKey(p.Key)+": "+g.pattern(p.Value, pc))
			}
		}
		return "{" + strings.Join(props, ", ") + "}"
	case *ast.NodeAssign:
		// default value inside a pattern
		if n.Op == "=" {
			return g.pattern(n.Target, pc) + " = " + g.expr(n.Value, precAssign)
		}
	}
	g.errorf(n, "cannot assign to this expression")
	return ""
}

func (g *generator) rangeExpr(n *ast.NodeRange) (string, int) {
	from, ok1 := intValue(n.From)
	to, ok2 := intValue(n.To)
	if ok1 && ok2 && abs(to-from) <= 20 {
		step := 1
		if from > to {
			step = -1
		}
		var elems []string
		for i := from; ; i += step {
			if n.Exclusive && i == to {
				break
			}
			elems = append(elems, strconv.Itoa(i))
			if i == to {
				break
			}
		}
		return "[" + strings.Join(elems, ", ") + "]", precPrimary
	}

	results, i := g.tempName("results"), g.tempName("i")
	start, end := g.tempName("start"), g.tempName("end")
	lt, gt := "<=", ">="
	if n.Exclusive {
		lt, gt = "<", ">"
	}
	pad := g.pad()
	var sb strings.Builder
	fmt.Fprintf(&sb, "((%s, %s) => {\n", start, end)
	fmt.Fprintf(&sb, "%s%svar %s = [], %s;\n", pad, indentUnit, results, i)
	fmt.Fprintf(&sb, "%s%sfor (%s = %s; %s <= %s ? %s %s %s : %s %s %s; %s <= %s ? %s++ : %s--) {\n",
		pad, indentUnit, i, start, start, end, i, lt, end, i, gt, end, start, end, i, i)
	fmt.Fprintf(&sb, "%s%s%s%s.push(%s);\n", pad, indentUnit, indentUnit, results, i)
	fmt.Fprintf(&sb, "%s%s}\n", pad, indentUnit)
	fmt.Fprintf(&sb, "%s%sreturn %s;\n", pad, indentUnit, results)
	fmt.Fprintf(&sb, "%s})(%s, %s)", pad, g.expr(n.From, precAssign), g.expr(n.To, precAssign))
	return sb.String(), precCall
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
