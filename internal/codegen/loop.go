package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adhocteam/coffeemin/internal/ast"
)

// collect starts a results array when a loop is the value returned from a
// function.
func (g *generator) collect(m mode) string {
	if m != modeReturn {
		return ""
	}
	results := g.freeVar("results")
	g.printf("%s = [];", results)
	return results
}

// loopBody writes the body of a loop between braces. prelude statements
// come first, then the body, guarded if there is a when clause. With a
// results array the value of each iteration is pushed onto it.
func (g *generator) loopBody(body *ast.NodeBlock, guard ast.Node, results string, prelude ...string) {
	saved := g.results
	m := modeStmt
	if results != "" {
		g.results, m = results, modePush
	}
	g.indent++
	for _, line := range prelude {
		g.exprStmt(line)
	}
	if guard != nil {
		g.printf("if (%s) {", g.expr(guard, precSeq))
		g.body.WriteString(g.block(body, m))
		g.printf("}")
	} else {
		g.stmts(body, m)
	}
	g.indent--
	g.results = saved
}

func (g *generator) whileStmt(n *ast.NodeWhile, m mode) {
	if m == modePush {
		g.value(g.expr(n, precSeq), m)
		return
	}
	results := g.collect(m)
	cond := "true"
	if n.Cond != nil {
		cond = g.expr(n.Cond, precSeq)
	}
	g.printf("while (%s) {", cond)
	g.loopBody(n.Body, n.Guard, results)
	g.printf("}")
	if results != "" {
		g.printf("return %s;", results)
	}
}

func (g *generator) forStmt(n *ast.NodeFor, m mode) {
	if m == modePush {
		g.value(g.expr(n, precSeq), m)
		return
	}
	if n.Step != nil && n.Kind != ast.ForIn {
		g.errorf(n.Step, "cannot use by with for-%s", forKeyword(n.Kind))
	}
	results := g.collect(m)
	_, isRange := unparen(n.Source).(*ast.NodeRange)
	switch {
	case n.Kind == ast.ForIn && isRange && n.Index == nil:
		g.forRange(n, results)
	case n.Kind == ast.ForIn:
		g.forArray(n, results)
	case n.Kind == ast.ForOf:
		g.forObject(n, results)
	default:
		g.forFrom(n, results)
	}
	if results != "" {
		g.printf("return %s;", results)
	}
}

func forKeyword(k ast.ForKind) string {
	switch k {
	case ast.ForOf:
		return "of"
	case ast.ForFrom:
		return "from"
	}
	return "in"
}

func unparen(n ast.Node) ast.Node {
	for {
		p, ok := n.(*ast.NodeParen)
		if !ok {
			return n
		}
		n = p.X
	}
}

// cached returns code for n that can be evaluated repeatedly, appending
// the assignment of a temporary to init when n is not simple.
func (g *generator) cached(n ast.Node, init *[]string) string {
	if isSimple(n) {
		return g.expr(n, precAssign)
	}
	code := g.expr(n, precAssign)
	// `in' would end the initializer of a for statement
	if strings.Contains(code, " in ") {
		code = "(" + code + ")"
	}
	ref := g.freeVar("ref")
	*init = append(*init, ref+" = "+code)
	return ref
}

// loopVar declares the variable of a counting loop.
func (g *generator) loopVar(n ast.Node) string {
	if n == nil {
		return g.freeVar("i")
	}
	id, ok := n.(*ast.NodeIdent)
	if !ok {
		g.errorf(n, "loop index must be a name")
	}
	g.scope.declare(id.Name)
	return id.Name
}

func compareOp(ascending, exclusive bool) string {
	switch {
	case ascending && exclusive:
		return "<"
	case ascending:
		return "<="
	case exclusive:
		return ">"
	}
	return ">="
}

func stepUpdate(v string, step int) string {
	switch step {
	case 1:
		return v + "++"
	case -1:
		return v + "--"
	}
	return v + " += " + strconv.Itoa(step)
}

// forRange counts over a range without building the array.
func (g *generator) forRange(n *ast.NodeFor, results string) {
	r := unparen(n.Source).(*ast.NodeRange)
	v := g.loopVar(n.Name)
	from, fromOK := intValue(r.From)
	to, toOK := intValue(r.To)
	step, stepOK := 0, n.Step == nil
	if n.Step != nil {
		step, stepOK = intValue(n.Step)
	}

	var init []string
	var cond, update string
	if fromOK && toOK && stepOK {
		if n.Step == nil {
			step = 1
			if from > to {
				step = -1
			}
		}
		init = append(init, v+" = "+strconv.Itoa(from))
		cond = v + " " + compareOp(step > 0, r.Exclusive) + " " + strconv.Itoa(to)
		update = stepUpdate(v, step)
	} else {
		start := g.cached(r.From, &init)
		end := g.cached(r.To, &init)
		up, down := compareOp(true, r.Exclusive), compareOp(false, r.Exclusive)
		switch {
		case n.Step == nil:
			init = append(init, v+" = "+start)
			dir := start + " <= " + end
			cond = fmt.Sprintf("%s ? %s %s %s : %s %s %s", dir, v, up, end, v, down, end)
			update = fmt.Sprintf("%s ? %s++ : %s--", dir, v, v)
		case stepOK:
			init = append(init, v+" = "+start)
			cond = v + " " + compareOp(step > 0, r.Exclusive) + " " + end
			update = stepUpdate(v, step)
		default:
			s := g.cached(n.Step, &init)
			init = append(init, v+" = "+start)
			cond = fmt.Sprintf("%s > 0 ? %s %s %s : %s %s %s", s, v, up, end, v, down, end)
			update = v + " += " + s
		}
	}
	g.printf("for (%s; %s; %s) {", strings.Join(init, ", "), cond, update)
	g.loopBody(n.Body, n.Guard, results)
	g.printf("}")
}

// forArray iterates over the elements of an array by index.
func (g *generator) forArray(n *ast.NodeFor, results string) {
	var init []string
	src := g.cached(n.Source, &init)
	i := g.loopVar(n.Index)

	var cond, update string
	step, stepOK := 1, true
	if n.Step != nil {
		step, stepOK = intValue(n.Step)
	}
	switch {
	case stepOK && step < 0:
		init = append(init, i+" = "+src+".length - 1")
		cond = i + " >= 0"
		update = stepUpdate(i, step)
	case stepOK:
		length := g.freeVar("len")
		init = append(init, i+" = 0", length+" = "+src+".length")
		cond = i + " < " + length
		update = stepUpdate(i, step)
	default:
		s := g.cached(n.Step, &init)
		length := g.freeVar("len")
		init = append(init, length+" = "+src+".length", i+" = "+s+" > 0 ? 0 : "+length+" - 1")
		cond = s + " > 0 ? " + i + " < " + length + " : " + i + " >= 0"
		update = i + " += " + s
	}
	g.printf("for (%s; %s; %s) {", strings.Join(init, ", "), cond, update)
	var prelude []string
	if n.Name != nil {
		prelude = append(prelude, g.pattern(n.Name, &patternCtx{})+" = "+src+"["+i+"]")
	}
	g.loopBody(n.Body, n.Guard, results, prelude...)
	g.printf("}")
}

// forObject iterates over the keys of an object.
func (g *generator) forObject(n *ast.NodeFor, results string) {
	src := g.expr(n.Source, precAssign)
	if !isSimple(n.Source) {
		ref := g.freeVar("ref")
		g.printf("%s = %s;", ref, src)
		src = ref
	}
	id, ok := n.Name.(*ast.NodeIdent)
	if !ok {
		g.errorf(n, "for-of needs a name for the key")
	}
	g.scope.declare(id.Name)
	key := id.Name

	var prelude []string
	if n.Own {
		prelude = append(prelude, "if (!"+g.helper("hasProp")+".call("+src+", "+key+")) continue")
	}
	if n.Index != nil {
		prelude = append(prelude, g.pattern(n.Index, &patternCtx{})+" = "+src+"["+key+"]")
	}
	g.printf("for (%s in %s) {", key, src)
	g.loopBody(n.Body, n.Guard, results, prelude...)
	g.printf("}")
}

// forFrom iterates with for-of over any iterable.
func (g *generator) forFrom(n *ast.NodeFor, results string) {
	if n.Index != nil {
		g.errorf(n.Index, "cannot use an index with for-from")
	}
	if n.Name == nil {
		g.errorf(n, "for-from needs a name")
	}
	target := g.pattern(n.Name, &patternCtx{})
	g.printf("for (%s of %s) {", target, g.expr(n.Source, precAssign))
	g.loopBody(n.Body, n.Guard, results)
	g.printf("}")
}
