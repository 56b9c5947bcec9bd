package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/adhocteam/coffeemin/internal/ast"
	"github.com/adhocteam/coffeemin/internal/source"
	"github.com/google/go-cmp/cmp"
)

// sexpr renders a node as a compact s-expression, omitting positions.
func sexpr(n ast.Node) string {
	if n == nil {
		return "_"
	}
	list := func(head string, nodes ...ast.Node) string {
		parts := []string{head}
		for _, n := range nodes {
			parts = append(parts, sexpr(n))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	switch n := n.(type) {
	case *ast.NodeBlock:
		return list("block", n.Stmts...)
	case *ast.NodeIdent:
		return n.Name
	case *ast.NodeThis:
		return "this"
	case *ast.NodeLiteral:
		return n.Value
	case *ast.NodeString:
		if len(n.Parts) == 1 && n.Parts[0].Expr == nil {
			return `"` + n.Parts[0].Text + `"`
		}
		parts := []string{"str"}
		for _, p := range n.Parts {
			if p.Expr != nil {
				parts = append(parts, sexpr(p.Expr))
			} else {
				parts = append(parts, `"`+p.Text+`"`)
			}
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.NodeArray:
		return list("array", n.Elems...)
	case *ast.NodeProp:
		if n.Value == nil {
			return list("prop", n.Key)
		}
		return list("prop", n.Key, n.Value)
	case *ast.NodeObject:
		return list("obj", n.Props...)
	case *ast.NodeRange:
		if n.Exclusive {
			return list("range...", n.From, n.To)
		}
		return list("range", n.From, n.To)
	case *ast.NodeFunc:
		var params []string
		for _, p := range n.Params {
			s := sexpr(p.Name)
			if p.Splat {
				s = "(... " + s + ")"
			}
			if p.Default != nil {
				s = "(default " + s + " " + sexpr(p.Default) + ")"
			}
			params = append(params, s)
		}
		arrow := "->"
		if n.Bound {
			arrow = "=>"
		}
		return fmt.Sprintf("(%s (%s) %s)", arrow, strings.Join(params, " "), sexpr(n.Body))
	case *ast.NodeCall:
		head := "call"
		switch {
		case n.New:
			head = "new"
		case n.Soak:
			head = "call?"
		}
		return list(head, append([]ast.Node{n.Fn}, n.Args...)...)
	case *ast.NodeSuper:
		if n.Bare {
			return "super"
		}
		return list("super", n.Args...)
	case *ast.NodeAccess:
		head := "."
		if n.Proto {
			head = "::"
		}
		if n.Soak {
			head = "?" + head
		}
		if n.Name == "" {
			return list(head, n.X)
		}
		return fmt.Sprintf("(%s %s %s)", head, sexpr(n.X), n.Name)
	case *ast.NodeIndex:
		if n.Soak {
			return list("idx?", n.X, n.Index)
		}
		return list("idx", n.X, n.Index)
	case *ast.NodeSlice:
		if n.Exclusive {
			return list("slice...", n.X, n.From, n.To)
		}
		return list("slice", n.X, n.From, n.To)
	case *ast.NodeUnary:
		if n.Postfix {
			return list("post"+n.Op, n.X)
		}
		return list(n.Op, n.X)
	case *ast.NodeBinary:
		return list(n.Op, n.X, n.Y)
	case *ast.NodeExistence:
		return list("exists", n.X)
	case *ast.NodeAssign:
		return list(n.Op, n.Target, n.Value)
	case *ast.NodeSplat:
		return list("...", n.X)
	case *ast.NodeParen:
		return list("paren", n.X)
	case *ast.NodeYield:
		if n.Delegate {
			return list("yield-from", n.X)
		}
		if n.X == nil {
			return "(yield)"
		}
		return list("yield", n.X)
	case *ast.NodeAwait:
		return list("await", n.X)
	case *ast.NodeIf:
		if n.Else == nil {
			return list("if", n.Cond, n.Then)
		}
		return list("if", n.Cond, n.Then, n.Else)
	case *ast.NodeWhile:
		if n.Cond == nil {
			return list("loop", n.Body)
		}
		if n.Guard != nil {
			return "(while " + sexpr(n.Cond) + " " + list("when", n.Guard) + " " + sexpr(n.Body) + ")"
		}
		return list("while", n.Cond, n.Body)
	case *ast.NodeFor:
		head := map[ast.ForKind]string{ast.ForIn: "for-in", ast.ForOf: "for-of", ast.ForFrom: "for-from"}[n.Kind]
		if n.Own {
			head += "-own"
		}
		var parts []ast.Node
		if n.Name != nil {
			parts = append(parts, n.Name)
		}
		if n.Index != nil {
			parts = append(parts, n.Index)
		}
		parts = append(parts, n.Source)
		s := list(head, parts...)
		s = s[:len(s)-1]
		if n.Step != nil {
			s += " " + list("by", n.Step)
		}
		if n.Guard != nil {
			s += " " + list("when", n.Guard)
		}
		return s + " " + sexpr(n.Body) + ")"
	case *ast.NodeSwitch:
		parts := []string{"switch", sexpr(n.Subject)}
		for _, c := range n.Cases {
			var conds []string
			for _, cond := range c.Conds {
				conds = append(conds, sexpr(cond))
			}
			parts = append(parts, fmt.Sprintf("(when (%s) %s)", strings.Join(conds, " "), sexpr(c.Body)))
		}
		if n.Default != nil {
			parts = append(parts, "(else "+sexpr(n.Default)+")")
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *ast.NodeTry:
		var catch, finally ast.Node
		if n.Catch != nil {
			catch = n.Catch
		}
		if n.Finally != nil {
			finally = n.Finally
		}
		return list("try", n.Body, n.CatchParam, catch, finally)
	case *ast.NodeThrow:
		return list("throw", n.X)
	case *ast.NodeReturn:
		if n.X == nil {
			return "(return)"
		}
		return list("return", n.X)
	case *ast.NodeJump:
		return n.Keyword
	case *ast.NodeClass:
		parts := []string{"class", sexpr(n.Name), sexpr(n.Parent)}
		for _, m := range n.Members {
			name := m.Name
			if m.Static {
				name = "@" + name
			}
			parts = append(parts, fmt.Sprintf("(member %s %s)", name, sexpr(m.Value)))
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		panic(fmt.Sprintf("unexpected node type %T", n))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"function",
			"add = (a, b) -> a + b",
			[]string{"(= add (-> (a b) (block (+ a b))))"},
		},
		{
			"implicit calls nest to the right",
			"console.log add 1, 2",
			[]string{"(call (. console log) (call add 1 2))"},
		},
		{
			"chain continued on next line applies to outer call",
			"$ 'body'\n  .addClass 'x'",
			[]string{`(call (. (call $ "body") addClass) "x")`},
		},
		{
			"function argument with indented body",
			"app.get '/', (req, res) ->\n  res.send 'hi'",
			[]string{`(call (. app get) "/" (-> (req res) (block (call (. res send) "hi"))))`},
		},
		{
			"postfix if",
			"x = 1 if y",
			[]string{"(if y (block (= x 1)))"},
		},
		{
			"postfix unless negates",
			"a() unless b is c",
			[]string{"(if (!= b c) (block (call a)))"},
		},
		{
			"chained comparison",
			"a < b < c",
			[]string{"(< (< a b) c)"},
		},
		{
			"precedence",
			"a + b * c ** d ** e",
			[]string{"(+ a (* b (** c (** d e))))"},
		},
		{
			"logical words",
			"not a and b or c",
			[]string{"(|| (&& (! a) b) c)"},
		},
		{
			"negated relations",
			"a not in b isnt c instanceof d",
			[]string{"(!= (!in a b) (instanceof c d))"},
		},
		{
			"negated relations after a name",
			"console.log(x not in arr)\nk not of obj\nf x not instanceof T",
			[]string{"(call (. console log) (!in x arr))", "(!of k obj)", "(call f (!instanceof x T))"},
		},
		{
			"not as an implicit argument",
			"f not x",
			[]string{"(call f (! x))"},
		},
		{
			"typeof comparison",
			"typeof x is 'string'",
			[]string{`(== (typeof x) "string")`},
		},
		{
			"existence",
			"a?.b ? c\nd?",
			[]string{"(? (?. a b) c)", "(exists d)"},
		},
		{
			"soaked call and index",
			"f?(1)\na?[0]",
			[]string{"(call? f 1)", "(idx? a 0)"},
		},
		{
			"implicit object",
			"obj =\n  a: 1\n  b: [1, 2]",
			[]string{"(= obj (obj (prop a 1) (prop b (array 1 2))))"},
		},
		{
			"implicit object argument",
			"f a: 1, b: 2",
			[]string{"(call f (obj (prop a 1) (prop b 2)))"},
		},
		{
			"braced object",
			"{a, b: 2, @c}",
			[]string{"(obj (prop a) (prop b 2) (prop (. this c)))"},
		},
		{
			"ranges and slices",
			"[1..3]\n[1...n]\na[1..]\na[..-1]",
			[]string{"(range 1 3)", "(range... 1 n)", "(slice a 1 _)", "(slice a _ (- 1))"},
		},
		{
			"for loop",
			"for x, i in xs when x > 0 then f x",
			[]string{"(for-in x i xs (when (> x 0)) (block (call f x)))"},
		},
		{
			"own for-of",
			"for own k, v of obj\n  log k",
			[]string{"(for-of-own k v obj (block (call log k)))"},
		},
		{
			"for with step",
			"for i in [0..10] by 2\n  i",
			[]string{"(for-in i (range 0 10) (by 2) (block i))"},
		},
		{
			"comprehension",
			"squares = (x * x for x in xs)",
			[]string{"(= squares (paren (for-in x xs (block (* x x)))))"},
		},
		{
			"if else chain",
			"if a\n  b\nelse if c\n  d\nelse\n  e",
			[]string{"(if a (block b) (if c (block d) (block e)))"},
		},
		{
			"if expression",
			"x = if a then b else c",
			[]string{"(= x (if a (block b) (block c)))"},
		},
		{
			"while and until",
			"while i < 10\n  i++\nuntil done\n  step()",
			[]string{"(while (< i 10) (block (post++ i)))", "(while (! done) (block (call step)))"},
		},
		{
			"loop",
			"loop\n  break",
			[]string{"(loop (block break))"},
		},
		{
			"switch",
			"switch x\n  when 1, 2 then 'low'\n  else 'high'",
			[]string{`(switch x (when (1 2) (block "low")) (else (block "high")))`},
		},
		{
			"try catch finally",
			"try\n  f()\ncatch e\n  g e\nfinally\n  h()",
			[]string{"(try (block (call f)) e (block (call g e)) (block (call h)))"},
		},
		{
			"class",
			"class Dog extends Animal\n  constructor: (@name) ->\n    super()\n  bark: -> \"woof\"\n  @create: -> new Dog",
			[]string{`(class Dog Animal (member constructor (-> ((. this name)) (block (super)))) (member bark (-> () (block "woof"))) (member @create (-> () (block (new Dog)))))`},
		},
		{
			"string interpolation",
			`"a#{b}c"` + "\n" + `"#{}"`,
			[]string{`(str "a" b "c")`, `""`},
		},
		{
			"do with parameters",
			"do (x = 1) -> x",
			[]string{"(call (paren (-> (x) (block x))) 1)"},
		},
		{
			"destructuring",
			"[a, b] = [b, a]\n{x, y} = point",
			[]string{"(= (array a b) (array b a))", "(= (obj (prop x) (prop y)) point)"},
		},
		{
			"splats",
			"f args...\ng = (a, rest...) ->",
			[]string{"(call f (... args))", "(= g (-> (a (... rest)) (block)))"},
		},
		{
			"yield and return",
			"-> yield x\n-> return",
			[]string{"(-> () (block (yield x)))", "(-> () (block (return)))"},
		},
		{
			"compound assignment",
			"a ?= b\nc ||= d\ne //= 2",
			[]string{"(?= a b)", "(||= c d)", "(//= e 2)"},
		},
		{
			"prototype access",
			"A::b = 1",
			[]string{"(= (:: A b) 1)"},
		},
		{
			"literals",
			"x = /a/g\ny = yes\nz = `1 + 2`",
			[]string{"(= x /a/g)", "(= y true)", "(= z 1 + 2)"},
		},
		{
			"new with implicit arguments",
			"new Foo.Bar 1, 2",
			[]string{"(new (. Foo Bar) 1 2)"},
		},
		{
			"bound function",
			"f = (x) => @x = x",
			[]string{"(= f (=> (x) (block (= (. this x) x))))"},
		},
		{
			"multi-line call arguments",
			"f(\n  a\n  b\n)",
			[]string{"(call f a b)"},
		},
		{
			"super method call",
			"super.method 1",
			[]string{"(call (. super method) 1)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []string
			for _, stmt := range prog.Body.Stmts {
				got = append(got, sexpr(stmt))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statements (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestParseSpans(t *testing.T) {
	src := "x = foo bar"
	prog, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	assign := prog.Body.Stmts[0].(*ast.NodeAssign)
	if got := src[assign.Span.Start:assign.Span.End]; got != src {
		t.Errorf("assignment span: want %q, got %q", src, got)
	}
	call := assign.Value.(*ast.NodeCall)
	if got := src[call.Span.Start:call.Span.End]; got != "foo bar" {
		t.Errorf("call span: want %q, got %q", "foo bar", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a =", `1:4: unexpected newline`},
		{"1 = 2", `1:1: invalid assignment target`},
		{"for x to y", `1:7: expected in, of or from, got "to"`},
		{"switch x\n  else 1", `1:1: switch without when clauses`},
		{"a.", `1:3: expected property name, got newline`},
		{"if a b", `1:7: expected then or an indented block, got newline`},
		{"a b c,", `1:7: unexpected newline`},
		{"class A\n  x = 1", `2:5: expected ":", got "="`},
		{"foo(", `1:4: missing ")"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			var serr *source.Error
			if !errors.As(err, &serr) {
				t.Fatalf("expected *source.Error, got %T", err)
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"add = (a, b) -> a + b",
		"console.log add 1, 2 if debug",
		"class A extends B\n  m: -> super()\n",
		"switch x\n  when 1 then a\n  else b\n",
		"for own k, v of o when v\n  f k\n",
		"\"a#{b}c\"",
		"{a, b: [1..2]} = x",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		_, err := Parse(in)
		if err != nil {
			var serr *source.Error
			if !errors.As(err, &serr) {
				t.Errorf("expected *source.Error, got %T %v", err, err)
			}
		}
	})
}
