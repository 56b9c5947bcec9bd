package ast

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleProgram() *Program {
	// add = (a, b) -> a + b
	// console.log add(1, 2) if debug
	return &Program{Body: &NodeBlock{Stmts: []Node{
		&NodeAssign{
			Target: &NodeIdent{Name: "add"},
			Op:     "=",
			Value: &NodeFunc{
				Params: []*Param{{Name: &NodeIdent{Name: "a"}}, {Name: &NodeIdent{Name: "b"}}},
				Body: &NodeBlock{Stmts: []Node{
					&NodeBinary{Op: "+", X: &NodeIdent{Name: "a"}, Y: &NodeIdent{Name: "b"}},
				}},
			},
		},
		&NodeIf{
			Cond: &NodeIdent{Name: "debug"},
			Then: &NodeBlock{Stmts: []Node{
				&NodeCall{
					Fn: &NodeAccess{X: &NodeIdent{Name: "console"}, Name: "log"},
					Args: []Node{&NodeCall{
						Fn:   &NodeIdent{Name: "add"},
						Args: []Node{&NodeLiteral{Kind: LiteralNumber, Value: "1"}, &NodeLiteral{Kind: LiteralNumber, Value: "2"}},
					}},
				},
			}},
		},
	}}}
}

func TestInspect(t *testing.T) {
	prog := sampleProgram()

	var names []string
	Inspect(prog.Body, func(n Node) bool {
		if id, ok := n.(*NodeIdent); ok {
			names = append(names, id.Name)
		}
		return true
	})
	want := []string{"add", "a", "b", "a", "b", "debug", "console", "add"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("identifiers (-want, +got):\n%s", diff)
	}
}

func TestInspectSkipsChildren(t *testing.T) {
	prog := sampleProgram()

	var names []string
	Inspect(prog.Body, func(n Node) bool {
		switch n := n.(type) {
		case *NodeFunc:
			return false
		case *NodeIdent:
			names = append(names, n.Name)
		}
		return true
	})
	want := []string{"add", "debug", "console", "add"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("identifiers (-want, +got):\n%s", diff)
	}
}

func TestInspectNilVisit(t *testing.T) {
	// f is called with nil after the children of each node are visited.
	var depth, maxDepth int
	Inspect(sampleProgram().Body, func(n Node) bool {
		if n == nil {
			depth--
			return false
		}
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	if depth != 0 {
		t.Errorf("unbalanced traversal, depth %d", depth)
	}
	if maxDepth != 6 {
		t.Errorf("want max depth 6, got %d", maxDepth)
	}
}

func TestPrettyPrint(t *testing.T) {
	var sb strings.Builder
	PrettyPrint(&sb, sampleProgram())
	want := `ASSIGN =
  add
  FUNC ->
    PARAM
      a
    PARAM
      b
  BODY
    BINARY +
      a
      b
IF
  debug
THEN
  CALL
    ACCESS .log
      console
  ARGS
    CALL
      add
    ARGS
      NUMBER 1
      NUMBER 2
`
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("pretty print (-want, +got):\n%s", diff)
	}
}

func TestPrettyPrintColor(t *testing.T) {
	var sb strings.Builder
	NewPrettyPrinter(&sb, true).PrettyPrint(&Program{Body: &NodeBlock{Stmts: []Node{
		&NodeJump{Keyword: "debugger"},
	}}})
	if got, want := sb.String(), "\x1b[35mDEBUGGER\x1b[0m\n"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
