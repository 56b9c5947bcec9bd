// Package command implements the debugging commands of coffeemin, which
// show the intermediate forms of a source file.
package command

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/adhocteam/coffeemin/internal/ast"
	"github.com/adhocteam/coffeemin/internal/compile"
	"github.com/adhocteam/coffeemin/internal/lexer"
	"github.com/adhocteam/coffeemin/internal/parser"
	"github.com/adhocteam/coffeemin/internal/source"
)

func readSource(path string) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return compile.Extract(compile.KindOf(path), string(text)), nil
}

// PrettyPrintAST writes the syntax tree of the file at path to w.
func PrettyPrintAST(w io.Writer, path string, color bool) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	prog, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("parsing file: %w", err)
	}

	fmt.Fprintf(w, "# %s\n", path)
	ast.NewPrettyPrinter(w, color).PrettyPrint(prog)

	return nil
}

// PrintTokens writes the tokens of the file at path to w, one per line
// with its position and kind.
func PrintTokens(w io.Writer, path string) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	toks, err := lexer.Lex(src)
	if err != nil {
		return fmt.Errorf("lexing file: %w", err)
	}

	fmt.Fprintf(w, "# %s\n", path)
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	for _, tok := range toks {
		line, col := source.Position(src, tok.Span.Start)
		fmt.Fprintf(tw, "%d:%d\t%s\t%s\n", line, col, tok.Kind, tokenText(tok))
	}
	return tw.Flush()
}

func tokenText(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.EOF, lexer.Newline, lexer.Indent, lexer.Outdent:
		return ""
	}
	return tok.Text
}
