package command

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adhocteam/coffeemin/internal/source"
)

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrintTokens(t *testing.T) {
	path := writeFile(t, "x.coffee", "x = 1")
	var buf bytes.Buffer
	if err := PrintTokens(&buf, path); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got := lines[0]; got != "# "+path {
		t.Errorf("expected header line, got %q", got)
	}
	var got [][]string
	for _, line := range lines[1:4] {
		got = append(got, strings.Fields(line))
	}
	want := [][]string{
		{"1:1", "IDENT", "x"},
		{"1:3", "PUNCT", "="},
		{"1:5", "NUMBER", "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expected tokens diff (-want +got):\n%s", diff)
	}
	if last := strings.Fields(lines[len(lines)-1]); len(last) < 2 || last[1] != "EOF" {
		t.Errorf("expected EOF last, got %q", lines[len(lines)-1])
	}
}

func TestPrettyPrintAST(t *testing.T) {
	path := writeFile(t, "add.coffee", "add = (a, b) -> a + b\n")
	var buf bytes.Buffer
	if err := PrettyPrintAST(&buf, path, false); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# "+path+"\n") {
		t.Errorf("expected header, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected no color codes")
	}
}

func TestPrettyPrintASTColor(t *testing.T) {
	path := writeFile(t, "add.coffee", "add = (a, b) -> a + b\n")
	var buf bytes.Buffer
	if err := PrettyPrintAST(&buf, path, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[34mFUNC") {
		t.Errorf("expected a colored FUNC label, got %q", buf.String())
	}
}

func TestPrettyPrintASTErrors(t *testing.T) {
	var buf bytes.Buffer
	err := PrettyPrintAST(&buf, writeFile(t, "bad.coffee", "a ="), false)
	var serr *source.Error
	if !errors.As(err, &serr) {
		t.Errorf("expected *source.Error, got %T: %v", err, err)
	}

	err = PrettyPrintAST(&buf, filepath.Join(t.TempDir(), "missing.coffee"), false)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
