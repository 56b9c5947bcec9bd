package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	add := writeFile(t, dir, "add.coffee", "add = (a, b) -> a + b\n")
	sq := writeFile(t, dir, "square.coffee", "square = (x) -> x * x\n")
	multi := writeFile(t, dir, "multi.coffee", "greeting = \"\"\"\n  hello\n  #{name}\n  \"\"\"\nline = \"a\\nb\"\n")

	for _, minifier := range []string{"esbuild", "tdewolff"} {
		t.Run(minifier, func(t *testing.T) {
			code, stdout, stderr := run("--minifier", minifier, add, sq, multi)
			if code != 0 {
				t.Fatalf("expected exit 0, got %d; stderr:\n%s", code, stderr)
			}
			lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
			if len(lines) != 3 {
				t.Fatalf("expected 3 lines, got %q", stdout)
			}
			if !strings.Contains(lines[0], "add") || !strings.Contains(lines[1], "square") || !strings.Contains(lines[2], "greeting") {
				t.Errorf("expected lines in argument order, got %q", lines)
			}
		})
	}
}

func TestRunEmpty(t *testing.T) {
	code, stdout, stderr := run()
	if code != 0 || stdout != "" || stderr != "" {
		t.Errorf("expected silent success, got code %d stdout %q stderr %q", code, stdout, stderr)
	}
}

func TestRunNoMinify(t *testing.T) {
	add := writeFile(t, t.TempDir(), "add.coffee", "add = (a, b) -> a + b\n")
	code, stdout, stderr := run("--no-minify", add)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr:\n%s", code, stderr)
	}
	want := "var add;\n\nadd = function(a, b) {\n  return a + b;\n};\n"
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Errorf("expected output diff (-want +got):\n%s", diff)
	}
}

func TestRunFailure(t *testing.T) {
	dir := t.TempDir()
	add := writeFile(t, dir, "add.coffee", "add = (a, b) -> a + b\n")
	bad := writeFile(t, dir, "bad.coffee", "a = (1\n")
	missing := filepath.Join(dir, "missing.coffee")

	code, stdout, stderr := run(missing, add, bad)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if n := strings.Count(stdout, "\n"); n != 1 || !strings.Contains(stdout, "add") {
		t.Errorf("expected the one good file printed, got %q", stdout)
	}
	for _, want := range []string{missing, bad} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %s named on stderr:\n%s", want, stderr)
		}
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--bogus"}, "unknown flag: --bogus"},
		{[]string{"--jobs", "0", "a.coffee"}, "invalid --jobs 0: must be at least 1"},
		{[]string{"--minifier", "uglify"}, `invalid --minifier "uglify": must be one of esbuild, tdewolff`},
		{[]string{"--log-level", "loud"}, `invalid --log-level "loud"`},
		{[]string{"--log-format", "xml"}, `invalid --log-format "xml"`},
		{[]string{"--tokens", "--print-ast"}, "--print-ast and --tokens cannot be used together"},
		{[]string{"--color", "a.coffee"}, "--color requires --print-ast"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, stdout, stderr := run(tt.args...)
			if code != 2 {
				t.Errorf("expected exit 2, got %d", code)
			}
			if stdout != "" {
				t.Errorf("expected no output, got %q", stdout)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected %q in stderr:\n%s", tt.want, stderr)
			}
		})
	}
}

func TestRunTokens(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.coffee", "x = 1\n")
	code, stdout, stderr := run("--tokens", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "IDENT") || !strings.Contains(stdout, "NUMBER") {
		t.Errorf("expected token listing, got:\n%s", stdout)
	}
}

func TestRunPrintASTColor(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.coffee", "f = -> 1\n")
	for _, tt := range []struct {
		args  []string
		color bool
	}{
		{[]string{"--print-ast", path}, false},
		{[]string{"--print-ast", "--color", path}, true},
	} {
		code, stdout, stderr := run(tt.args...)
		if code != 0 {
			t.Fatalf("expected exit 0, got %d; stderr:\n%s", code, stderr)
		}
		if got := strings.Contains(stdout, "\x1b["); got != tt.color {
			t.Errorf("%v: expected color %v, got output %q", tt.args, tt.color, stdout)
		}
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := run("--version")
	if code != 0 {
		t.Errorf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(stdout, "coffeemin version ") {
		t.Errorf("expected version line, got %q", stdout)
	}
}
