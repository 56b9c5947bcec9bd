package compile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adhocteam/coffeemin/internal/source"
)

const addJS = `var add;

add = function(a, b) {
  return a + b;
};
`

func TestCompileSource(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		want string
	}{
		{
			"plain",
			"add.coffee",
			"add = (a, b) -> a + b\n",
			addJS,
		},
		{
			"literate indented",
			"add.litcoffee",
			"# Adding\n\nThis adds numbers.\n\n    add = (a, b) -> a + b\n\nThat's all.\n",
			addJS,
		},
		{
			"literate fenced",
			"add.coffee.md",
			"Adding:\n\n```coffee\nadd = (a, b) -> a + b\n```\n",
			addJS,
		},
		{
			"html",
			"index.html",
			`<html>
<head>
  <script src="coffee-script.js"></script>
  <script>notCoffee();</script>
  <script type="text/coffeescript">
    add = (a, b) ->
      a + b
  </script>
</head>
</html>
`,
			addJS,
		},
	}

	c := New(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CompileSource(tt.file, tt.src)
			if err != nil {
				t.Fatalf("compiling %s: %v", tt.file, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("expected compiled output diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileSourceWrapped(t *testing.T) {
	got, err := New(Options{}).CompileSource("x.coffee", "x = 1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "(function() {\n") || !strings.HasSuffix(got, "}).call(this);\n") {
		t.Errorf("expected wrapped program, got %q", got)
	}
}

func TestCompileSourceMap(t *testing.T) {
	_, err := New(Options{SourceMap: true, Bare: true}).CompileSource("x.coffee", "x = 1")
	if !errors.Is(err, ErrSourceMapUnsupported) {
		t.Errorf("expected ErrSourceMapUnsupported, got %v", err)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := New(DefaultOptions()).CompileSource("bad.coffee", "a = (1")
	var serr *source.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *source.Error, got %T: %v", err, err)
	}
	if serr.Line != 1 {
		t.Errorf("expected error on line 1, got %d", serr.Line)
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "add.coffee")
	if err := os.WriteFile(path, []byte("add = (a, b) -> a + b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c := New(DefaultOptions())

	got, err := c.CompileFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(addJS, got); diff != "" {
		t.Errorf("expected compiled output diff (-want +got):\n%s", diff)
	}

	_, err = c.CompileFile(context.Background(), filepath.Join(dir, "missing.coffee"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CompileFile(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"a.coffee", KindCoffee},
		{"a.js", KindCoffee},
		{"README", KindCoffee},
		{"a.litcoffee", KindLiterate},
		{"a.coffee.md", KindLiterate},
		{"A.MD", KindLiterate},
		{"index.html", KindHTML},
		{"index.htm", KindHTML},
	}
	for _, tt := range tests {
		if got := KindOf(tt.name); got != tt.want {
			t.Errorf("KindOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDedent(t *testing.T) {
	got := dedent("\n\n    a\n      b\n\n    c\n  ")
	want := "a\n  b\n\nc\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expected dedent diff (-want +got):\n%s", diff)
	}
}
