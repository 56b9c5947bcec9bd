package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "logfmt")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("compiled", "path", "ok.coffee")
	logger.Warn("failed", "path", "bad.coffee")

	out := buf.String()
	if strings.Contains(out, "ok.coffee") {
		t.Errorf("expected info record to be filtered, got %q", out)
	}
	for _, want := range []string{"msg=failed", "path=bad.coffee"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		level, format string
	}{
		{"loud", "text"},
		{"info", "xml"},
	}
	for _, tt := range tests {
		if _, err := New(&bytes.Buffer{}, tt.level, tt.format); err == nil {
			t.Errorf("New(%q, %q): expected error", tt.level, tt.format)
		}
	}
}
