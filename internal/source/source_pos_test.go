package source

import (
	"errors"
	"testing"
)

func TestPosition(t *testing.T) {
	src := "ab\ncde\n\nf"
	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{7, 3, 1},
		{8, 4, 1},
		{100, 4, 2},
		{-4, 1, 1},
	}
	for _, tt := range tests {
		line, col := Position(src, tt.offset)
		if line != tt.line || col != tt.column {
			t.Errorf("Position(%d): want %d:%d, got %d:%d", tt.offset, tt.line, tt.column, line, col)
		}
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("x = 1\ny = )", 10, "unexpected %q", ")")
	if got, want := err.Error(), `2:5: unexpected ")"`; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	var serr *Error
	if !errors.As(error(err), &serr) {
		t.Fatalf("expected *Error")
	}
	if serr.Offset != 10 {
		t.Errorf("want offset 10, got %d", serr.Offset)
	}
}

func TestSpanJoin(t *testing.T) {
	got := Span{Start: 4, End: 6}.Join(Span{Start: 1, End: 5})
	if want := (Span{Start: 1, End: 6}); got != want {
		t.Errorf("want %v, got %v", want, got)
	}
}
