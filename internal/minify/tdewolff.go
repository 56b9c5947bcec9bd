package minify

import (
	"errors"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/parse/v2"
)

const mediaTypeJS = "application/javascript"

type tdewolffMinifier struct {
	m *tdminify.M
}

// NewTdewolff returns a minifier backed by tdewolff/minify's JavaScript
// minifier.
func NewTdewolff() Minifier {
	m := tdminify.New()
	m.Add(mediaTypeJS, &js.Minifier{})
	return &tdewolffMinifier{m: m}
}

func (t *tdewolffMinifier) Minify(code string) (Result, error) {
	out, err := t.m.String(mediaTypeJS, code)
	if err != nil {
		merr := &Error{Backend: Tdewolff, Message: err.Error()}
		var perr *parse.Error
		if errors.As(err, &perr) {
			merr.Message = perr.Message
			merr.Line = perr.Line
			merr.Column = perr.Column
		}
		return Result{}, merr
	}
	out, err = oneLine(out)
	if err != nil {
		return Result{}, &Error{Backend: Tdewolff, Message: err.Error()}
	}
	return Result{Code: out}, nil
}
