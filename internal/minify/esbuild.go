package minify

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

type esbuildMinifier struct {
	opts api.TransformOptions
}

// NewEsbuild returns a minifier that runs esbuild's transform with every
// minification enabled and legal comments dropped. Template literals are
// lowered to string concatenation so no line break survives in the output.
func NewEsbuild() Minifier {
	return &esbuildMinifier{
		opts: api.TransformOptions{
			Loader:            api.LoaderJS,
			MinifyWhitespace:  true,
			MinifyIdentifiers: true,
			MinifySyntax:      true,
			LegalComments:     api.LegalCommentsNone,
			Supported:         map[string]bool{"template-literal": false},
		},
	}
}

func (m *esbuildMinifier) Minify(code string) (Result, error) {
	result := api.Transform(code, m.opts)
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		err := &Error{Backend: Esbuild, Message: msg.Text}
		if loc := msg.Location; loc != nil {
			err.Line = loc.Line
			err.Column = loc.Column + 1
		}
		return Result{}, err
	}
	return Result{Code: strings.TrimRight(string(result.Code), "\n")}, nil
}
