package runner

import (
	"fmt"
	"strings"
)

// PathError is the failure of a single path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// BatchError lists the paths of a run that failed, in input order.
type BatchError struct {
	Failures []*PathError
	// Total is the number of paths in the run.
	Total int
}

func newBatchError(paths []string, errs []error) error {
	var failures []*PathError
	for i, err := range errs {
		if err != nil {
			failures = append(failures, &PathError{Path: paths[i], Err: err})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &BatchError{Failures: failures, Total: len(paths)}
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d paths failed", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		sb.WriteString("\n\t")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
