package runner

import (
	"io"
	"sync"
)

// output serializes lines onto a writer. Each line is written whole with
// a single Write. In ordered mode a line is held back until every earlier
// path has finished.
type output struct {
	mu       sync.Mutex
	w        io.Writer
	ordered  bool
	writeErr error

	// ordered mode: pending[i] is the line for path i once finished
	next    int
	done    []bool
	pending []*string
}

func newOutput(w io.Writer, n int, ordered bool) *output {
	o := &output{w: w, ordered: ordered}
	if ordered {
		o.done = make([]bool, n)
		o.pending = make([]*string, n)
	}
	return o
}

// line records the line for path i.
func (o *output) line(i int, s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.ordered {
		o.write(s)
		return
	}
	o.done[i] = true
	o.pending[i] = &s
	o.flush()
}

// skip records that path i produced no line.
func (o *output) skip(i int) {
	if !o.ordered {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done[i] = true
	o.flush()
}

func (o *output) flush() {
	for o.next < len(o.done) && o.done[o.next] {
		if s := o.pending[o.next]; s != nil {
			o.write(*s)
			o.pending[o.next] = nil
		}
		o.next++
	}
}

func (o *output) write(s string) {
	if o.writeErr != nil {
		return
	}
	b := make([]byte, 0, len(s)+1)
	b = append(b, s...)
	b = append(b, '\n')
	_, o.writeErr = o.w.Write(b)
}

func (o *output) err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.writeErr
}
