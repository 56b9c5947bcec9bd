package ast

// Optimize simplifies a freshly parsed program in place: adjacent text
// parts of strings are coalesced and redundant nested parentheses are
// removed.
func Optimize(prog *Program) *Program {
	Inspect(prog.Body, func(n Node) bool {
		switch n := n.(type) {
		case *NodeString:
			n.Parts = coalesceParts(n.Parts)
		case *NodeParen:
			for {
				inner, ok := n.X.(*NodeParen)
				if !ok {
					break
				}
				n.X = inner.X
			}
		}
		return true
	})
	return prog
}

// coalesceParts concatenates consecutive text parts of a string literal and
// drops empty ones. A string always keeps at least one part.
func coalesceParts(parts []StringPart) []StringPart {
	out := parts[:0]
	for _, p := range parts {
		if p.Expr == nil {
			if p.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Expr == nil {
				out[n-1].Text += p.Text
				continue
			}
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		out = append(out, StringPart{})
	}
	return out
}
