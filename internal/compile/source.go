package compile

import (
	"strings"

	"github.com/russross/blackfriday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the container format of a source file.
type Kind int

const (
	// KindCoffee is a plain CoffeeScript file.
	KindCoffee Kind = iota
	// KindLiterate is Markdown whose code blocks are the program.
	KindLiterate
	// KindHTML is an HTML page with text/coffeescript script elements.
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindLiterate:
		return "literate"
	case KindHTML:
		return "html"
	}
	return "coffee"
}

// KindOf picks the kind of source from the file name: .litcoffee,
// .coffee.md and .md are literate, .html and .htm are HTML, anything else
// is plain CoffeeScript.
func KindOf(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".litcoffee"), strings.HasSuffix(lower, ".md"):
		return KindLiterate
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return KindHTML
	}
	return KindCoffee
}

// Extract returns the CoffeeScript program contained in src.
func Extract(kind Kind, src string) string {
	switch kind {
	case KindLiterate:
		return literateCode(src)
	case KindHTML:
		return htmlScripts(src)
	}
	return src
}

// literateCode joins the code blocks of a Markdown document, indented or
// fenced.
func literateCode(src string) string {
	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := md.Parse([]byte(src))
	var blocks []string
	root.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if entering && n.Type == blackfriday.CodeBlock {
			blocks = append(blocks, string(n.Literal))
		}
		return blackfriday.GoToNext
	})
	return strings.Join(blocks, "\n")
}

const scriptType = "text/coffeescript"

// htmlScripts joins the bodies of the <script type="text/coffeescript">
// elements of an HTML page.
func htmlScripts(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var blocks []string
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(blocks, "\n")
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			inScript = false
			if atom.Lookup(name) != atom.Script {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "type" && strings.EqualFold(string(val), scriptType) {
					inScript = true
				}
			}
		case html.TextToken:
			if inScript {
				blocks = append(blocks, dedent(string(z.Text())))
			}
		case html.EndTagToken:
			inScript = false
		}
	}
}

// dedent removes the indentation common to every non-blank line of s, and
// leading blank lines.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	prefix := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	for i, line := range lines {
		if len(line) >= prefix && prefix > 0 {
			lines[i] = line[prefix:]
		} else if strings.TrimSpace(line) == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
