package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/unbound-force/edareport/internal/fragment"
)

// titleKinds maps default chart title prefixes to the fragment kind
// that produces them. Longer prefixes come first.
var titleKinds = []struct {
	prefix string
	kind   fragment.Kind
}{
	{"Histogram of Numerical Features", fragment.HistoGrid},
	{"Pairplot of ", fragment.PairGrid},
	{"Boxplot of ", fragment.BoxplotGrid},
	{"Density Plot of ", fragment.DensityGrid},
	{"Count Plot of ", fragment.CountGrid},
	{"Donut Chart of ", fragment.DonutGrid},
	{"Histogram of ", fragment.HistogramGrid},
	{"Box Plot of ", fragment.BoxGrid},
	{"Violin Plot of ", fragment.ViolinGrid},
}

// ReadOutline parses the report at path. See ParseOutline.
func ReadOutline(path string) (fragment.Outline, error) {
	f, err := os.Open(path)
	if err != nil {
		return fragment.Outline{}, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()
	o, err := ParseOutline(f)
	if err != nil {
		return fragment.Outline{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	o.Metadata.Path = path
	return o, nil
}

// ParseOutline recovers the fragment outline of a finished report from
// its HTML. Kinds are inferred from the markup each fragment renderer
// emits, so charts with custom titles may be reported with a generic
// kind.
func ParseOutline(r io.Reader) (fragment.Outline, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return fragment.Outline{}, err
	}
	container := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, "container-fluid")
	})
	if container == nil {
		return fragment.Outline{}, fmt.Errorf("no report container found")
	}

	var o fragment.Outline
	for _, n := range elements(container) {
		if n.Data == "content" {
			continue
		}
		kind, title, level, cards := classify(n)
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil {
			return fragment.Outline{}, err
		}
		e := fragment.NewEntry(len(o.Entries), kind, title, buf.Len())
		e.Level = level
		e.Cards = cards
		o.Entries = append(o.Entries, e)
	}
	return o, nil
}

func classify(n *html.Node) (kind fragment.Kind, title string, level, cards int) {
	switch {
	case hasClass(n, "report-header"):
		return fragment.Banner, bannerTitle(n), 0, 0
	case hasClass(n, "report-section"):
		for _, c := range classes(n) {
			if l, ok := strings.CutPrefix(c, "level-"); ok {
				level, _ = strconv.Atoi(l)
			}
		}
		return fragment.Section, text(findClass(n, "title")), level, 0
	case !hasClass(n, "row"):
		return fragment.Unknown, "", 0, 0
	}

	children := elements(n)
	if find(n, isElement(atom.Table, "dataframe")) != nil {
		return fragment.Table, text(findClass(n, "card-header")), 0, 0
	}
	if m := findClass(n, "markdown"); m != nil {
		return fragment.Markdown, text(find(m, isHeading)), 0, 0
	}
	if len(children) > 0 && hasClass(children[0], "card-header") {
		cards = len(children) - 1
		return gridKind(n), text(children[0]), 0, cards
	}
	if len(children) == 1 && hasClass(children[0], "col") {
		if findClass(n, "chart") == nil {
			return fragment.Column, "", 0, 0
		}
		title = chartTitle(n)
		if k, ok := kindOf(title); ok && fragment.FamilyOf(k) == fragment.Composite {
			return k, title, 0, 0
		}
		return fragment.Chart, title, 0, 0
	}
	if len(children) > 0 && allCharts(children) {
		return gridKind(n), "", 0, len(children)
	}
	return fragment.Row, "", 0, len(children)
}

func bannerTitle(n *html.Node) string {
	t := findClass(n, "title")
	if icon := findClass(t, "icon"); icon != nil {
		return strings.TrimSpace(strings.TrimPrefix(text(t), text(icon)))
	}
	return text(t)
}

// gridKind infers a card grid's kind from its first chart title.
func gridKind(n *html.Node) fragment.Kind {
	if k, ok := kindOf(chartTitle(n)); ok && fragment.FamilyOf(k) == fragment.CardGrid {
		return k
	}
	return fragment.Unknown
}

func kindOf(title string) (fragment.Kind, bool) {
	for _, tk := range titleKinds {
		if strings.HasPrefix(title, tk.prefix) {
			return tk.kind, true
		}
	}
	return "", false
}

// chartTitle returns the first text inside a chart that starts with a
// known title prefix, or the first text of the chart otherwise.
func chartTitle(n *html.Node) string {
	c := findClass(n, "chart")
	if c == nil {
		return ""
	}
	var first string
	found := find(c, func(t *html.Node) bool {
		if t.Type != html.TextNode {
			return false
		}
		s := strings.TrimSpace(t.Data)
		if s == "" {
			return false
		}
		if first == "" {
			first = s
		}
		_, ok := kindOf(s)
		return ok
	})
	if found != nil {
		return strings.TrimSpace(found.Data)
	}
	return first
}

func allCharts(children []*html.Node) bool {
	for _, c := range children {
		if findClass(c, "chart") == nil {
			return false
		}
	}
	return true
}

func isHeading(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func isElement(a atom.Atom, class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == a && hasClass(n, class) }
}

func elements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func classes(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func findClass(n *html.Node, class string) *html.Node {
	return find(n, func(c *html.Node) bool { return hasClass(c, class) })
}

// find returns the first node under n, n included, in document order
// that satisfies pred.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, pred); m != nil {
			return m
		}
	}
	return nil
}

func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
