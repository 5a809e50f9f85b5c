package document

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/unbound-force/edareport/internal/fragment"
)

// Raw HTML in Markdown input is omitted by the renderer, so a block can
// never smuggle in an insertion marker.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders a Markdown block to HTML and reports the text of its
// first heading, if any.
func Markdown(source string) (template.HTML, string, error) {
	src := []byte(source)
	root := md.Parser().Parse(text.NewReader(src))

	var heading string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			heading = plainText(h, src)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, root); err != nil {
		return "", "", err
	}
	return template.HTML(`<div class="markdown">` + buf.String() + `</div>`), heading, nil
}

func plainText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.WriteString(plainText(c, src))
	}
	return buf.String()
}

// AddMarkdown renders a Markdown block into a full-width row,
// optionally inside a card.
func (b *Builder) AddMarkdown(source string, card bool) error {
	body, heading, err := Markdown(source)
	if err != nil {
		return newError(ErrInvalidArgument, "add markdown", b.path, err)
	}
	html, err := Column(string(body), card)
	if err != nil {
		return newError(ErrIO, "add markdown", b.path, err)
	}
	return b.AppendFragment(fragment.Markdown, heading, 0, html)
}
