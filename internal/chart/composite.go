package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"

	"github.com/unbound-force/edareport/internal/browser"
	"github.com/unbound-force/edareport/internal/layout"
	"github.com/unbound-force/edareport/internal/theme"
)

// compositeTitleHeight is the height of a composite's title tile.
const compositeTitleHeight = 30

// tile builds one cell of a composite. Returning ErrNoData leaves the
// cell blank.
type tile func(th theme.Theme) (*plot.Plot, error)

// Composite is a grid of small plots under a single left-aligned title,
// rendered as one SVG. The title tile spans the full row width and the
// cells fill rows of perRow, the last row possibly partial.
type Composite struct {
	base
	tiles  []tile
	perRow int
}

func newComposite(title string, tiles []tile, perRow, cellW, cellH int) (*Composite, error) {
	if perRow < 1 {
		return nil, fmt.Errorf("%w: got %d", layout.ErrColumnsPerRow, perRow)
	}
	rows := layout.Count(len(tiles), perRow)
	return &Composite{
		base: base{
			title:  title,
			width:  perRow * cellW,
			height: compositeTitleHeight + rows*cellH,
			theme:  theme.Default(),
		},
		tiles:  tiles,
		perRow: perRow,
	}, nil
}

// Len returns the number of cells.
func (c *Composite) Len() int { return len(c.tiles) }

// EmbeddableHTML renders the grid to an inline SVG.
func (c *Composite) EmbeddableHTML() (template.HTML, error) {
	svg, err := c.render()
	if err != nil {
		return "", err
	}
	return embed(svg)
}

// Show opens the composite in the default browser. See Show.
func (c *Composite) Show(ctx context.Context) (string, error) {
	return Show(ctx, c, browser.Open)
}

func (c *Composite) render() (string, error) {
	plots := make([]*plot.Plot, len(c.tiles))
	for i, build := range c.tiles {
		p, err := build(c.theme)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("rendering %s: cell %d: %w", c.title, i+1, err)
		}
		plots[i] = p
	}
	grid, err := layout.Rows(plots, c.perRow)
	if err != nil {
		return "", err
	}
	// plot.Align requires every row to have the same length.
	for i := range grid {
		for len(grid[i]) < c.perRow {
			grid[i] = append(grid[i], nil)
		}
	}

	return renderSVG(c.width, c.height, func(dc draw.Canvas) {
		dc.SetColor(c.theme.BackgroundColor())
		dc.Fill(dc.Rectangle.Path())
		drawTitle(dc, c.title, c.theme)
		if len(grid) == 0 {
			return
		}
		body := draw.Crop(dc, 0, 0, 0, -px(compositeTitleHeight))
		cells := plot.Align(grid, draw.Tiles{
			Rows:      len(grid),
			Cols:      c.perRow,
			PadX:      px(6),
			PadY:      px(6),
			PadTop:    px(4),
			PadBottom: px(4),
			PadLeft:   px(4),
			PadRight:  px(8),
		}, body)
		for r, row := range grid {
			for col, p := range row {
				if p != nil {
					p.Draw(cells[r][col])
				}
			}
		}
	})
}

// figure is what Show needs from a chart.
type figure interface {
	Title() string
	EmbeddableHTML() (template.HTML, error)
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>body{font-family:sans-serif;margin:1rem}.chart svg{max-width:100%;height:auto}</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Show writes fig to a standalone HTML page in the temporary directory
// and opens it with open. It returns the page path.
func Show(ctx context.Context, fig figure, open browser.Opener) (string, error) {
	body, err := fig.EmbeddableHTML()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{fig.Title(), body}); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}

	f, err := os.CreateTemp("", "edareport-*.html")
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing page: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing page: %w", err)
	}

	path, err := filepath.Abs(f.Name())
	if err != nil {
		return "", err
	}
	if err := open(ctx, "file://"+filepath.ToSlash(path)); err != nil {
		return path, fmt.Errorf("opening browser: %w", err)
	}
	return path, nil
}
