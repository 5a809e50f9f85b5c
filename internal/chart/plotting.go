package chart

import (
	"bytes"
	"fmt"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/unbound-force/edareport/internal/theme"
)

// px converts CSS pixels to vg lengths (96 px per 72 pt).
func px(n float64) vg.Length { return vg.Length(n * 0.75) }

// sans returns the Liberation Sans face at size points. Weights of 600
// and above select the bold face.
func sans(size float64, weight int) font.Font {
	f := font.Font{Typeface: "Liberation", Variant: "Sans", Size: vg.Points(size)}
	if weight >= 600 {
		f.Weight = xfont.WeightBold
	}
	return f
}

// newPlot returns an untitled plot whose axes and background follow th.
func newPlot(th theme.Theme, axisSize float64) *plot.Plot {
	p := plot.New()
	fg := th.ForegroundColor()
	p.BackgroundColor = th.BackgroundColor()

	f := sans(axisSize, 400)
	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Color = fg
		a.Tick.Color = fg
		a.Tick.Label.Font = f
		a.Tick.Label.Color = fg
		a.Label.TextStyle.Font = f
		a.Label.TextStyle.Color = fg
	}
	p.Title.TextStyle.Font = sans(axisSize+1, th.TitleFontWeight)
	p.Title.TextStyle.Color = fg
	return p
}

func titleStyle(th theme.Theme) text.Style {
	return text.Style{
		Color:   th.ForegroundColor(),
		Font:    sans(th.TitleFontSize, th.TitleFontWeight),
		XAlign:  text.XLeft,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

// drawTitle draws a left-aligned title at the top of dc and returns the
// vertical space it takes.
func drawTitle(dc draw.Canvas, title string, th theme.Theme) vg.Length {
	if title == "" {
		return 0
	}
	sty := titleStyle(th)
	pad := px(6)
	dc.FillText(sty, vg.Point{X: dc.Min.X + px(float64(th.TitlePadLeft)), Y: dc.Max.Y - pad}, title)
	return sty.Height(title) + 2*pad
}

// drawFramed fills dc with the background, draws the left-aligned
// title and draws p inside the margins below it.
func drawFramed(dc draw.Canvas, p *plot.Plot, title string, th theme.Theme, m theme.Margin) {
	dc.SetColor(th.BackgroundColor())
	dc.Fill(dc.Rectangle.Path())
	top := max(px(float64(m.Top)), drawTitle(dc, title, th))
	p.Draw(draw.Crop(dc, px(float64(m.Left)), -px(float64(m.Right)), px(float64(m.Bottom)), -top))
}

// renderSVG draws onto a width x height pixel SVG canvas and returns
// the markup without its XML prolog.
func renderSVG(width, height int, fn func(dc draw.Canvas)) (string, error) {
	c := vgsvg.New(px(float64(width)), px(float64(height)))
	fn(draw.New(c))
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("writing svg: %w", err)
	}
	return stripProlog(buf.String()), nil
}
