// Package theme defines the visual options shared by every fragment
// and chart in a report.
package theme

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Margin is a chart margin in pixels.
type Margin struct {
	Top    int `mapstructure:"top" json:"top"`
	Bottom int `mapstructure:"bottom" json:"bottom"`
	Left   int `mapstructure:"left" json:"left"`
	Right  int `mapstructure:"right" json:"right"`
}

// Theme is the explicit visual configuration passed to the document
// builder and the chart renderers.
type Theme struct {
	// TitleFontSize is the chart title size in points.
	TitleFontSize float64 `mapstructure:"title_font_size" json:"title_font_size"`

	// TitleFontWeight is the CSS weight used for chart and grid titles.
	TitleFontWeight int `mapstructure:"title_font_weight" json:"title_font_weight"`

	// TitlePadLeft offsets left-aligned chart titles.
	TitlePadLeft int `mapstructure:"title_pad_left" json:"title_pad_left"`

	// AxisFontSize is the size of axis labels and tick labels.
	AxisFontSize float64 `mapstructure:"axis_font_size" json:"axis_font_size"`

	// Background is the chart background as a #rrggbb hex string.
	Background string `mapstructure:"background" json:"background"`

	// Foreground is the color of text and axes.
	Foreground string `mapstructure:"foreground" json:"foreground"`

	// Palette holds the series colors, cycled in order.
	Palette []string `mapstructure:"palette" json:"palette"`

	// CategoricalMargin is applied to count and donut charts.
	CategoricalMargin Margin `mapstructure:"categorical_margin" json:"categorical_margin"`

	// NumericMargin is applied to histogram, box and violin charts.
	NumericMargin Margin `mapstructure:"numeric_margin" json:"numeric_margin"`

	// RowClass is the default column class used by AddRow.
	RowClass string `mapstructure:"row_class" json:"row_class"`

	// CategoricalClass is the default card width class for count and
	// donut grids.
	CategoricalClass string `mapstructure:"categorical_class" json:"categorical_class"`

	// NumericClass is the default card width class for histogram, box
	// and violin grids.
	NumericClass string `mapstructure:"numeric_class" json:"numeric_class"`
}

// Default returns the stock report theme: white background, 18pt
// left-aligned titles and the Bootstrap-style responsive classes.
func Default() Theme {
	return Theme{
		TitleFontSize:     18,
		TitleFontWeight:   500,
		TitlePadLeft:      10,
		AxisFontSize:      10,
		Background:        "#ffffff",
		Foreground:        "#2a3f5f",
		Palette:           []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52"},
		CategoricalMargin: Margin{Top: 50, Bottom: 10, Left: 10, Right: 10},
		NumericMargin:     Margin{Top: 20, Bottom: 10, Left: 10, Right: 10},
		RowClass:          "col-xl-6 col-lg-6 col-md-12 col-sm col-xs",
		CategoricalClass:  "col-xl-6 col-lg-6 col-md-6 col-sm-12 col-xs",
		NumericClass:      "col-xl-3 col-lg-4 col-md-6 col-sm-6 col-xs",
	}
}

// WithDefaults fills every zero field of t from Default.
func (t Theme) WithDefaults() Theme {
	d := Default()
	if t.TitleFontSize <= 0 {
		t.TitleFontSize = d.TitleFontSize
	}
	if t.TitleFontWeight <= 0 {
		t.TitleFontWeight = d.TitleFontWeight
	}
	if t.TitlePadLeft < 0 {
		t.TitlePadLeft = 0
	}
	if t.AxisFontSize <= 0 {
		t.AxisFontSize = d.AxisFontSize
	}
	if t.Background == "" {
		t.Background = d.Background
	}
	if t.Foreground == "" {
		t.Foreground = d.Foreground
	}
	if len(t.Palette) == 0 {
		t.Palette = d.Palette
	}
	if t.CategoricalMargin == (Margin{}) {
		t.CategoricalMargin = d.CategoricalMargin
	}
	if t.NumericMargin == (Margin{}) {
		t.NumericMargin = d.NumericMargin
	}
	if t.RowClass == "" {
		t.RowClass = d.RowClass
	}
	if t.CategoricalClass == "" {
		t.CategoricalClass = d.CategoricalClass
	}
	if t.NumericClass == "" {
		t.NumericClass = d.NumericClass
	}
	return t
}

// Validate reports the first color field that is not a #rrggbb value.
func (t Theme) Validate() error {
	if _, err := ParseHex(t.Background); err != nil {
		return fmt.Errorf("theme background: %w", err)
	}
	if _, err := ParseHex(t.Foreground); err != nil {
		return fmt.Errorf("theme foreground: %w", err)
	}
	for i, c := range t.Palette {
		if _, err := ParseHex(c); err != nil {
			return fmt.Errorf("theme palette[%d]: %w", i, err)
		}
	}
	return nil
}

// Color returns the i-th palette color, wrapping around the palette.
func (t Theme) Color(i int) color.RGBA {
	if len(t.Palette) == 0 {
		t = t.WithDefaults()
	}
	c, err := ParseHex(t.Palette[i%len(t.Palette)])
	if err != nil {
		return color.RGBA{R: 99, G: 110, B: 250, A: 255}
	}
	return c
}

// BackgroundColor returns the parsed background, white on error.
func (t Theme) BackgroundColor() color.RGBA {
	c, err := ParseHex(t.Background)
	if err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return c
}

// ForegroundColor returns the parsed foreground, black on error.
func (t Theme) ForegroundColor() color.RGBA {
	c, err := ParseHex(t.Foreground)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return c
}

// ParseHex parses "#rrggbb" (the leading # is optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// WithAlpha returns c with its alpha channel scaled by opacity in [0,1].
// The result is premultiplied, as image/color requires.
func WithAlpha(c color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * opacity),
		G: uint8(float64(c.G) * opacity),
		B: uint8(float64(c.B) * opacity),
		A: uint8(255 * opacity),
	}
}
