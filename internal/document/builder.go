// Package document builds a single self-contained HTML report file by
// appending rendered fragments at an insertion marker.
//
// The file on disk always holds exactly one Marker. Each append reads
// the whole file, replaces the marker with the fragment followed by a
// fresh marker, and writes the whole file back. A Builder is not safe
// for concurrent use; callers must serialize calls.
package document

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/unbound-force/edareport/internal/assets"
	"github.com/unbound-force/edareport/internal/fragment"
	"github.com/unbound-force/edareport/internal/theme"
)

// Default fragment sizing.
const (
	DefaultMaxRows   = 20
	DefaultMaxHeight = 500
)

// Options configures New.
type Options struct {
	// Assets supplies the stylesheet and script. Nil fetches them from
	// the default remote locations.
	Assets assets.Source

	// Theme styles every chart. Zero fields take theme.Default values.
	Theme theme.Theme

	// Logger receives debug output. Nil uses log.Default().
	Logger *log.Logger

	// Now stamps the banner. Nil uses time.Now.
	Now func() time.Time
}

// Builder owns one output document.
type Builder struct {
	path    string
	meta    Meta
	theme   theme.Theme
	logger  *log.Logger
	now     func() time.Time
	outline []fragment.Entry
}

// New fetches the assets, writes the skeleton to path (creating or
// truncating it) and appends the metadata banner. On asset failure no
// file is written.
func New(ctx context.Context, meta Meta, path string, opts Options) (*Builder, error) {
	if path == "" {
		return nil, invalidArg("new", "path is empty")
	}
	src := opts.Assets
	if src == nil {
		src = assets.NewHTTPSource("", "", 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	bundle, err := src.Fetch(ctx)
	if err != nil {
		return nil, newError(ErrAssetFetch, "new", path, err)
	}
	if strings.Contains(bundle.CSS, Marker) || strings.Contains(bundle.JS, Marker) {
		return nil, newError(ErrMarkerInvariant, "new", path, fmt.Errorf("assets contain the insertion marker"))
	}

	skeleton, err := Skeleton(meta, bundle.CSS, bundle.JS)
	if err != nil {
		return nil, newError(ErrIO, "new", path, err)
	}
	if err := writeFile(path, skeleton); err != nil {
		return nil, newError(ErrIO, "new", path, err)
	}
	logger.Debug("wrote report skeleton", "path", path, "bytes", len(skeleton))

	b := &Builder{
		path:   path,
		meta:   meta,
		theme:  opts.Theme.WithDefaults(),
		logger: logger,
		now:    now,
	}
	banner, err := Banner(meta, now())
	if err != nil {
		return nil, newError(ErrIO, "new", path, err)
	}
	if err := b.AppendFragment(fragment.Banner, meta.Title, 0, banner); err != nil {
		return nil, err
	}
	return b, nil
}

// Path returns the document path.
func (b *Builder) Path() string { return b.path }

// Meta returns the report metadata.
func (b *Builder) Meta() Meta { return b.meta }

// Theme returns the theme applied to charts.
func (b *Builder) Theme() theme.Theme { return b.theme }

// Logger returns the builder's logger.
func (b *Builder) Logger() *log.Logger { return b.logger }

// Outline returns the appended fragments in order.
func (b *Builder) Outline() []fragment.Entry {
	return append([]fragment.Entry(nil), b.outline...)
}

// Append inserts raw HTML at the marker.
func (b *Builder) Append(html string) error {
	return b.AppendFragment(fragment.Unknown, "", 0, html)
}

// AppendFragment inserts html at the marker and records an outline
// entry for it. The file is left untouched on any failure.
func (b *Builder) AppendFragment(kind fragment.Kind, title string, cards int, html string) error {
	if strings.Contains(html, Marker) {
		return newError(ErrMarkerInvariant, "append", b.path, fmt.Errorf("fragment contains the insertion marker"))
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return newError(ErrIO, "append", b.path, err)
	}
	doc := string(data)
	if n := strings.Count(doc, Marker); n != 1 {
		return newError(ErrMarkerInvariant, "append", b.path, fmt.Errorf("found %d markers, want 1", n))
	}
	doc = strings.Replace(doc, Marker, html+"\n"+Marker, 1)
	if err := writeFile(b.path, doc); err != nil {
		return newError(ErrIO, "append", b.path, err)
	}

	e := fragment.NewEntry(len(b.outline), kind, title, len(html))
	e.Cards = cards
	b.outline = append(b.outline, e)
	b.logger.Debug("appended fragment", "kind", kind, "id", e.ID, "bytes", len(html))
	return nil
}

// writeFile replaces path atomically via a temporary sibling.
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// AddSection appends a section heading, or returns it without
// appending when returnHTML is set. level must be in [1,5]; an empty
// icon uses DefaultSectionIcon.
func (b *Builder) AddSection(text string, level int, icon string, returnHTML bool) (string, error) {
	html, err := Section(text, level, icon)
	if err != nil {
		return "", err
	}
	if returnHTML {
		return html, nil
	}
	if err := b.AppendFragment(fragment.Section, text, 0, html); err != nil {
		return "", err
	}
	b.outline[len(b.outline)-1].Level = level
	return "", nil
}

// AddRow appends fragments side by side. classes may be omitted (the
// theme's row class is used), a single class shared by every fragment,
// or one class per fragment.
func (b *Builder) AddRow(fragments []string, classes ...string) error {
	html, err := Row(fragments, classes, b.theme.RowClass)
	if err != nil {
		return err
	}
	return b.AppendFragment(fragment.Row, "", len(fragments), html)
}

// AddColumn appends content as a full-width row, optionally in a card.
func (b *Builder) AddColumn(content string, card bool) error {
	html, err := Column(content, card)
	if err != nil {
		return newError(ErrIO, "add column", b.path, err)
	}
	return b.AppendFragment(fragment.Column, "", 0, html)
}

// DataframeOptions configures AddDataframe.
type DataframeOptions struct {
	// Title is shown in the card header. Empty omits the header.
	Title string

	// MaxRows caps the rendered rows. Zero means DefaultMaxRows;
	// negative renders every row.
	MaxRows int

	// MaxHeight is the scroll height in pixels. Zero means
	// DefaultMaxHeight.
	MaxHeight int

	// Explanation fills the explanation button's details.
	Explanation string

	// ReturnHTML returns the fragment instead of appending it.
	ReturnHTML bool

	// NoRow omits the surrounding row and column wrappers.
	NoRow bool
}

// AddDataframe renders a table inside a scrollable card.
func (b *Builder) AddDataframe(t Tabular, opts DataframeOptions) (string, error) {
	if isNil(t) {
		return "", newError(ErrTypeMismatch, "add dataframe", b.path, fmt.Errorf("table is nil"))
	}
	maxRows := opts.MaxRows
	if maxRows == 0 {
		maxRows = DefaultMaxRows
	}
	maxHeight := opts.MaxHeight
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	table, err := Table(t, maxRows)
	if err != nil {
		return "", err
	}
	html, err := Card(opts.Title, template.HTML(table), maxHeight, opts.Explanation)
	if err != nil {
		return "", newError(ErrIO, "add dataframe", b.path, err)
	}
	return b.finish(fragment.Table, opts.Title, html, opts.ReturnHTML, opts.NoRow)
}

// ChartOptions configures AddChart.
type ChartOptions struct {
	Explanation string
	ReturnHTML  bool
	NoRow       bool
}

// AddChart applies the builder's theme to fig and embeds it in a card.
func (b *Builder) AddChart(fig Figure, opts ChartOptions) (string, error) {
	if isNil(fig) {
		return "", newError(ErrTypeMismatch, "add chart", b.path, fmt.Errorf("figure is nil"))
	}
	fig.ApplyTheme(b.theme)
	body, err := fig.EmbeddableHTML()
	if err != nil {
		return "", newError(ErrInvalidArgument, "add chart", b.path, err)
	}
	html, err := Card("", body, 0, opts.Explanation)
	if err != nil {
		return "", newError(ErrIO, "add chart", b.path, err)
	}
	return b.finish(fragment.Chart, fig.Title(), html, opts.ReturnHTML, opts.NoRow)
}

// finish wraps a card in a row unless noRow, then returns or appends it.
func (b *Builder) finish(kind fragment.Kind, title, card string, returnHTML, noRow bool) (string, error) {
	html := card
	if !noRow {
		var err error
		html, err = Column(card, false)
		if err != nil {
			return "", newError(ErrIO, string(kind), b.path, err)
		}
	}
	if returnHTML {
		return html, nil
	}
	return "", b.AppendFragment(kind, title, 0, html)
}
