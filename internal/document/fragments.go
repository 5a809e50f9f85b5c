package document

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Marker is the insertion point that every document holds exactly once.
const Marker = "<content></content>"

// BannerTimeLayout formats the banner timestamp.
const BannerTimeLayout = "January 02, 2006 15:04:05"

// DefaultSectionIcon is used when AddSection gets no icon.
const DefaultSectionIcon = "📁"

// ExplanationLabel is the text of the per-card explanation button.
const ExplanationLabel = "Explanation"

// Meta is the report metadata shown in the banner.
type Meta struct {
	Title      string `yaml:"title" json:"title"`
	Author     string `yaml:"author" json:"author"`
	DataSource string `yaml:"data_source" json:"data_source"`
	Objective  string `yaml:"objective" json:"objective"`
}

// GridCard is one card of a chart grid.
type GridCard struct {
	Class string
	Body  template.HTML
}

var fragments = template.Must(template.New("fragments").Parse(fragmentTemplates))

const fragmentTemplates = `
{{- define "skeleton" -}}
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="author" content="{{.Author}}">
    <title>{{.Title}}</title>
    <style>
{{.CSS}}
    </style>
</head>
<body>
    <div class="container-fluid">
        <content></content>
    </div>
</body>
<script>
{{.JS}}
</script>
</html>
{{end -}}

{{- define "banner" -}}
<div class="report-header">
    <div class="title-bar">
        <div class="title"><span class="icon">📊</span> {{.Title}}</div>
        <div class="meta">
            <span><b>Date:</b> {{.Date}}</span>
            <span><b>Data:</b> {{.DataSource}}</span>
            <span><b>Author:</b> {{.Author}}</span>
            <span><b>Goal:</b> {{.Objective}}</span>
        </div>
    </div>
</div>
{{- end -}}

{{- define "section" -}}
<div class="report-section level-{{.Level}}">
    <div class="section-header">
        <span class="icon">{{.Icon}}</span>
        <span class="title">{{.Title}}</span>
    </div>
</div>
{{- end -}}

{{- define "row" -}}
<div class="row">
{{- range .}}
    <div class="{{.Class}}">
        {{.Body}}
    </div>
{{- end}}
</div>
{{- end -}}

{{- define "column" -}}
<div class="row">
    <div class="col">
        {{if .Card}}{{template "plain-card" .Body}}{{else}}{{.Body}}{{end}}
    </div>
</div>
{{- end -}}

{{- define "plain-card" -}}
<div class="card">
    <div style="overflow: auto;">
        {{.}}
    </div>
</div>
{{- end -}}

{{- define "card" -}}
<div class="card">
    {{if .Header}}<div class="card-header">{{.Header}}</div>{{end}}
    {{if .MaxHeight}}<div style="overflow: auto; max-height: {{.MaxHeight}}px;">
        {{.Body}}
    </div>{{else}}{{.Body}}{{end}}
    <div class="card-description">
        <button class="toggle-btn" onclick="openModal(this)" data-details="{{.Details}}">{{.Label}}</button>
    </div>
</div>
{{- end -}}

{{- define "grid" -}}
<div class="row">
    {{if .Title}}<div class="card-header">{{.Title}}</div>{{end}}
{{- range .Cards}}
    <div class="{{.Class}}">
        <div class="card">
            {{.Body}}
        </div>
    </div>
{{- end}}
</div>
{{- end -}}

{{- define "table" -}}
<table class="dataframe">
    <caption>{{.Caption}}</caption>
    <thead>
        <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
    </thead>
    <tbody>
{{- range .Rows}}
        <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
    </tbody>
</table>
{{- end -}}
`

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := fragments.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return sb.String(), nil
}

// Skeleton renders the empty document: head with the inlined stylesheet,
// a body holding the single insertion marker, and the inlined script.
func Skeleton(meta Meta, css, js string) (string, error) {
	return render("skeleton", struct {
		Title, Author string
		CSS           template.CSS
		JS            template.JS
	}{meta.Title, meta.Author, template.CSS(css), template.JS(js)})
}

// Banner renders the metadata header that opens every report.
func Banner(meta Meta, at time.Time) (string, error) {
	return render("banner", struct {
		Meta
		Date string
	}{meta, at.Format(BannerTimeLayout)})
}

// Section renders a section heading. level must be in [1,5].
func Section(text string, level int, icon string) (string, error) {
	if level < 1 || level > 5 {
		return "", invalidArg("add section", "level %d outside [1,5]", level)
	}
	if icon == "" {
		icon = DefaultSectionIcon
	}
	return render("section", struct {
		Title, Icon string
		Level       int
	}{text, icon, level})
}

// Row renders fragments side by side. classes must be empty (every
// fragment gets defaultClass), a single class shared by all fragments,
// or one class per fragment.
func Row(fragments []string, classes []string, defaultClass string) (string, error) {
	switch {
	case len(classes) == 0:
		classes = repeat(defaultClass, len(fragments))
	case len(classes) == 1:
		classes = repeat(classes[0], len(fragments))
	case len(classes) != len(fragments):
		return "", newError(ErrLengthMismatch, "add row", "",
			fmt.Errorf("%d fragments but %d classes", len(fragments), len(classes)))
	}
	cells := make([]GridCard, len(fragments))
	for i, f := range fragments {
		cells[i] = GridCard{Class: classes[i], Body: template.HTML(f)}
	}
	return render("row", cells)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// PlainCard wraps content in a scrollable card with no header.
func PlainCard(content string) (string, error) {
	return render("plain-card", template.HTML(content))
}

// Column renders content as a single full-width row, optionally inside
// a scrollable card.
func Column(content string, card bool) (string, error) {
	return render("column", struct {
		Body template.HTML
		Card bool
	}{template.HTML(content), card})
}

// Card wraps body in a card with an optional header and the explanation
// button. maxHeight > 0 makes the body scroll past that height.
func Card(header string, body template.HTML, maxHeight int, details string) (string, error) {
	return render("card", struct {
		Header    string
		Body      template.HTML
		MaxHeight int
		Details   string
		Label     string
	}{header, body, maxHeight, details, ExplanationLabel})
}

// Grid renders a titled row of chart cards. An empty title omits the
// header; no cards yields only the header.
func Grid(title string, cards []GridCard) (string, error) {
	return render("grid", struct {
		Title string
		Cards []GridCard
	}{title, cards})
}

var captionPrinter = message.NewPrinter(language.English)

// Table renders the first maxRows rows of t as an HTML table. Cells are
// escaped. maxRows < 0 renders every row.
func Table(t Tabular, maxRows int) (string, error) {
	if isNil(t) {
		return "", newError(ErrTypeMismatch, "add dataframe", "", fmt.Errorf("table is nil"))
	}
	total := t.Len()
	n := total
	if maxRows >= 0 && maxRows < n {
		n = maxRows
	}
	cols := t.Columns()
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(cols))
		for c := range cols {
			row[c] = t.Cell(r, c)
		}
		rows[r] = row
	}
	return render("table", struct {
		Columns []string
		Rows    [][]string
		Caption string
	}{cols, rows, captionPrinter.Sprintf("Showing %d of %d rows × %d columns", n, total, len(cols))})
}
