package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/unbound-force/edareport/internal/assets"
	"github.com/unbound-force/edareport/internal/chart"
	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/document"
	"github.com/unbound-force/edareport/internal/fragment"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.html")
	r, err := New(context.Background(), document.Meta{Title: "Sales", Author: "QA"}, path, document.Options{
		Assets: assets.Static{CSS: "body{}", JS: "function openModal(b){}"},
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func readDoc(t *testing.T, r *Report) string {
	t.Helper()
	data, err := os.ReadFile(r.Path())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// categoricalTable has ten categorical columns a..j.
func categoricalTable(t *testing.T) *dataset.Table {
	t.Helper()
	cols := make([]string, 10)
	rows := [][]string{make([]string, 10), make([]string, 10)}
	for i := range cols {
		cols[i] = string(rune('a' + i))
		rows[0][i] = "x"
		rows[1][i] = "y"
	}
	tbl, err := dataset.New("cats", cols, rows)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func mixedTable(t *testing.T) *dataset.Table {
	t.Helper()
	var rows [][]string
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("%d", 20+i%13),
			fmt.Sprintf("%.1f", float64(i*i%41)/3),
			[]string{"north", "south", "east"}[i%3],
		})
	}
	tbl, err := dataset.New("mixed", []string{"age", "spend", "region"}, rows)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestCountplot_MaxCountKeepsFirstColumns(t *testing.T) {
	r := newTestReport(t)
	opts := GridOptions{Title: "Categories", Selection: dataset.Selection{MaxCount: 3}}
	if _, err := r.Countplot(categoricalTable(t), opts); err != nil {
		t.Fatalf("Countplot: %v", err)
	}
	doc := readDoc(t, r)

	class := `class="` + r.Theme().CategoricalClass + `"`
	if n := strings.Count(doc, class); n != 3 {
		t.Errorf("expected 3 cards, got %d", n)
	}
	ia := strings.Index(doc, "Count Plot of a")
	ib := strings.Index(doc, "Count Plot of b")
	ic := strings.Index(doc, "Count Plot of c")
	if ia < 0 || !(ia < ib && ib < ic) {
		t.Errorf("cards out of order: a=%d b=%d c=%d", ia, ib, ic)
	}
	if strings.Contains(doc, "Count Plot of d") {
		t.Error("fourth column should be truncated")
	}

	out := r.Outline()
	last := out[len(out)-1]
	if last.Kind != fragment.CountGrid || last.Cards != 3 || last.Title != "Categories" {
		t.Errorf("outline entry = %+v", last)
	}
	if strings.Count(doc, document.Marker) != 1 {
		t.Error("document must keep exactly one marker")
	}
}

func TestDonut_IncludeWinsOverExclude(t *testing.T) {
	r := newTestReport(t)
	html, err := r.Donut(categoricalTable(t), GridOptions{
		Selection:  dataset.Selection{Include: []string{"c"}, Exclude: []string{"c"}},
		ReturnHTML: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "Donut Chart of c") {
		t.Error("included column should be drawn even when excluded")
	}
	if strings.Count(html, `id="chart-`) != 1 {
		t.Error("expected exactly one chart")
	}
	if len(r.Outline()) != 1 {
		t.Error("ReturnHTML must not append")
	}
}

func TestCardGrid_UnknownIncludeIsInvalidArgument(t *testing.T) {
	r := newTestReport(t)
	_, err := r.Box(mixedTable(t), GridOptions{Selection: dataset.Selection{Include: []string{"ghost"}}})
	if !errors.Is(err, document.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if !errors.Is(err, dataset.ErrUnknownColumn) {
		t.Errorf("expected the cause to be ErrUnknownColumn, got %v", err)
	}
}

func TestCardGrid_NilTable(t *testing.T) {
	r := newTestReport(t)
	if _, err := r.Violin(nil, GridOptions{}); !errors.Is(err, document.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestCardGrid_EmptySelectionKeepsTitle(t *testing.T) {
	r := newTestReport(t)
	if _, err := r.Histogram(categoricalTable(t), GridOptions{Title: "Numbers"}); err != nil {
		t.Fatal(err)
	}
	doc := readDoc(t, r)
	if !strings.Contains(doc, `<div class="card-header">Numbers</div>`) {
		t.Error("expected the grid title")
	}
	if strings.Contains(doc, "<svg") {
		t.Error("expected no charts")
	}
	if got := r.Outline()[1]; got.Kind != fragment.HistogramGrid || got.Cards != 0 {
		t.Errorf("outline entry = %+v", got)
	}
}

func TestNumericGrids_UseNumericClass(t *testing.T) {
	r := newTestReport(t)
	tbl := mixedTable(t)
	for _, add := range []func(*dataset.Table, GridOptions) (string, error){r.Histogram, r.Box, r.Violin} {
		html, err := add(tbl, GridOptions{ReturnHTML: true})
		if err != nil {
			t.Fatal(err)
		}
		if n := strings.Count(html, `class="`+r.Theme().NumericClass+`"`); n != 2 {
			t.Errorf("expected 2 numeric cards, got %d", n)
		}
	}
}

func TestCardGrid_ColumnWithoutValuesRendersPlaceholder(t *testing.T) {
	r := newTestReport(t)
	tbl, err := dataset.New("t", []string{"n", "c"}, [][]string{{"1", "x"}, {"2", "y"}})
	if err != nil {
		t.Fatal(err)
	}
	html, err := r.Histogram(tbl, GridOptions{Selection: dataset.Selection{Include: []string{"c"}}, ReturnHTML: true})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if !strings.Contains(html, "chart-empty") {
		t.Error("expected a no-data card")
	}
}

// TestCardGrid_EscapesCategoryText verifies that category values and
// column names reach the document as text, never as markup.
func TestCardGrid_EscapesCategoryText(t *testing.T) {
	tbl, err := dataset.New("odd", []string{"team & unit"}, [][]string{
		{document.Marker},
		{"</div><script>alert(1)</script>"},
		{"R&D"},
		{"R&D"},
	})
	if err != nil {
		t.Fatal(err)
	}

	r := newTestReport(t)
	if _, err := r.Countplot(tbl, GridOptions{}); err != nil {
		t.Fatalf("Countplot: %v", err)
	}
	if _, err := r.Donut(tbl, GridOptions{}); err != nil {
		t.Fatalf("Donut: %v", err)
	}

	doc := readDoc(t, r)
	if strings.Count(doc, document.Marker) != 1 {
		t.Error("a marker-valued category must not add a marker")
	}
	if strings.Contains(doc, "<script>alert(1)") {
		t.Error("category value was written as raw markup")
	}
	if strings.Contains(doc, "R&D") || strings.Contains(doc, "team & unit") {
		t.Error("ampersands must be escaped")
	}
	for _, want := range []string{"R&amp;D", "Count Plot of team &amp; unit", "Donut Chart of team &amp; unit"} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected %q in the document", want)
		}
	}
}

func TestPairplot_AppendsComposite(t *testing.T) {
	r := newTestReport(t)
	if _, err := r.Pairplot(context.Background(), mixedTable(t), StaticOptions{}); err != nil {
		t.Fatalf("Pairplot: %v", err)
	}
	out := r.Outline()
	last := out[len(out)-1]
	if last.Kind != fragment.PairGrid || last.Cards != 4 || last.Title != "Pairplot of Numerical Features" {
		t.Errorf("outline entry = %+v", last)
	}
	doc := readDoc(t, r)
	if strings.Count(doc, document.Marker) != 1 {
		t.Error("document must keep exactly one marker")
	}
}

func TestStatic_ReturnHTML(t *testing.T) {
	r := newTestReport(t)
	html, err := r.Densityplot(context.Background(), mixedTable(t), StaticOptions{
		GridOptions: chart.GridOptions{Exclude: []string{"spend"}},
		ReturnHTML:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(html, `<div class="chart" id="chart-`) {
		t.Errorf("unexpected fragment: %.60s", html)
	}
	if len(r.Outline()) != 1 {
		t.Error("ReturnHTML must not append")
	}
}

func TestStatic_ShowUsesOpener(t *testing.T) {
	r := newTestReport(t)
	var opened string
	r.Open = func(_ context.Context, url string) error {
		opened = url
		return nil
	}
	path, err := r.Boxplot(context.Background(), mixedTable(t), StaticOptions{Show: true})
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(path)
	if !strings.HasSuffix(opened, filepath.ToSlash(path)) {
		t.Errorf("opened %q, want the page at %q", opened, path)
	}
	if len(r.Outline()) != 1 {
		t.Error("Show must not append")
	}
}

func TestStatic_BadColumnsPerRow(t *testing.T) {
	r := newTestReport(t)
	_, err := r.Histoplot(context.Background(), mixedTable(t), StaticOptions{
		GridOptions: chart.GridOptions{ColumnsPerRow: -2},
	})
	if !errors.Is(err, document.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReadOutline_MatchesBuilderOutline(t *testing.T) {
	r := newTestReport(t)
	tbl := mixedTable(t)
	ctx := context.Background()

	if _, err := r.AddSection("Overview", 2, "", false); err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddDataframe(tbl, document.DataframeOptions{Title: "Head"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Countplot(tbl, GridOptions{Title: "Regions"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Histoplot(ctx, tbl, StaticOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddMarkdown("## Notes\n\nSpend is skewed.", true); err != nil {
		t.Fatal(err)
	}
	fig, err := chart.HistogramFigure(tbl, chart.FigureOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.AddChart(fig, document.ChartOptions{}); err != nil {
		t.Fatal(err)
	}

	got, err := ReadOutline(r.Path())
	if err != nil {
		t.Fatalf("ReadOutline: %v", err)
	}
	want := r.Outline()
	if len(got.Entries) != len(want) {
		t.Fatalf("parsed %d fragments, built %d", len(got.Entries), len(want))
	}
	for i := range want {
		g, w := got.Entries[i], want[i]
		if g.Kind != w.Kind {
			t.Errorf("fragment %d: kind %s, want %s", i, g.Kind, w.Kind)
		}
		if g.Title != w.Title {
			t.Errorf("fragment %d: title %q, want %q", i, g.Title, w.Title)
		}
		if g.Level != w.Level {
			t.Errorf("fragment %d: level %d, want %d", i, g.Level, w.Level)
		}
		// Composite tiles are drawn into one image and cannot be counted.
		if w.Family != fragment.Composite && g.Cards != w.Cards {
			t.Errorf("fragment %d: cards %d, want %d", i, g.Cards, w.Cards)
		}
	}
}

func TestParseOutline_RejectsForeignHTML(t *testing.T) {
	if _, err := ParseOutline(strings.NewReader("<html><body><p>hi</p></body></html>")); err == nil {
		t.Error("expected an error for a page without a report container")
	}
}

func sampleOutline() fragment.Outline {
	return fragment.Outline{
		Entries: []fragment.Entry{
			fragment.NewEntry(0, fragment.Banner, "Sales", 420),
			func() fragment.Entry {
				e := fragment.NewEntry(1, fragment.Section, "Overview", 180)
				e.Level = 2
				return e
			}(),
			func() fragment.Entry {
				e := fragment.NewEntry(2, fragment.CountGrid, "A very long grid title that will not fit the column", 48000)
				e.Cards = 3
				return e
			}(),
			fragment.NewEntry(3, fragment.PairGrid, "Pairplot of Numerical Features", 2<<20),
		},
		Metadata: fragment.Metadata{Version: "test", Path: "out/report.html", Duration: 1500 * time.Millisecond},
	}
}

func TestWriteText_ListsFragments(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleOutline()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"out/report.html", "banner", "section", "countplot", "pairplot", "4 fragment(s)", "card-grid: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q", want)
		}
	}
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, fragment.Outline{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No fragments") {
		t.Error("expected empty notice")
	}
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestWriteText_FitsIn80Columns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleOutline()); err != nil {
		t.Fatal(err)
	}
	const maxWidth = 80
	for i, line := range strings.Split(buf.String(), "\n") {
		plain := stripANSI(line)
		if width := utf8.RuneCountInString(plain); width > maxWidth {
			t.Errorf("line %d exceeds %d columns (%d runes): %q", i+1, maxWidth, width, plain)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"abcdefghijk", 10, "abcdefg..."},
		{"aéééééééééé", 6, "aéé..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

// TestWriteText_MultiByteTitle verifies that cutting a long title never
// splits a rune.
func TestWriteText_MultiByteTitle(t *testing.T) {
	title := "a" + strings.Repeat("é", 30)
	o := fragment.Outline{Entries: []fragment.Entry{fragment.NewEntry(0, fragment.Chart, title, 10)}}

	var buf bytes.Buffer
	if err := WriteText(&buf, o); err != nil {
		t.Fatal(err)
	}
	if !utf8.Valid(buf.Bytes()) {
		t.Error("output is not valid UTF-8")
	}
	if strings.Contains(buf.String(), title) {
		t.Error("expected the title to be truncated")
	}
}

func TestHumanBytes(t *testing.T) {
	tests := map[int]string{12: "12 B", 2048: "2.0 KiB", 3 << 20: "3.0 MiB"}
	for n, want := range tests {
		if got := humanBytes(n); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		t.Fatalf("failed to parse schema JSON: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", sch); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}
	return compiled
}

func TestWriteJSON_ValidAgainstSchema(t *testing.T) {
	compiled := compileSchema(t)
	for name, o := range map[string]fragment.Outline{"sample": sampleOutline(), "empty": {}} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSON(&buf, o, "0.1.0"); err != nil {
				t.Fatalf("WriteJSON failed: %v", err)
			}
			inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("failed to parse JSON output: %v", err)
			}
			if err := compiled.Validate(inst); err != nil {
				t.Errorf("JSON output does not conform to schema:\n%v", err)
			}
		})
	}
}

func TestWriteJSON_Fields(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleOutline(), "0.1.0"); err != nil {
		t.Fatal(err)
	}
	var parsed struct {
		Version   string           `json:"version"`
		Fragments []fragment.Entry `json:"fragments"`
		Metadata  map[string]any   `json:"metadata"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Version != "0.1.0" || len(parsed.Fragments) != 4 {
		t.Errorf("version %q, %d fragments", parsed.Version, len(parsed.Fragments))
	}
	if parsed.Metadata["duration_ms"] != float64(1500) {
		t.Errorf("duration_ms = %v", parsed.Metadata["duration_ms"])
	}
	if parsed.Fragments[2].Cards != 3 {
		t.Errorf("cards = %d", parsed.Fragments[2].Cards)
	}
}
