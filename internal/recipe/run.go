package recipe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/unbound-force/edareport/internal/chart"
	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/document"
	"github.com/unbound-force/edareport/internal/fragment"
	"github.com/unbound-force/edareport/internal/report"
)

// DefaultOutput is used when neither the recipe nor the caller names
// an output path.
const DefaultOutput = "report.html"

// ErrNestedRow is returned for a row step inside another row.
var ErrNestedRow = errors.New("rows cannot be nested")

// Options configures Run.
type Options struct {
	// Output overrides the recipe's output path.
	Output string

	// Document is passed to report.New.
	Document document.Options
}

// Run loads the recipe's datasets, creates the report and executes the
// steps in order. The first failing step stops the run; the report
// keeps every fragment appended before it.
func Run(ctx context.Context, rc *Recipe, opts Options) (fragment.Outline, error) {
	start := time.Now()
	tables, err := rc.LoadDatasets()
	if err != nil {
		return fragment.Outline{}, err
	}

	out := opts.Output
	if out == "" {
		out = rc.Resolve(rc.Output)
	}
	if out == "" {
		out = rc.Resolve(DefaultOutput)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fragment.Outline{}, fmt.Errorf("creating output directory: %w", err)
	}
	r, err := report.New(ctx, rc.Meta, out, opts.Document)
	if err != nil {
		return fragment.Outline{}, err
	}
	err = Execute(ctx, r, rc, tables)

	o := fragment.Outline{
		Entries: r.Outline(),
		Metadata: fragment.Metadata{
			Path:      out,
			Timestamp: start,
			Duration:  time.Since(start),
		},
	}
	for _, e := range o.Entries {
		if fragment.IsGrid(e.Kind) && e.Cards == 0 {
			o.Metadata.Warnings = append(o.Metadata.Warnings,
				fmt.Sprintf("%s %q selected no columns", e.Kind, e.Title))
		}
	}
	return o, err
}

// Execute appends the recipe's steps to r.
func Execute(ctx context.Context, r *report.Report, rc *Recipe, tables map[string]*dataset.Table) error {
	x := &executor{r: r, rc: rc, tables: tables}
	for i, s := range rc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Logger().Debug("running step", "index", i, "kind", s.Kind)
		if _, err := x.run(ctx, s, false); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.Kind, err)
		}
	}
	return nil
}

type executor struct {
	r      *report.Report
	rc     *Recipe
	tables map[string]*dataset.Table
}

type sectionArgs struct {
	Text  string `yaml:"text"`
	Level int    `yaml:"level"`
	Icon  string `yaml:"icon"`
}

type markdownArgs struct {
	Text string `yaml:"text"`
	File string `yaml:"file"`
	Card bool   `yaml:"card"`
}

type dataframeArgs struct {
	Dataset     string `yaml:"dataset"`
	Title       string `yaml:"title"`
	MaxRows     int    `yaml:"max_rows"`
	MaxHeight   int    `yaml:"max_height"`
	Explanation string `yaml:"explanation"`
}

type cardGridArgs struct {
	Dataset            string `yaml:"dataset"`
	report.GridOptions `yaml:",inline"`
}

type staticArgs struct {
	Dataset           string `yaml:"dataset"`
	chart.GridOptions `yaml:",inline"`
}

type figureArgs struct {
	Dataset             string `yaml:"dataset"`
	chart.FigureOptions `yaml:",inline"`
	Explanation         string `yaml:"explanation"`
}

type subplotArgs struct {
	Dataset              string `yaml:"dataset"`
	chart.SubplotOptions `yaml:",inline"`
	Explanation          string `yaml:"explanation"`
}

type rowArgs struct {
	Classes []string `yaml:"classes"`
	Steps   []Step   `yaml:"steps"`
}

// run executes one step. In a row the fragment is returned instead of
// appended.
func (x *executor) run(ctx context.Context, s Step, inRow bool) (string, error) {
	switch s.Kind {
	case KindSection:
		var a sectionArgs
		if err := s.decode(&a, &a.Text); err != nil {
			return "", err
		}
		if a.Level == 0 {
			a.Level = 1
		}
		return x.r.AddSection(a.Text, a.Level, a.Icon, inRow)

	case KindMarkdown:
		var a markdownArgs
		if err := s.decode(&a, &a.Text); err != nil {
			return "", err
		}
		if a.File != "" {
			data, err := os.ReadFile(x.rc.Resolve(a.File))
			if err != nil {
				return "", fmt.Errorf("reading markdown: %w", err)
			}
			a.Text = string(data)
		}
		if inRow {
			body, _, err := document.Markdown(a.Text)
			if err != nil || !a.Card {
				return string(body), err
			}
			return document.PlainCard(string(body))
		}
		return "", x.r.AddMarkdown(a.Text, a.Card)

	case KindDataframe:
		var a dataframeArgs
		if err := s.decode(&a, nil); err != nil {
			return "", err
		}
		t, err := x.table(a.Dataset)
		if err != nil {
			return "", err
		}
		return x.r.AddDataframe(t, document.DataframeOptions{
			Title:       a.Title,
			MaxRows:     a.MaxRows,
			MaxHeight:   a.MaxHeight,
			Explanation: a.Explanation,
			ReturnHTML:  inRow,
			NoRow:       inRow,
		})

	case KindCountplot, KindDonut, KindHistogram, KindBox, KindViolin:
		var a cardGridArgs
		if err := s.decode(&a, nil); err != nil {
			return "", err
		}
		t, err := x.table(a.Dataset)
		if err != nil {
			return "", err
		}
		a.ReturnHTML = inRow
		add := map[string]func(*dataset.Table, report.GridOptions) (string, error){
			KindCountplot: x.r.Countplot,
			KindDonut:     x.r.Donut,
			KindHistogram: x.r.Histogram,
			KindBox:       x.r.Box,
			KindViolin:    x.r.Violin,
		}[s.Kind]
		return add(t, a.GridOptions)

	case KindPairplot, KindHistoplot, KindBoxplot, KindDensityplot:
		var a staticArgs
		if err := s.decode(&a, nil); err != nil {
			return "", err
		}
		t, err := x.table(a.Dataset)
		if err != nil {
			return "", err
		}
		add := map[string]func(context.Context, *dataset.Table, report.StaticOptions) (string, error){
			KindPairplot:    x.r.Pairplot,
			KindHistoplot:   x.r.Histoplot,
			KindBoxplot:     x.r.Boxplot,
			KindDensityplot: x.r.Densityplot,
		}[s.Kind]
		return add(ctx, t, report.StaticOptions{GridOptions: a.GridOptions, ReturnHTML: inRow})

	case KindHistogramFigure, KindViolinFigure:
		var a figureArgs
		if err := s.decode(&a, nil); err != nil {
			return "", err
		}
		t, err := x.table(a.Dataset)
		if err != nil {
			return "", err
		}
		build := chart.HistogramFigure
		if s.Kind == KindViolinFigure {
			build = chart.ViolinFigure
		}
		fig, err := build(t, a.FigureOptions)
		if err != nil {
			return "", err
		}
		return x.r.AddChart(fig, document.ChartOptions{Explanation: a.Explanation, ReturnHTML: inRow, NoRow: inRow})

	case KindHistogramSubplots, KindViolinSubplots:
		var a subplotArgs
		if err := s.decode(&a, nil); err != nil {
			return "", err
		}
		t, err := x.table(a.Dataset)
		if err != nil {
			return "", err
		}
		build := chart.HistogramSubplots
		if s.Kind == KindViolinSubplots {
			build = chart.ViolinSubplots
		}
		fig, err := build(t, a.SubplotOptions)
		if err != nil {
			return "", err
		}
		return x.r.AddChart(fig, document.ChartOptions{Explanation: a.Explanation, ReturnHTML: inRow, NoRow: inRow})

	case KindRow:
		if inRow {
			return "", ErrNestedRow
		}
		var a rowArgs
		if err := s.decode(&a, nil); err != nil {
			return "", err
		}
		frags := make([]string, 0, len(a.Steps))
		for _, child := range a.Steps {
			html, err := x.run(ctx, child, true)
			if err != nil {
				return "", fmt.Errorf("%s: %w", child.Kind, err)
			}
			frags = append(frags, html)
		}
		return "", x.r.AddRow(frags, a.Classes...)
	}
	return "", fmt.Errorf("unknown step kind %q", s.Kind)
}

func (x *executor) table(name string) (*dataset.Table, error) {
	t, ok := x.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", name)
	}
	return t, nil
}
