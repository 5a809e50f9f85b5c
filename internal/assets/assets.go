// Package assets provides the stylesheet and script inlined into every
// report.
package assets

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default remote locations of the report stylesheet and script.
const (
	DefaultCSSURL = "https://raw.githubusercontent.com/paudelsagar/pyreport/refs/heads/main/css/report.css"
	DefaultJSURL  = "https://raw.githubusercontent.com/paudelsagar/pyreport/refs/heads/main/js/report.js"
)

// DefaultTimeout bounds each remote fetch when no client is supplied.
const DefaultTimeout = 30 * time.Second

// maxAssetBytes caps a single downloaded asset.
const maxAssetBytes = 8 << 20

//go:embed static/report.css
var embeddedCSS string

//go:embed static/report.js
var embeddedJS string

// Bundle is the stylesheet and script text inlined into a document.
type Bundle struct {
	CSS string
	JS  string
}

// Source supplies a Bundle.
type Source interface {
	Fetch(ctx context.Context) (Bundle, error)
}

// HTTPSource downloads the stylesheet and script with two GET requests.
// Any transport error or non-2xx status is a failure.
type HTTPSource struct {
	CSSURL string
	JSURL  string

	// Client defaults to an http.Client with DefaultTimeout.
	Client *http.Client
}

// NewHTTPSource returns an HTTPSource for the given URLs, falling back
// to the default locations for empty ones.
func NewHTTPSource(cssURL, jsURL string, timeout time.Duration) *HTTPSource {
	if cssURL == "" {
		cssURL = DefaultCSSURL
	}
	if jsURL == "" {
		jsURL = DefaultJSURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		CSSURL: cssURL,
		JSURL:  jsURL,
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (Bundle, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	css, err := get(ctx, client, s.CSSURL)
	if err != nil {
		return Bundle{}, fmt.Errorf("fetching stylesheet: %w", err)
	}
	js, err := get(ctx, client, s.JSURL)
	if err != nil {
		return Bundle{}, fmt.Errorf("fetching script: %w", err)
	}
	return Bundle{CSS: css, JS: js}, nil
}

func get(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	return string(body), nil
}

// EmbeddedSource serves the stylesheet and script compiled into the
// binary. It never fails.
type EmbeddedSource struct{}

// Fetch implements Source.
func (EmbeddedSource) Fetch(ctx context.Context) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	return Embedded(), nil
}

// Embedded returns the compiled-in bundle.
func Embedded() Bundle {
	return Bundle{CSS: embeddedCSS, JS: embeddedJS}
}

// Static is a Source returning a fixed bundle.
type Static Bundle

// Fetch implements Source.
func (s Static) Fetch(context.Context) (Bundle, error) {
	return Bundle(s), nil
}

// FromName selects a Source by configuration name: "embedded" or
// "remote" (the default).
func FromName(name, cssURL, jsURL string, timeout time.Duration) (Source, error) {
	switch name {
	case "", "remote", "http":
		return NewHTTPSource(cssURL, jsURL, timeout), nil
	case "embedded":
		return EmbeddedSource{}, nil
	default:
		return nil, fmt.Errorf("unknown asset source %q (want remote or embedded)", name)
	}
}
