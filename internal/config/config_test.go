package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/unbound-force/edareport/internal/assets"
	"github.com/unbound-force/edareport/internal/theme"
)

// chdir switches to a fresh temp dir for the duration of the test.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	c, err := Load(New(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Errorf("Load() without a file = %+v, want %+v", c, Default())
	}
}

func TestLoad_File(t *testing.T) {
	dir := chdir(t)
	writeFile(t, filepath.Join(dir, FileName), `
output: build/report.html
log_level: debug
assets:
  source: embedded
  timeout: 5s
theme:
  background: "#000000"
  palette: ["#111111", "#222222"]
  numeric_margin: {top: 40}
preview:
  port: 9000
  open: false
`)
	c, err := Load(New(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Output != "build/report.html" || c.LogLevel != "debug" {
		t.Errorf("output/log_level = %q/%q", c.Output, c.LogLevel)
	}
	if c.Assets.Source != "embedded" || c.Assets.Timeout != 5*time.Second {
		t.Errorf("assets = %+v", c.Assets)
	}
	if c.Assets.CSSURL != assets.DefaultCSSURL {
		t.Errorf("css_url should keep its default, got %q", c.Assets.CSSURL)
	}
	if c.Theme.Background != "#000000" || len(c.Theme.Palette) != 2 {
		t.Errorf("theme = %+v", c.Theme)
	}
	if c.Theme.Foreground != theme.Default().Foreground {
		t.Errorf("foreground should keep its default, got %q", c.Theme.Foreground)
	}
	if c.Theme.NumericMargin.Top != 40 || c.Theme.NumericMargin.Left != theme.Default().NumericMargin.Left {
		t.Errorf("numeric margin = %+v", c.Theme.NumericMargin)
	}
	if c.Preview.Port != 9000 || c.Preview.Open {
		t.Errorf("preview = %+v", c.Preview)
	}
	src, err := c.AssetSource()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(assets.EmbeddedSource); !ok {
		t.Errorf("asset source = %T, want assets.EmbeddedSource", src)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	writeFile(t, filepath.Join(dir, FileName), "preview:\n  port: 9000\n")
	t.Setenv("EDAREPORT_PREVIEW_PORT", "9100")
	t.Setenv("EDAREPORT_THEME_FOREGROUND", "#abcdef")

	c, err := Load(New(""))
	if err != nil {
		t.Fatal(err)
	}
	if c.Preview.Port != 9100 {
		t.Errorf("port = %d, want 9100", c.Preview.Port)
	}
	if c.Theme.Foreground != "#abcdef" {
		t.Errorf("foreground = %q", c.Theme.Foreground)
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := chdir(t)
	writeFile(t, filepath.Join(dir, ".env"), "EDAREPORT_LOG_LEVEL=warn\n")
	t.Setenv("EDAREPORT_LOG_LEVEL", "")
	os.Unsetenv("EDAREPORT_LOG_LEVEL")

	if err := LoadDotenv(filepath.Join(dir, ".env")); err != nil {
		t.Fatal(err)
	}
	c, err := Load(New(""))
	if err != nil {
		t.Fatal(err)
	}
	lvl, err := c.Level()
	if err != nil {
		t.Fatal(err)
	}
	if lvl != charmlog.WarnLevel {
		t.Errorf("level = %v, want warn", lvl)
	}
}

func TestLoadDotenv_Missing(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	chdir(t)
	if _, err := Load(New("nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"log level":    "log_level: loud\n",
		"asset source": "assets:\n  source: ftp\n",
		"port":         "preview:\n  port: 70000\n",
		"color":        "theme:\n  background: white\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := chdir(t)
			path := filepath.Join(dir, "custom.yaml")
			writeFile(t, path, body)
			if _, err := Load(New(path)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
