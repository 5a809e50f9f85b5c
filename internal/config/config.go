// Package config loads edareport settings from an optional
// .edareport.yaml file, a .env file and EDAREPORT_* environment
// variables, in increasing order of precedence. Command-line flags bound
// to the returned viper instance take precedence over all of them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/unbound-force/edareport/internal/assets"
	"github.com/unbound-force/edareport/internal/theme"
)

// FileName is the config file searched for in the working directory.
const FileName = ".edareport.yaml"

// EnvPrefix prefixes every environment variable, with dots in keys
// replaced by underscores: EDAREPORT_PREVIEW_PORT sets preview.port.
const EnvPrefix = "EDAREPORT"

// Config is the resolved application configuration.
type Config struct {
	// Output overrides the report path of every recipe.
	Output string `mapstructure:"output"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`

	Assets  Assets      `mapstructure:"assets"`
	Theme   theme.Theme `mapstructure:"theme"`
	Preview Preview     `mapstructure:"preview"`
}

// Assets selects where report stylesheets and scripts come from.
type Assets struct {
	// Source is "remote" or "embedded".
	Source  string        `mapstructure:"source"`
	CSSURL  string        `mapstructure:"css_url"`
	JSURL   string        `mapstructure:"js_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Preview configures the serve command.
type Preview struct {
	// Port is the listen port. Zero picks a free one.
	Port int  `mapstructure:"port"`
	Open bool `mapstructure:"open"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Assets: Assets{
			Source:  "remote",
			CSSURL:  assets.DefaultCSSURL,
			JSURL:   assets.DefaultJSURL,
			Timeout: assets.DefaultTimeout,
		},
		Theme:   theme.Default(),
		Preview: Preview{Port: 8000, Open: true},
	}
}

// New returns a viper instance carrying the defaults and environment
// binding. file names an explicit config file; empty searches the
// working directory for FileName.
func New(file string) *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("output", c.Output)
	v.SetDefault("log_level", c.LogLevel)

	v.SetDefault("assets.source", c.Assets.Source)
	v.SetDefault("assets.css_url", c.Assets.CSSURL)
	v.SetDefault("assets.js_url", c.Assets.JSURL)
	v.SetDefault("assets.timeout", c.Assets.Timeout)

	t := c.Theme
	v.SetDefault("theme.title_font_size", t.TitleFontSize)
	v.SetDefault("theme.title_font_weight", t.TitleFontWeight)
	v.SetDefault("theme.title_pad_left", t.TitlePadLeft)
	v.SetDefault("theme.axis_font_size", t.AxisFontSize)
	v.SetDefault("theme.background", t.Background)
	v.SetDefault("theme.foreground", t.Foreground)
	v.SetDefault("theme.palette", t.Palette)
	setMargin(v, "theme.categorical_margin", t.CategoricalMargin)
	setMargin(v, "theme.numeric_margin", t.NumericMargin)
	v.SetDefault("theme.row_class", t.RowClass)
	v.SetDefault("theme.categorical_class", t.CategoricalClass)
	v.SetDefault("theme.numeric_class", t.NumericClass)

	v.SetDefault("preview.port", c.Preview.Port)
	v.SetDefault("preview.open", c.Preview.Open)
}

func setMargin(v *viper.Viper, key string, m theme.Margin) {
	v.SetDefault(key+".top", m.Top)
	v.SetDefault(key+".bottom", m.Bottom)
	v.SetDefault(key+".left", m.Left)
	v.SetDefault(key+".right", m.Right)
}

// LoadDotenv sets variables from a .env file without overriding ones
// already in the environment. A missing file is not an error.
func LoadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the config file, if there is one, and decodes the result.
// A missing FileName is not an error; a missing explicit file is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	c.Theme = c.Theme.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.AssetSource(); err != nil {
		return err
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview port %d out of range", c.Preview.Port)
	}
	return c.Theme.Validate()
}

// Level parses LogLevel.
func (c Config) Level() (charmlog.Level, error) {
	l, err := charmlog.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// AssetSource returns the configured asset source.
func (c Config) AssetSource() (assets.Source, error) {
	return assets.FromName(c.Assets.Source, c.Assets.CSSURL, c.Assets.JSURL, c.Assets.Timeout)
}
