package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unbound-force/edareport/internal/config"
	"github.com/unbound-force/edareport/internal/document"
	"github.com/unbound-force/edareport/internal/preview"
	"github.com/unbound-force/edareport/internal/recipe"
	"github.com/unbound-force/edareport/internal/report"
	"github.com/unbound-force/edareport/internal/scaffold"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the configuration shared by every subcommand.
type app struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New("")}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "edareport",
		Short: "edareport builds exploratory data analysis reports",
		Long: `edareport turns CSV, TSV and JSON datasets into a single
self-contained HTML report of tables, Markdown notes and charts,
driven by a YAML recipe.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default: ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"enable debug logging")
	root.PersistentFlags().String("log-level", defaults.LogLevel,
		"log level: debug, info, warn, or error")
	_ = a.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newBuildCmd(a))
	root.AddCommand(newServeCmd(a, defaults.Preview))
	root.AddCommand(newOutlineCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newInitCmd())

	return root
}

// load resolves the configuration and sets the log level.
func (a *app) load() error {
	if err := config.LoadDotenv(".env"); err != nil {
		return err
	}
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	if a.verbose {
		level = charmlog.DebugLevel
	}
	logger.SetLevel(level)
	return nil
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", format)
	}
	return nil
}

// buildParams holds the parsed flags for the build command.
type buildParams struct {
	recipePath string
	format     string
	cfg        config.Config
	stdout     io.Writer
}

// runBuild is the extracted, testable body of the build command.
func runBuild(ctx context.Context, p buildParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}
	src, err := p.cfg.AssetSource()
	if err != nil {
		return err
	}

	rc, err := recipe.Load(p.recipePath)
	if err != nil {
		return err
	}
	logger.Info("building report", "recipe", p.recipePath, "steps", len(rc.Steps))

	o, err := recipe.Run(ctx, rc, recipe.Options{
		Output: p.cfg.Output,
		Document: document.Options{
			Assets: src,
			Theme:  p.cfg.Theme,
			Logger: logger,
		},
	})
	if err != nil {
		if len(o.Entries) > 0 {
			logger.Warn("report is incomplete", "path", o.Metadata.Path, "fragments", len(o.Entries))
		}
		return err
	}
	logger.Info("report written", "path", o.Metadata.Path, "fragments", len(o.Entries), "duration", o.Metadata.Duration)
	for _, w := range o.Metadata.Warnings {
		logger.Warn(w)
	}

	switch p.format {
	case "json":
		return report.WriteJSON(p.stdout, o, version)
	default:
		return report.WriteText(p.stdout, o)
	}
}

func newBuildCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "build <recipe.yaml>",
		Short: "Build a report from a recipe",
		Long: `Validate a recipe, load its datasets and append its steps to a
new report in order. The first failing step stops the build; the
report keeps what was appended before it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), buildParams{
				recipePath: args[0],
				format:     format,
				cfg:        a.cfg,
				stdout:     os.Stdout,
			})
		},
	}

	cmd.Flags().StringP("output", "o", "",
		"report path (default: the recipe's output)")
	_ = a.v.BindPFlag("output", cmd.Flags().Lookup("output"))
	cmd.Flags().StringVar(&format, "format", "text",
		"summary format: text or json")

	return cmd
}

// serveParams holds the parsed flags for the serve command.
type serveParams struct {
	reportPath string
	cfg        config.Config
	ready      func(url string)
}

// runServe is the extracted, testable body of the serve command.
func runServe(ctx context.Context, p serveParams) error {
	s, err := preview.New(p.reportPath, preview.Options{
		Port:   p.cfg.Preview.Port,
		Open:   p.cfg.Preview.Open,
		Ready:  p.ready,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

func newServeCmd(a *app, defaults config.Preview) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <report.html>",
		Short: "Preview a report with live reload",
		Long: `Serve a report over HTTP on localhost and reload open browser tabs
whenever the file is rebuilt. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, serveParams{reportPath: args[0], cfg: a.cfg})
		},
	}

	// Defaults mirror config.Default.
	cmd.Flags().IntP("port", "p", defaults.Port, "listen port (0 = any free port)")
	cmd.Flags().Bool("open", defaults.Open, "open the report in a browser")
	_ = a.v.BindPFlag("preview.port", cmd.Flags().Lookup("port"))
	_ = a.v.BindPFlag("preview.open", cmd.Flags().Lookup("open"))

	return cmd
}

// outlineParams holds the parsed flags for the outline command.
type outlineParams struct {
	reportPath  string
	format      string
	interactive bool
	stdout      io.Writer
}

// runOutline is the extracted, testable body of the outline command.
func runOutline(p outlineParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}
	o, err := report.ReadOutline(p.reportPath)
	if err != nil {
		return err
	}
	logger.Debug("parsed report", "path", p.reportPath, "fragments", len(o.Entries))

	if p.interactive {
		return runInteractiveOutline(o)
	}
	switch p.format {
	case "json":
		return report.WriteJSON(p.stdout, o, version)
	default:
		return report.WriteText(p.stdout, o)
	}
}

func newOutlineCmd() *cobra.Command {
	var (
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "outline <report.html>",
		Short: "List the fragments of a report",
		Long: `Parse a finished report and list its fragments in document order:
banners, sections, tables, Markdown blocks, charts and grids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutline(outlineParams{
				reportPath:  args[0],
				format:      format,
				interactive: interactive,
				stdout:      os.Stdout,
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing the outline")

	return cmd
}

// runValidate is the extracted, testable body of the validate command.
func runValidate(path string, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading recipe: %w", err)
	}
	if err := recipe.Validate(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err = fmt.Fprintf(stdout, "%s: ok\n", path)
	return err
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <recipe.yaml>",
		Short: "Check a recipe against the recipe schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], cmd.OutOrStdout())
		},
	}
}

func newSchemaCmd() *cobra.Command {
	var outline bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for recipes or outlines",
		Long: `Print the JSON Schema (Draft 2020-12) that documents recipe files,
or with --outline the structure of build and outline --format=json
output. Useful for editor completion or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := recipe.Schema
			if outline {
				s = report.Schema
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}

	cmd.Flags().BoolVar(&outline, "outline", false,
		"print the outline output schema instead")

	return cmd
}

func newInitCmd() *cobra.Command {
	var (
		force bool
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter recipe, sample dataset and config",
		Long: `Write edareport.yaml, data/sample.csv and .edareport.yaml into
the target directory. Existing files are skipped unless --force is
set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := scaffold.Run(scaffold.Options{
				TargetDir: dir,
				Force:     force,
				Version:   version,
				Stdout:    cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false,
		"overwrite existing files")
	cmd.Flags().StringVar(&dir, "dir", "",
		"target directory (default: current directory)")

	return cmd
}
