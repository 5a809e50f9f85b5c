// Package scaffold embeds a starter recipe, sample dataset and config
// file and writes them to a target project directory.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//go:embed assets/*
var starter embed.FS

// file maps an embedded asset to its path in the project.
type file struct {
	asset string
	out   string
}

// files lists what Run writes, in order.
var files = []file{
	{"recipe.yaml", "edareport.yaml"},
	{"sample.csv", filepath.Join("data", "sample.csv")},
	{"config.yaml", ".edareport.yaml"},
}

// Options configures the scaffold operation.
type Options struct {
	// TargetDir is the root directory to scaffold into.
	// Defaults to the current working directory.
	TargetDir string

	// Force overwrites existing files when true.
	// When false, existing files are skipped.
	Force bool

	// Version is the edareport version recorded in the marker comment
	// of YAML files. Defaults to "dev".
	Version string

	// Stdout is the writer for summary output.
	// Defaults to os.Stdout.
	Stdout io.Writer
}

// Result reports what the scaffold operation did.
type Result struct {
	// Created lists files that were written for the first time.
	Created []string

	// Skipped lists files that already existed and were not
	// overwritten (Force was false).
	Skipped []string

	// Overwritten lists files that existed and were replaced
	// (Force was true).
	Overwritten []string
}

// versionMarker returns the comment prepended to a scaffolded file, or
// "" for formats without comments.
func versionMarker(name, version string) string {
	if version == "" {
		version = "dev"
	}
	if strings.HasSuffix(name, ".yaml") {
		return fmt.Sprintf("# scaffolded by edareport %s\n", version)
	}
	return ""
}

// Run writes the starter project into the target directory:
//
//	edareport.yaml     recipe building report.html
//	data/sample.csv    dataset the recipe reads
//	.edareport.yaml    configuration with the default settings
//
// If a file already exists and opts.Force is false, the file is
// skipped. If opts.Force is true, the file is overwritten.
func Run(opts Options) (*Result, error) {
	if opts.TargetDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		opts.TargetDir = cwd
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	result := &Result{}
	for _, f := range files {
		outPath := filepath.Join(opts.TargetDir, f.out)

		_, statErr := os.Stat(outPath)
		exists := statErr == nil
		if exists && !opts.Force {
			result.Skipped = append(result.Skipped, f.out)
			continue
		}

		content, err := starter.ReadFile("assets/" + f.asset)
		if err != nil {
			return nil, fmt.Errorf("reading embedded asset %s: %w", f.asset, err)
		}
		dir := filepath.Dir(outPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
		out := append([]byte(versionMarker(f.out, opts.Version)), content...)
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return nil, fmt.Errorf("creating %s: %w", f.out, err)
		}

		if exists {
			result.Overwritten = append(result.Overwritten, f.out)
		} else {
			result.Created = append(result.Created, f.out)
		}
	}

	printSummary(opts.Stdout, result)
	return result, nil
}

func printSummary(w io.Writer, r *Result) {
	fmt.Fprintln(w, "edareport project initialized:")

	for _, f := range r.Created {
		fmt.Fprintf(w, "  created: %s\n", f)
	}
	for _, f := range r.Skipped {
		fmt.Fprintf(w, "  skipped: %s (already exists)\n", f)
	}
	for _, f := range r.Overwritten {
		fmt.Fprintf(w, "  overwritten: %s\n", f)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `edareport build edareport.yaml` to generate report.html.")

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "%d file(s) skipped (use --force to overwrite).\n", len(r.Skipped))
	}
}

// AssetPaths returns the project paths Run writes.
func AssetPaths() []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.out
	}
	return paths
}

// AssetContent returns the embedded content written to a project path
// such as "edareport.yaml", without its version marker.
func AssetContent(path string) ([]byte, error) {
	for _, f := range files {
		if f.out == path {
			return starter.ReadFile("assets/" + f.asset)
		}
	}
	return nil, fmt.Errorf("no scaffold asset for %s", path)
}
