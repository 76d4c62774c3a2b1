// changelog-aggregate writes one changelog that includes every changelog
// fragment found in a module's resolved dependencies and its own build output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"changelogagg/internal/apperrors"
	"changelogagg/internal/config"
	"changelogagg/internal/generator"
	"changelogagg/internal/observability"
	"changelogagg/internal/output"
)

// flags mirrors the configuration keys that may be overridden on the
// command line. Only flags the user actually set are applied.
type flags struct {
	configPath      string
	output          string
	template        string
	version         string
	resourceNames   string
	artifacts       string
	outputDir       string
	testOutputDir   string
	metricsTextfile string
	strict          bool
	properties      map[string]string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(apperrors.ExitOK)
		}
		slog.Error("Changelog aggregation failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func parseFlags(args []string) (*flags, map[string]bool, error) {
	f := &flags{properties: map[string]string{}}
	fs := flag.NewFlagSet("changelog-aggregate", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "project config file (.yaml, .yml or .toml)")
	fs.StringVar(&f.output, "output", "", "output changelog path (default: stdout)")
	fs.StringVar(&f.template, "template", "", "changelog template file (default: bundled)")
	fs.StringVar(&f.version, "version", "", "changelog schema version")
	fs.StringVar(&f.resourceNames, "resource-names", "", "comma-separated changelog resource names")
	fs.StringVar(&f.artifacts, "artifacts", "", "JSON file listing resolved artifacts")
	fs.StringVar(&f.outputDir, "output-dir", "", "build output directory")
	fs.StringVar(&f.testOutputDir, "test-output-dir", "", "build test output directory")
	fs.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	fs.BoolVar(&f.strict, "strict", false, "fail when no changelog resource is found")
	fs.Func("property", "extra template property key=value (repeatable)", func(v string) error {
		key, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("property %q: want key=value", v)
		}
		f.properties[strings.TrimSpace(key)] = value
		return nil
	})

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, apperrors.Configuration("flags", err.Error())
	}
	if fs.NArg() > 0 {
		return nil, nil, apperrors.Configuration("flags", fmt.Sprintf("unexpected arguments: %v", fs.Args()))
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// apply overrides cfg with explicitly set flags.
func (f *flags) apply(cfg *config.Config, set map[string]bool) {
	if set["output"] {
		cfg.Output = f.output
	}
	if set["template"] {
		cfg.Template = f.template
	}
	if set["version"] {
		cfg.Version = f.version
	}
	if set["resource-names"] {
		cfg.ResourceNames = nil
		for _, n := range strings.Split(f.resourceNames, ",") {
			if n = strings.TrimSpace(n); n != "" {
				cfg.ResourceNames = append(cfg.ResourceNames, n)
			}
		}
	}
	if set["artifacts"] {
		cfg.ArtifactsJSON = ""
		cfg.ArtifactsFile = f.artifacts
	}
	if set["output-dir"] {
		cfg.Build.OutputDirectory = f.outputDir
	}
	if set["test-output-dir"] {
		cfg.Build.TestOutputDirectory = f.testOutputDir
	}
	if set["metrics-textfile"] {
		cfg.MetricsTextfile = f.metricsTextfile
	}
	if set["strict"] {
		cfg.Strict = f.strict
	}
	if len(f.properties) > 0 {
		if cfg.Properties == nil {
			cfg.Properties = map[string]string{}
		}
		for k, v := range f.properties {
			cfg.Properties[k] = v
		}
	}
}

func run(args []string, stdout io.Writer) error {
	ctx := context.Background()

	// Logs go to stderr; stdout may carry the changelog itself.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	f, set, err := parseFlags(args)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	f.apply(&cfg, set)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	refs, err := cfg.ResolveArtifacts()
	if err != nil {
		return err
	}

	// Setup metrics
	var metrics *observability.Metrics
	if cfg.MetricsTextfile != "" {
		if metrics, err = observability.NewMetrics(ctx); err != nil {
			return err
		}
	}

	gen, err := generator.New(generator.Config{
		ResourceNames: cfg.ResourceNames,
		Version:       cfg.Version,
		Properties:    cfg.Properties,
		Project:       cfg.ProjectDirs(),
		Output:        cfg.Output,
	}, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := gen.Close(); err != nil {
			slog.Warn("Failed to release changelog output", "error", err)
		}
	}()

	if cfg.Template != "" {
		src, err := os.ReadFile(cfg.Template)
		if err != nil {
			return apperrors.Configuration("template", fmt.Sprintf("failed to read template %s: %v", cfg.Template, err))
		}
		if err := gen.SetTemplate(string(src)); err != nil {
			return err
		}
	}

	var file *output.File
	if cfg.Strict {
		file, err = gen.Generate(ctx, refs)
	} else {
		file, err = gen.Process(ctx, refs)
	}

	if metrics != nil {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			slog.Warn("Failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", werr)
		}
	}
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}

	if file.Ownership == output.Ephemeral {
		return copyTo(stdout, file.Path)
	}
	return nil
}

func copyTo(w io.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return apperrors.IO("stdout.open", err)
	}
	defer in.Close()

	if _, err := io.Copy(w, in); err != nil {
		return apperrors.IO("stdout.copy", err)
	}
	return nil
}
