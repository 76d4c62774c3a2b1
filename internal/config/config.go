// Package config provides configuration loading from project files and
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"changelogagg/internal/apperrors"
	"changelogagg/internal/artifact"
	"changelogagg/internal/render"
	"changelogagg/internal/resource"
)

// Environment variables recognised by Load.
const (
	EnvConfig          = "CHANGELOG_CONFIG"
	EnvResourceNames   = "CHANGELOG_RESOURCE_NAMES"
	EnvVersion         = "CHANGELOG_VERSION"
	EnvOutput          = "CHANGELOG_OUTPUT"
	EnvTemplate        = "CHANGELOG_TEMPLATE"
	EnvArtifactsJSON   = "CHANGELOG_ARTIFACTS_JSON"
	EnvArtifactsFile   = "CHANGELOG_ARTIFACTS_FILE"
	EnvOutputDir       = "BUILD_OUTPUT_DIRECTORY"
	EnvTestOutputDir   = "BUILD_TEST_OUTPUT_DIRECTORY"
	EnvMetricsTextfile = "METRICS_TEXTFILE"
	EnvStrict          = "CHANGELOG_STRICT"
	EnvLogLevel        = "LOG_LEVEL"
)

// BuildConfig is the module's build layout.
type BuildConfig struct {
	OutputDirectory     string `yaml:"outputDirectory" toml:"output_directory"`
	TestOutputDirectory string `yaml:"testOutputDirectory" toml:"test_output_directory"`
}

// Config holds configuration for one aggregate changelog generation.
type Config struct {
	ResourceNames   []string          `yaml:"resourceNames" toml:"resource_names"`
	Version         string            `yaml:"version" toml:"version"`
	Properties      map[string]string `yaml:"properties" toml:"properties"`
	Output          string            `yaml:"output" toml:"output"`     // Empty: ephemeral file
	Template        string            `yaml:"template" toml:"template"` // Template file path; empty: bundled default
	Build           BuildConfig       `yaml:"build" toml:"build"`
	Artifacts       []artifact.Ref    `yaml:"artifacts" toml:"artifacts"`
	ArtifactsFile   string            `yaml:"artifactsFile" toml:"artifacts_file"`
	ArtifactsJSON   string            `yaml:"-" toml:"-"`
	MetricsTextfile string            `yaml:"metricsTextfile" toml:"metrics_textfile"`
	Strict          bool              `yaml:"strict" toml:"strict"`
	LogLevel        string            `yaml:"logLevel" toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ResourceNames: []string{resource.DefaultName},
		Version:       render.DefaultVersion,
		Build: BuildConfig{
			OutputDirectory:     filepath.Join("target", "classes"),
			TestOutputDirectory: filepath.Join("target", "test-classes"),
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional project file
// (path, or $CHANGELOG_CONFIG when path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = GetEnv(EnvConfig, "")
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
		slog.Debug("Loaded changelog configuration file", "path", path)
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile decodes a YAML or TOML project file over cfg. Keys absent from
// the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Configuration("config", fmt.Sprintf("config load failed (%s): %v", path, err))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return apperrors.Configuration("config", fmt.Sprintf("unsupported config format %q (want .yaml, .yml or .toml)", ext))
	}
	if err != nil {
		return apperrors.Configuration("config", fmt.Sprintf("config parse failed (%s): %v", path, err))
	}
	return nil
}

// ApplyEnv overrides cfg with any configured environment variables.
func ApplyEnv(cfg *Config) {
	cfg.ResourceNames = GetListEnv(EnvResourceNames, cfg.ResourceNames)
	cfg.Version = GetEnv(EnvVersion, cfg.Version)
	cfg.Output = GetEnv(EnvOutput, cfg.Output)
	cfg.Template = GetEnv(EnvTemplate, cfg.Template)
	cfg.ArtifactsJSON = GetEnv(EnvArtifactsJSON, cfg.ArtifactsJSON)
	cfg.ArtifactsFile = GetEnv(EnvArtifactsFile, cfg.ArtifactsFile)
	cfg.Build.OutputDirectory = GetEnv(EnvOutputDir, cfg.Build.OutputDirectory)
	cfg.Build.TestOutputDirectory = GetEnv(EnvTestOutputDir, cfg.Build.TestOutputDirectory)
	cfg.MetricsTextfile = GetEnv(EnvMetricsTextfile, cfg.MetricsTextfile)
	cfg.Strict = GetBoolEnv(EnvStrict, cfg.Strict)
	cfg.LogLevel = GetEnv(EnvLogLevel, cfg.LogLevel)
}

// Validate checks the configuration for missing required values.
func Validate(cfg Config) error {
	names := 0
	for _, n := range cfg.ResourceNames {
		if strings.TrimSpace(n) != "" {
			names++
		}
	}
	if names == 0 {
		return apperrors.Configuration("resourceNames", "at least one changelog resource name is required")
	}
	if strings.TrimSpace(cfg.Version) == "" {
		return apperrors.Configuration("version", "changelog schema version is required")
	}
	if err := artifact.ValidateAll(cfg.Artifacts); err != nil {
		return err
	}
	return nil
}

// ResolveArtifacts returns the artifact list from the first configured
// source: inline JSON, then the artifacts file, then the config file list.
func (c Config) ResolveArtifacts() ([]artifact.Ref, error) {
	switch {
	case strings.TrimSpace(c.ArtifactsJSON) != "":
		refs, err := artifact.UnmarshalRefs([]byte(c.ArtifactsJSON))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", EnvArtifactsJSON, err)
		}
		return refs, nil
	case c.ArtifactsFile != "":
		return artifact.LoadRefs(c.ArtifactsFile)
	default:
		return c.Artifacts, nil
	}
}

// ProjectDirs returns the build layout searched for project resources.
func (c Config) ProjectDirs() resource.ProjectDirs {
	return resource.ProjectDirs{
		Output:     c.Build.OutputDirectory,
		TestOutput: c.Build.TestOutputDirectory,
	}
}

// SlogLevel parses LogLevel, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
