// Package generator is the entry point for producing the aggregate changelog:
// it discovers resources, renders them and writes the result to disk.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"changelogagg/internal/apperrors"
	"changelogagg/internal/artifact"
	"changelogagg/internal/observability"
	"changelogagg/internal/output"
	"changelogagg/internal/render"
	"changelogagg/internal/resource"
)

// Phase names recorded in metrics.
const (
	phaseAggregate = "aggregate"
	phaseRender    = "render"
	phaseWrite     = "write"
)

// Config holds the settings for one Generator.
type Config struct {
	ResourceNames []string          // Candidate names, searched in order
	Version       string            // Changelog schema version; "" uses render.DefaultVersion
	Properties    map[string]string // Optional extra template properties
	Project       resource.ProjectDirs
	Output        string // Caller-owned output path; "" generates an ephemeral file
	TempDir       string // Directory for ephemeral files; "" uses os.TempDir

	Locator  *resource.Locator // nil uses resource.NewLocator
	Renderer *render.Renderer  // nil uses the bundled default template
}

// Generator produces the aggregate changelog. Each Generator owns its
// template and output file; use one per module and per goroutine.
type Generator struct {
	cfg        Config
	aggregator *resource.Aggregator
	renderer   *render.Renderer
	output     *output.Materializer
	metrics    *observability.Metrics
}

// New creates a generator. metrics may be nil.
func New(cfg Config, metrics *observability.Metrics) (*Generator, error) {
	agg, err := resource.NewAggregator(cfg.Locator, cfg.ResourceNames)
	if err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = render.DefaultVersion
	}

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewRenderer()
	}

	out := output.NewMaterializer(cfg.Output)
	out.SetTempDir(cfg.TempDir)

	return &Generator{
		cfg:        cfg,
		aggregator: agg,
		renderer:   renderer,
		output:     out,
		metrics:    metrics,
	}, nil
}

// SetTemplate replaces the changelog template source.
func (g *Generator) SetTemplate(src string) error {
	return g.renderer.SetTemplate(src)
}

// Template returns the current changelog template source.
func (g *Generator) Template() (string, bool) {
	return g.renderer.Template()
}

// SetOutput makes path the caller-owned output file.
func (g *Generator) SetOutput(path string) error {
	return g.output.SetPath(path)
}

// Generate discovers every changelog resource reachable from refs and the
// project directories and writes the aggregate changelog. Nothing to
// aggregate is a state error, and no file is created or changed in that
// case. Every call performs a full discovery, render and rewrite.
func (g *Generator) Generate(ctx context.Context, refs []artifact.Ref) (*output.File, error) {
	return g.run(ctx, refs, true)
}

// Process is the lenient form of Generate used by build hooks: when no
// resource is discovered it returns a nil file and no error.
func (g *Generator) Process(ctx context.Context, refs []artifact.Ref) (*output.File, error) {
	return g.run(ctx, refs, false)
}

func (g *Generator) run(ctx context.Context, refs []artifact.Ref, requireResources bool) (*output.File, error) {
	logger := slog.With("runId", uuid.NewString())
	start := time.Now()

	resources, err := g.aggregate(ctx, refs)
	if err != nil {
		g.recordGeneration(ctx, false, start)
		logger.Error("Changelog aggregation failed", "error", err)
		return nil, err
	}
	if len(resources) == 0 {
		if !requireResources {
			logger.Info("No changelog resources found", "artifacts", len(refs), "names", g.aggregator.Names())
			return nil, nil
		}
		g.recordGeneration(ctx, false, start)
		return nil, apperrors.State("no changelog resources to aggregate")
	}

	f, err := g.write(ctx, resources)
	if err != nil {
		g.recordGeneration(ctx, false, start)
		logger.Error("Changelog generation failed", "error", err)
		return nil, err
	}

	g.recordGeneration(ctx, true, start)
	logger.Info("Changelog generated",
		"path", f.Path,
		"ownership", f.Ownership.String(),
		"resources", len(resources),
		"duration", time.Since(start).String(),
	)
	return f, nil
}

// Close removes an ephemeral output file. Caller-owned files are kept.
func (g *Generator) Close() error {
	return g.output.Close()
}

func (g *Generator) aggregate(ctx context.Context, refs []artifact.Ref) ([]resource.Discovered, error) {
	start := time.Now()
	resources, err := g.aggregator.Aggregate(ctx, refs, g.cfg.Project)
	g.recordPhase(ctx, phaseAggregate, start)
	if err != nil {
		return nil, fmt.Errorf("aggregate changelog resources: %w", err)
	}

	if g.metrics != nil {
		g.metrics.RecordArtifacts(ctx, len(refs))
		counts := make(map[resource.Origin]int)
		for _, r := range resources {
			counts[r.Origin]++
		}
		for origin, n := range counts {
			g.metrics.RecordResources(ctx, string(origin), n)
		}
	}
	return resources, nil
}

// write renders before touching the filesystem so a template failure
// leaves any existing output untouched.
func (g *Generator) write(ctx context.Context, resources []resource.Discovered) (*output.File, error) {
	start := time.Now()
	text, err := g.renderer.Render(render.Parameters{
		Resources:  resources,
		Version:    g.cfg.Version,
		Properties: g.cfg.Properties,
	})
	g.recordPhase(ctx, phaseRender, start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	defer g.recordPhase(ctx, phaseWrite, start)

	f, err := g.output.Resolve()
	if err != nil {
		return nil, err
	}
	g.output.EnsureParent(f)
	if err := g.output.Write(f, text); err != nil {
		return nil, err
	}
	return f, nil
}

func (g *Generator) recordGeneration(ctx context.Context, success bool, start time.Time) {
	if g.metrics != nil {
		g.metrics.RecordGeneration(ctx, success, time.Since(start).Seconds())
	}
}

func (g *Generator) recordPhase(ctx context.Context, phase string, start time.Time) {
	if g.metrics != nil {
		g.metrics.RecordPhase(ctx, phase, time.Since(start).Seconds())
	}
}
