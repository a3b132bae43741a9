package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/cache"
	"github.com/matzehuels/classgraph/pkg/diagram"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/render/dot"
	"github.com/matzehuels/classgraph/pkg/render/xmi"
	"github.com/matzehuels/classgraph/pkg/schema"
	"github.com/matzehuels/classgraph/pkg/walker"
)

// Result contains the outputs of a pipeline run.
type Result struct {
	// Walk is the walker outcome, including the graph and warning count.
	Walk *walker.Result

	// DOT is the generated document.
	DOT string

	// DOTHash is the content hash of DOT, used for artifact cache keys.
	DOTHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ClusterCount int
	Warnings     int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options; every
// run builds its own graph and classifier session.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs generate and render.
func (r *Runner) Execute(ctx context.Context, cat *schema.Catalog, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result, err := r.Generate(ctx, cat, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("generated diagram",
		"type", result.Walk.DiagramType,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"clusters", result.Stats.ClusterCount,
		"duration", result.Stats.GenerateTime)
	if result.Stats.Warnings > 0 {
		opts.Logger.Warn("classes skipped", "count", result.Stats.Warnings)
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.DOT, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Generate walks the catalog and emits DOT. Artifacts is left empty.
func (r *Runner) Generate(ctx context.Context, cat *schema.Catalog, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "catalog is required")
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.DiagramType, len(cat.Classes))
	start := time.Now()

	res, doc, err := generate(cat, &opts)
	stats := observability.GenerateStats{}
	if res != nil {
		stats = observability.GenerateStats{
			Nodes:    res.Graph.NodeCount(),
			Edges:    res.Graph.EdgeCount(),
			Clusters: res.Graph.ClusterCount(),
			Warnings: res.Warnings,
		}
	}
	elapsed := time.Since(start)
	hooks.OnGenerateComplete(ctx, opts.DiagramType, stats, elapsed, err)
	if err != nil {
		return nil, err
	}

	return &Result{
		Walk:      res,
		DOT:       doc,
		DOTHash:   cache.Hash([]byte(doc)),
		Artifacts: make(map[string][]byte),
		Stats: Stats{
			NodeCount:    stats.Nodes,
			EdgeCount:    stats.Edges,
			ClusterCount: stats.Clusters,
			Warnings:     stats.Warnings,
			GenerateTime: elapsed,
		},
	}, nil
}

func generate(cat *schema.Catalog, opts *Options) (*walker.Result, string, error) {
	res, err := walk(opts, cat)
	if err != nil {
		return nil, "", err
	}
	doc, err := res.Graph.Serialize(dot.Emitter{Options: opts.DOTOptions(res)})
	if err != nil {
		return res, "", err
	}
	return res, doc, nil
}

// Graph is a convenience wrapper returning only the diagram graph.
func (r *Runner) Graph(ctx context.Context, cat *schema.Catalog, opts Options) (*diagram.Graph, error) {
	res, err := r.Generate(ctx, cat, opts)
	if err != nil {
		return nil, err
	}
	return res.Walk.Graph, nil
}

// RenderWithCacheInfo renders doc into every requested format and reports
// whether all of them came from the cache. The dot format is returned as
// is and never cached, so a request for dot alone is never a hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash := cache.Hash([]byte(doc))
	artifacts := make(map[string][]byte, len(opts.Formats))
	hits, cached := 0, 0

	for _, format := range opts.Formats {
		if format == FormatDOT {
			artifacts[format] = []byte(doc)
			continue
		}
		if format == FormatXMI {
			_, err := xmi.Emitter{}.Serialize(nil)
			return nil, false, err
		}
		cached++
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, format)
				artifacts[format] = data
				hits++
				continue
			} else if err != nil {
				opts.Logger.Warn("cache read failed", "format", format, "err", err)
			}
			observability.Cache().OnCacheMiss(ctx, format)
		}
		data, err := r.renderFormat(ctx, doc, format, artifacts, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, format, len(data))
		}
	}
	return artifacts, cached > 0 && hits == cached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
