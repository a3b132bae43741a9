// Package pipeline runs the catalog -> graph -> DOT -> artifact pipeline.
//
// This package is shared by the CLI and the HTTP server so both apply the
// same defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Generate: walk the catalog into a diagram graph and emit DOT text
//  2. Render: turn the DOT text into the requested formats (dot, svg, png,
//     pdf); rendered artifacts are cached by DOT content hash
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, catalog, pipeline.Options{
//	    DiagramType: pipeline.DiagramModels,
//	    Inheritance: true,
//	    Formats:     []string{"dot", "svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/cache"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/links"
	"github.com/matzehuels/classgraph/pkg/render/dot"
	"github.com/matzehuels/classgraph/pkg/schema"
	"github.com/matzehuels/classgraph/pkg/walker"
)

// Diagram types.
const (
	DiagramModels      = "models"
	DiagramControllers = "controllers"
	DiagramStates      = "states"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatXMI = "xmi"
)

// Cluster color schemes.
const (
	ColorsNone       = "none"
	ColorsRoundRobin = "round-robin"
	ColorsSeeded     = "seeded"
)

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
	// DefaultSeed seeds the seeded color scheme.
	DefaultSeed = uint64(42)
)

// ValidFormats is the set of supported output formats. XMI is accepted and
// always fails with UNSUPPORTED.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatXMI: true,
}

// ValidDiagramTypes is the set of supported diagram types.
var ValidDiagramTypes = map[string]bool{
	DiagramModels:      true,
	DiagramControllers: true,
	DiagramStates:      true,
}

// ValidColors is the set of supported cluster color schemes.
var ValidColors = map[string]bool{
	ColorsNone:       true,
	ColorsRoundRobin: true,
	ColorsSeeded:     true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	DiagramType string `json:"type"`

	// Walker options
	Brief         bool     `json:"brief,omitempty"`
	HideMagic     bool     `json:"hide_magic,omitempty"`
	HideTypes     bool     `json:"hide_types,omitempty"`
	ContentOnly   bool     `json:"content_only,omitempty"`
	Inheritance   bool     `json:"inheritance,omitempty"`
	Transitive    bool     `json:"transitive,omitempty"`
	HideBelongsTo bool     `json:"hide_belongs_to,omitempty"`
	All           bool     `json:"all,omitempty"`
	Modules       bool     `json:"modules,omitempty"`
	Filter        []string `json:"filter,omitempty"`

	// Source links
	LinkBase  string   `json:"link_base,omitempty"`
	LinkRoots []string `json:"link_roots,omitempty"`
	LinkExt   string   `json:"link_ext,omitempty"`

	// DOT options
	ShowLabel   bool    `json:"label,omitempty"`
	Title       string  `json:"title,omitempty"`
	Colors      string  `json:"colors,omitempty"`
	Seed        *uint64 `json:"seed,omitempty"` // nil means DefaultSeed
	EdgeLengths bool    `json:"edge_lengths,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	FS     fs.FS            `json:"-"` // project tree probed for source links
	Now    func() time.Time `json:"-"`

	validated bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cgerrors.New(cgerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, keys(ValidFormats))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDiagramType checks that a diagram type is valid.
func ValidateDiagramType(t string) error {
	if !ValidDiagramTypes[t] {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "invalid diagram type: %q (must be one of: %s)", t, keys(ValidDiagramTypes))
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DiagramType == "" {
		o.DiagramType = DiagramModels
	}
	o.DiagramType = strings.ToLower(o.DiagramType)
	if err := ValidateDiagramType(o.DiagramType); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Colors == "" {
		o.Colors = ColorsNone
	}
	if !ValidColors[o.Colors] {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "invalid colors: %q (must be one of: %s)", o.Colors, keys(ValidColors))
	}
	if o.Seed == nil {
		seed := DefaultSeed
		o.Seed = &seed
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "scale must be positive")
	}

	if o.LinkBase != "" {
		if err := o.linkResolver().Validate(); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// WalkerOptions returns the walker configuration.
func (o *Options) WalkerOptions() walker.Options {
	return walker.Options{
		Brief:         o.Brief,
		HideMagic:     o.HideMagic,
		HideTypes:     o.HideTypes,
		ContentOnly:   o.ContentOnly,
		Inheritance:   o.Inheritance,
		Transitive:    o.Transitive,
		HideBelongsTo: o.HideBelongsTo,
		All:           o.All,
		Modules:       o.Modules,
		Filter:        o.Filter,
		Links:         o.linkResolver(),
		Logger:        o.Logger,
	}
}

// DOTOptions returns the emitter configuration for a walk result.
func (o *Options) DOTOptions(res *walker.Result) dot.Options {
	opts := dot.Options{
		DiagramType:   res.DiagramType,
		ShowLabel:     o.ShowLabel,
		Title:         o.Title,
		SchemaVersion: res.SchemaVersion,
		Now:           o.Now,
		EdgeLengths:   o.EdgeLengths,
	}
	switch o.Colors {
	case ColorsRoundRobin:
		opts.Colors = dot.NewRoundRobin(nil)
	case ColorsSeeded:
		opts.Colors = dot.NewSeeded(nil, o.seed())
	}
	return opts
}

func (o *Options) seed() uint64 {
	if o.Seed == nil {
		return DefaultSeed
	}
	return *o.Seed
}

// ArtifactKeyOpts returns cache key options for a rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

func (o *Options) linkResolver() *links.Resolver {
	if o.LinkBase == "" {
		return nil
	}
	roots := o.LinkRoots
	if len(roots) == 0 {
		roots = links.ModelRoots
		if o.DiagramType == DiagramControllers {
			roots = links.ControllerRoots
		}
	}
	return &links.Resolver{Base: o.LinkBase, Roots: roots, Ext: o.LinkExt, FS: o.FS}
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}

// walk dispatches to the walker for the diagram type.
func walk(o *Options, cat *schema.Catalog) (*walker.Result, error) {
	switch o.DiagramType {
	case DiagramControllers:
		return walker.Controllers(cat, o.WalkerOptions())
	case DiagramStates:
		return walker.StateMachines(cat, o.WalkerOptions())
	case DiagramModels:
		return walker.Models(cat, o.WalkerOptions())
	}
	return nil, ValidateDiagramType(o.DiagramType)
}
