package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/classgraph/pkg/config"
	cgio "github.com/matzehuels/classgraph/pkg/io"
	"github.com/matzehuels/classgraph/pkg/pipeline"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// stdinName reads the catalog from standard input.
const stdinName = "-"

// boolFlag binds a switch to a pipeline option.
type boolFlag struct {
	name, short, usage string
	field              func(*pipeline.Options) *bool
	types              []string // diagram types the switch applies to; nil means all
}

var boolFlags = []boolFlag{
	{"brief", "b", "draw class names only", func(o *pipeline.Options) *bool { return &o.Brief }, nil},
	{"hide-magic", "m", "hide ids, timestamps and counter caches", func(o *pipeline.Options) *bool { return &o.HideMagic }, modelsOnly},
	{"hide-types", "", "hide column types", func(o *pipeline.Options) *bool { return &o.HideTypes }, modelsOnly},
	{"content-only", "", "show content columns only", func(o *pipeline.Options) *bool { return &o.ContentOnly }, modelsOnly},
	{"inheritance", "i", "cluster subclasses under their superclass", func(o *pipeline.Options) *bool { return &o.Inheritance }, nil},
	{"transitive", "", "keep associations inherited from the superclass", func(o *pipeline.Options) *bool { return &o.Transitive }, modelsOnly},
	{"hide-belongs-to", "", "hide belongs_to associations", func(o *pipeline.Options) *bool { return &o.HideBelongsTo }, modelsOnly},
	{"all", "a", "include plain classes", func(o *pipeline.Options) *bool { return &o.All }, modelsOnly},
	{"modules", "", "include modules", func(o *pipeline.Options) *bool { return &o.Modules }, modelsOnly},
	{"label", "l", "add a title block", func(o *pipeline.Options) *bool { return &o.ShowLabel }, nil},
	{"edge-lengths", "", "add layout length hints to model edges", func(o *pipeline.Options) *bool { return &o.EdgeLengths }, modelsOnly},
	{"refresh", "", "re-render artifacts even if cached", func(o *pipeline.Options) *bool { return &o.Refresh }, nil},
}

var modelsOnly = []string{pipeline.DiagramModels}

// diagramFlags holds the command-line flags shared by the diagram commands.
type diagramFlags struct {
	switches map[string]*bool

	catalog   string
	output    string
	formats   []string
	filter    []string
	title     string
	colors    string
	seed      uint64
	scale     float64
	linkBase  string
	linkRoots []string
	linkExt   string
	noCache   bool
}

// diagramCommand creates the models, controllers or states command.
func (c *CLI) diagramCommand(diagramType, short string) *cobra.Command {
	f := &diagramFlags{switches: make(map[string]*bool)}

	cmd := &cobra.Command{
		Use:   diagramType + " [catalog]",
		Short: short,
		Long: short + `.

The catalog is a JSON, YAML or TOML file describing the application's classes.
Use "-" to read JSON from standard input. Without --output and with only the
dot format, the diagram is written to standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.catalog = args[0]
			}
			return c.runDiagram(cmd, diagramType, f)
		},
	}

	flags := cmd.Flags()
	for _, b := range boolFlags {
		if b.types != nil && !slices.Contains(b.types, diagramType) {
			continue
		}
		f.switches[b.name] = flags.BoolP(b.name, b.short, false, b.usage)
	}
	flags.StringVarP(&f.catalog, "catalog", "c", "", "catalog file (default from config, else catalog.json)")
	flags.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	flags.StringSliceVarP(&f.formats, "format", "f", nil, "output format(s): dot (default), svg, png, pdf, xmi")
	flags.StringSliceVarP(&f.filter, "filter", "s", nil, "only draw matching classes (Klass* globs allowed)")
	flags.StringVar(&f.title, "title", "", "title block heading (with --label)")
	flags.StringVar(&f.colors, "colors", "", "cluster colors: none, round-robin, seeded")
	flags.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "seed for --colors=seeded")
	flags.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	flags.StringVar(&f.linkBase, "link-base", "", "base URL for source links on nodes")
	flags.StringSliceVar(&f.linkRoots, "link-root", nil, "source roots probed for links")
	flags.StringVar(&f.linkExt, "link-ext", "", "source file extension for links (default rb)")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// options merges flags over the configured defaults. Only flags given on
// the command line override the configuration.
func (f *diagramFlags) options(flags *pflag.FlagSet, cfg *config.Config, diagramType string) pipeline.Options {
	opts := cfg.Options(diagramType)
	for _, b := range boolFlags {
		if v, ok := f.switches[b.name]; ok && flags.Changed(b.name) {
			*b.field(&opts) = *v
		}
	}
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("format", func() { opts.Formats = f.formats })
	set("filter", func() { opts.Filter = f.filter })
	set("title", func() { opts.Title = f.title })
	set("colors", func() { opts.Colors = f.colors })
	set("seed", func() { opts.Seed = &f.seed })
	set("scale", func() { opts.Scale = f.scale })
	set("link-base", func() { opts.LinkBase = f.linkBase })
	set("link-root", func() { opts.LinkRoots = f.linkRoots })
	set("link-ext", func() { opts.LinkExt = f.linkExt })
	return opts
}

func (c *CLI) runDiagram(cmd *cobra.Command, diagramType string, f *diagramFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := f.options(cmd.Flags(), cfg, diagramType)
	opts.Logger = logger
	opts.FS = os.DirFS(c.projectDir)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	catalogPath := f.catalog
	if catalogPath == "" {
		catalogPath = c.resolve(cfg.Catalog)
	}
	cat, err := readCatalog(cmd, catalogPath)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded catalog %s: %d classes", catalogPath, len(cat.Classes))

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	toStdout := f.output == "" && len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatDOT
	if toStdout {
		res, err := runner.Execute(ctx, cat, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.DOT)
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering "+diagramType+" diagram...")
	spinner.Start()
	res, err := runner.Execute(ctx, cat, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %s diagram", diagramType))

	out := cmd.OutOrStdout()
	base := basePath(f.output, filepath.Join(c.resolve(cfg.Output), diagramType))
	for _, format := range opts.Formats {
		path := base + "." + format
		if f.output != "" && len(opts.Formats) == 1 {
			path = f.output
		}
		if err := cgio.WriteArtifact(path, res.Artifacts[format]); err != nil {
			return err
		}
		printFile(out, path)
	}
	printStats(out, res.Stats, res.CacheInfo.RenderHit)
	return nil
}

// resolve makes configured paths relative to the project directory.
func (c *CLI) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.projectDir, path)
}

func readCatalog(cmd *cobra.Command, path string) (*schema.Catalog, error) {
	if path == stdinName {
		return cgio.Read(cmd.InOrStdin(), cgio.FormatJSON)
	}
	return cgio.ImportCatalog(path)
}

// basePath strips a known format extension from output, or returns fallback
// when output is empty.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
