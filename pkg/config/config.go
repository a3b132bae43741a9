// Package config loads project configuration for classgraph.
//
// Configuration is read from .classgraph.toml, .classgraph.yaml or
// .classgraph.yml in the project directory, in that order. A .env file next
// to it may set CLASSGRAPH_* variables, which override file values.
// Command-line flags override both.
//
//	catalog = "tmp/catalog.json"
//	output  = "doc/diagrams"
//
//	[diagram]
//	inheritance = true
//	hide_magic  = true
//	formats     = ["dot", "svg"]
//
//	[links]
//	base = "https://github.com/acme/shop/blob/main"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/classgraph/pkg/cache"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/pipeline"
)

// FileNames are the configuration files looked up by [Find], in order.
var FileNames = []string{".classgraph.toml", ".classgraph.yaml", ".classgraph.yml"}

// Environment variables applied by [Load] and [LoadDir].
const (
	EnvCatalog  = "CLASSGRAPH_CATALOG"
	EnvCacheDir = "CLASSGRAPH_CACHE_DIR"
	EnvRedisURL = "CLASSGRAPH_REDIS_URL"
	EnvAddr     = "CLASSGRAPH_ADDR"
	EnvLinkBase = "CLASSGRAPH_LINK_BASE"
	EnvNoCache  = "CLASSGRAPH_NO_CACHE"

	EnvCachePrefix = "CLASSGRAPH_CACHE_PREFIX"
)

const (
	DefaultCatalog      = "catalog.json"
	DefaultAddr         = ":8080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultMaxBodyBytes = 8 << 20
)

// Config is the project configuration.
type Config struct {
	Catalog string  `toml:"catalog" yaml:"catalog"`
	Output  string  `toml:"output" yaml:"output"`
	Diagram Diagram `toml:"diagram" yaml:"diagram"`
	Links   Links   `toml:"links" yaml:"links"`
	Cache   Cache   `toml:"cache" yaml:"cache"`
	Server  Server  `toml:"server" yaml:"server"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-" yaml:"-"`
}

// Diagram holds defaults for diagram generation.
type Diagram struct {
	Brief         bool     `toml:"brief" yaml:"brief"`
	HideMagic     bool     `toml:"hide_magic" yaml:"hide_magic"`
	HideTypes     bool     `toml:"hide_types" yaml:"hide_types"`
	ContentOnly   bool     `toml:"content_only" yaml:"content_only"`
	Inheritance   bool     `toml:"inheritance" yaml:"inheritance"`
	Transitive    bool     `toml:"transitive" yaml:"transitive"`
	HideBelongsTo bool     `toml:"hide_belongs_to" yaml:"hide_belongs_to"`
	All           bool     `toml:"all" yaml:"all"`
	Modules       bool     `toml:"modules" yaml:"modules"`
	Filter        []string `toml:"filter" yaml:"filter"`

	Label       bool     `toml:"label" yaml:"label"`
	Title       string   `toml:"title" yaml:"title"`
	Colors      string   `toml:"colors" yaml:"colors"`
	Seed        uint64   `toml:"seed" yaml:"seed"`
	EdgeLengths bool     `toml:"edge_lengths" yaml:"edge_lengths"`
	Formats     []string `toml:"formats" yaml:"formats"`
	Scale       float64  `toml:"scale" yaml:"scale"`
}

// Links configures source links on nodes.
type Links struct {
	Base  string   `toml:"base" yaml:"base"`
	Roots []string `toml:"roots" yaml:"roots"`
	Ext   string   `toml:"ext" yaml:"ext"`
}

// Cache selects the artifact cache backend. RedisURL wins over Dir.
type Cache struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
	// Prefix scopes artifact keys, e.g. per project on a shared Redis.
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// Keyer returns the artifact keyer for the configured prefix.
func (c Cache) Keyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, c.Prefix)
}

// Server configures the HTTP API.
type Server struct {
	Addr         string `toml:"addr" yaml:"addr"`
	ReadTimeout  string `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout" yaml:"write_timeout"`
	MaxBodyBytes int64  `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Catalog: DefaultCatalog,
		Diagram: Diagram{
			Colors:  pipeline.ColorsNone,
			Formats: []string{pipeline.FormatDOT},
			Scale:   pipeline.DefaultScale,
			Seed:    pipeline.DefaultSeed,
		},
		Server: Server{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout.String(),
			WriteTimeout: DefaultWriteTimeout.String(),
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}

// Find returns the first configuration file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadDir loads the configuration file found in dir, or the defaults when
// there is none. The .env file in dir and the environment are applied on top.
func LoadDir(dir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	path, ok := Find(dir)
	if !ok {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	return load(path)
}

// Load reads the configuration file at path. The format follows the file
// extension; the .env file next to it and the environment are applied on top.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	return load(path)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidConfig, "unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	cfg.Path = path

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// loadDotEnv sets variables from a .env file without overriding the
// process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvCachePrefix); v != "" {
		c.Cache.Prefix = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLinkBase); v != "" {
		c.Links.Base = v
	}
	if v := os.Getenv(EnvNoCache); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "%s", EnvNoCache)
		}
		c.Cache.Disabled = disabled
	}
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if err := pipeline.ValidateFormats(c.Diagram.Formats); err != nil {
		return err
	}
	if c.Diagram.Colors != "" && !pipeline.ValidColors[c.Diagram.Colors] {
		return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "invalid colors %q", c.Diagram.Colors)
	}
	if c.Diagram.Scale < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "scale must be positive")
	}
	if c.Links.Base != "" {
		if err := cgerrors.ValidateLinkBase(c.Links.Base); err != nil {
			return err
		}
	}
	if _, err := c.Server.Timeouts(); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidConfig, "max_body_bytes must not be negative")
	}
	return nil
}

// Timeouts parses the read and write timeouts. Empty values use the defaults.
func (s Server) Timeouts() ([2]time.Duration, error) {
	out := [2]time.Duration{DefaultReadTimeout, DefaultWriteTimeout}
	for i, v := range []string{s.ReadTimeout, s.WriteTimeout} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return out, cgerrors.New(cgerrors.ErrCodeInvalidConfig, "invalid server timeout %q", v)
		}
		out[i] = d
	}
	return out, nil
}

// Options returns pipeline options for a diagram type from the configured
// defaults.
func (c *Config) Options(diagramType string) pipeline.Options {
	d := c.Diagram
	return pipeline.Options{
		DiagramType:   diagramType,
		Brief:         d.Brief,
		HideMagic:     d.HideMagic,
		HideTypes:     d.HideTypes,
		ContentOnly:   d.ContentOnly,
		Inheritance:   d.Inheritance,
		Transitive:    d.Transitive,
		HideBelongsTo: d.HideBelongsTo,
		All:           d.All,
		Modules:       d.Modules,
		Filter:        append([]string(nil), d.Filter...),
		LinkBase:      c.Links.Base,
		LinkRoots:     append([]string(nil), c.Links.Roots...),
		LinkExt:       c.Links.Ext,
		ShowLabel:     d.Label,
		Title:         d.Title,
		Colors:        d.Colors,
		Seed:          &d.Seed,
		EdgeLengths:   d.EdgeLengths,
		Formats:       append([]string(nil), d.Formats...),
		Scale:         d.Scale,
	}
}
