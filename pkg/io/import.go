package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// Format is a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", cgerrors.New(cgerrors.ErrCodeInvalidFormat, "%s: unsupported catalog extension (want .json, .yaml, .yml or .toml)", path)
}

// ReadJSON decodes a JSON catalog from r and validates it.
//
// Unknown fields are rejected so that typos in hand-written catalogs surface
// instead of silently dropping data. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*schema.Catalog, error) {
	var cat schema.Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cat); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "decode json")
	}
	return validated(&cat)
}

// ReadYAML decodes a YAML catalog from r and validates it.
func ReadYAML(r io.Reader) (*schema.Catalog, error) {
	var cat schema.Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "decode yaml")
	}
	return validated(&cat)
}

// ReadTOML decodes a TOML catalog from r and validates it.
func ReadTOML(r io.Reader) (*schema.Catalog, error) {
	var cat schema.Catalog
	md, err := toml.NewDecoder(r).Decode(&cat)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidCatalog, "decode toml: unknown key %s", undecoded[0])
	}
	return validated(&cat)
}

// Read decodes a catalog in the given format.
func Read(r io.Reader, f Format) (*schema.Catalog, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	case FormatTOML:
		return ReadTOML(r)
	}
	return nil, cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unknown catalog format %q", f)
}

// ImportCatalog reads the catalog file at path, choosing the decoder from
// its extension.
func ImportCatalog(path string) (*schema.Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func validated(cat *schema.Catalog) (*schema.Catalog, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
