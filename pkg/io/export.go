package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// WriteJSON encodes a catalog as indented JSON.
// The output can be re-imported with [ReadJSON].
func WriteJSON(cat *schema.Catalog, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a catalog as YAML.
func WriteYAML(cat *schema.Catalog, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteTOML encodes a catalog as TOML.
func WriteTOML(cat *schema.Catalog, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(cat); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes a catalog in the given format.
func Write(cat *schema.Catalog, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(cat, w)
	case FormatYAML:
		return WriteYAML(cat, w)
	case FormatTOML:
		return WriteTOML(cat, w)
	}
	return cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unknown catalog format %q", f)
}

// ExportCatalog writes a catalog to path in the format its extension names.
func ExportCatalog(cat *schema.Catalog, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(cat, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteArtifact writes rendered output (DOT, SVG, PDF, PNG) to path,
// creating parent directories as needed. The file is written to a temporary
// sibling first and renamed into place.
func WriteArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
