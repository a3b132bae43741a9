// Package io reads and writes class catalogs and diagram artifacts.
//
// # Catalog Formats
//
// Catalogs may be written as JSON, YAML or TOML; [ImportCatalog] picks the
// decoder from the file extension (.json, .yaml/.yml, .toml):
//
//	version: "20260101120000"
//	classes:
//	  - name: Post
//	    superclass: ApplicationRecord
//	    columns:
//	      - {name: id, type: integer}
//	      - {name: title, type: string, content: true}
//	    associations:
//	      - {macro: has_many, name: comments, target: Comment}
//	  - name: Comment
//	    associations:
//	      - {macro: belongs_to, name: post, target: Post}
//
// Decoders reject unknown keys and run [schema.Catalog.Validate], so a
// returned catalog is indexed and ready for the walker. Decoding and
// validation failures carry the INVALID_CATALOG code; a missing file carries
// FILE_NOT_FOUND.
//
// # Export
//
// [ExportCatalog] converts between formats, which is handy when a catalog
// produced by a script as JSON should be maintained by hand as YAML.
// [WriteArtifact] writes rendered documents atomically.
//
// # Concurrency
//
// All functions are safe for concurrent use. Returned catalogs are
// independent of their source.
package io
