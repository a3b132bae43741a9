// Package pkg provides the core libraries for classgraph class diagrams.
//
// # Overview
//
// classgraph draws class diagrams of an application from a catalog of its
// classes: data models with their columns and associations, controllers with
// their actions, and state machines with their events. The output is a
// Graphviz document, optionally rendered to SVG, PNG or PDF.
//
// # Architecture
//
// The data flow through classgraph:
//
//	Catalog file (JSON / YAML / TOML)
//	         ↓
//	[io] import + [schema] validation
//	         ↓
//	[walker] (models / controllers / states)
//	         ↓  classify associations ([classify])
//	[diagram] graph: nodes, edges, inheritance clusters
//	         ↓
//	[render/dot] DOT text
//	         ↓
//	[render/dot] SVG via Graphviz, [render] PNG / PDF
//
// # Quick Start
//
//	cat, _ := io.ImportCatalog("catalog.json")
//	res, _ := walker.Models(cat, walker.Options{Inheritance: true})
//	doc, _ := dot.ToDOT(res.Graph, dot.Options{DiagramType: res.DiagramType})
//
// Or, with defaults, caching and rendering handled for you:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Execute(ctx, cat, pipeline.Options{Formats: []string{"svg"}})
//
// # Main Packages
//
// ## Domain
//
// [diagram] - The graph model: typed nodes, classified edges and inheritance
// clusters, with insertion order preserved for deterministic output.
//
// [classify] - Turns catalog associations into edge kinds (one-to-one,
// one-to-many, many-to-many, inheritance) with per-run dedup state.
//
// [schema] - The catalog model and its validation.
//
// [walker] - Builds diagram graphs from catalogs for the three diagram types.
//
// [naming] - Rails-style inflection (underscore, pluralize, table names).
//
// [links] - Source links from class names to files in a project tree.
//
// ## Output
//
// [render/dot] - DOT emission, SVG rendering and DOT validation.
//
// [render] - SVG to PNG / PDF conversion.
//
// [render/xmi] - XMI placeholder; always unsupported.
//
// ## Infrastructure
//
// [pipeline] - Generate and render with caching; shared by CLI and server.
//
// [cache] - Artifact caches (file, Redis, null) and key derivation.
//
// [config] - Project configuration files and environment overrides.
//
// [server] - HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [errors] - Coded errors shared by all packages.
//
// [buildinfo] - Version information.
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/diagram
// [classify]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/classify
// [schema]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/schema
// [walker]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/walker
// [naming]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/naming
// [links]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/links
// [io]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/io
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/render/dot
// [render]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/render
// [render/xmi]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/render/xmi
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/classgraph/pkg/buildinfo
package pkg
