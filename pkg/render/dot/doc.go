// Package dot renders class diagrams as Graphviz DOT documents.
//
// # Overview
//
// [ToDOT] walks a [diagram.Graph] once and writes, in order: the graph
// header, every top-level node, every inheritance cluster as a subgraph,
// every edge and the closing brace. [Emitter] wraps ToDOT as a
// [diagram.Serializer]:
//
//	doc, err := g.Serialize(dot.Emitter{Options: dot.Options{ShowLabel: true}})
//	svg, err := dot.RenderSVG(ctx, doc)
//
// # Node Templates
//
// Models are Mrecord shapes listing "name :type" fields, one left-justified
// line each, with optional fill color and URL. Plain classes are empty
// records, controllers are three-section records (public, protected,
// private), modules are dotted boxes, brief variants are plain boxes, and
// state machines become nested subgraphs listing their states. Identifiers
// are always double-quoted.
//
// # Edge Templates
//
//   - one-one: odot at both ends
//   - one-many: odot tail, crow head
//   - many-many: crow at both ends
//   - is-a: undirected line
//   - is-a-child: hollow triangle pointing at the ancestor
//   - invisible: styled invisible; still takes part in layout
//   - event: small-font label
//
// Association names render as both label and tooltip.
//
// # Clusters
//
// Wide inheritance fan-outs stay compact: every direct subclass connects to
// one invisible funnel point per cluster, and a single trunk edge connects
// the funnel to the superclass.
//
// # Colors
//
// Cluster backgrounds come from an injected [ColorPicker]; [RoundRobin] and
// [Seeded] are deterministic so output can be diffed between runs.
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz] for in-process rendering.
// PDF and PNG conversion requires librsvg (rsvg-convert).
package dot
