// Package render holds output-format helpers shared by the diagram
// renderers.
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := dot.RenderSVG(ctx, doc)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Renderers live in subpackages:
//   - [dot]: Graphviz DOT text and SVG via go-graphviz
//   - [xmi]: XMI interchange (not supported)
//
// [dot]: github.com/matzehuels/classgraph/pkg/render/dot
// [xmi]: github.com/matzehuels/classgraph/pkg/render/xmi
package render
