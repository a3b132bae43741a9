package dot

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/matzehuels/classgraph/pkg/buildinfo"
	"github.com/matzehuels/classgraph/pkg/diagram"
)

// DefaultDiagramType names the graph when Options.DiagramType is empty.
const DefaultDiagramType = "Models"

// dateFormat renders the title block timestamp, e.g. "Oct 15 2026 - 09:30".
const dateFormat = "Jan 02 2006 - 15:04"

// Options configures DOT emission.
type Options struct {
	// DiagramType names the graph ("Models" -> digraph models_diagram).
	DiagramType string

	// ShowLabel adds a title block with the title, a timestamp and the
	// generator line.
	ShowLabel bool
	// Title overrides the default "<DiagramType> diagram" title.
	Title string
	// SchemaVersion is printed in the title block when set.
	SchemaVersion string
	// Generator overrides the "classgraph <version>" generator line.
	Generator string
	// Now supplies the title block timestamp. Defaults to time.Now.
	Now func() time.Time

	// Colors picks a background color per cluster. Nil leaves clusters
	// uncolored.
	Colors ColorPicker

	// EdgeLengths adds len hints to edges between two model nodes.
	EdgeLengths bool
}

// Emitter renders graphs as DOT. It implements [diagram.Serializer].
type Emitter struct {
	Options Options
}

// Serialize implements [diagram.Serializer].
func (e Emitter) Serialize(g *diagram.Graph) (string, error) {
	return ToDOT(g, e.Options)
}

// ToDOT renders g as a Graphviz document: header, top-level nodes, clusters,
// edges, footer. The graph is only read.
//
// An edge whose kind is outside the enumerated set cannot be added to a
// graph, but ToDOT still reports one as an error rather than dropping it.
func ToDOT(g *diagram.Graph, opts Options) (string, error) {
	w := &writer{opts: opts, kinds: kindIndex(g)}

	w.header()
	for _, n := range g.Nodes() {
		w.node("\t", n)
	}
	for _, c := range g.Clusters() {
		if err := w.cluster(c); err != nil {
			return "", err
		}
	}
	for _, e := range g.Edges() {
		if err := w.edge("\t", e); err != nil {
			return "", err
		}
	}
	w.footer()

	return w.buf.String(), nil
}

type writer struct {
	buf   bytes.Buffer
	opts  Options
	kinds map[string]diagram.NodeKind // every node name, top level and clustered
}

func (w *writer) header() {
	fmt.Fprintf(&w.buf, "digraph %s_diagram {\n", graphID(w.diagramType()))
	w.buf.WriteString("\tgraph[overlap=false, splines=ortho]\n")
	if !w.opts.ShowLabel {
		return
	}
	var label strings.Builder
	for _, line := range w.titleLines() {
		label.WriteString(escape(line))
		label.WriteString(`\l`)
	}
	w.buf.WriteString("\tlabelloc=\"t\";\n")
	fmt.Fprintf(&w.buf, "\tlabel=\"%s\"\n", label.String())
}

func (w *writer) footer() {
	w.buf.WriteString("}\n")
}

func (w *writer) titleLines() []string {
	title := w.opts.Title
	if title == "" {
		title = w.diagramType() + " diagram"
	}
	now := time.Now
	if w.opts.Now != nil {
		now = w.opts.Now
	}
	generator := w.opts.Generator
	if generator == "" {
		generator = buildinfo.Generator()
	}

	lines := []string{title, "Date: " + now().Format(dateFormat)}
	if w.opts.SchemaVersion != "" {
		lines = append(lines, "Schema version: "+w.opts.SchemaVersion)
	}
	return append(lines, "Generated by "+generator)
}

func (w *writer) diagramType() string {
	if w.opts.DiagramType == "" {
		return DefaultDiagramType
	}
	return w.opts.DiagramType
}

var nonIdentRe = regexp.MustCompile(`[^a-z0-9_]+`)

// graphID lowercases a diagram type into a bare DOT identifier.
func graphID(diagramType string) string {
	id := nonIdentRe.ReplaceAllString(strings.ToLower(diagramType), "_")
	if id == "" {
		return "class"
	}
	return id
}

// kindIndex maps every node name to its kind, across top level and clusters.
func kindIndex(g *diagram.Graph) map[string]diagram.NodeKind {
	kinds := make(map[string]diagram.NodeKind)
	for _, n := range g.Nodes() {
		kinds[n.Name] = n.Kind
	}
	for _, c := range g.Clusters() {
		for _, m := range c.Members {
			kinds[m.Name] = m.Kind
		}
	}
	return kinds
}

// quote wraps a DOT identifier in double quotes.
func quote(id string) string {
	return `"` + escape(id) + `"`
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// escape makes s safe inside a double-quoted DOT string.
func escape(s string) string {
	return escaper.Replace(s)
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	"\n", ` `,
)

// escapeRecord makes s safe inside a record-shaped node label field.
func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}
