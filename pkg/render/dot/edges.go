package dot

import (
	"fmt"
	"strings"

	"github.com/matzehuels/classgraph/pkg/diagram"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
)

// edgeStyles holds the per-kind attribute template.
// See https://graphviz.org/doc/info/attrs.html for the arrow vocabulary.
var edgeStyles = map[diagram.EdgeKind][]string{
	diagram.EdgeOneOne:    {"arrowtail=odot", "arrowhead=odot", "dir=both", "concentrate=true"},
	diagram.EdgeOneMany:   {"arrowtail=odot", "arrowhead=crow", "dir=both", "concentrate=true"},
	diagram.EdgeManyMany:  {"arrowtail=crow", "arrowhead=crow", "dir=both", "concentrate=true"},
	diagram.EdgeIsA:       {`label=""`, `dir="none"`},
	diagram.EdgeIsAChild:  {`label=""`, `dir="back"`, "arrowtail=empty"},
	diagram.EdgeInvisible: {"style=invis"},
	diagram.EdgeEvent:     {"fontsize=10"},
}

// edge writes one edge statement.
func (w *writer) edge(indent string, e diagram.Edge) error {
	attrs, err := w.edgeAttrs(e)
	if err != nil {
		return err
	}
	fmt.Fprintf(&w.buf, "%s%s -> %s [%s]\n", indent, quote(e.From), quote(e.To), strings.Join(attrs, ", "))
	return nil
}

func (w *writer) edgeAttrs(e diagram.Edge) ([]string, error) {
	style, ok := edgeStyles[e.Kind]
	if !ok {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidEdgeKind, diagram.ErrUnknownEdgeKind, "render %s", e)
	}

	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, "label="+quote(e.Label), "tooltip="+quote(e.Label))
	}
	attrs = append(attrs, style...)

	if w.opts.EdgeLengths && w.kinds[e.From].IsModel() && w.kinds[e.To].IsModel() {
		attrs = append(attrs, fmt.Sprintf("len=%d", EdgeLength(e.Kind, e.From, e.To)))
	}
	return attrs, nil
}

// EdgeLength is the layout length hint for an edge between two model
// classes: 10 by default, 1 for inheritance, 4 when one class name is a
// prefix of the other and 7 when one contains the other. It never affects
// the edge kind.
func EdgeLength(kind diagram.EdgeKind, from, to string) int {
	const base = 10
	switch {
	case kind.IsInheritance():
		return base - 9
	case strings.HasPrefix(from, to) || strings.HasPrefix(to, from):
		return base - 6
	case strings.Contains(from, to) || strings.Contains(to, from):
		return base - 3
	}
	return base
}
