package dot

import (
	"fmt"
	"strings"

	"github.com/matzehuels/classgraph/pkg/diagram"
)

// leftJustify ends a line inside a record or graph label.
const leftJustify = `\l`

// node writes one node statement. State machines render as nested subgraphs.
func (w *writer) node(indent string, n diagram.Node) {
	if n.Kind == diagram.KindStateMachine {
		w.stateMachine(indent, n)
		return
	}
	fmt.Fprintf(&w.buf, "%s%s [%s]\n", indent, quote(n.Name), strings.Join(nodeAttrs(n), ", "))
}

func nodeAttrs(n diagram.Node) []string {
	name := escapeRecord(n.Name)
	switch n.Kind {
	case diagram.KindModel:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = escapeRecord(f.String())
		}
		attrs := []string{"shape=Mrecord", fmt.Sprintf(`label="{%s|%s%s}"`, name, strings.Join(fields, leftJustify), leftJustify)}
		if n.Color != "" {
			attrs = append(attrs, "style=filled", "fillcolor="+quote(n.Color))
		}
		if n.SourceURL != "" {
			attrs = append(attrs, "URL="+quote(n.SourceURL))
		}
		return attrs
	case diagram.KindClass:
		return []string{"shape=record", fmt.Sprintf(`label="{%s|}"`, name)}
	case diagram.KindController:
		var m diagram.MethodGroups
		if n.Methods != nil {
			m = *n.Methods
		}
		body := methodSection(m.Public) + "|" + methodSection(m.Protected) + "|" + methodSection(m.Private)
		return []string{"shape=Mrecord", fmt.Sprintf(`label="{%s|%s}"`, name, body)}
	case diagram.KindModule:
		return []string{"shape=box", "style=dotted", "label=" + quote(n.Name)}
	default: // model-brief, class-brief, controller-brief
		return []string{"shape=box"}
	}
}

func methodSection(methods []string) string {
	escaped := make([]string, len(methods))
	for i, m := range methods {
		escaped[i] = escapeRecord(m)
	}
	return strings.Join(escaped, leftJustify) + leftJustify
}

// stateMachine writes a state machine as its own cluster subgraph whose body
// lists the state names.
func (w *writer) stateMachine(indent string, n diagram.Node) {
	states := make([]string, len(n.States))
	for i, s := range n.States {
		states[i] = quote(s)
	}
	fmt.Fprintf(&w.buf, "%ssubgraph %s {\n", indent, quote("cluster_"+strings.ToLower(n.Name)))
	fmt.Fprintf(&w.buf, "%s\tlabel = %s\n", indent, quote(n.Name))
	fmt.Fprintf(&w.buf, "%s\t%s}\n", indent, strings.Join(states, "\n  "))
}
