package dot

import (
	"fmt"

	"github.com/matzehuels/classgraph/pkg/diagram"
	"github.com/matzehuels/classgraph/pkg/naming"
)

// funnelSuffix names the invisible point sibling subclasses converge on.
const funnelSuffix = ":funnel"

// cluster writes an inheritance cluster as a subgraph.
//
// Subclasses whose recorded superclass is the cluster key hang off one
// shared funnel point instead of drawing one line each to the superclass.
// Deeper descendants merged into the cluster draw an is-a-child edge from
// their own superclass.
func (w *writer) cluster(c diagram.Cluster) error {
	fmt.Fprintf(&w.buf, "\tsubgraph %s {\n", quote("cluster_"+naming.Underscore(c.Key)))
	fmt.Fprintf(&w.buf, "\t\tlabel=%s\n", quote(c.Key))
	if w.opts.Colors != nil {
		fmt.Fprintf(&w.buf, "\t\tbgcolor=%s\n", quote(w.opts.Colors.Next()))
	}

	for _, m := range c.Members {
		w.node("\t\t", m)
	}

	funnel := c.Key + funnelSuffix
	fmt.Fprintf(&w.buf, "\t\t%s [label=\"\", fixedsize=\"false\", width=0, height=0, shape=none]\n", quote(funnel))
	// The trunk needs a real superclass node; without one Graphviz would
	// invent a bare ellipse, so the funnel roots the cluster instead.
	if _, ok := w.kinds[c.Key]; ok {
		fmt.Fprintf(&w.buf, "\t\t%s -> %s [label=\"\", dir=\"back\", arrowtail=empty, arrowsize=\"2\", len=\"0.2\"]\n",
			quote(c.Key), quote(funnel))
	}

	subclasses := c.Members
	if c.HasKeyNode() {
		subclasses = subclasses[1:]
	}
	for _, m := range subclasses {
		e := diagram.Edge{Kind: diagram.EdgeIsAChild, From: m.Superclass, To: m.Name}
		if m.Superclass == c.Key {
			e = diagram.Edge{Kind: diagram.EdgeIsA, From: funnel, To: m.Name}
		}
		if err := w.edge("\t\t", e); err != nil {
			return err
		}
	}

	w.buf.WriteString("\t}\n")
	return nil
}
