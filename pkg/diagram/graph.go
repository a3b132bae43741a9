package diagram

import (
	"errors"
	"slices"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node name is
	// empty.
	ErrInvalidNodeID = cgerrors.New(cgerrors.ErrCodeInvalidNode, "node name must not be empty")

	// ErrDuplicateNode is wrapped by [Graph.AddNode] when a node with the same
	// name already exists at top level or in any cluster.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrNodeNotFound is wrapped by [Graph.AddCluster] when the node is not
	// waiting in the top-level list. A node can be clustered only once.
	ErrNodeNotFound = errors.New("node not in top-level list")

	// ErrUnknownEdgeKind is wrapped by [NewEdge], [ParseEdgeKind] and
	// [Graph.AddEdge] for kinds outside the enumerated set.
	ErrUnknownEdgeKind = errors.New("unknown edge kind")
)

// Serializer turns a graph snapshot into a document.
type Serializer interface {
	Serialize(g *Graph) (string, error)
}

// Graph holds the nodes, edges and inheritance clusters of one diagram.
//
// Nodes start in the top-level list and move into exactly one cluster when
// [Graph.AddCluster] is called for them. Clusters are created lazily, kept in
// creation order, and never split or removed.
//
// The zero value is not usable - use New. A Graph is not safe for concurrent
// use; serialize only after mutation has finished.
type Graph struct {
	nodes    []*Node
	edges    []Edge
	clusters map[string]*cluster
	order    []string // cluster keys in creation order
}

type cluster struct {
	key     string
	members []*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{clusters: make(map[string]*cluster)}
}

// AddNode appends a node to the top-level list.
//
// The node must pass [Node.Validate]. Names are unique across the whole
// graph: a second node with a name already present at top level or in any
// cluster is rejected with a DUPLICATE_NODE error wrapping
// [ErrDuplicateNode], and the graph is left unchanged.
func (g *Graph) AddNode(n Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if _, ok := g.Lookup(n.Name); ok {
		return cgerrors.Wrap(cgerrors.ErrCodeDuplicateNode, ErrDuplicateNode, "node %s", n.Name)
	}
	g.nodes = append(g.nodes, &n)
	return nil
}

// AddEdge appends an edge. Edges with an unknown kind are rejected and the
// edge list is left unchanged; endpoints are not required to exist yet.
func (g *Graph) AddEdge(e Edge) error {
	if !e.Kind.Valid() {
		return unknownEdgeKind(string(e.Kind))
	}
	g.edges = append(g.edges, e)
	return nil
}

// AddCluster relocates the top-level node called name into the inheritance
// cluster for superclass.
//
// The node is placed, in order of preference:
//  1. into whichever cluster already holds a member named superclass, so one
//     lineage never spawns two clusters when subclasses are discovered along
//     different paths before their common ancestor;
//  2. into the cluster keyed by superclass, created if missing.
//
// If the superclass itself is still waiting at top level, it is moved to
// index 0 of that cluster.
//
// AddCluster returns a NODE_NOT_FOUND error wrapping [ErrNodeNotFound] when
// name is not in the top-level list, which includes nodes already clustered.
func (g *Graph) AddCluster(superclass, name string) error {
	i := g.topIndex(name)
	if i < 0 {
		return cgerrors.Wrap(cgerrors.ErrCodeNodeNotFound, ErrNodeNotFound, "cluster %s under %s", name, superclass)
	}
	node := g.nodes[i]
	g.nodes = slices.Delete(g.nodes, i, i+1)
	node.Superclass = superclass

	c := g.clusterHolding(superclass)
	if c == nil {
		c = g.clusters[superclass]
	}
	if c == nil {
		c = &cluster{key: superclass}
		g.clusters[superclass] = c
		g.order = append(g.order, superclass)
	}
	c.members = append(c.members, node)

	if j := g.topIndex(superclass); j >= 0 {
		super := g.nodes[j]
		g.nodes = slices.Delete(g.nodes, j, j+1)
		c.members = slices.Insert(c.members, 0, super)
	}
	return nil
}

// Serialize renders the current state with s. It does not mutate the graph
// and may be called any number of times.
func (g *Graph) Serialize(s Serializer) (string, error) {
	return s.Serialize(g)
}

// Nodes returns copies of the top-level nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return copyNodes(g.nodes)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Clusters returns copies of all clusters in creation order.
func (g *Graph) Clusters() []Cluster {
	out := make([]Cluster, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.clusters[key].view())
	}
	return out
}

// Cluster returns the cluster keyed by superclass.
func (g *Graph) Cluster(superclass string) (Cluster, bool) {
	c, ok := g.clusters[superclass]
	if !ok {
		return Cluster{}, false
	}
	return c.view(), true
}

// ClusterOf returns the key of the cluster holding name, if any.
func (g *Graph) ClusterOf(name string) (string, bool) {
	for _, key := range g.order {
		if g.clusters[key].index(name) >= 0 {
			return key, true
		}
	}
	return "", false
}

// Lookup finds a node by name at top level or in any cluster.
func (g *Graph) Lookup(name string) (Node, bool) {
	if i := g.topIndex(name); i >= 0 {
		return *g.nodes[i], true
	}
	for _, key := range g.order {
		c := g.clusters[key]
		if i := c.index(name); i >= 0 {
			return *c.members[i], true
		}
	}
	return Node{}, false
}

// NodeCount returns the number of nodes at top level and in clusters.
func (g *Graph) NodeCount() int {
	n := len(g.nodes)
	for _, c := range g.clusters {
		n += len(c.members)
	}
	return n
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// ClusterCount returns the number of clusters.
func (g *Graph) ClusterCount() int { return len(g.order) }

func (g *Graph) topIndex(name string) int {
	return slices.IndexFunc(g.nodes, func(n *Node) bool { return n.Name == name })
}

func (g *Graph) clusterHolding(name string) *cluster {
	for _, key := range g.order {
		if c := g.clusters[key]; c.index(name) >= 0 {
			return c
		}
	}
	return nil
}

func (c *cluster) index(name string) int {
	return slices.IndexFunc(c.members, func(n *Node) bool { return n.Name == name })
}

func (c *cluster) view() Cluster {
	return Cluster{Key: c.key, Members: copyNodes(c.members)}
}

func copyNodes(nodes []*Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = *n
	}
	return out
}
