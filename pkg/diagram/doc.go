// Package diagram provides the in-memory model of a class diagram: nodes
// (classes), edges (associations and inheritance) and clusters (inheritance
// groupings).
//
// # Overview
//
// A metadata walker discovers classes in arbitrary order and feeds them to a
// [Graph]. Every class starts as a top-level node. When the walker learns
// that a class inherits from another cataloged class it calls
// [Graph.AddCluster], which relocates the node into the cluster for that
// lineage:
//
//	g := diagram.New()
//	_ = g.AddNode(diagram.Node{Name: "Vehicle", Kind: diagram.KindModel})
//	_ = g.AddNode(diagram.Node{Name: "Car", Kind: diagram.KindModel})
//	_ = g.AddCluster("Vehicle", "Car") // cluster "Vehicle": [Vehicle, Car]
//
// # Clustering
//
// Placement is correct regardless of discovery order. A subclass may arrive
// before or after its superclass, and a grandchild may be clustered before
// its parent is known to belong anywhere: if any cluster already holds a
// member named after the requested superclass, the node joins that cluster
// instead of opening a second one for the same lineage. A superclass still
// waiting at top level is promoted to member 0 of its cluster.
//
// # Node Kinds
//
// Each [NodeKind] owns one attribute shape. Models carry [Field] lists,
// controllers carry [MethodGroups], state machines carry state names, and
// all other kinds carry nothing. [Node.Validate] rejects mixed shapes.
//
// # Edges
//
// Edges are built with [NewEdge] or [ParseEdgeKind]; a kind outside the
// enumerated [EdgeKind] set is a construction error, never a silently
// dropped edge.
//
// # Serialization
//
// [Graph.Serialize] hands the current state to a [Serializer]. The DOT
// emitter lives in [github.com/matzehuels/classgraph/pkg/render/dot]; the XMI
// emitter in [github.com/matzehuels/classgraph/pkg/render/xmi] always
// reports that the format is unsupported.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Build the graph from one
// goroutine and serialize it after the build has finished.
package diagram
