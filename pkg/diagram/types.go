package diagram

import (
	"fmt"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
)

// NodeKind selects how a node is rendered and which attribute shape it carries.
type NodeKind string

const (
	// KindModel is a data-model class listing its fields.
	KindModel NodeKind = "model"
	// KindModelBrief is a data-model class rendered by name only.
	KindModelBrief NodeKind = "model-brief"
	// KindClass is a plain class rendered as an empty record.
	KindClass NodeKind = "class"
	// KindClassBrief is a plain class rendered by name only.
	KindClassBrief NodeKind = "class-brief"
	// KindController lists public, protected and private methods.
	KindController NodeKind = "controller"
	// KindControllerBrief is a controller rendered by name only.
	KindControllerBrief NodeKind = "controller-brief"
	// KindModule is a namespace or mixin module.
	KindModule NodeKind = "module"
	// KindStateMachine is a class rendered as a subgraph of its states.
	KindStateMachine NodeKind = "state-machine"
)

var nodeKinds = map[NodeKind]bool{
	KindModel:           true,
	KindModelBrief:      true,
	KindClass:           true,
	KindClassBrief:      true,
	KindController:      true,
	KindControllerBrief: true,
	KindModule:          true,
	KindStateMachine:    true,
}

// Valid reports whether k is one of the enumerated node kinds.
func (k NodeKind) Valid() bool { return nodeKinds[k] }

// IsModel reports whether the node belongs to the data-model domain.
func (k NodeKind) IsModel() bool { return k == KindModel || k == KindModelBrief }

// ParseNodeKind converts a string into a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	if !k.Valid() {
		return "", cgerrors.New(cgerrors.ErrCodeInvalidNode, "unknown node kind %q", s)
	}
	return k, nil
}

// EdgeKind is the visual relationship an edge represents.
type EdgeKind string

const (
	EdgeOneOne    EdgeKind = "one-one"
	EdgeOneMany   EdgeKind = "one-many"
	EdgeManyMany  EdgeKind = "many-many"
	EdgeIsA       EdgeKind = "is-a"
	EdgeIsAChild  EdgeKind = "is-a-child"
	EdgeInvisible EdgeKind = "invisible"
	EdgeEvent     EdgeKind = "event"
)

var edgeKinds = map[EdgeKind]bool{
	EdgeOneOne:    true,
	EdgeOneMany:   true,
	EdgeManyMany:  true,
	EdgeIsA:       true,
	EdgeIsAChild:  true,
	EdgeInvisible: true,
	EdgeEvent:     true,
}

// Valid reports whether k is one of the enumerated edge kinds.
func (k EdgeKind) Valid() bool { return edgeKinds[k] }

// IsInheritance reports whether the edge draws an inheritance relation.
func (k EdgeKind) IsInheritance() bool { return k == EdgeIsA || k == EdgeIsAChild }

// ParseEdgeKind converts a string into an EdgeKind. Unknown kinds are a
// construction error wrapping [ErrUnknownEdgeKind].
func ParseEdgeKind(s string) (EdgeKind, error) {
	k := EdgeKind(s)
	if !k.Valid() {
		return "", unknownEdgeKind(s)
	}
	return k, nil
}

func unknownEdgeKind(s string) error {
	return cgerrors.Wrap(cgerrors.ErrCodeInvalidEdgeKind, ErrUnknownEdgeKind, "edge kind %q", s)
}

// Field is one column of a model node.
type Field struct {
	Name string
	Type string // empty when type display is suppressed
}

// String renders the field as "name :type", or just the name without a type.
func (f Field) String() string {
	if f.Type == "" {
		return f.Name
	}
	return f.Name + " :" + f.Type
}

// MethodGroups lists controller method names by visibility.
type MethodGroups struct {
	Public    []string
	Protected []string
	Private   []string
}

// Node is a class in the diagram. Name is its identity and must be unique
// across the top-level list and every cluster.
//
// Exactly one attribute shape may be set, and only the one owned by Kind:
// Fields for [KindModel], Methods for [KindController], States for
// [KindStateMachine]. Every other kind carries no attributes.
type Node struct {
	Name string
	Kind NodeKind

	Fields  []Field
	Methods *MethodGroups
	States  []string

	// Superclass is recorded when the node is placed into a cluster.
	Superclass string
	// Color is an optional fill color for model nodes.
	Color string
	// SourceURL is an optional clickable link to the class source.
	SourceURL string
}

// Validate checks the node's identity, kind and attribute shape.
func (n Node) Validate() error {
	if n.Name == "" {
		return ErrInvalidNodeID
	}
	if !n.Kind.Valid() {
		return cgerrors.New(cgerrors.ErrCodeInvalidNode, "node %s: unknown kind %q", n.Name, n.Kind)
	}
	if len(n.Fields) > 0 && n.Kind != KindModel {
		return shapeError(n, "fields")
	}
	if n.Methods != nil && n.Kind != KindController {
		return shapeError(n, "methods")
	}
	if len(n.States) > 0 && n.Kind != KindStateMachine {
		return shapeError(n, "states")
	}
	return nil
}

func shapeError(n Node, shape string) error {
	return cgerrors.New(cgerrors.ErrCodeInvalidNode, "node %s: kind %s cannot carry %s", n.Name, n.Kind, shape)
}

// Edge is a directed relation between two class names. Edges are immutable
// once added to a graph.
type Edge struct {
	Kind  EdgeKind
	From  string
	To    string
	Label string
}

// NewEdge constructs an edge, rejecting unknown kinds and empty endpoints.
func NewEdge(kind EdgeKind, from, to, label string) (Edge, error) {
	if !kind.Valid() {
		return Edge{}, unknownEdgeKind(string(kind))
	}
	if from == "" || to == "" {
		return Edge{}, cgerrors.New(cgerrors.ErrCodeInvalidInput, "edge %s: endpoints must not be empty", kind)
	}
	return Edge{Kind: kind, From: from, To: to, Label: label}, nil
}

// String returns a compact form used in logs.
func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.From, e.Kind, e.To)
}

// Cluster groups a superclass with the subclasses discovered under it.
// When the superclass itself has been discovered it is Members[0].
type Cluster struct {
	Key     string
	Members []Node
}

// HasKeyNode reports whether the superclass node is member 0.
func (c Cluster) HasKeyNode() bool {
	return len(c.Members) > 0 && c.Members[0].Name == c.Key
}
