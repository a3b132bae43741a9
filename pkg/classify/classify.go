// Package classify maps association descriptors to diagram edge kinds.
//
// Classification is done through a [Session], created fresh for each
// generation run. The session owns the set of many-to-many relations already
// emitted so that the mirror declaration found on the other class does not
// produce a second edge; nothing is shared between runs.
//
//	s := classify.NewSession(catalog)
//	kind, ok := s.Classify(classify.Relation{
//	    Macro: classify.BelongsTo, Owner: "Comment", Target: "Post", Name: "post",
//	})
//	// kind == diagram.EdgeInvisible when Post declares has_many :comments
package classify

import (
	"github.com/google/uuid"

	"github.com/matzehuels/classgraph/pkg/diagram"
	"github.com/matzehuels/classgraph/pkg/naming"
)

// Macro is the association macro that declared a relation.
type Macro string

const (
	BelongsTo           Macro = "belongs_to"
	HasOne              Macro = "has_one"
	HasMany             Macro = "has_many"
	HasAndBelongsToMany Macro = "has_and_belongs_to_many"
)

// Valid reports whether m is a known macro.
func (m Macro) Valid() bool {
	switch m {
	case BelongsTo, HasOne, HasMany, HasAndBelongsToMany:
		return true
	}
	return false
}

// Relation describes one declared association, seen from its owner.
type Relation struct {
	Macro  Macro
	Owner  string // class declaring the association
	Target string // associated class
	Name   string // association name, e.g. "comments"

	// Through names the intermediate association of a has_many :through.
	Through string
	// Join identifies the join table or model shared by both sides of a
	// many-to-many relation. Mirrors with different joins stay distinct.
	// When empty, Through stands in for it.
	Join string
}

// Associations answers whether a class declares a has_many association with
// the given name.
type Associations interface {
	HasMany(class, name string) bool
}

// Session holds the state of one generation run.
type Session struct {
	ID string

	assoc Associations
	seen  map[pairKey]struct{}
}

type pairKey struct {
	a, b, join string
}

// NewSession creates a classifier session. A nil lookup disables the
// invisible belongs_to rule.
func NewSession(assoc Associations) *Session {
	return &Session{
		ID:    uuid.NewString(),
		assoc: assoc,
		seen:  make(map[pairKey]struct{}),
	}
}

// Classify returns the edge kind for r, or false when no edge should be
// drawn.
//
// Rules, in priority order:
//  1. belongs_to whose target declares has_many back to the owner's
//     collection name is invisible: the one-to-many edge already shows it.
//  2. has_one and belongs_to are one-one.
//  3. has_many without a through association is one-many.
//  4. has_many :through and has_and_belongs_to_many are many-many, once per
//     unordered class pair and join (or through association).
//  5. Anything else yields no edge.
func (s *Session) Classify(r Relation) (diagram.EdgeKind, bool) {
	switch {
	case r.Macro == BelongsTo && s.declaresCollection(r.Target, r.Owner):
		return diagram.EdgeInvisible, true
	case r.Macro == HasOne || r.Macro == BelongsTo:
		return diagram.EdgeOneOne, true
	case r.Macro == HasMany && r.Through == "":
		return diagram.EdgeOneMany, true
	case r.Macro == HasMany || r.Macro == HasAndBelongsToMany:
		key := newPairKey(r.Owner, r.Target, r.joinKey())
		if _, dup := s.seen[key]; dup {
			return "", false
		}
		s.seen[key] = struct{}{}
		return diagram.EdgeManyMany, true
	}
	return "", false
}

// Edge classifies r and builds the edge from owner to target. Labels are
// kept only for association names that differ from the target's own name.
func (s *Session) Edge(r Relation) (diagram.Edge, bool) {
	kind, ok := s.Classify(r)
	if !ok {
		return diagram.Edge{}, false
	}
	label := r.Name
	if naming.IsStandardAssociation(r.Name, r.Target) {
		label = ""
	}
	return diagram.Edge{Kind: kind, From: r.Owner, To: r.Target, Label: label}, true
}

// Seen returns how many many-to-many relations the session has emitted.
func (s *Session) Seen() int { return len(s.seen) }

func (s *Session) declaresCollection(target, owner string) bool {
	if s.assoc == nil {
		return false
	}
	return s.assoc.HasMany(target, naming.CollectionName(owner))
}

func (r Relation) joinKey() string {
	if r.Join != "" {
		return r.Join
	}
	return r.Through
}

func newPairKey(x, y, join string) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{a: x, b: y, join: join}
}
