// Package schema defines the class catalog that diagrams are generated from.
//
// A [Catalog] is a snapshot of an application's classes with their kinds,
// superclasses, columns, associations, controller methods and state
// machines already resolved. Catalogs are read by [io.ImportCatalog] and
// consumed by the walker; the classifier queries them through
// [Catalog.HasMany].
//
// Call [Catalog.Validate] once after decoding. It rejects catalogs whose
// class names are malformed or repeated and builds the name index used by
// the lookup methods. Problems confined to one class are reported by
// [Class.Check] so callers can skip that class and keep the rest.
//
// [io.ImportCatalog]: github.com/matzehuels/classgraph/pkg/io
package schema

import (
	"strings"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/naming"
)

// Kind is the resolved kind of a cataloged class.
type Kind string

const (
	KindModel        Kind = "model"
	KindClass        Kind = "class"
	KindModule       Kind = "module"
	KindController   Kind = "controller"
	KindStateMachine Kind = "state-machine"
)

func (k Kind) valid() bool {
	switch k {
	case KindModel, KindClass, KindModule, KindController, KindStateMachine:
		return true
	}
	return false
}

// Macros accepted in [Association.Macro].
const (
	MacroBelongsTo           = "belongs_to"
	MacroHasOne              = "has_one"
	MacroHasMany             = "has_many"
	MacroHasAndBelongsToMany = "has_and_belongs_to_many"
)

// Catalog is the full set of classes for one application snapshot.
type Catalog struct {
	// Version is the schema (migration) version printed in diagram titles.
	Version string  `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Classes []Class `json:"classes" yaml:"classes" toml:"classes"`

	index map[string]int
}

// Class describes one class. Only the sections relevant to Kind are read.
type Class struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	Kind       Kind   `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Superclass string `json:"superclass,omitempty" yaml:"superclass,omitempty" toml:"superclass,omitempty"`
	Abstract   bool   `json:"abstract,omitempty" yaml:"abstract,omitempty" toml:"abstract,omitempty"`
	Table      string `json:"table,omitempty" yaml:"table,omitempty" toml:"table,omitempty"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`

	Columns      []Column      `json:"columns,omitempty" yaml:"columns,omitempty" toml:"columns,omitempty"`
	Associations []Association `json:"associations,omitempty" yaml:"associations,omitempty" toml:"associations,omitempty"`
	Methods      *Methods      `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
	States       []string      `json:"states,omitempty" yaml:"states,omitempty" toml:"states,omitempty"`
	Events       []Event       `json:"events,omitempty" yaml:"events,omitempty" toml:"events,omitempty"`
}

// Column is a persisted attribute of a model.
type Column struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	// Content marks columns holding user content rather than keys or
	// bookkeeping.
	Content bool `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
}

// Association is a declared relation from the owning class.
type Association struct {
	Macro   string `json:"macro" yaml:"macro" toml:"macro"`
	Name    string `json:"name" yaml:"name" toml:"name"`
	Target  string `json:"target" yaml:"target" toml:"target"`
	Through string `json:"through,omitempty" yaml:"through,omitempty" toml:"through,omitempty"`
	Join    string `json:"join,omitempty" yaml:"join,omitempty" toml:"join,omitempty"`
}

// Methods lists a controller's actions by visibility.
type Methods struct {
	Public    []string `json:"public,omitempty" yaml:"public,omitempty" toml:"public,omitempty"`
	Protected []string `json:"protected,omitempty" yaml:"protected,omitempty" toml:"protected,omitempty"`
	Private   []string `json:"private,omitempty" yaml:"private,omitempty" toml:"private,omitempty"`
}

// Event is a state machine transition.
type Event struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	From string `json:"from" yaml:"from" toml:"from"`
	To   string `json:"to" yaml:"to" toml:"to"`
}

// KindOf returns the class kind, defaulting to model.
func (c *Class) KindOf() Kind {
	if c.Kind == "" {
		return KindModel
	}
	return c.Kind
}

// TableName returns Table or the conventional table for the class name
// ("Admin::LineItem" -> "admin_line_items").
func (c *Class) TableName() string {
	if c.Table != "" {
		return c.Table
	}
	return strings.ReplaceAll(naming.CollectionName(c.Name), "/", "_")
}

// Association returns the association declared under name.
func (c *Class) Association(name string) (Association, bool) {
	for _, a := range c.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return Association{}, false
}

// Validate checks class names for syntax and uniqueness and indexes the
// catalog by name. Errors carry the INVALID_CATALOG code.
func (c *Catalog) Validate() error {
	index := make(map[string]int, len(c.Classes))
	for i := range c.Classes {
		cls := &c.Classes[i]
		if err := cgerrors.ValidateClassName(cls.Name); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "class #%d", i)
		}
		if _, dup := index[cls.Name]; dup {
			return cgerrors.New(cgerrors.ErrCodeInvalidCatalog, "class %s declared twice", cls.Name)
		}
		index[cls.Name] = i
	}
	c.index = index
	return nil
}

// Check reports the first problem in the class definition: an unknown
// kind, a malformed superclass, an unnamed column, an association without
// name or target, or an event between undeclared states. Association
// macros are not checked; unknown macros simply draw no edge.
func (c *Class) Check() error {
	if !c.KindOf().valid() {
		return cgerrors.New(cgerrors.ErrCodeInvalidCatalog, "class %s: unknown kind %q", c.Name, c.Kind)
	}
	if c.Superclass != "" {
		if err := cgerrors.ValidateClassName(c.Superclass); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, err, "class %s superclass", c.Name)
		}
	}
	for _, col := range c.Columns {
		if col.Name == "" {
			return cgerrors.New(cgerrors.ErrCodeInvalidCatalog, "class %s: column without name", c.Name)
		}
	}
	for _, a := range c.Associations {
		if a.Name == "" || a.Target == "" {
			return cgerrors.New(cgerrors.ErrCodeInvalidCatalog, "class %s: association needs a name and a target", c.Name)
		}
	}
	states := make(map[string]bool, len(c.States))
	for _, s := range c.States {
		states[s] = true
	}
	for _, e := range c.Events {
		if !states[e.From] || !states[e.To] {
			return cgerrors.New(cgerrors.ErrCodeInvalidCatalog, "class %s event %s: %s -> %s references an undeclared state", c.Name, e.Name, e.From, e.To)
		}
	}
	return nil
}

// Lookup returns the class named name.
func (c *Catalog) Lookup(name string) (*Class, bool) {
	if c.index != nil {
		i, ok := c.index[name]
		if !ok {
			return nil, false
		}
		return &c.Classes[i], true
	}
	for i := range c.Classes {
		if c.Classes[i].Name == name {
			return &c.Classes[i], true
		}
	}
	return nil, false
}

// HasMany reports whether class declares a has_many association named name.
func (c *Catalog) HasMany(class, name string) bool {
	cls, ok := c.Lookup(class)
	if !ok {
		return false
	}
	a, ok := cls.Association(name)
	return ok && a.Macro == MacroHasMany
}

// IsDescendant reports whether class inherits from ancestor, directly or
// through cataloged intermediate classes.
func (c *Catalog) IsDescendant(class, ancestor string) bool {
	seen := make(map[string]bool)
	for cls, ok := c.Lookup(class); ok && !seen[cls.Name]; cls, ok = c.Lookup(cls.Superclass) {
		seen[cls.Name] = true
		if cls.Superclass == ancestor {
			return true
		}
	}
	return false
}

// Descendants returns every cataloged class inheriting from ancestor, in
// catalog order.
func (c *Catalog) Descendants(ancestor string) []string {
	var out []string
	for _, cls := range c.Classes {
		if c.IsDescendant(cls.Name, ancestor) {
			out = append(out, cls.Name)
		}
	}
	return out
}

// Inherited reports whether a is declared identically by the superclass of
// class.
func (c *Catalog) Inherited(class string, a Association) bool {
	cls, ok := c.Lookup(class)
	if !ok {
		return false
	}
	super, ok := c.Lookup(cls.Superclass)
	if !ok {
		return false
	}
	got, ok := super.Association(a.Name)
	return ok && got == a
}
