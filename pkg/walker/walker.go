// Package walker turns a class catalog into a diagram graph.
//
// Three diagram types are supported:
//
//   - [Models]: data-model classes with their columns and associations
//   - [Controllers]: controllers with their public, protected and private
//     actions
//   - [StateMachines]: one subgraph per state machine with event edges
//
// Each class is processed independently. A class that fails
// [schema.Class.Check] or cannot be added to the graph is logged as a
// warning, counted in [Result.Warnings], and skipped; the rest of the
// catalog is still drawn.
//
// With Options.Inheritance set, subclasses whose superclass is itself drawn
// are grouped into inheritance clusters. Cluster placement runs after every
// node has been added, shallowest subclasses first, so superclasses are
// promoted into their cluster regardless of catalog order.
package walker

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/classgraph/pkg/classify"
	"github.com/matzehuels/classgraph/pkg/diagram"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/links"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// Diagram type names, used as graph IDs and titles.
const (
	TypeModels      = "Models"
	TypeControllers = "Controllers"
	TypeStates      = "States"
)

// Options controls what a walk includes.
type Options struct {
	// Brief draws class names only.
	Brief bool
	// HideMagic drops bookkeeping columns such as ids and timestamps.
	HideMagic bool
	// HideTypes drops column types.
	HideTypes bool
	// ContentOnly keeps only columns marked as content.
	ContentOnly bool
	// Inheritance groups subclasses into clusters and drops associations
	// inherited unchanged from the superclass.
	Inheritance bool
	// Transitive keeps inherited associations when Inheritance is set.
	Transitive bool
	// HideBelongsTo drops belongs_to associations.
	HideBelongsTo bool
	// All includes plain (non-model) classes.
	All bool
	// Modules includes modules.
	Modules bool

	// Filter limits the diagram to matching classes and associations.
	// "Klass*" matches every name starting with "Klass".
	Filter []string

	// Links adds clickable source links to nodes. Optional.
	Links *links.Resolver
	// Logger receives progress and warnings. Defaults to a discard logger.
	Logger *log.Logger
}

// Result is the outcome of a walk.
type Result struct {
	Graph         *diagram.Graph
	DiagramType   string
	SchemaVersion string
	// Warnings counts classes and associations skipped because of errors.
	Warnings int
	// Session is the classifier session used for the walk. Nil for diagrams
	// without associations.
	Session *classify.Session
}

// rootClasses are never used as cluster keys.
var rootClasses = map[string]bool{
	"":                   true,
	"Object":             true,
	"ActiveRecord::Base": true,
}

type walk struct {
	cat    *schema.Catalog
	opts   Options
	logger *log.Logger
	res    *Result
	filter *filterSet

	// pending holds classes waiting to be placed into inheritance clusters.
	pending []*schema.Class
}

func newWalk(cat *schema.Catalog, opts Options, diagramType string) (*walk, error) {
	if cat == nil {
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "catalog is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	w := &walk{
		cat:    cat,
		opts:   opts,
		logger: logger,
		res: &Result{
			Graph:         diagram.New(),
			DiagramType:   diagramType,
			SchemaVersion: cat.Version,
		},
	}
	if len(opts.Filter) > 0 {
		fs, err := newFilterSet(cat, opts.Filter, logger)
		if err != nil {
			return nil, err
		}
		w.filter = fs
	}
	logger.Debug("generating diagram", "type", diagramType, "classes", len(cat.Classes))
	return w, nil
}

func (w *walk) includes(class string) bool {
	return w.filter == nil || w.filter.classes[class]
}

func (w *walk) warn(class string, err error) {
	w.res.Warnings++
	w.logger.Warn("skipping", "class", class, "err", err)
}

// check reports whether cls is well formed, warning when it is not.
func (w *walk) check(cls *schema.Class) bool {
	if err := cls.Check(); err != nil {
		w.warn(cls.Name, err)
		return false
	}
	return true
}

func (w *walk) addNode(n diagram.Node) bool {
	if err := w.res.Graph.AddNode(n); err != nil {
		w.warn(n.Name, err)
		return false
	}
	return true
}

func (w *walk) addEdge(class string, e diagram.Edge) {
	if err := w.res.Graph.AddEdge(e); err != nil {
		w.warn(class, fmt.Errorf("edge %s: %w", e, err))
	}
}

// deferCluster queues cls for cluster placement when its superclass is a
// drawn, cataloged class.
func (w *walk) deferCluster(cls *schema.Class) {
	if !w.opts.Inheritance || rootClasses[cls.Superclass] || !w.includes(cls.Superclass) {
		return
	}
	if _, ok := w.cat.Lookup(cls.Superclass); !ok {
		return
	}
	w.pending = append(w.pending, cls)
}

// placeClusters clusters pending classes, shallowest first, so each
// subclass is still top level when its own superclass is clustered.
func (w *walk) placeClusters() {
	depth := func(c *schema.Class) int {
		n := 0
		seen := map[string]bool{c.Name: true}
		for cur, ok := w.cat.Lookup(c.Superclass); ok && !seen[cur.Name]; cur, ok = w.cat.Lookup(cur.Superclass) {
			seen[cur.Name] = true
			n++
		}
		return n
	}
	slices.SortStableFunc(w.pending, func(a, b *schema.Class) int { return depth(a) - depth(b) })

	for _, cls := range w.pending {
		if err := w.res.Graph.AddCluster(cls.Superclass, cls.Name); err != nil {
			w.warn(cls.Name, err)
		}
	}
}

func (w *walk) finish() *Result {
	w.placeClusters()
	w.logger.Debug("diagram complete",
		"type", w.res.DiagramType,
		"nodes", w.res.Graph.NodeCount(),
		"edges", w.res.Graph.EdgeCount(),
		"clusters", w.res.Graph.ClusterCount(),
		"warnings", w.res.Warnings)
	return w.res
}

// filterSet is the set of class and association names a filtered walk may
// draw.
type filterSet struct {
	classes      map[string]bool
	associations map[string]bool
}

var (
	globRe          = regexp.MustCompile(`(\w)\*`)
	potentialNameRe = regexp.MustCompile(`^[A-Z]\w+$`)
)

// filterExpression anchors the filter alternatives into one expression,
// expanding "Klass*" into "Klass.*".
func filterExpression(filters []string) (*regexp.Regexp, error) {
	alts := make([]string, len(filters))
	for i, f := range filters {
		alts[i] = strings.TrimSpace(globRe.ReplaceAllString(f, "$1.*"))
	}
	re, err := regexp.Compile("^(" + strings.Join(alts, "|") + ")$")
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "filter %q", filters)
	}
	return re, nil
}

func newFilterSet(cat *schema.Catalog, filters []string, logger *log.Logger) (*filterSet, error) {
	re, err := filterExpression(filters)
	if err != nil {
		return nil, err
	}
	fs := &filterSet{classes: make(map[string]bool), associations: make(map[string]bool)}

	for _, cls := range cat.Classes {
		if re.MatchString(cls.Name) {
			fs.classes[cls.Name] = true
		}
		if cls.KindOf() != schema.KindModel {
			continue
		}
		for _, a := range cls.Associations {
			if re.MatchString(a.Name) || re.MatchString(a.Target) {
				fs.associations[a.Name] = true
				fs.classes[a.Target] = true
			}
		}
	}

	for _, f := range filters {
		if !potentialNameRe.MatchString(f) {
			continue
		}
		if _, ok := cat.Lookup(f); ok {
			fs.classes[f] = true
		} else {
			logger.Debug("filter looks like a class name but is not cataloged", "filter", f)
		}
	}

	for name := range snapshot(fs.classes) {
		for _, d := range cat.Descendants(name) {
			fs.classes[d] = true
		}
	}

	logger.Debug("filter applied", "classes", len(fs.classes), "associations", len(fs.associations))
	return fs, nil
}

// snapshot copies m so m can grow while its keys are visited.
func snapshot(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
