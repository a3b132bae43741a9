package walker

import (
	"slices"

	"github.com/matzehuels/classgraph/pkg/classify"
	"github.com/matzehuels/classgraph/pkg/diagram"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// magicFields are bookkeeping columns dropped by Options.HideMagic, along
// with the "<table>_count" counter cache.
var magicFields = []string{
	"created_at", "created_on", "updated_at", "updated_on",
	"lock_version", "type", "id", "position", "parent_id", "lft",
	"rgt", "quote", "template",
}

// Models walks the catalog's data-model classes. Plain classes and modules
// are included when Options.All and Options.Modules are set.
func Models(cat *schema.Catalog, opts Options) (*Result, error) {
	w, err := newWalk(cat, opts, TypeModels)
	if err != nil {
		return nil, err
	}
	w.res.Session = classify.NewSession(cat)

	for i := range cat.Classes {
		cls := &cat.Classes[i]
		if !w.includes(cls.Name) {
			continue
		}
		w.logger.Debug("processing", "class", cls.Name)
		switch cls.KindOf() {
		case schema.KindModel:
			if w.check(cls) {
				w.model(cls)
			}
		case schema.KindClass:
			if opts.All && w.check(cls) {
				kind := diagram.KindClass
				if opts.Brief {
					kind = diagram.KindClassBrief
				}
				w.addNode(diagram.Node{Name: cls.Name, Kind: kind, SourceURL: opts.Links.URL(cls.Name)})
			}
		case schema.KindModule:
			if opts.Modules && w.check(cls) {
				w.addNode(diagram.Node{Name: cls.Name, Kind: diagram.KindModule, SourceURL: opts.Links.URL(cls.Name)})
			}
		case schema.KindController, schema.KindStateMachine:
		default:
			w.check(cls)
		}
	}
	return w.finish(), nil
}

func (w *walk) model(cls *schema.Class) {
	n := diagram.Node{
		Name:      cls.Name,
		Kind:      diagram.KindModelBrief,
		SourceURL: w.opts.Links.URL(cls.Name),
	}
	if !w.opts.Brief && !cls.Abstract {
		n.Kind = diagram.KindModel
		n.Fields = w.fields(cls)
		n.Color = cls.Color
	}
	if !w.addNode(n) {
		return
	}

	for _, a := range w.associations(cls) {
		if a.Macro == schema.MacroBelongsTo && w.opts.HideBelongsTo {
			w.logger.Debug("skipping association", "class", cls.Name, "association", a.Name)
			continue
		}
		e, ok := w.res.Session.Edge(classify.Relation{
			Macro:   classify.Macro(a.Macro),
			Owner:   cls.Name,
			Target:  a.Target,
			Name:    a.Name,
			Through: a.Through,
			Join:    a.Join,
		})
		if ok {
			w.addEdge(cls.Name, e)
		}
	}
	w.deferCluster(cls)
}

func (w *walk) fields(cls *schema.Class) []diagram.Field {
	var hidden []string
	if w.opts.HideMagic {
		hidden = append(slices.Clone(magicFields), cls.TableName()+"_count")
	}
	var fields []diagram.Field
	for _, col := range cls.Columns {
		if w.opts.ContentOnly && !col.Content {
			continue
		}
		if slices.Contains(hidden, col.Name) {
			continue
		}
		f := diagram.Field{Name: col.Name, Type: col.Type}
		if w.opts.HideTypes {
			f.Type = ""
		}
		fields = append(fields, f)
	}
	return fields
}

// associations returns the associations of cls that the walk draws.
func (w *walk) associations(cls *schema.Class) []schema.Association {
	var out []schema.Association
	for _, a := range cls.Associations {
		if w.filter != nil && !w.filter.associations[a.Name] {
			continue
		}
		if w.opts.Inheritance && !w.opts.Transitive && w.cat.Inherited(cls.Name, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}
