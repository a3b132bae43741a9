package walker

import (
	"github.com/matzehuels/classgraph/pkg/diagram"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// Controllers walks the catalog's controllers.
func Controllers(cat *schema.Catalog, opts Options) (*Result, error) {
	w, err := newWalk(cat, opts, TypeControllers)
	if err != nil {
		return nil, err
	}

	for i := range cat.Classes {
		cls := &cat.Classes[i]
		if cls.KindOf() != schema.KindController || !w.includes(cls.Name) || !w.check(cls) {
			continue
		}
		w.logger.Debug("processing", "class", cls.Name)

		n := diagram.Node{Name: cls.Name, Kind: diagram.KindControllerBrief, SourceURL: opts.Links.URL(cls.Name)}
		if !opts.Brief {
			n.Kind = diagram.KindController
			n.Methods = &diagram.MethodGroups{}
			if m := cls.Methods; m != nil {
				n.Methods.Public = m.Public
				n.Methods.Protected = m.Protected
				n.Methods.Private = m.Private
			}
		}
		if w.addNode(n) {
			w.deferCluster(cls)
		}
	}
	return w.finish(), nil
}
