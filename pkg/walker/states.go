package walker

import (
	"github.com/matzehuels/classgraph/pkg/diagram"
	"github.com/matzehuels/classgraph/pkg/schema"
)

// StateMachines walks every class that declares states, drawing each as a
// state machine subgraph with one event edge per transition.
//
// State names are drawn as given, so two machines sharing a state name
// share its node.
func StateMachines(cat *schema.Catalog, opts Options) (*Result, error) {
	w, err := newWalk(cat, opts, TypeStates)
	if err != nil {
		return nil, err
	}

	for i := range cat.Classes {
		cls := &cat.Classes[i]
		if len(cls.States) == 0 || !w.includes(cls.Name) || !w.check(cls) {
			continue
		}
		w.logger.Debug("processing", "class", cls.Name, "states", len(cls.States))

		if !w.addNode(diagram.Node{Name: cls.Name, Kind: diagram.KindStateMachine, States: cls.States}) {
			continue
		}
		for _, ev := range cls.Events {
			w.addEdge(cls.Name, diagram.Edge{Kind: diagram.EdgeEvent, From: ev.From, To: ev.To, Label: ev.Name})
		}
	}
	return w.finish(), nil
}
