package action

import (
	"fmt"
	"sort"

	"zxd/rules"
	"zxd/zxgraph"
)

// Registry is the closed table of available actions: the built-in passes
// plus any custom rules registered after loading the rule library.
type Registry struct {
	byID  map[string]*RewriteAction
	order []string
}

// NewRegistry returns a registry holding the built-in actions.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]*RewriteAction)}
	for _, a := range builtins() {
		r.byID[a.ID] = a
		r.order = append(r.order, a.ID)
	}
	return r
}

// Register adds an action; duplicate ids are rejected.
func (r *Registry) Register(a *RewriteAction) error {
	if _, ok := r.byID[a.ID]; ok {
		return fmt.Errorf("action %q already registered", a.ID)
	}
	r.byID[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

// RegisterCustomRule wraps and registers a custom rule.
func (r *Registry) RegisterCustomRule(cr *rules.CustomRule) error {
	return r.Register(FromCustomRule(cr))
}

// Get looks up an action by id.
func (r *Registry) Get(id string) (*RewriteAction, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Actions returns all actions in registration order.
func (r *Registry) Actions() []*RewriteAction {
	out := make([]*RewriteAction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// EnabledIDs probes every action against the selection and returns the ids
// that currently match, sorted.
func (r *Registry) EnabledIDs(g *zxgraph.Graph, sel Selection) []string {
	var out []string
	for _, id := range r.order {
		if r.byID[id].UpdateActive(g, sel) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// FromCustomRule wraps a custom rule as a vertex-granularity action.
func FromCustomRule(cr *rules.CustomRule) *RewriteAction {
	return &RewriteAction{
		ID:        "custom/" + cr.Name,
		Name:      cr.Name,
		Tooltip:   cr.Description,
		MatchType: MatchesVertices,
		Matcher: func(g *zxgraph.Graph, sel Selection) MatchSet {
			return MatchSet{Vertices: cr.Match(g, sel.HasVertex)}
		},
		Rule: func(g *zxgraph.Graph, m MatchSet) (*zxgraph.Edit, error) {
			return cr.Apply(g, m.Vertices)
		},
	}
}

func builtins() []*RewriteAction {
	return []*RewriteAction{
		{
			ID:        "fuse",
			Name:      "Fuse spiders",
			Tooltip:   "Merge adjacent same-colored spiders, phases adding",
			MatchType: MatchesEdges,
			Repeat:    true,
			Matcher: func(g *zxgraph.Graph, sel Selection) MatchSet {
				return MatchSet{Pairs: zxgraph.MatchSpiderFusion(g, sel.HasEdge)}
			},
			Rule: func(g *zxgraph.Graph, m MatchSet) (*zxgraph.Edit, error) {
				return zxgraph.FuseSpiders(g, m.Pairs)
			},
		},
		{
			ID:        "remove_id",
			Name:      "Remove identities",
			Tooltip:   "Delete phaseless arity-2 spiders, joining their neighbors",
			MatchType: MatchesVertices,
			Repeat:    true,
			Matcher: func(g *zxgraph.Graph, sel Selection) MatchSet {
				return MatchSet{Vertices: zxgraph.MatchIdentities(g, sel.HasVertex)}
			},
			Rule: func(g *zxgraph.Graph, m MatchSet) (*zxgraph.Edit, error) {
				return zxgraph.RemoveIdentities(g, m.Vertices)
			},
		},
		{
			ID:        "remove_loops",
			Name:      "Remove self-loops",
			Tooltip:   "Drop plain self-loops, turn Hadamard self-loops into pi flips",
			MatchType: MatchesVertices,
			Repeat:    true,
			Matcher: func(g *zxgraph.Graph, sel Selection) MatchSet {
				return MatchSet{Vertices: zxgraph.MatchSelfLoops(g, sel.HasVertex)}
			},
			Rule: func(g *zxgraph.Graph, m MatchSet) (*zxgraph.Edit, error) {
				return zxgraph.RemoveSelfLoops(g, m.Vertices)
			},
		},
		{
			ID:              "color_change",
			Name:            "Change color",
			Tooltip:         "Conjugate a spider by Hadamards, flipping its color",
			MatchType:       MatchesVertices,
			ReturnsNewGraph: true,
			Matcher: func(g *zxgraph.Graph, sel Selection) MatchSet {
				return MatchSet{Vertices: zxgraph.MatchColorChange(g, sel.HasVertex)}
			},
			Rule: func(g *zxgraph.Graph, m MatchSet) (*zxgraph.Edit, error) {
				return nil, zxgraph.ColorChange(g, m.Vertices)
			},
		},
	}
}
