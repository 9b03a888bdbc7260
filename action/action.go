// Package action dispatches rewrites: it bundles a matcher and a rule with
// the metadata the surrounding application needs (match granularity,
// defensive-copy and repetition flags), applies them to a selection and
// commits the result to a proof model as one atomic step.
package action

import (
	"errors"
	"sort"

	"zxd/proof"
	"zxd/zxgraph"
)

// MatchType is the granularity a matcher operates at.
type MatchType int

const (
	MatchesVertices MatchType = iota
	MatchesEdges
	MatchesGraph
)

// ErrNoMatches is returned when an action is applied to a selection it does
// not match.
var ErrNoMatches = errors.New("rule does not apply to the selection")

// Selection is the user's current vertex choice plus the edges it induces.
type Selection struct {
	verts map[int]bool
	edges map[zxgraph.Edge]bool
}

// NewSelection builds a selection from explicit vertex and edge sets.
func NewSelection(verts []int, edges []zxgraph.Edge) Selection {
	s := Selection{verts: make(map[int]bool), edges: make(map[zxgraph.Edge]bool)}
	for _, v := range verts {
		s.verts[v] = true
	}
	for _, e := range edges {
		s.edges[e] = true
	}
	return s
}

// SelectionFromVertices selects verts and every edge with both endpoints in
// the set.
func SelectionFromVertices(g *zxgraph.Graph, verts []int) Selection {
	s := NewSelection(verts, nil)
	for _, e := range g.Edges() {
		if s.verts[e.S] && s.verts[e.T] {
			s.edges[e] = true
		}
	}
	return s
}

// HasVertex reports whether v is selected.
func (s Selection) HasVertex(v int) bool { return s.verts[v] }

// HasEdge reports whether e is selected.
func (s Selection) HasEdge(e zxgraph.Edge) bool { return s.edges[e] }

// Vertices returns the selected vertices in ascending order.
func (s Selection) Vertices() []int {
	out := make([]int, 0, len(s.verts))
	for v := range s.verts {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// MatchSet carries a matcher's result at its granularity. A rule reads the
// field its matcher fills.
type MatchSet struct {
	Vertices []int
	Pairs    [][2]int
	Edges    []zxgraph.Edge
}

// Empty reports whether nothing matched.
func (m MatchSet) Empty() bool {
	return len(m.Vertices) == 0 && len(m.Pairs) == 0 && len(m.Edges) == 0
}

// RewriteAction pairs a matcher with its rule.
//
// CopyFirst marks matchers that mutate the graph while probing, so
// applicability tests must run on a copy. ReturnsNewGraph marks rules that
// mutate the working graph directly instead of returning an edit. Repeat
// requests re-matching and re-applying until the matcher finds nothing.
type RewriteAction struct {
	ID              string
	Name            string
	Tooltip         string
	MatchType       MatchType
	CopyFirst       bool
	ReturnsNewGraph bool
	Repeat          bool

	Matcher func(g *zxgraph.Graph, sel Selection) MatchSet
	Rule    func(g *zxgraph.Graph, matches MatchSet) (*zxgraph.Edit, error)
}

// DoRewrite applies the action to the selection and pushes one history step.
// The model and the input graph are untouched unless the whole application
// succeeds. Returns the resulting graph.
func (a *RewriteAction) DoRewrite(m *proof.Model, g *zxgraph.Graph, sel Selection) (*zxgraph.Graph, error) {
	work := g.Copy()
	applied := false
	for {
		matches := a.Matcher(work, sel)
		if matches.Empty() {
			break
		}
		edit, err := a.Rule(work, matches)
		if err != nil {
			return nil, err
		}
		if edit != nil {
			if err := work.Apply(edit); err != nil {
				return nil, err
			}
		}
		applied = true
		if !a.Repeat {
			break
		}
	}
	if !applied {
		return nil, ErrNoMatches
	}
	m.AddRewrite(proof.Rewrite{DisplayName: a.Name, Rule: a.ID, Graph: work}, -1)
	return work, nil
}

// UpdateActive reports whether the action currently matches the selection,
// copying the graph first when the matcher mutates.
func (a *RewriteAction) UpdateActive(g *zxgraph.Graph, sel Selection) bool {
	if a.CopyFirst {
		g = g.Copy()
	}
	return !a.Matcher(g, sel).Empty()
}
