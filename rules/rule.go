package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"zxd/zxgraph"
)

// ErrNoMatch is returned when the selected vertices do not match the rule's
// left-hand side.
var ErrNoMatch = errors.New("no matching found")

// CustomRule is a user-defined rewrite: replace a subdiagram shaped like LHS
// with RHS, identifying the two sides along their numbered boundaries.
type CustomRule struct {
	Name        string
	Description string
	LHS         *zxgraph.Graph
	RHS         *zxgraph.Graph

	lhsPat        *matchGraph
	rhsPat        *matchGraph
	lhsPatNoBound *matchGraph
	unfusable     bool

	// lastRewriteCenter is the centroid of the matched boundary vertices of
	// the most recent Apply, for centering the view on the rewrite site.
	lastRewriteCenter [2]float64
	hasCenter         bool
}

// New builds a rule from its two sides. Boundary roles are detected from the
// layout of each side.
func New(lhs, rhs *zxgraph.Graph, name, description string) (*CustomRule, error) {
	if lhs == nil || rhs == nil {
		return nil, errors.New("rule needs both a left-hand side and a right-hand side")
	}
	lhs.AutoDetectIO()
	rhs.AutoDetectIO()
	r := &CustomRule{
		Name:        name,
		Description: description,
		LHS:         lhs,
		RHS:         rhs,
		lhsPat:      patternFromGraph(lhs),
		rhsPat:      patternFromGraph(rhs),
		unfusable:   isRewriteUnfusable(lhs),
	}
	if r.unfusable {
		r.lhsPatNoBound = r.lhsPat.withoutBoundaries()
	}
	return r, nil
}

// LastRewriteCenter returns the centroid of the boundary of the last applied
// rewrite; ok is false before the first application.
func (r *CustomRule) LastRewriteCenter() (row, qubit float64, ok bool) {
	return r.lastRewriteCenter[0], r.lastRewriteCenter[1], r.hasCenter
}

// firstCompatibleMatching enumerates isomorphisms from pat onto sub and
// returns the first one whose symbolic parameters resolve.
func firstCompatibleMatching(pat, sub *matchGraph) (map[string]string, map[string]*big.Rat) {
	var matching map[string]string
	var params map[string]*big.Rat
	enumerateIsomorphisms(pat, sub, true, func(m map[string]string) bool {
		p, err := matchSymbolicParameters(m, pat, sub)
		if err != nil {
			return true
		}
		matching, params = m, p
		return false
	})
	return matching, params
}

// Apply matches the left-hand side against the selected vertices of g and
// returns the edit replacing them with the right-hand side. W-io edges of
// the replacement are added to g immediately; everything else goes through
// the edit. On success the graph already contains the new vertices, so the
// caller applies the edit to the same graph.
func (r *CustomRule) Apply(g *zxgraph.Graph, vertices []int) (*zxgraph.Edit, error) {
	if r.unfusable {
		if err := r.unfuseSubgraphForRewrite(g, vertices); err != nil {
			return nil, err
		}
	}

	sub, boundaryMapping := extractSubgraph(g, vertices)
	matching, params := firstCompatibleMatching(r.lhsPat, sub)
	if matching == nil {
		return nil, fmt.Errorf("%w for rule %q", ErrNoMatch, r.Name)
	}

	var verticesToRemove []int
	for _, subID := range matching {
		if sub.nodes[subID].Type != zxgraph.Boundary {
			verticesToRemove = append(verticesToRemove, hostVertexOf(subID))
		}
	}
	sort.Ints(verticesToRemove)

	// Identify each RHS boundary with the host vertex behind the LHS
	// boundary of the same index.
	boundaryVertexMap := make(map[string]int)
	for _, v := range r.rhsPat.nodeIDs() {
		rn := r.rhsPat.nodes[v]
		if rn.Type != zxgraph.Boundary {
			continue
		}
		for _, x := range r.lhsPat.nodeIDs() {
			ln := r.lhsPat.nodes[x]
			if ln.Type == zxgraph.Boundary && ln.Boundary == rn.Boundary {
				boundaryVertexMap[v] = boundaryMapping[matching[x]]
				break
			}
		}
	}

	positions := vertexPositions(g, r.rhsPat, boundaryVertexMap)
	if len(boundaryVertexMap) > 0 {
		var cr, cq float64
		for _, hv := range boundaryVertexMap {
			cr += g.Row(hv)
			cq += g.Qubit(hv)
		}
		n := float64(len(boundaryVertexMap))
		r.lastRewriteCenter = [2]float64{cr / n, cq / n}
		r.hasCenter = true
	}

	vertexMap := make(map[string]int, r.rhsPat.size())
	for v, hv := range boundaryVertexMap {
		vertexMap[v] = hv
	}
	for _, v := range r.rhsPat.nodeIDs() {
		rn := r.rhsPat.nodes[v]
		if rn.Type == zxgraph.Boundary {
			continue
		}
		ph := rn.Phase.Copy()
		if ph.IsSymbolic() {
			ph = ph.Substitute(params)
		}
		if ph.IsSymbolic() {
			adoptVariables(g, r.RHS, ph)
		}
		p := positions[v]
		vertexMap[v] = g.AddVertexWithPhase(rn.Type, ph, p[0], p[1])
	}

	edit := zxgraph.NewEdit()
	edit.RemoveVerts = verticesToRemove
	for _, a := range r.rhsPat.nodeIDs() {
		for b, ty := range r.rhsPat.adj[a] {
			if b < a {
				continue
			}
			v1, v2 := vertexMap[a], vertexMap[b]
			if ty == zxgraph.EdgeWIO {
				g.AddEdge(v1, v2, zxgraph.EdgeWIO)
				continue
			}
			edit.AddToTable(v1, v2, ty)
		}
	}
	return edit, nil
}

// adoptVariables registers the free variables of a replacement phase in the
// host graph's classification table and rebinds the phase to it.
func adoptVariables(g *zxgraph.Graph, rhs *zxgraph.Graph, ph zxgraph.Phase) {
	hostTypes := g.VarTypes()
	rhsTypes := rhs.VarTypes()
	for name := range ph.Poly().FreeVars() {
		if _, ok := hostTypes[name]; !ok {
			hostTypes[name] = rhsTypes[name]
		}
	}
	ph.Rebind(hostTypes)
}

// Match reports whether the current selection matches the rule, returning
// the selected vertices on success and nil otherwise. The host graph is not
// modified.
func (r *CustomRule) Match(g *zxgraph.Graph, inSelection func(int) bool) []int {
	var vertices []int
	for _, v := range g.Vertices() {
		if inSelection(v) {
			vertices = append(vertices, v)
		}
	}
	if len(vertices) == 0 {
		return nil
	}
	var pat, sub *matchGraph
	if r.unfusable {
		pat = r.lhsPatNoBound
		sub = inducedSubgraph(g, vertices)
	} else {
		pat = r.lhsPat
		sub, _ = extractSubgraph(g, vertices)
	}
	if matching, _ := firstCompatibleMatching(pat, sub); matching != nil {
		return vertices
	}
	return nil
}

type ruleJSON struct {
	LHSGraph    json.RawMessage `json:"lhs_graph"`
	RHSGraph    json.RawMessage `json:"rhs_graph"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

// MarshalJSON encodes the rule with both sides embedded as graph documents.
func (r *CustomRule) MarshalJSON() ([]byte, error) {
	lhs, err := json.Marshal(r.LHS)
	if err != nil {
		return nil, fmt.Errorf("encoding left-hand side: %w", err)
	}
	rhs, err := json.Marshal(r.RHS)
	if err != nil {
		return nil, fmt.Errorf("encoding right-hand side: %w", err)
	}
	return json.Marshal(ruleJSON{LHSGraph: lhs, RHSGraph: rhs, Name: r.Name, Description: r.Description})
}

// FromJSON decodes a rule document.
func FromJSON(data []byte) (*CustomRule, error) {
	var d ruleJSON
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding rule: %w", err)
	}
	lhs, err := zxgraph.FromJSON(d.LHSGraph)
	if err != nil {
		return nil, fmt.Errorf("decoding left-hand side: %w", err)
	}
	rhs, err := zxgraph.FromJSON(d.RHSGraph)
	if err != nil {
		return nil, fmt.Errorf("decoding right-hand side: %w", err)
	}
	return New(lhs, rhs, d.Name, d.Description)
}
