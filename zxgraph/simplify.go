package zxgraph

// Built-in simplification passes. Each pass comes as a matcher over a
// selection predicate plus a rule producing an Edit, the same shape custom
// rules use, so the action registry can dispatch to either uniformly.

// MatchSpiderFusion finds disjoint pairs of same-colored spiders joined by a
// plain edge, restricted to edges accepted by pred.
func MatchSpiderFusion(g *Graph, pred func(Edge) bool) [][2]int {
	taken := make(map[int]bool)
	var out [][2]int
	for _, e := range g.Edges() {
		if e.Type != EdgeSimple || e.S == e.T {
			continue
		}
		if taken[e.S] || taken[e.T] {
			continue
		}
		ts, tt := g.Type(e.S), g.Type(e.T)
		if ts != tt || (ts != Z && ts != X) {
			continue
		}
		if pred != nil && !pred(e) {
			continue
		}
		taken[e.S], taken[e.T] = true, true
		out = append(out, [2]int{e.S, e.T})
	}
	return out
}

// FuseSpiders merges each matched pair, keeping the first vertex: phases
// add, the second vertex's outside edges are rewired to the first. Leftover
// parallel Hadamard edges between the pair become pi phase flips (a Hadamard
// self-loop), leftover plain parallels vanish.
func FuseSpiders(g *Graph, matches [][2]int) (*Edit, error) {
	edit := NewEdit()
	for _, m := range matches {
		v, w := m[0], m[1]
		phase := g.Phase(v).Add(g.Phase(w))
		_, had, _ := g.EdgeCount(v, w)
		for i := 0; i < had; i++ {
			phase = phase.Add(PhaseFromInt(1))
		}
		g.SetPhase(v, phase)
		for _, e := range g.IncidentEdges(w) {
			n := e.S
			if n == w {
				n = e.T
			}
			if n == v || n == w {
				continue
			}
			edit.AddToTable(v, n, e.Type)
		}
		edit.RemoveVerts = append(edit.RemoveVerts, w)
	}
	return edit, nil
}

// MatchIdentities finds disjoint phaseless arity-2 spiders whose removal
// joins their two neighbors.
func MatchIdentities(g *Graph, pred func(int) bool) []int {
	taken := make(map[int]bool)
	var out []int
	for _, v := range g.Vertices() {
		ty := g.Type(v)
		if (ty != Z && ty != X) || !g.Phase(v).IsZero() {
			continue
		}
		if pred != nil && !pred(v) {
			continue
		}
		if g.Degree(v) != 2 || taken[v] {
			continue
		}
		ns := g.Neighbors(v)
		if len(ns) != 2 || taken[ns[0]] || taken[ns[1]] {
			continue
		}
		taken[v], taken[ns[0]], taken[ns[1]] = true, true, true
		out = append(out, v)
	}
	return out
}

// RemoveIdentities deletes each matched identity spider and joins its
// neighbors; two edges of the same type compose to a plain edge, mixed
// types compose to a Hadamard edge.
func RemoveIdentities(g *Graph, matches []int) (*Edit, error) {
	edit := NewEdit()
	for _, v := range matches {
		es := g.IncidentEdges(v)
		if len(es) != 2 {
			continue
		}
		other := func(e Edge) int {
			if e.S == v {
				return e.T
			}
			return e.S
		}
		ty := EdgeSimple
		if es[0].Type != es[1].Type {
			ty = EdgeHadamard
		}
		edit.AddToTable(other(es[0]), other(es[1]), ty)
		edit.RemoveVerts = append(edit.RemoveVerts, v)
	}
	return edit, nil
}

// MatchSelfLoops finds selected spiders carrying at least one self-loop.
func MatchSelfLoops(g *Graph, pred func(int) bool) []int {
	var out []int
	for _, v := range g.Vertices() {
		if !g.Type(v).IsSpider() {
			continue
		}
		if pred != nil && !pred(v) {
			continue
		}
		simple, had, _ := g.EdgeCount(v, v)
		if simple == 0 && had == 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RemoveSelfLoops drops every self-loop on the matched spiders. A plain
// self-loop vanishes outright; each Hadamard self-loop flips the spider's
// phase by pi on its way out. The graph is mutated in place.
func RemoveSelfLoops(g *Graph, matches []int) (*Edit, error) {
	for _, v := range matches {
		simple, had, _ := g.EdgeCount(v, v)
		for i := 0; i < simple; i++ {
			if err := g.RemoveEdge(v, v, EdgeSimple); err != nil {
				return nil, err
			}
		}
		phase := g.Phase(v)
		for i := 0; i < had; i++ {
			if err := g.RemoveEdge(v, v, EdgeHadamard); err != nil {
				return nil, err
			}
			phase = phase.Add(PhaseFromInt(1))
		}
		g.SetPhase(v, phase)
	}
	return NewEdit(), nil
}

// MatchColorChange accepts any selected Z or X spider.
func MatchColorChange(g *Graph, pred func(int) bool) []int {
	var out []int
	for _, v := range g.Vertices() {
		ty := g.Type(v)
		if ty != Z && ty != X {
			continue
		}
		if pred != nil && !pred(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ColorChange conjugates each matched spider by Hadamards: the color flips
// and every incident plain edge becomes a Hadamard edge and vice versa.
// W-io edges are untouched. The graph is mutated in place.
func ColorChange(g *Graph, matches []int) error {
	for _, v := range matches {
		switch g.Type(v) {
		case Z:
			g.SetType(v, X)
		case X:
			g.SetType(v, Z)
		default:
			continue
		}
		for p, c := range g.edges {
			if p[0] != v && p[1] != v {
				continue
			}
			if p[0] == v && p[1] == v {
				// A self-loop sees both endpoints; its type is toggled twice,
				// which is the identity, so leave it alone.
				continue
			}
			c.Simple, c.Had = c.Had, c.Simple
		}
	}
	return nil
}
