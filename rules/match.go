// Package rules implements custom rewrite rules: pattern graphs, subgraph
// isomorphism matching with symbolic phase resolution, host-side unfusing,
// and rule validation.
package rules

import (
	"sort"
	"strconv"

	"zxd/zxgraph"
)

// matchNode is a vertex of the simple matching representation.
type matchNode struct {
	Type  zxgraph.VertexType
	Phase zxgraph.Phase
	// Boundary carries "input_<i>" or "output_<i>" for boundary vertices of
	// rule patterns, aligning LHS and RHS boundaries by position.
	Boundary string
}

// matchGraph is the simple-graph view used by isomorphism search. Node ids
// are the host vertex ids in decimal, or synthetic "b<i>" ids for boundary
// stubs introduced by subgraph extraction. Parallel edges collapse to one
// representative type (w_io over hadamard over plain).
type matchGraph struct {
	nodes map[string]*matchNode
	adj   map[string]map[string]zxgraph.EdgeType
}

func newMatchGraph() *matchGraph {
	return &matchGraph{
		nodes: make(map[string]*matchNode),
		adj:   make(map[string]map[string]zxgraph.EdgeType),
	}
}

func (m *matchGraph) addNode(id string, n *matchNode) {
	m.nodes[id] = n
	if m.adj[id] == nil {
		m.adj[id] = make(map[string]zxgraph.EdgeType)
	}
}

func (m *matchGraph) addEdge(a, b string, ty zxgraph.EdgeType) {
	m.adj[a][b] = ty
	m.adj[b][a] = ty
}

func (m *matchGraph) size() int { return len(m.nodes) }

func (m *matchGraph) degree(id string) int { return len(m.adj[id]) }

// nodeIDs returns all node ids sorted, for deterministic enumeration.
func (m *matchGraph) nodeIDs() []string {
	out := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// boundaryNeighbors returns the boundary-typed neighbors of id, sorted.
func (m *matchGraph) boundaryNeighbors(id string) []string {
	var out []string
	for n := range m.adj[id] {
		if m.nodes[n].Type == zxgraph.Boundary {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// withoutBoundaries returns the induced subgraph on non-boundary nodes.
func (m *matchGraph) withoutBoundaries() *matchGraph {
	out := newMatchGraph()
	for id, n := range m.nodes {
		if n.Type != zxgraph.Boundary {
			out.addNode(id, n)
		}
	}
	for a, ns := range m.adj {
		if _, ok := out.nodes[a]; !ok {
			continue
		}
		for b, ty := range ns {
			if _, ok := out.nodes[b]; ok {
				out.addEdge(a, b, ty)
			}
		}
	}
	return out
}

func hostNodeID(v int) string { return strconv.Itoa(v) }

func hostVertexOf(id string) int {
	v, _ := strconv.Atoi(id)
	return v
}

// patternFromGraph builds the matching view of a whole rule pattern,
// tagging boundary vertices with their input/output position.
func patternFromGraph(g *zxgraph.Graph) *matchGraph {
	m := newMatchGraph()
	boundary := make(map[int]string)
	for i, v := range g.Inputs() {
		boundary[v] = "input_" + strconv.Itoa(i)
	}
	for i, v := range g.Outputs() {
		boundary[v] = "output_" + strconv.Itoa(i)
	}
	for _, v := range g.Vertices() {
		m.addNode(hostNodeID(v), &matchNode{Type: g.Type(v), Phase: g.Phase(v), Boundary: boundary[v]})
	}
	for _, v := range g.Vertices() {
		for _, n := range g.Neighbors(v) {
			if n < v {
				continue
			}
			ty, _ := g.DominantEdgeType(v, n)
			m.addEdge(hostNodeID(v), hostNodeID(n), ty)
		}
	}
	return m
}

// inducedSubgraph builds the matching view of the induced subgraph on verts.
func inducedSubgraph(g *zxgraph.Graph, verts []int) *matchGraph {
	m := newMatchGraph()
	in := make(map[int]bool, len(verts))
	for _, v := range verts {
		in[v] = true
	}
	for _, v := range verts {
		if !g.HasVertex(v) {
			continue
		}
		m.addNode(hostNodeID(v), &matchNode{Type: g.Type(v), Phase: g.Phase(v)})
	}
	for _, v := range verts {
		for _, n := range g.Neighbors(v) {
			if n < v || !in[n] {
				continue
			}
			ty, _ := g.DominantEdgeType(v, n)
			m.addEdge(hostNodeID(v), hostNodeID(n), ty)
		}
	}
	return m
}

// extractSubgraph builds the matchable region for a selection: the induced
// subgraph on the selected non-boundary vertices, plus one synthetic
// boundary stub per edge leaving the selection. The returned mapping sends
// each stub id to the real host vertex on the far side of its edge.
func extractSubgraph(g *zxgraph.Graph, verts []int) (*matchGraph, map[string]int) {
	var kept []int
	for _, v := range verts {
		if g.HasVertex(v) && g.Type(v) != zxgraph.Boundary {
			kept = append(kept, v)
		}
	}
	m := inducedSubgraph(g, kept)
	in := make(map[int]bool, len(kept))
	for _, v := range kept {
		in[v] = true
	}
	boundaryMapping := make(map[string]int)
	i := 0
	for _, v := range kept {
		for _, e := range g.IncidentEdges(v) {
			outside := -1
			if !in[e.S] {
				outside = e.S
			} else if !in[e.T] {
				outside = e.T
			}
			if outside < 0 {
				continue
			}
			stub := "b" + strconv.Itoa(i)
			boundaryMapping[stub] = outside
			m.addNode(stub, &matchNode{Type: zxgraph.Boundary})
			m.addEdge(hostNodeID(v), stub, e.Type)
			i++
		}
	}
	return m, boundaryMapping
}

// enumerateIsomorphisms runs a backtracking search for type-preserving
// bijections from left onto right, optionally also requiring edge types to
// agree. yield is called for every isomorphism found; returning false stops
// the search. The enumeration order is deterministic (sorted node ids) but
// callers must treat it as implementation-defined.
func enumerateIsomorphisms(left, right *matchGraph, matchEdgeTypes bool, yield func(map[string]string) bool) {
	if left.size() != right.size() {
		return
	}
	lids := left.nodeIDs()
	// Assign high-degree nodes first to prune early.
	sort.SliceStable(lids, func(i, j int) bool { return left.degree(lids[i]) > left.degree(lids[j]) })
	rids := right.nodeIDs()

	assigned := make(map[string]string, len(lids))
	used := make(map[string]bool, len(rids))

	var backtrack func(i int) bool
	backtrack = func(i int) bool {
		if i == len(lids) {
			out := make(map[string]string, len(assigned))
			for k, v := range assigned {
				out[k] = v
			}
			return yield(out)
		}
		l := lids[i]
		ln := left.nodes[l]
		for _, r := range rids {
			if used[r] {
				continue
			}
			rn := right.nodes[r]
			if ln.Type != rn.Type || left.degree(l) != right.degree(r) {
				continue
			}
			if !consistent(left, right, matchEdgeTypes, assigned, l, r) {
				continue
			}
			assigned[l] = r
			used[r] = true
			cont := backtrack(i + 1)
			delete(assigned, l)
			delete(used, r)
			if !cont {
				return false
			}
		}
		return true
	}
	backtrack(0)
}

// consistent checks the candidate pair (l -> r) against every already
// assigned node: adjacency must agree in both directions, including
// self-loops and, when requested, edge types.
func consistent(left, right *matchGraph, matchEdgeTypes bool, assigned map[string]string, l, r string) bool {
	lt, lHasLoop := left.adj[l][l]
	rt, rHasLoop := right.adj[r][r]
	if lHasLoop != rHasLoop || (lHasLoop && matchEdgeTypes && lt != rt) {
		return false
	}
	for la, ra := range assigned {
		lt, lAdj := left.adj[l][la]
		rt, rAdj := right.adj[r][ra]
		if lAdj != rAdj {
			return false
		}
		if lAdj && matchEdgeTypes && lt != rt {
			return false
		}
	}
	return true
}
