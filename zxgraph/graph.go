package zxgraph

import (
	"fmt"
	"sort"
)

type vertexData struct {
	Type  VertexType
	Phase Phase
	Row   float64
	Qubit float64
}

type edgeCounts struct {
	Simple int
	Had    int
	WIO    int
}

func (c *edgeCounts) total() int { return c.Simple + c.Had + c.WIO }

type vpair [2]int

func pair(s, t int) vpair {
	if s > t {
		s, t = t, s
	}
	return vpair{s, t}
}

// Graph is a ZX-diagram: an undirected multigraph of typed, phase-carrying
// vertices. Parallel edges between the same pair are tracked as per-type
// counts; self-loops are allowed.
type Graph struct {
	vdata        map[int]*vertexData
	edges        map[vpair]*edgeCounts
	inputs       []int
	outputs      []int
	varTypes     map[string]bool
	autoSimplify bool
	nextID       int
}

// NewGraph returns an empty diagram with automatic simplification disabled.
func NewGraph() *Graph {
	return &Graph{
		vdata:    make(map[int]*vertexData),
		edges:    make(map[vpair]*edgeCounts),
		varTypes: make(map[string]bool),
	}
}

// SetAutoSimplify toggles eager reduction of parallel edges and self-loops
// between spiders on AddEdge. Proof snapshots must keep this off so that
// historical graphs round-trip exactly.
func (g *Graph) SetAutoSimplify(on bool) { g.autoSimplify = on }

// AutoSimplify reports the current toggle state.
func (g *Graph) AutoSimplify() bool { return g.autoSimplify }

// VarTypes is the shared variable classification table for this graph's
// symbolic phases. Mutating an entry reclassifies every live variable of
// that name.
func (g *Graph) VarTypes() map[string]bool { return g.varTypes }

// AddVertex adds a phaseless vertex and returns its identifier. H-boxes
// default to phase pi, the conventional Hadamard parameter.
func (g *Graph) AddVertex(ty VertexType, row, qubit float64) int {
	v := g.nextID
	g.nextID++
	g.vdata[v] = &vertexData{Type: ty, Row: row, Qubit: qubit}
	if ty == HBox {
		g.vdata[v].Phase = PhaseFromInt(1)
	}
	return v
}

// AddVertexWithPhase adds a vertex carrying a phase.
func (g *Graph) AddVertexWithPhase(ty VertexType, ph Phase, row, qubit float64) int {
	v := g.AddVertex(ty, row, qubit)
	g.vdata[v].Phase = ph
	return v
}

// RemoveVertex deletes a vertex and all incident edges. Removing an unknown
// vertex is a no-op.
func (g *Graph) RemoveVertex(v int) {
	if _, ok := g.vdata[v]; !ok {
		return
	}
	delete(g.vdata, v)
	for p := range g.edges {
		if p[0] == v || p[1] == v {
			delete(g.edges, p)
		}
	}
	g.inputs = removeID(g.inputs, v)
	g.outputs = removeID(g.outputs, v)
}

// RemoveVertices deletes several vertices.
func (g *Graph) RemoveVertices(vs []int) {
	for _, v := range vs {
		g.RemoveVertex(v)
	}
}

func removeID(ids []int, v int) []int {
	out := ids[:0]
	for _, id := range ids {
		if id != v {
			out = append(out, id)
		}
	}
	return out
}

// HasVertex reports whether v exists.
func (g *Graph) HasVertex(v int) bool {
	_, ok := g.vdata[v]
	return ok
}

// Vertices returns all vertex identifiers in ascending order.
func (g *Graph) Vertices() []int {
	out := make([]int, 0, len(g.vdata))
	for v := range g.vdata {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// NumVertices returns the vertex count.
func (g *Graph) NumVertices() int { return len(g.vdata) }

// Type returns the vertex type.
func (g *Graph) Type(v int) VertexType { return g.vdata[v].Type }

// SetType changes the vertex type.
func (g *Graph) SetType(v int, ty VertexType) { g.vdata[v].Type = ty }

// Phase returns the vertex phase.
func (g *Graph) Phase(v int) Phase { return g.vdata[v].Phase }

// SetPhase sets the vertex phase.
func (g *Graph) SetPhase(v int, ph Phase) { g.vdata[v].Phase = ph }

// Row returns the layout row coordinate.
func (g *Graph) Row(v int) float64 { return g.vdata[v].Row }

// Qubit returns the layout qubit coordinate.
func (g *Graph) Qubit(v int) float64 { return g.vdata[v].Qubit }

// SetPosition moves a vertex.
func (g *Graph) SetPosition(v int, row, qubit float64) {
	g.vdata[v].Row = row
	g.vdata[v].Qubit = qubit
}

// AddEdge adds one edge of the given type between s and t. With auto
// simplification enabled, parallel edges between two spiders reduce eagerly:
// plain parallels between same-colored spiders collapse to one, Hadamard
// parallels cancel pairwise (Hopf).
func (g *Graph) AddEdge(s, t int, ty EdgeType) {
	p := pair(s, t)
	c, ok := g.edges[p]
	if !ok {
		c = &edgeCounts{}
		g.edges[p] = c
	}
	switch ty {
	case EdgeSimple:
		c.Simple++
	case EdgeHadamard:
		c.Had++
	case EdgeWIO:
		c.WIO++
	}
	if g.autoSimplify && s != t {
		g.reduceParallel(p)
	}
	if c.total() == 0 {
		delete(g.edges, p)
	}
}

func (g *Graph) reduceParallel(p vpair) {
	a, b := g.vdata[p[0]], g.vdata[p[1]]
	if !a.Type.IsSpider() || !b.Type.IsSpider() {
		return
	}
	c := g.edges[p]
	if a.Type == b.Type {
		if c.Simple > 1 {
			c.Simple = 1
		}
		c.Had %= 2
	} else {
		if c.Had > 1 {
			c.Had = 1
		}
		c.Simple %= 2
	}
}

// RemoveEdge removes one edge of the given type between s and t.
func (g *Graph) RemoveEdge(s, t int, ty EdgeType) error {
	p := pair(s, t)
	c, ok := g.edges[p]
	if !ok {
		return fmt.Errorf("no edge between %d and %d", s, t)
	}
	switch ty {
	case EdgeSimple:
		if c.Simple == 0 {
			return fmt.Errorf("no simple edge between %d and %d", s, t)
		}
		c.Simple--
	case EdgeHadamard:
		if c.Had == 0 {
			return fmt.Errorf("no hadamard edge between %d and %d", s, t)
		}
		c.Had--
	case EdgeWIO:
		if c.WIO == 0 {
			return fmt.Errorf("no w_io edge between %d and %d", s, t)
		}
		c.WIO--
	}
	if c.total() == 0 {
		delete(g.edges, p)
	}
	return nil
}

// RemoveEdges removes several edge instances.
func (g *Graph) RemoveEdges(es []Edge) error {
	for _, e := range es {
		if err := g.RemoveEdge(e.S, e.T, e.Type); err != nil {
			return err
		}
	}
	return nil
}

// EdgeCount returns the per-type multiplicities between s and t.
func (g *Graph) EdgeCount(s, t int) (simple, hadamard, wio int) {
	if c, ok := g.edges[pair(s, t)]; ok {
		return c.Simple, c.Had, c.WIO
	}
	return 0, 0, 0
}

// Connected reports whether any edge joins s and t.
func (g *Graph) Connected(s, t int) bool {
	_, ok := g.edges[pair(s, t)]
	return ok
}

// DominantEdgeType reduces the multi-edge between s and t to a single type
// for pattern matching: W-io over Hadamard over plain.
func (g *Graph) DominantEdgeType(s, t int) (EdgeType, bool) {
	c, ok := g.edges[pair(s, t)]
	if !ok {
		return 0, false
	}
	switch {
	case c.WIO > 0:
		return EdgeWIO, true
	case c.Had > 0:
		return EdgeHadamard, true
	default:
		return EdgeSimple, true
	}
}

// Edges returns every edge instance, parallel edges repeated per count.
func (g *Graph) Edges() []Edge {
	pairs := make([]vpair, 0, len(g.edges))
	for p := range g.edges {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	var out []Edge
	for _, p := range pairs {
		c := g.edges[p]
		for i := 0; i < c.Simple; i++ {
			out = append(out, Edge{S: p[0], T: p[1], Type: EdgeSimple})
		}
		for i := 0; i < c.Had; i++ {
			out = append(out, Edge{S: p[0], T: p[1], Type: EdgeHadamard})
		}
		for i := 0; i < c.WIO; i++ {
			out = append(out, Edge{S: p[0], T: p[1], Type: EdgeWIO})
		}
	}
	return out
}

// NumEdges returns the total edge count including multiplicities.
func (g *Graph) NumEdges() int {
	n := 0
	for _, c := range g.edges {
		n += c.total()
	}
	return n
}

// Neighbors returns the distinct neighbors of v in ascending order. A
// self-loop makes v its own neighbor.
func (g *Graph) Neighbors(v int) []int {
	var out []int
	for p := range g.edges {
		if p[0] == v {
			out = append(out, p[1])
		} else if p[1] == v {
			out = append(out, p[0])
		}
	}
	sort.Ints(out)
	return out
}

// IncidentEdges returns every edge instance touching v.
func (g *Graph) IncidentEdges(v int) []Edge {
	var out []Edge
	for _, e := range g.Edges() {
		if e.S == v || e.T == v {
			out = append(out, e)
		}
	}
	return out
}

// Degree returns the number of edge endpoints at v; a self-loop counts twice.
func (g *Graph) Degree(v int) int {
	n := 0
	for p, c := range g.edges {
		if p[0] == v {
			n += c.total()
		}
		if p[1] == v {
			n += c.total()
		}
	}
	return n
}

// Inputs returns the declared input boundary vertices in order.
func (g *Graph) Inputs() []int { return append([]int{}, g.inputs...) }

// Outputs returns the declared output boundary vertices in order.
func (g *Graph) Outputs() []int { return append([]int{}, g.outputs...) }

// SetInputs declares the input order.
func (g *Graph) SetInputs(vs []int) { g.inputs = append([]int{}, vs...) }

// SetOutputs declares the output order.
func (g *Graph) SetOutputs(vs []int) { g.outputs = append([]int{}, vs...) }

// AutoDetectIO classifies every boundary vertex as an input or output from
// its layout: a boundary sitting at or left of its neighbor is an input,
// otherwise an output. Each side is ordered by qubit coordinate.
func (g *Graph) AutoDetectIO() {
	var ins, outs []int
	for _, v := range g.Vertices() {
		if g.Type(v) != Boundary {
			continue
		}
		ns := g.Neighbors(v)
		if len(ns) == 0 {
			ins = append(ins, v)
			continue
		}
		if g.Row(v) <= g.Row(ns[0]) {
			ins = append(ins, v)
		} else {
			outs = append(outs, v)
		}
	}
	byQubit := func(vs []int) {
		sort.SliceStable(vs, func(i, j int) bool { return g.Qubit(vs[i]) < g.Qubit(vs[j]) })
	}
	byQubit(ins)
	byQubit(outs)
	g.inputs = ins
	g.outputs = outs
}

// WPartner returns the W vertex paired with v through its W-io edge.
func (g *Graph) WPartner(v int) (int, error) {
	ty := g.Type(v)
	if ty != WInput && ty != WOutput {
		return 0, fmt.Errorf("vertex %d is not a W vertex", v)
	}
	for p, c := range g.edges {
		if c.WIO == 0 {
			continue
		}
		if p[0] == v {
			return p[1], nil
		}
		if p[1] == v {
			return p[0], nil
		}
	}
	return 0, fmt.Errorf("W vertex %d has no paired w_io edge", v)
}

// FreezeVars detaches every symbolic phase from the live classification
// table. Proof snapshots are frozen so later reclassification cannot alter
// history.
func (g *Graph) FreezeVars() {
	for _, d := range g.vdata {
		d.Phase.Freeze()
	}
}

// Copy returns a deep copy. The copy gets its own variable classification
// table with the same entries; symbolic phases are rebound to it.
func (g *Graph) Copy() *Graph {
	c := NewGraph()
	c.autoSimplify = g.autoSimplify
	c.nextID = g.nextID
	for name, b := range g.varTypes {
		c.varTypes[name] = b
	}
	for v, d := range g.vdata {
		ph := d.Phase.Copy()
		ph.Rebind(c.varTypes)
		c.vdata[v] = &vertexData{Type: d.Type, Phase: ph, Row: d.Row, Qubit: d.Qubit}
	}
	for p, cnt := range g.edges {
		cc := *cnt
		c.edges[p] = &cc
	}
	c.inputs = append([]int{}, g.inputs...)
	c.outputs = append([]int{}, g.outputs...)
	return c
}

// Equal reports structural equality: same vertices with types, phases and
// positions, same edge multiplicities, same input/output order.
func (g *Graph) Equal(o *Graph) bool {
	if len(g.vdata) != len(o.vdata) || len(g.edges) != len(o.edges) {
		return false
	}
	for v, d := range g.vdata {
		od, ok := o.vdata[v]
		if !ok || d.Type != od.Type || !d.Phase.Equal(od.Phase) {
			return false
		}
		if d.Row != od.Row || d.Qubit != od.Qubit {
			return false
		}
	}
	for p, c := range g.edges {
		oc, ok := o.edges[p]
		if !ok || *c != *oc {
			return false
		}
	}
	return intsEqual(g.inputs, o.inputs) && intsEqual(g.outputs, o.outputs)
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
