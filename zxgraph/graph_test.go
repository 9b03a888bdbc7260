package zxgraph

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestAddRemoveEdgesWithMultiplicity(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(Z, 0, 0)
	b := g.AddVertex(X, 1, 0)
	g.AddEdge(a, b, EdgeSimple)
	g.AddEdge(a, b, EdgeSimple)
	g.AddEdge(a, b, EdgeHadamard)

	s, h, w := g.EdgeCount(a, b)
	if s != 2 || h != 1 || w != 0 {
		t.Fatalf("edge counts = (%d,%d,%d), want (2,1,0)", s, h, w)
	}
	if g.NumEdges() != 3 {
		t.Errorf("NumEdges = %d, want 3", g.NumEdges())
	}
	if err := g.RemoveEdge(a, b, EdgeSimple); err != nil {
		t.Fatalf("removing simple edge: %v", err)
	}
	if err := g.RemoveEdge(b, a, EdgeWIO); err == nil {
		t.Error("removing a missing w_io edge should fail")
	}
	if got := len(g.IncidentEdges(a)); got != 2 {
		t.Errorf("incident edges after removal = %d, want 2", got)
	}
}

func TestRemoveVertexDropsIncidentEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(Z, 0, 0)
	b := g.AddVertex(Z, 1, 0)
	c := g.AddVertex(Z, 2, 0)
	g.AddEdge(a, b, EdgeSimple)
	g.AddEdge(b, c, EdgeHadamard)
	g.RemoveVertex(b)

	if g.NumEdges() != 0 {
		t.Errorf("edges should be gone with the vertex, have %d", g.NumEdges())
	}
	if g.Connected(a, c) {
		t.Error("a and c should not be connected")
	}
}

func TestAutoDetectIO(t *testing.T) {
	g := NewGraph()
	in0 := g.AddVertex(Boundary, 0, 0)
	in1 := g.AddVertex(Boundary, 0, 1)
	mid := g.AddVertex(Z, 1, 0.5)
	out0 := g.AddVertex(Boundary, 2, 0)
	g.AddEdge(in0, mid, EdgeSimple)
	g.AddEdge(in1, mid, EdgeSimple)
	g.AddEdge(mid, out0, EdgeSimple)

	g.AutoDetectIO()
	if got := g.Inputs(); len(got) != 2 || got[0] != in0 || got[1] != in1 {
		t.Errorf("inputs = %v, want [%d %d]", got, in0, in1)
	}
	if got := g.Outputs(); len(got) != 1 || got[0] != out0 {
		t.Errorf("outputs = %v, want [%d]", got, out0)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := NewGraph()
	g.VarTypes()["a"] = true
	in := g.AddVertex(Boundary, 0, 0)
	z := g.AddVertex(Z, 1, 0)
	ph, err := ParsePhase("a + 1/2", g.VarTypes())
	if err != nil {
		t.Fatalf("parsing phase: %v", err)
	}
	g.SetPhase(z, ph)
	x := g.AddVertex(X, 2, 0)
	out := g.AddVertex(Boundary, 3, 0)
	g.AddEdge(in, z, EdgeSimple)
	g.AddEdge(z, x, EdgeHadamard)
	g.AddEdge(z, x, EdgeHadamard) // parallel edge must survive
	g.AddEdge(x, out, EdgeSimple)
	g.AutoDetectIO()

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !g.Equal(back) {
		t.Errorf("round trip changed the graph:\n%s", data)
	}
	if back.AutoSimplify() {
		t.Error("deserialized graphs must have auto-simplify disabled")
	}
	if !back.VarTypes()["a"] {
		t.Error("variable classification lost in round trip")
	}
}

func TestCopyIsDeep(t *testing.T) {
	g := NewGraph()
	z := g.AddVertex(Z, 0, 0)
	g.SetPhase(z, PhaseFromRat(big.NewRat(1, 2)))
	c := g.Copy()
	c.SetPhase(z, PhaseFromInt(1))
	c.AddVertex(X, 1, 1)

	if !g.Phase(z).Equal(PhaseFromRat(big.NewRat(1, 2))) {
		t.Error("mutating the copy changed the original phase")
	}
	if g.NumVertices() != 1 {
		t.Error("mutating the copy changed the original vertex set")
	}
}

func TestCopyRebindsVariables(t *testing.T) {
	g := NewGraph()
	g.VarTypes()["a"] = false
	z := g.AddVertex(Z, 0, 0)
	ph, _ := ParsePhase("a", g.VarTypes())
	g.SetPhase(z, ph)

	c := g.Copy()
	c.VarTypes()["a"] = true
	if !c.Phase(z).IsPauli() {
		t.Error("copy's phase should follow the copy's classification table")
	}
	if g.Phase(z).IsPauli() {
		t.Error("original's phase should not follow the copy's table")
	}
}

func TestWPartner(t *testing.T) {
	g := NewGraph()
	win := g.AddVertex(WInput, 0, 0)
	wout := g.AddVertex(WOutput, 0.3, 0)
	g.AddEdge(win, wout, EdgeWIO)

	p, err := g.WPartner(win)
	if err != nil || p != wout {
		t.Fatalf("WPartner(win) = %d, %v; want %d", p, err, wout)
	}
	p, err = g.WPartner(wout)
	if err != nil || p != win {
		t.Fatalf("WPartner(wout) = %d, %v; want %d", p, err, win)
	}
	z := g.AddVertex(Z, 1, 1)
	if _, err := g.WPartner(z); err == nil {
		t.Error("WPartner on a non-W vertex should fail")
	}
}

func TestApplyEdit(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(Z, 0, 0)
	b := g.AddVertex(Z, 1, 0)
	c := g.AddVertex(Z, 2, 0)
	g.AddEdge(a, b, EdgeSimple)
	g.AddEdge(b, c, EdgeSimple)

	edit := NewEdit()
	edit.AddToTable(a, c, EdgeHadamard)
	edit.RemoveVerts = append(edit.RemoveVerts, b)
	if err := g.Apply(edit); err != nil {
		t.Fatalf("applying edit: %v", err)
	}

	if g.HasVertex(b) {
		t.Error("vertex b should be removed")
	}
	s, h, _ := g.EdgeCount(a, c)
	if s != 0 || h != 1 {
		t.Errorf("edge counts between a and c = (%d,%d), want (0,1)", s, h)
	}
}

func TestAutoSimplifyToggle(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(Z, 0, 0)
	b := g.AddVertex(Z, 1, 0)
	g.AddEdge(a, b, EdgeHadamard)
	g.AddEdge(a, b, EdgeHadamard)
	if _, h, _ := g.EdgeCount(a, b); h != 2 {
		t.Fatalf("without auto-simplify parallel Hadamard edges must persist, have %d", h)
	}

	g2 := NewGraph()
	g2.SetAutoSimplify(true)
	a2 := g2.AddVertex(Z, 0, 0)
	b2 := g2.AddVertex(Z, 1, 0)
	g2.AddEdge(a2, b2, EdgeHadamard)
	g2.AddEdge(a2, b2, EdgeHadamard)
	if _, h, _ := g2.EdgeCount(a2, b2); h != 0 {
		t.Errorf("with auto-simplify parallel Hadamard edges should cancel, have %d", h)
	}
}
