package action

import (
	"errors"
	"math/big"
	"testing"

	"zxd/proof"
	"zxd/rules"
	"zxd/zxgraph"
)

// identityChain builds b - Z - Z - Z - b with phaseless spiders.
func identityChain() (*zxgraph.Graph, []int) {
	g := zxgraph.NewGraph()
	b0 := g.AddVertex(zxgraph.Boundary, 0, 0)
	z1 := g.AddVertex(zxgraph.Z, 1, 0)
	z2 := g.AddVertex(zxgraph.Z, 2, 0)
	z3 := g.AddVertex(zxgraph.Z, 3, 0)
	b1 := g.AddVertex(zxgraph.Boundary, 4, 0)
	g.AddEdge(b0, z1, zxgraph.EdgeSimple)
	g.AddEdge(z1, z2, zxgraph.EdgeSimple)
	g.AddEdge(z2, z3, zxgraph.EdgeSimple)
	g.AddEdge(z3, b1, zxgraph.EdgeSimple)
	return g, []int{z1, z2, z3}
}

func TestDoRewriteCommitsOneStep(t *testing.T) {
	g, sel := identityChain()
	m := proof.NewModel(g)
	reg := NewRegistry()
	a, ok := reg.Get("remove_id")
	if !ok {
		t.Fatal("remove_id should be built in")
	}

	result, err := a.DoRewrite(m, g, SelectionFromVertices(g, sel))
	if err != nil {
		t.Fatalf("DoRewrite: %v", err)
	}
	if m.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", m.RowCount())
	}
	if m.DisplayName(1) != "Remove identities" {
		t.Errorf("step name = %q", m.DisplayName(1))
	}
	// Repeat drives the chain down to a bare wire.
	for _, v := range result.Vertices() {
		if result.Type(v) != zxgraph.Boundary {
			t.Errorf("vertex %d of type %v should be gone", v, result.Type(v))
		}
	}
	if g.NumVertices() != 5 {
		t.Error("the input graph must stay untouched")
	}
}

func TestDoRewriteRequiresAMatch(t *testing.T) {
	g := zxgraph.NewGraph()
	z := g.AddVertexWithPhase(zxgraph.Z, zxgraph.PhaseFromInt(1), 0, 0)
	m := proof.NewModel(g)
	reg := NewRegistry()
	a, _ := reg.Get("remove_id")

	if _, err := a.DoRewrite(m, g, SelectionFromVertices(g, []int{z})); !errors.Is(err, ErrNoMatches) {
		t.Errorf("DoRewrite = %v, want ErrNoMatches", err)
	}
	if m.RowCount() != 1 {
		t.Error("a failed action must not add a step")
	}
}

func TestDoRewriteAtomicOnRuleFailure(t *testing.T) {
	g, sel := identityChain()
	m := proof.NewModel(g)
	boom := errors.New("boom")
	a := &RewriteAction{
		ID:        "exploding",
		Name:      "Exploding",
		MatchType: MatchesVertices,
		Matcher: func(g *zxgraph.Graph, s Selection) MatchSet {
			return MatchSet{Vertices: s.Vertices()}
		},
		Rule: func(g *zxgraph.Graph, ms MatchSet) (*zxgraph.Edit, error) {
			// Mutate before failing; the mutation must not leak out.
			g.AddVertex(zxgraph.X, 9, 9)
			return nil, boom
		},
	}

	if _, err := a.DoRewrite(m, g, SelectionFromVertices(g, sel)); !errors.Is(err, boom) {
		t.Fatalf("DoRewrite = %v, want boom", err)
	}
	if m.RowCount() != 1 {
		t.Error("no step may be committed after a rule failure")
	}
	if g.NumVertices() != 5 {
		t.Error("the input graph must stay untouched after a rule failure")
	}
}

func TestUpdateActiveWithCopyFirst(t *testing.T) {
	g, sel := identityChain()
	mutations := 0
	a := &RewriteAction{
		ID:        "mutating-probe",
		CopyFirst: true,
		Matcher: func(g *zxgraph.Graph, s Selection) MatchSet {
			mutations++
			g.AddVertex(zxgraph.Dummy, 0, 9)
			return MatchSet{Vertices: s.Vertices()}
		},
	}
	if !a.UpdateActive(g, SelectionFromVertices(g, sel)) {
		t.Error("probe should report a match")
	}
	if mutations != 1 {
		t.Fatalf("matcher ran %d times", mutations)
	}
	if g.NumVertices() != 5 {
		t.Error("CopyFirst probes must not mutate the shared graph")
	}
}

func TestColorChangeActionMutatesWorkingCopyOnly(t *testing.T) {
	g := zxgraph.NewGraph()
	z := g.AddVertex(zxgraph.Z, 0, 0)
	m := proof.NewModel(g)
	reg := NewRegistry()
	a, _ := reg.Get("color_change")
	if !a.ReturnsNewGraph {
		t.Error("color change mutates in place")
	}

	result, err := a.DoRewrite(m, g, SelectionFromVertices(g, []int{z}))
	if err != nil {
		t.Fatalf("DoRewrite: %v", err)
	}
	if result.Type(z) != zxgraph.X {
		t.Error("spider should flip to X in the result")
	}
	if g.Type(z) != zxgraph.Z {
		t.Error("the input graph keeps its color")
	}
}

func TestCustomRuleAction(t *testing.T) {
	lhs := zxgraph.NewGraph()
	lin := lhs.AddVertex(zxgraph.Boundary, 0, 0)
	lz := lhs.AddVertex(zxgraph.Z, 1, 0)
	lout := lhs.AddVertex(zxgraph.Boundary, 2, 0)
	lhs.AddEdge(lin, lz, zxgraph.EdgeSimple)
	lhs.AddEdge(lz, lout, zxgraph.EdgeSimple)

	rhs := zxgraph.NewGraph()
	rin := rhs.AddVertex(zxgraph.Boundary, 0, 0)
	rx := rhs.AddVertex(zxgraph.X, 1, 0)
	rout := rhs.AddVertex(zxgraph.Boundary, 2, 0)
	rhs.AddEdge(rin, rx, zxgraph.EdgeSimple)
	rhs.AddEdge(rx, rout, zxgraph.EdgeSimple)

	cr, err := rules.New(lhs, rhs, "recolor", "swap Z for X")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	reg := NewRegistry()
	if err := reg.RegisterCustomRule(cr); err != nil {
		t.Fatalf("registering: %v", err)
	}
	if err := reg.RegisterCustomRule(cr); err == nil {
		t.Error("duplicate registration should fail")
	}

	g := zxgraph.NewGraph()
	b0 := g.AddVertex(zxgraph.Boundary, 0, 0)
	z := g.AddVertexWithPhase(zxgraph.Z, zxgraph.PhaseFromRat(big.NewRat(1, 2)), 1, 0)
	b1 := g.AddVertex(zxgraph.Boundary, 2, 0)
	g.AddEdge(b0, z, zxgraph.EdgeSimple)
	g.AddEdge(z, b1, zxgraph.EdgeSimple)
	m := proof.NewModel(g)

	a, ok := reg.Get("custom/recolor")
	if !ok {
		t.Fatal("custom rule should be registered")
	}
	// Phase 1/2 does not equal the pattern's zero phase.
	if a.UpdateActive(g, SelectionFromVertices(g, []int{z})) {
		t.Fatal("rule must not match a phased spider")
	}
	g.SetPhase(z, zxgraph.PhaseZero())
	result, err := a.DoRewrite(m, g, SelectionFromVertices(g, []int{z}))
	if err != nil {
		t.Fatalf("DoRewrite: %v", err)
	}
	var xs int
	for _, v := range result.Vertices() {
		if result.Type(v) == zxgraph.X {
			xs++
		}
	}
	if xs != 1 {
		t.Errorf("result should hold one X spider, found %d", xs)
	}
	if m.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", m.RowCount())
	}
}
