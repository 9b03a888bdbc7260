package rules

import (
	"strings"
	"testing"

	"zxd/zxgraph"
)

func wireGraph() *zxgraph.Graph {
	g := zxgraph.NewGraph()
	in := g.AddVertex(zxgraph.Boundary, 0, 0)
	out := g.AddVertex(zxgraph.Boundary, 2, 0)
	g.AddEdge(in, out, zxgraph.EdgeSimple)
	return g
}

func zWireGraph() *zxgraph.Graph {
	g := zxgraph.NewGraph()
	in := g.AddVertex(zxgraph.Boundary, 0, 0)
	z := g.AddVertex(zxgraph.Z, 1, 0)
	out := g.AddVertex(zxgraph.Boundary, 2, 0)
	g.AddEdge(in, z, zxgraph.EdgeSimple)
	g.AddEdge(z, out, zxgraph.EdgeSimple)
	return g
}

func TestCheckAcceptsEqualSemantics(t *testing.T) {
	// A bare wire equals a phaseless Z spider on a wire.
	r, err := New(wireGraph(), zWireGraph(), "identity", "")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	if err := r.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestCheckRejectsArityMismatch(t *testing.T) {
	lhs := wireGraph()
	rhs := zxgraph.NewGraph()
	rhs.AddVertex(zxgraph.Boundary, 0, 0)
	r, err := New(lhs, rhs, "bad-arity", "")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	if err := r.Check(); err == nil || !strings.Contains(err.Error(), "inputs or outputs") {
		t.Errorf("Check = %v, want arity error", err)
	}
}

func TestCheckDetectsScalarDifference(t *testing.T) {
	rhs := zWireGraph()
	// A floating phaseless Z spider contributes a scalar factor of 2.
	rhs.AddVertex(zxgraph.Z, 1, 2)
	r, err := New(wireGraph(), rhs, "scalar", "")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	if err := r.Check(); err == nil || !strings.Contains(err.Error(), "scalar") {
		t.Errorf("Check = %v, want scalar error", err)
	}
}

func TestCheckDetectsDifferentSemantics(t *testing.T) {
	rhs := zxgraph.NewGraph()
	in := rhs.AddVertex(zxgraph.Boundary, 0, 0)
	z := rhs.AddVertex(zxgraph.Z, 1, 0)
	out := rhs.AddVertex(zxgraph.Boundary, 2, 0)
	rhs.SetPhase(z, zxgraph.PhaseFromInt(1))
	rhs.AddEdge(in, z, zxgraph.EdgeSimple)
	rhs.AddEdge(z, out, zxgraph.EdgeSimple)

	r, err := New(wireGraph(), rhs, "pi-wire", "")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	if err := r.Check(); err == nil || !strings.Contains(err.Error(), "semantics") {
		t.Errorf("Check = %v, want semantics error", err)
	}
}

func TestCheckRejectsInventedVariables(t *testing.T) {
	rhs := zWireGraph()
	ph, _ := zxgraph.ParsePhase("b", rhs.VarTypes())
	for _, v := range rhs.Vertices() {
		if rhs.Type(v) == zxgraph.Z {
			rhs.SetPhase(v, ph)
		}
	}
	r, err := New(wireGraph(), rhs, "invent", "")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	if err := r.Check(); err == nil || !strings.Contains(err.Error(), "free variables") {
		t.Errorf("Check = %v, want free-variable error", err)
	}
}

func TestCheckRejectsNonLinearPhases(t *testing.T) {
	lhs := zWireGraph()
	ph, err := zxgraph.ParsePhase("a * b", lhs.VarTypes())
	if err != nil {
		t.Fatalf("parsing phase: %v", err)
	}
	for _, v := range lhs.Vertices() {
		if lhs.Type(v) == zxgraph.Z {
			lhs.SetPhase(v, ph)
		}
	}
	r, err := New(lhs, zWireGraph(), "nonlinear", "")
	if err != nil {
		t.Fatalf("building rule: %v", err)
	}
	if err := r.Check(); err == nil || !strings.Contains(err.Error(), "left-hand side phase") {
		t.Errorf("Check = %v, want phase linearity error", err)
	}
}
