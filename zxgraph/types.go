// Package zxgraph provides the ZX-diagram multigraph the rewrite engine
// operates on: typed, phase-carrying vertices, plain/Hadamard/W-pair edges
// with multiplicities, layout positions, and a round-trippable JSON form.
package zxgraph

import (
	"fmt"
	"math/big"

	"zxd/poly"
)

// VertexType is the kind of a vertex.
type VertexType int

const (
	Boundary VertexType = iota
	Z
	X
	HBox
	WInput
	WOutput
	ZBox
	Dummy
)

var vertexTypeNames = map[VertexType]string{
	Boundary: "boundary",
	Z:        "Z",
	X:        "X",
	HBox:     "H",
	WInput:   "W_in",
	WOutput:  "W_out",
	ZBox:     "Z_box",
	Dummy:    "dummy",
}

func (t VertexType) String() string {
	if s, ok := vertexTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("VertexType(%d)", int(t))
}

// ParseVertexType is the inverse of String.
func ParseVertexType(s string) (VertexType, error) {
	for t, name := range vertexTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown vertex type %q", s)
}

// IsSpider reports whether the type fuses like a spider (Z, X or Z-box).
func (t VertexType) IsSpider() bool { return t == Z || t == X || t == ZBox }

// EdgeType is the kind of an edge.
type EdgeType int

const (
	EdgeSimple EdgeType = iota
	EdgeHadamard
	EdgeWIO
)

var edgeTypeNames = map[EdgeType]string{
	EdgeSimple:   "simple",
	EdgeHadamard: "hadamard",
	EdgeWIO:      "w_io",
}

func (t EdgeType) String() string {
	if s, ok := edgeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EdgeType(%d)", int(t))
}

// ParseEdgeType is the inverse of String.
func ParseEdgeType(s string) (EdgeType, error) {
	for t, name := range edgeTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown edge type %q", s)
}

// Edge is one edge instance. Parallel edges between the same pair appear as
// separate Edge values. S <= T except that the orientation of reported
// self-loops is trivially S == T.
type Edge struct {
	S, T int
	Type EdgeType
}

// Phase is a vertex phase: an exact rational multiple of pi, or a symbolic
// polynomial over the graph's variables. A symbolic phase with no free
// variables collapses to the rational form.
type Phase struct {
	r *big.Rat
	p *poly.Poly
}

// PhaseZero returns the zero phase.
func PhaseZero() Phase { return Phase{} }

// PhaseFromRat returns a numeric phase, normalized into [0, 2).
func PhaseFromRat(r *big.Rat) Phase {
	m := ratMod2(r)
	if m.Sign() == 0 {
		return Phase{}
	}
	return Phase{r: m}
}

// PhaseFromInt returns the phase n*pi.
func PhaseFromInt(n int64) Phase { return PhaseFromRat(big.NewRat(n, 1)) }

// PhaseFromPoly returns a symbolic phase, collapsing constants to the
// rational form.
func PhaseFromPoly(p poly.Poly) Phase {
	if p.IsConstant() {
		return PhaseFromRat(p.ConstValue())
	}
	cp := p.Copy()
	return Phase{p: &cp}
}

// ParsePhase reads a phase expression, binding variables to types.
func ParsePhase(expr string, types map[string]bool) (Phase, error) {
	p, err := poly.Parse(expr, func(name string) poly.Poly {
		if _, ok := types[name]; !ok {
			types[name] = false
		}
		return poly.NewVar(name, types)
	})
	if err != nil {
		return Phase{}, err
	}
	return PhaseFromPoly(p), nil
}

// IsSymbolic reports whether the phase carries free variables.
func (ph Phase) IsSymbolic() bool { return ph.p != nil }

// IsZero reports whether the phase is exactly zero.
func (ph Phase) IsZero() bool { return ph.p == nil && (ph.r == nil || ph.r.Sign() == 0) }

// Rat returns the numeric value; ok is false for symbolic phases.
func (ph Phase) Rat() (*big.Rat, bool) {
	if ph.p != nil {
		return nil, false
	}
	if ph.r == nil {
		return new(big.Rat), true
	}
	return new(big.Rat).Set(ph.r), true
}

// Poly lifts the phase into the polynomial ring.
func (ph Phase) Poly() poly.Poly {
	if ph.p != nil {
		return *ph.p
	}
	if ph.r == nil {
		return poly.Poly{}
	}
	return poly.NewConst(ph.r)
}

// Add returns the sum of two phases (mod 2 for the numeric part).
func (ph Phase) Add(o Phase) Phase {
	if ph.p == nil && o.p == nil {
		a, _ := ph.Rat()
		b, _ := o.Rat()
		return PhaseFromRat(a.Add(a, b))
	}
	return PhaseFromPoly(ph.Poly().Add(o.Poly()))
}

// Substitute replaces variables by concrete values.
func (ph Phase) Substitute(vals map[string]*big.Rat) Phase {
	if ph.p == nil {
		return ph
	}
	return PhaseFromPoly(ph.p.Substitute(vals))
}

// Equal reports phase equality, comparing a numeric phase against a symbolic
// one through the polynomial normalization.
func (ph Phase) Equal(o Phase) bool {
	if ph.p == nil && o.p == nil {
		a, _ := ph.Rat()
		b, _ := o.Rat()
		return a.Cmp(b) == 0
	}
	return ph.Poly().Equal(o.Poly())
}

// IsPauli reports whether the phase is symbolically a multiple of pi.
func (ph Phase) IsPauli() bool {
	if ph.p != nil {
		return ph.p.IsPauli()
	}
	if ph.r == nil {
		return true
	}
	return ph.r.IsInt()
}

// Freeze detaches any live variables from the classification table.
func (ph Phase) Freeze() {
	if ph.p != nil {
		ph.p.Freeze()
	}
}

// Rebind repoints live variables at a new classification table.
func (ph Phase) Rebind(types map[string]bool) {
	if ph.p != nil {
		ph.p.Rebind(types)
	}
}

// Copy returns a structural copy.
func (ph Phase) Copy() Phase {
	if ph.p != nil {
		cp := ph.p.Copy()
		return Phase{p: &cp}
	}
	if ph.r == nil {
		return Phase{}
	}
	return Phase{r: new(big.Rat).Set(ph.r)}
}

func (ph Phase) String() string {
	if ph.p != nil {
		return ph.p.String()
	}
	if ph.r == nil {
		return "0"
	}
	if ph.r.IsInt() {
		return ph.r.Num().String()
	}
	return ph.r.String()
}

func ratMod2(r *big.Rat) *big.Rat {
	two := big.NewRat(2, 1)
	q := new(big.Rat).Quo(r, two)
	floor := new(big.Int).Div(q.Num(), q.Denom())
	return new(big.Rat).Sub(r, new(big.Rat).Mul(two, new(big.Rat).SetInt(floor)))
}
