package zxgraph

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ToMatrix evaluates the diagram as a dense linear map from its inputs to
// its outputs, with the usual spider conventions (a Z-spider contributes
// entries 1 and e^{i*pi*phase} with no normalization, an X-spider is its
// Hadamard conjugate, an H-box carries e^{i*pi*phase} on the all-ones
// entry). Exponential in the edge count; intended for rule validation on
// small pattern graphs only.
//
// Symbolic phases, W vertices and Z-boxes have no dense form here and
// produce an error.
func (g *Graph) ToMatrix() ([][]complex128, error) {
	ins, outs := g.Inputs(), g.Outputs()
	side := make(map[int]int) // boundary vertex -> bit position in its index
	isInput := make(map[int]bool)
	for i, v := range ins {
		side[v] = len(ins) - 1 - i
		isInput[v] = true
	}
	for i, v := range outs {
		if _, dup := side[v]; dup {
			return nil, fmt.Errorf("vertex %d is declared both input and output", v)
		}
		side[v] = len(outs) - 1 - i
	}

	for _, v := range g.Vertices() {
		switch ty := g.Type(v); ty {
		case Boundary:
			if _, ok := side[v]; !ok {
				return nil, fmt.Errorf("boundary vertex %d is neither input nor output; run AutoDetectIO first", v)
			}
			if g.Degree(v) != 1 {
				return nil, fmt.Errorf("boundary vertex %d must have exactly one incident edge", v)
			}
		case Z, X, HBox:
			if g.Phase(v).IsSymbolic() {
				return nil, fmt.Errorf("vertex %d has a symbolic phase; matrix semantics need concrete phases", v)
			}
		default:
			return nil, fmt.Errorf("matrix semantics not supported for %v vertices", ty)
		}
	}

	edges := g.Edges()
	for _, e := range edges {
		if e.Type == EdgeWIO {
			return nil, fmt.Errorf("matrix semantics not supported for w_io edges")
		}
	}
	nBits := 2 * len(edges)
	if nBits > 24 {
		return nil, fmt.Errorf("diagram too large for dense evaluation (%d edges)", len(edges))
	}

	// One bit per edge endpoint; vertex tensors see the bits of their
	// incident endpoints, boundary vertices forward theirs to the external
	// index.
	incident := make(map[int][]int)
	for i, e := range edges {
		incident[e.S] = append(incident[e.S], 2*i)
		incident[e.T] = append(incident[e.T], 2*i+1)
	}

	rows, cols := 1<<len(outs), 1<<len(ins)
	m := make([][]complex128, rows)
	for i := range m {
		m[i] = make([]complex128, cols)
	}

	invSqrt2 := complex(1/math.Sqrt2, 0)
	phaseFactor := func(v int) complex128 {
		r, _ := g.Phase(v).Rat()
		f, _ := r.Float64()
		return cmplx.Exp(complex(0, math.Pi*f))
	}

	for assign := 0; assign < 1<<nBits; assign++ {
		bit := func(i int) int { return (assign >> i) & 1 }
		w := complex(1, 0)
		ok := true
		for i, e := range edges {
			b0, b1 := bit(2*i), bit(2*i+1)
			switch e.Type {
			case EdgeSimple:
				if b0 != b1 {
					ok = false
				}
			case EdgeHadamard:
				w *= invSqrt2
				if b0 == 1 && b1 == 1 {
					w = -w
				}
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}

		inIdx, outIdx := 0, 0
		for _, v := range g.Vertices() {
			bits := incident[v]
			switch g.Type(v) {
			case Boundary:
				b := bit(bits[0])
				if isInput[v] {
					inIdx |= b << side[v]
				} else {
					outIdx |= b << side[v]
				}
			case Z:
				if len(bits) == 0 {
					// An isolated spider sums both of its internal states.
					w *= 1 + phaseFactor(v)
					continue
				}
				all0, all1 := true, true
				for _, i := range bits {
					if bit(i) == 0 {
						all1 = false
					} else {
						all0 = false
					}
				}
				switch {
				case all0:
					// weight 1
				case all1:
					w *= phaseFactor(v)
				default:
					ok = false
				}
			case X:
				parity := 0
				for _, i := range bits {
					parity ^= bit(i)
				}
				f := complex(1, 0)
				if parity == 1 {
					f = -1
				}
				w *= (1 + phaseFactor(v)*f) / complex(math.Pow(math.Sqrt2, float64(len(bits))), 0)
			case HBox:
				all1 := true
				for _, i := range bits {
					if bit(i) == 0 {
						all1 = false
						break
					}
				}
				if all1 {
					w *= phaseFactor(v)
				}
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		m[outIdx][inIdx] += w
	}
	return m, nil
}
