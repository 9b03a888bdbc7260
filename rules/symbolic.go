package rules

import (
	"fmt"
	"math/big"

	"zxd/poly"
)

// matchSymbolicParameters solves for the values of the pattern's symbolic
// phase variables under a candidate matching. Pattern phases must be affine
// in a single variable; a variable bound twice must resolve to the same
// value both times. A non-nil error rejects the candidate.
func matchSymbolicParameters(matching map[string]string, left, right *matchGraph) (map[string]*big.Rat, error) {
	params := make(map[string]*big.Rat)
	for l, r := range matching {
		lp := left.nodes[l].Phase
		rp := right.nodes[r].Phase
		if !lp.IsSymbolic() {
			if !lp.Equal(rp) {
				return nil, fmt.Errorf("phase of vertex %s does not match", r)
			}
			continue
		}
		coeff, v, constant, err := poly.GetLinear(lp.Poly())
		if err != nil {
			return nil, err
		}
		if v == nil {
			if !lp.Equal(rp) {
				return nil, fmt.Errorf("phase of vertex %s does not match", r)
			}
			continue
		}
		val, ok := rp.Rat()
		if !ok {
			// A symbolic host phase can only match the pattern exactly.
			if lp.Equal(rp) {
				continue
			}
			return nil, fmt.Errorf("symbolic phase of vertex %s cannot bind parameter %s", r, v.Name)
		}
		// val = (host - constant) / coeff
		val.Sub(val, constant)
		val.Quo(val, coeff)
		if prev, seen := params[v.Name]; seen {
			if prev.Cmp(val) != 0 {
				return nil, fmt.Errorf("parameter %s is bound to conflicting values", v.Name)
			}
			continue
		}
		params[v.Name] = val
	}
	return params, nil
}
