package rules

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"zxd/poly"
)

// Check validates a rule before it enters the library. Variable-free rules
// must have equal linear maps on both sides; symbolic rules must not invent
// variables on the right and must keep left-hand phases linear.
func (r *CustomRule) Check() error {
	r.LHS.AutoDetectIO()
	r.RHS.AutoDetectIO()
	if len(r.LHS.Inputs()) != len(r.RHS.Inputs()) || len(r.LHS.Outputs()) != len(r.RHS.Outputs()) {
		return errors.New("the left-hand side and right-hand side of the rule have different numbers of inputs or outputs")
	}
	if len(r.LHS.VarTypes()) == 0 && len(r.RHS.VarTypes()) == 0 {
		return r.checkSemantics()
	}
	for name, isBool := range r.RHS.VarTypes() {
		lb, ok := r.LHS.VarTypes()[name]
		if !ok || lb != isBool {
			return errors.New("the right-hand side has more free variables than the left-hand side")
		}
	}
	for _, v := range r.LHS.Vertices() {
		ph := r.LHS.Phase(v)
		if !ph.IsSymbolic() {
			continue
		}
		if _, _, _, err := poly.GetLinear(ph.Poly()); err != nil {
			return fmt.Errorf("error in left-hand side phase: %w", err)
		}
	}
	return nil
}

func (r *CustomRule) checkSemantics() error {
	lm, err := r.LHS.ToMatrix()
	if err != nil {
		return fmt.Errorf("evaluating left-hand side: %w", err)
	}
	rm, err := r.RHS.ToMatrix()
	if err != nil {
		return fmt.Errorf("evaluating right-hand side: %w", err)
	}
	if matricesClose(lm, rm) {
		return nil
	}
	if matricesClose(normalized(lm), normalized(rm)) {
		return errors.New("the left-hand side and right-hand side of the rule differ by a scalar")
	}
	return errors.New("the left-hand side and right-hand side of the rule have different semantics")
}

func matricesClose(a, b [][]complex128) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if cmplx.Abs(a[i][j]-b[i][j]) > 1e-8 {
				return false
			}
		}
	}
	return true
}

// normalized divides a matrix by its Frobenius norm.
func normalized(m [][]complex128) [][]complex128 {
	var sum float64
	for i := range m {
		for j := range m[i] {
			sum += real(m[i][j])*real(m[i][j]) + imag(m[i][j])*imag(m[i][j])
		}
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return m
	}
	out := make([][]complex128, len(m))
	for i := range m {
		out[i] = make([]complex128, len(m[i]))
		for j := range m[i] {
			out[i][j] = m[i][j] / complex(norm, 0)
		}
	}
	return out
}

// IsUnfusable reports whether matching may unfuse host spiders first.
func (r *CustomRule) IsUnfusable() bool { return r.unfusable }
