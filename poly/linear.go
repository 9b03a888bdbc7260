package poly

import (
	"errors"
	"math/big"
)

// ErrNonLinear is returned when a symbolic phase is not an affine function
// of a single variable.
var ErrNonLinear = errors.New("only linear symbolic parameters are supported")

// GetLinear decomposes p as coeff*v + constant. A polynomial with no
// variables yields (1, nil, c). Polynomials with more than two terms, more
// than one free variable, or a non-unit power are rejected with ErrNonLinear.
func GetLinear(p Poly) (coeff *big.Rat, v *Var, constant *big.Rat, err error) {
	if len(p.terms) > 2 || len(p.FreeVars()) > 1 {
		return nil, nil, nil, ErrNonLinear
	}
	one := big.NewRat(1, 1)
	switch len(p.terms) {
	case 0:
		return one, nil, new(big.Rat), nil
	case 1:
		ct := p.terms[0]
		if ct.Term.IsConstant() {
			return one, nil, new(big.Rat).Set(ct.Coeff), nil
		}
		return linearFromTerm(ct, new(big.Rat))
	default:
		a, b := p.terms[0], p.terms[1]
		if a.Term.IsConstant() {
			a, b = b, a
		}
		if b.Term.IsConstant() {
			return linearFromTerm(a, new(big.Rat).Set(b.Coeff))
		}
		// Two variable terms over a single variable means a non-unit power.
		return nil, nil, nil, ErrNonLinear
	}
}

func linearFromTerm(ct CoeffTerm, constant *big.Rat) (*big.Rat, *Var, *big.Rat, error) {
	ves := ct.Term.Vars()
	if len(ves) != 1 || ves[0].Exp != 1 {
		return nil, nil, nil, ErrNonLinear
	}
	return new(big.Rat).Set(ct.Coeff), ves[0].Var, constant, nil
}
