// Package poly implements the symbolic phase algebra used by rewrite rules.
//
// Phases in a ZX-diagram are rational multiples of pi. A rule may leave a
// phase open as a polynomial over named variables; matching a rule against a
// concrete diagram then solves for those variables. A variable flagged
// boolean takes values in {0,1}, so its powers collapse (x*x = x) and the
// coefficients of fully-boolean terms reduce mod 2.
package poly

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Var is a named symbolic variable. Two Vars with the same name denote the
// same logical variable within one graph's scope; identity is by name only.
//
// A live Var looks its boolean-ness up in a shared per-graph classification
// table, because the user may reclassify a variable after creating it. Freeze
// resolves the flag into the Var itself and drops the table reference.
type Var struct {
	Name   string
	frozen bool
	isBool bool
	types  map[string]bool
}

// NewLiveVar returns a variable whose boolean flag is read from types.
func NewLiveVar(name string, types map[string]bool) *Var {
	return &Var{Name: name, types: types}
}

// NewFrozenVar returns a variable with a fixed boolean flag.
func NewFrozenVar(name string, isBool bool) *Var {
	return &Var{Name: name, frozen: true, isBool: isBool}
}

// IsBool reports whether the variable is Z/2-valued.
func (v *Var) IsBool() bool {
	if v.frozen {
		return v.isBool
	}
	return v.types[v.Name]
}

// Freeze resolves the boolean flag into the Var and detaches it from the
// shared classification table. Freezing a frozen Var is a no-op.
func (v *Var) Freeze() {
	if !v.frozen {
		v.isBool = v.types[v.Name]
		v.frozen = true
		v.types = nil
	}
}

// Clone returns a copy sharing the same classification table when live.
func (v *Var) Clone() *Var {
	c := *v
	return &c
}

func (v *Var) String() string { return v.Name }

// less orders variables the way terms are rendered: non-boolean before
// boolean, then by name.
func (v *Var) less(o *Var) bool {
	vb, ob := v.IsBool(), o.IsBool()
	if vb != ob {
		return !vb
	}
	return v.Name < o.Name
}

// VarExp is a variable raised to an integer power.
type VarExp struct {
	Var *Var
	Exp int
}

// Term is a monomial: a product of variables with integer exponents.
// Terms compare equal by their sorted variable-exponent set.
type Term struct {
	vars []VarExp
}

// NewTerm builds a term from variable-exponent pairs, merging duplicates by
// name and collapsing boolean exponents to 1.
func NewTerm(vars ...VarExp) Term {
	merged := make(map[string]VarExp, len(vars))
	for _, ve := range vars {
		if cur, ok := merged[ve.Var.Name]; ok {
			cur.Exp += ve.Exp
			merged[ve.Var.Name] = cur
		} else {
			merged[ve.Var.Name] = ve
		}
	}
	out := make([]VarExp, 0, len(merged))
	for _, ve := range merged {
		if ve.Exp == 0 {
			continue
		}
		if ve.Var.IsBool() && ve.Exp > 1 {
			ve.Exp = 1
		}
		out = append(out, ve)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var.Name < out[j].Var.Name })
	return Term{vars: out}
}

// Mul multiplies two terms, merging exponents.
func (t Term) Mul(o Term) Term {
	return NewTerm(append(append([]VarExp{}, t.vars...), o.vars...)...)
}

// Vars returns the variable-exponent pairs in name order.
func (t Term) Vars() []VarExp { return t.vars }

// IsConstant reports whether the term has no variables.
func (t Term) IsConstant() bool { return len(t.vars) == 0 }

// AllBool reports whether every variable in the term is boolean. A constant
// term is vacuously all-boolean, so plain numeric phases also reduce mod 2.
func (t Term) AllBool() bool {
	for _, ve := range t.vars {
		if !ve.Var.IsBool() {
			return false
		}
	}
	return true
}

// Freeze freezes every variable in the term.
func (t Term) Freeze() {
	for _, ve := range t.vars {
		ve.Var.Freeze()
	}
}

// key is the canonical identity of the term.
func (t Term) key() string {
	parts := make([]string, len(t.vars))
	for i, ve := range t.vars {
		parts[i] = fmt.Sprintf("%s^%d", ve.Var.Name, ve.Exp)
	}
	return strings.Join(parts, "*")
}

// Equal reports whether two terms have the same variables and exponents.
func (t Term) Equal(o Term) bool { return t.key() == o.key() }

func (t Term) String() string {
	vs := make([]string, len(t.vars))
	for i, ve := range t.vars {
		if ve.Exp == 1 {
			vs[i] = ve.Var.Name
		} else {
			vs[i] = fmt.Sprintf("%s^%d", ve.Var.Name, ve.Exp)
		}
	}
	return strings.Join(vs, "*")
}

// CoeffTerm is one summand of a polynomial.
type CoeffTerm struct {
	Coeff *big.Rat
	Term  Term
}

// Poly is a sum of coefficient-term pairs. The zero polynomial has no terms.
// Polynomials are immutable; arithmetic returns new values.
type Poly struct {
	terms []CoeffTerm
}

// NewVar returns a degree-1 polynomial consisting of a single live variable
// backed by the given classification table.
func NewVar(name string, types map[string]bool) Poly {
	t := NewTerm(VarExp{Var: NewLiveVar(name, types), Exp: 1})
	return Poly{terms: []CoeffTerm{{Coeff: big.NewRat(1, 1), Term: t}}}
}

// NewConst returns a constant polynomial.
func NewConst(c *big.Rat) Poly {
	if c.Sign() == 0 {
		return Poly{}
	}
	return Poly{terms: []CoeffTerm{{Coeff: new(big.Rat).Set(c), Term: NewTerm()}}}
}

// FromCoeffTerms builds a polynomial from raw summands, normalizing as Add
// does (merging like terms, mod-2 reduction, dropping zeros).
func FromCoeffTerms(terms []CoeffTerm) Poly {
	return Poly{}.addTerms(terms)
}

// Terms returns the summands in canonical order.
func (p Poly) Terms() []CoeffTerm { return p.terms }

// IsZero reports whether p is the empty (zero) polynomial.
func (p Poly) IsZero() bool { return len(p.terms) == 0 }

// Freeze freezes every variable appearing in p.
func (p Poly) Freeze() {
	for _, ct := range p.terms {
		ct.Term.Freeze()
	}
}

// FreeVars returns the set of variables appearing in p, keyed by name.
func (p Poly) FreeVars() map[string]*Var {
	out := make(map[string]*Var)
	for _, ct := range p.terms {
		for _, ve := range ct.Term.Vars() {
			out[ve.Var.Name] = ve.Var
		}
	}
	return out
}

// ratMod2 reduces r into [0, 2).
func ratMod2(r *big.Rat) *big.Rat {
	two := big.NewRat(2, 1)
	q := new(big.Rat).Quo(r, two)
	floor := new(big.Int).Div(q.Num(), q.Denom())
	return new(big.Rat).Sub(r, new(big.Rat).Mul(two, new(big.Rat).SetInt(floor)))
}

func (p Poly) addTerms(extra []CoeffTerm) Poly {
	coeffs := make(map[string]*big.Rat)
	terms := make(map[string]Term)
	var order []string
	for _, ct := range append(append([]CoeffTerm{}, p.terms...), extra...) {
		k := ct.Term.key()
		if _, ok := coeffs[k]; !ok {
			coeffs[k] = new(big.Rat)
			terms[k] = ct.Term
			order = append(order, k)
		}
		coeffs[k].Add(coeffs[k], ct.Coeff)
		if ct.Term.AllBool() {
			coeffs[k] = ratMod2(coeffs[k])
		}
	}
	sort.Strings(order)
	var out []CoeffTerm
	for _, k := range order {
		if coeffs[k].Sign() != 0 {
			out = append(out, CoeffTerm{Coeff: coeffs[k], Term: terms[k]})
		}
	}
	return Poly{terms: out}
}

// Add returns p + o.
func (p Poly) Add(o Poly) Poly { return p.addTerms(o.terms) }

// AddRat returns p + c.
func (p Poly) AddRat(c *big.Rat) Poly { return p.Add(NewConst(c)) }

// Mul returns p * o, distributing and re-normalizing.
func (p Poly) Mul(o Poly) Poly {
	out := Poly{}
	for _, a := range p.terms {
		for _, b := range o.terms {
			ct := CoeffTerm{Coeff: new(big.Rat).Mul(a.Coeff, b.Coeff), Term: a.Term.Mul(b.Term)}
			out = out.addTerms([]CoeffTerm{ct})
		}
	}
	return out
}

// MulRat returns p scaled by c.
func (p Poly) MulRat(c *big.Rat) Poly { return p.Mul(NewConst(c)) }

// IsPauli reports whether every coefficient is an integer and every variable
// is boolean, i.e. the phase is symbolically a multiple of pi.
func (p Poly) IsPauli() bool {
	for _, ct := range p.terms {
		if !ct.Term.AllBool() {
			return false
		}
		if ct.Coeff.Denom().Cmp(oneInt) != 0 {
			return false
		}
	}
	return true
}

var oneInt = big.NewInt(1)

// IsConstant reports whether p has no variables.
func (p Poly) IsConstant() bool {
	for _, ct := range p.terms {
		if !ct.Term.IsConstant() {
			return false
		}
	}
	return true
}

// ConstValue returns the value of a constant polynomial (0 when empty).
func (p Poly) ConstValue() *big.Rat {
	if len(p.terms) == 0 {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.terms[0].Coeff)
}

// Equal reports whether two polynomials have the same term multiset.
func (p Poly) Equal(o Poly) bool {
	if len(p.terms) != len(o.terms) {
		return false
	}
	for i := range p.terms {
		if !p.terms[i].Term.Equal(o.terms[i].Term) {
			return false
		}
		if p.terms[i].Coeff.Cmp(o.terms[i].Coeff) != 0 {
			return false
		}
	}
	return true
}

// EqualRat compares p against a bare number, normalizing the number into a
// one-term polynomial (or the zero polynomial).
func (p Poly) EqualRat(c *big.Rat) bool { return p.Equal(NewConst(c)) }

// Substitute replaces variables by concrete values and returns the result.
// Variables absent from vals are left symbolic.
func (p Poly) Substitute(vals map[string]*big.Rat) Poly {
	out := Poly{}
	for _, ct := range p.terms {
		coeff := new(big.Rat).Set(ct.Coeff)
		var remaining []VarExp
		for _, ve := range ct.Term.Vars() {
			val, ok := vals[ve.Var.Name]
			if !ok {
				remaining = append(remaining, ve)
				continue
			}
			for i := 0; i < ve.Exp; i++ {
				coeff.Mul(coeff, val)
			}
		}
		out = out.addTerms([]CoeffTerm{{Coeff: coeff, Term: NewTerm(remaining...)}})
	}
	return out
}

// Rebind repoints every live variable at a new classification table,
// leaving frozen variables untouched.
func (p Poly) Rebind(types map[string]bool) {
	for _, ct := range p.terms {
		for _, ve := range ct.Term.vars {
			if !ve.Var.frozen {
				ve.Var.types = types
			}
		}
	}
}

// Copy returns a structural copy of p. Live variables keep pointing at the
// same classification table; use Freeze or Rebind on the copy to detach it.
func (p Poly) Copy() Poly {
	terms := make([]CoeffTerm, len(p.terms))
	for i, ct := range p.terms {
		ves := make([]VarExp, len(ct.Term.vars))
		for j, ve := range ct.Term.vars {
			ves[j] = VarExp{Var: ve.Var.Clone(), Exp: ve.Exp}
		}
		terms[i] = CoeffTerm{Coeff: new(big.Rat).Set(ct.Coeff), Term: Term{vars: ves}}
	}
	return Poly{terms: terms}
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.String()
}

func (p Poly) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(p.terms))
	for _, ct := range p.terms {
		switch {
		case ct.Term.IsConstant():
			parts = append(parts, ratString(ct.Coeff))
		case ct.Coeff.Cmp(big.NewRat(1, 1)) == 0:
			parts = append(parts, ct.Term.String())
		default:
			parts = append(parts, ratString(ct.Coeff)+"*"+ct.Term.String())
		}
	}
	return strings.Join(parts, " + ")
}
