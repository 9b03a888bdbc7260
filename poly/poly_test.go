package poly

import (
	"math/big"
	"testing"
)

func rat(a, b int64) *big.Rat { return big.NewRat(a, b) }

func TestBooleanVarModTwo(t *testing.T) {
	types := map[string]bool{"a": true}
	a := NewVar("a", types)

	if !a.Add(a).IsZero() {
		t.Errorf("a + a should be the zero polynomial for boolean a, got %v", a.Add(a))
	}
	if !a.Mul(a).Equal(a) {
		t.Errorf("a * a should equal a for boolean a, got %v", a.Mul(a))
	}
}

func TestRingLaws(t *testing.T) {
	types := map[string]bool{"a": false, "b": true}
	p := NewVar("a", types).MulRat(rat(2, 1)).AddRat(rat(1, 2))
	q := NewVar("b", types)
	r := NewVar("a", types).Mul(NewVar("b", types))

	if !p.Add(q).Equal(q.Add(p)) {
		t.Errorf("addition not commutative: %v vs %v", p.Add(q), q.Add(p))
	}
	if !p.Add(q).Add(r).Equal(p.Add(q.Add(r))) {
		t.Errorf("addition not associative")
	}
	left := p.Mul(q.Add(r))
	right := p.Mul(q).Add(p.Mul(r))
	if !left.Equal(right) {
		t.Errorf("multiplication does not distribute: %v vs %v", left, right)
	}
}

func TestConstantReductionModTwo(t *testing.T) {
	// Constant terms are vacuously all-boolean: phases live mod 2pi.
	p := NewConst(rat(3, 1)).Add(NewConst(rat(1, 1)))
	if !p.IsZero() {
		t.Errorf("3 + 1 should reduce to 0 mod 2, got %v", p)
	}
	q := NewConst(rat(5, 2))
	if !q.EqualRat(rat(1, 2)) {
		t.Errorf("5/2 should reduce to 1/2 mod 2, got %v", q)
	}
}

func TestEqualRatNormalization(t *testing.T) {
	if !NewConst(rat(0, 1)).EqualRat(rat(0, 1)) {
		t.Error("zero polynomial should equal 0")
	}
	if !(Poly{}).EqualRat(new(big.Rat)) {
		t.Error("empty polynomial should equal 0")
	}
	if (Poly{}).EqualRat(rat(1, 1)) {
		t.Error("empty polynomial should not equal 1")
	}
}

func TestIsPauli(t *testing.T) {
	types := map[string]bool{"a": true, "x": false}
	cases := []struct {
		name string
		p    Poly
		want bool
	}{
		{"boolean var", NewVar("a", types), true},
		{"continuous var", NewVar("x", types), false},
		{"integer constant", NewConst(rat(1, 1)), true},
		{"half constant", NewConst(rat(1, 2)), false},
		{"boolean plus int", NewVar("a", types).AddRat(rat(1, 1)), true},
	}
	for _, c := range cases {
		if got := c.p.IsPauli(); got != c.want {
			t.Errorf("%s: IsPauli = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFreezeDetachesFromTable(t *testing.T) {
	types := map[string]bool{"a": false}
	p := NewVar("a", types)
	if p.IsPauli() {
		t.Fatal("continuous variable should not be Pauli")
	}
	types["a"] = true
	if !p.IsPauli() {
		t.Fatal("live variable should see the reclassification")
	}
	p.Freeze()
	types["a"] = false
	if !p.IsPauli() {
		t.Error("frozen variable should keep its resolved flag")
	}
}

func TestSubstitute(t *testing.T) {
	types := map[string]bool{"a": false, "b": false}
	// 2a + b + 1/2
	p := NewVar("a", types).MulRat(rat(2, 1)).Add(NewVar("b", types)).AddRat(rat(1, 2))

	got := p.Substitute(map[string]*big.Rat{"a": rat(1, 4)})
	want := NewVar("b", types).AddRat(rat(1, 1))
	if !got.Equal(want) {
		t.Errorf("partial substitution: got %v, want %v", got, want)
	}

	full := p.Substitute(map[string]*big.Rat{"a": rat(1, 4), "b": rat(1, 2)})
	if !full.IsConstant() || full.ConstValue().Cmp(rat(3, 2)) != 0 {
		t.Errorf("full substitution: got %v, want 3/2", full)
	}
}

func TestGetLinear(t *testing.T) {
	types := map[string]bool{"a": false, "b": false}

	coeff, v, c, err := GetLinear(NewConst(rat(3, 4)))
	if err != nil {
		t.Fatalf("constant should be linear: %v", err)
	}
	if coeff.Cmp(rat(1, 1)) != 0 || v != nil || c.Cmp(rat(3, 4)) != 0 {
		t.Errorf("constant decomposition: got (%v, %v, %v)", coeff, v, c)
	}

	p := NewVar("a", types).MulRat(rat(2, 1)).AddRat(rat(1, 2))
	coeff, v, c, err = GetLinear(p)
	if err != nil {
		t.Fatalf("affine phase should be linear: %v", err)
	}
	if coeff.Cmp(rat(2, 1)) != 0 || v.Name != "a" || c.Cmp(rat(1, 2)) != 0 {
		t.Errorf("affine decomposition: got (%v, %v, %v)", coeff, v, c)
	}

	twoVars := NewVar("a", types).Add(NewVar("b", types))
	if _, _, _, err := GetLinear(twoVars); err == nil {
		t.Error("two free variables should be rejected")
	}

	square := NewVar("a", types).Mul(NewVar("a", types))
	if _, _, _, err := GetLinear(square); err == nil {
		t.Error("non-unit power should be rejected")
	}
}

func TestParse(t *testing.T) {
	types := map[string]bool{"a": false, "beta": true}
	newVar := func(name string) Poly { return NewVar(name, types) }

	cases := []struct {
		expr string
		want Poly
	}{
		{"0", Poly{}},
		{"pi", NewConst(rat(1, 1))},
		{"pi/2", NewConst(rat(1, 2))},
		{"3pi/2", NewConst(rat(3, 2))},
		{"1/4", NewConst(rat(1, 4))},
		{"a", NewVar("a", types)},
		{"2*a + 1/2", NewVar("a", types).MulRat(rat(2, 1)).AddRat(rat(1, 2))},
		{"2 a + 1/2", NewVar("a", types).MulRat(rat(2, 1)).AddRat(rat(1, 2))},
		{"a*beta", NewVar("a", types).Mul(NewVar("beta", types))},
		{"(a + pi)", NewVar("a", types).AddRat(rat(1, 1))},
	}
	for _, c := range cases {
		got, err := Parse(c.expr, newVar)
		if err != nil {
			t.Errorf("Parse(%q): %v", c.expr, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("Parse(%q) = %v, want %v", c.expr, got, c.want)
		}
	}

	for _, bad := range []string{"a +", "* a", "1//2", "a ^ 2", "(a"} {
		if _, err := Parse(bad, newVar); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}
