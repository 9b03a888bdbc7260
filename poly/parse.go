package poly

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// Parse reads a phase expression and returns the polynomial it denotes.
// Phases are rational multiples of pi, so "pi" parses as the constant 1.
//
// Grammar (sums of products):
//
//	expr   := "(" expr ")" | term ("+" term)*
//	term   := factor ("*" factor)*   (a leading number may omit the "*")
//	factor := INT | INT "/" INT | [INT] PI ["/" INT] | NAME
//
// newVar is called for every variable name encountered; the caller binds it
// to the owning graph's classification table.
func Parse(expr string, newVar func(name string) Poly) (Poly, error) {
	toks, err := lex(expr)
	if err != nil {
		return Poly{}, err
	}
	p := &parser{toks: toks, newVar: newVar}
	out, err := p.parseExpr()
	if err != nil {
		return Poly{}, err
	}
	if !p.eof() {
		return Poly{}, fmt.Errorf("unexpected %q in phase expression", p.peek().text)
	}
	return out, nil
}

type tokKind int

const (
	tokInt tokKind = iota
	tokName
	tokPi
	tokPlus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
}

func lex(s string) ([]token, error) {
	var toks []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			toks = append(toks, token{tokPlus, "+"})
			i++
		case r == '*':
			toks = append(toks, token{tokStar, "*"})
			i++
		case r == '/':
			toks = append(toks, token{tokSlash, "/"})
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case r == '\\' && strings.HasPrefix(string(rs[i:]), `\pi`):
			toks = append(toks, token{tokPi, "pi"})
			i += 3
		case unicode.IsDigit(r):
			j := i
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			toks = append(toks, token{tokInt, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			word := string(rs[i:j])
			if word == "pi" {
				toks = append(toks, token{tokPi, "pi"})
			} else {
				toks = append(toks, token{tokName, word})
			}
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q in phase expression", r)
		}
	}
	return toks, nil
}

type parser struct {
	toks   []token
	pos    int
	newVar func(string) Poly
}

func (p *parser) eof() bool    { return p.pos >= len(p.toks) }
func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) next() token  { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) at(k tokKind) bool {
	return !p.eof() && p.toks[p.pos].kind == k
}

func (p *parser) parseExpr() (Poly, error) {
	if p.at(tokLParen) {
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return Poly{}, err
		}
		if !p.at(tokRParen) {
			return Poly{}, fmt.Errorf("missing closing parenthesis")
		}
		p.next()
		return inner, nil
	}
	sum, err := p.parseTerm()
	if err != nil {
		return Poly{}, err
	}
	for p.at(tokPlus) {
		p.next()
		t, err := p.parseTerm()
		if err != nil {
			return Poly{}, err
		}
		sum = sum.Add(t)
	}
	return sum, nil
}

func (p *parser) parseTerm() (Poly, error) {
	first, wasNumber, err := p.parseFactor()
	if err != nil {
		return Poly{}, err
	}
	prod := first
	// A leading number may juxtapose the next factor: "2 a" == "2*a".
	if wasNumber && (p.at(tokName) || p.at(tokPi) || p.at(tokInt)) {
		f, _, err := p.parseFactor()
		if err != nil {
			return Poly{}, err
		}
		prod = prod.Mul(f)
	}
	for p.at(tokStar) {
		p.next()
		f, _, err := p.parseFactor()
		if err != nil {
			return Poly{}, err
		}
		prod = prod.Mul(f)
	}
	return prod, nil
}

func (p *parser) parseFactor() (out Poly, wasNumber bool, err error) {
	if p.eof() {
		return Poly{}, false, fmt.Errorf("unexpected end of phase expression")
	}
	switch t := p.next(); t.kind {
	case tokPi:
		// pi or pi/N
		if p.at(tokSlash) {
			p.next()
			den, err := p.expectInt()
			if err != nil {
				return Poly{}, false, err
			}
			return NewConst(big.NewRat(1, den)), false, nil
		}
		return NewConst(big.NewRat(1, 1)), false, nil
	case tokInt:
		num := mustInt(t.text)
		if p.at(tokPi) {
			// Npi/D
			p.next()
			if !p.at(tokSlash) {
				return NewConst(big.NewRat(num, 1)), false, nil
			}
			p.next()
			den, err := p.expectInt()
			if err != nil {
				return Poly{}, false, err
			}
			return NewConst(big.NewRat(num, den)), false, nil
		}
		if p.at(tokSlash) {
			p.next()
			den, err := p.expectInt()
			if err != nil {
				return Poly{}, false, err
			}
			return NewConst(big.NewRat(num, den)), true, nil
		}
		return NewConst(big.NewRat(num, 1)), true, nil
	case tokName:
		return p.newVar(t.text), false, nil
	default:
		return Poly{}, false, fmt.Errorf("unexpected %q in phase expression", t.text)
	}
}

func (p *parser) expectInt() (int64, error) {
	if !p.at(tokInt) {
		return 0, fmt.Errorf("expected integer in phase expression")
	}
	return mustInt(p.next().text), nil
}

func mustInt(s string) int64 {
	var n int64
	for _, r := range s {
		n = n*10 + int64(r-'0')
	}
	return n
}
