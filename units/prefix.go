package units

import (
	"math/big"
	"strings"

	"golang.org/x/text/cases"
)

// fold returns the case-insensitive registry key for a name.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Prefix is a named multiplicative scale applicable to a unit, e.g. kilo for
// 10^3. Prefixes are immutable.
type Prefix struct {
	name   string
	symbol string
	base   int64
	power  int64
	factor *big.Rat
}

// BasePrefix is the empty prefix with a factor of 1.
var BasePrefix = Prefix{factor: big.NewRat(1, 1), base: 10}

// NewPrefix creates a prefix whose factor is base^power.
func NewPrefix(name, symbol string, base, power int64) (Prefix, error) {
	if name == "" {
		return Prefix{}, &ParseError{Line: symbol, Reason: "prefix needs a name"}
	}
	if base <= 0 {
		return Prefix{}, &ParseError{Line: name, Reason: "prefix base must be positive"}
	}
	return Prefix{
		name:   name,
		symbol: symbol,
		base:   base,
		power:  power,
		factor: ratPow(new(big.Rat).SetInt64(base), power),
	}, nil
}

// Name returns the prefix's name, e.g. "kilo".
func (p Prefix) Name() string { return p.name }

// Symbol returns the prefix's symbol, e.g. "k".
func (p Prefix) Symbol() string { return p.symbol }

// Base returns the base of the prefix's factor.
func (p Prefix) Base() int64 { return p.base }

// Power returns the power of the prefix's factor.
func (p Prefix) Power() int64 { return p.power }

// Factor returns a copy of the prefix's exact factor.
func (p Prefix) Factor() *big.Rat {
	if p.factor == nil {
		return big.NewRat(1, 1)
	}
	return new(big.Rat).Set(p.factor)
}

// FactorString formats the factor as a decimal with trailing zeros removed.
func (p Prefix) FactorString() string {
	return ratString(p.Factor())
}

// IsBase returns whether p is the empty prefix.
func (p Prefix) IsBase() bool {
	return p.name == ""
}

// Equal compares prefixes by name, ignoring case.
func (p Prefix) Equal(q Prefix) bool {
	return fold(p.name) == fold(q.name)
}

func (p Prefix) String() string {
	if p.symbol != "" {
		return p.symbol
	}
	return p.name
}

// ratPow computes x^n exactly.
func ratPow(x *big.Rat, n int64) *big.Rat {
	if n < 0 {
		x = new(big.Rat).Inv(x)
		n = -n
	}
	num := new(big.Int).Exp(x.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(x.Denom(), big.NewInt(n), nil)
	return new(big.Rat).SetFrac(num, den)
}

// ratString formats r as a plain decimal when it has a terminating expansion
// and as a fraction otherwise.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	// A fraction terminates iff its reduced denominator has only 2 and 5 as
	// prime factors; the digit count is the larger of their multiplicities.
	d := new(big.Int).Set(r.Denom())
	digits := 0
	for _, p := range []int64{2, 5} {
		n := 0
		bp := big.NewInt(p)
		var m big.Int
		for {
			q, rem := new(big.Int).QuoRem(d, bp, &m)
			if rem.Sign() != 0 {
				break
			}
			d = q
			n++
		}
		if n > digits {
			digits = n
		}
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return r.String()
	}
	s := r.FloatString(digits)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
