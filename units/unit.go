package units

import (
	"strconv"
	"strings"
)

// Unit is a named measurement dimension raised to an integer exponent, e.g.
// meter (1) or acre (2). Units are immutable.
type Unit struct {
	name     string
	exponent int
	aliases  []string
	derived  bool
}

// MaxExponent is the highest power a unit can be declared with or raised to.
const MaxExponent = 12

// One is the dimensionless unit.
var One = Unit{name: "1", exponent: 1}

// NewUnit creates a unit with a declared exponent. Aliases are alternate
// names or symbols and are matched case-sensitively.
func NewUnit(name string, exponent int, aliases ...string) (Unit, error) {
	if name == "" {
		return Unit{}, &ParseError{Reason: "unit needs a name"}
	}
	if exponent < 1 {
		return Unit{}, &ParseError{Line: name, Reason: "exponent " + strconv.Itoa(exponent) + " is less than 1"}
	}
	if exponent > MaxExponent {
		return Unit{}, &ParseError{Line: name, Reason: "exponent " + strconv.Itoa(exponent) + " is greater than " + strconv.Itoa(MaxExponent)}
	}
	return Unit{
		name:     name,
		exponent: exponent,
		aliases:  append([]string(nil), aliases...),
	}, nil
}

// Name returns the unit's name.
func (u Unit) Name() string { return u.name }

// Exponent returns the unit's dimensional power.
func (u Unit) Exponent() int {
	if u.exponent == 0 {
		return 1
	}
	return u.exponent
}

// Aliases returns a copy of the unit's alternate names.
func (u Unit) Aliases() []string {
	return append([]string(nil), u.aliases...)
}

// Derived returns whether the unit's exponent was assigned by squaring or
// cubing rather than declared.
func (u Unit) Derived() bool { return u.derived }

// WithExponent returns the unit raised to exponent n. Only derived units and
// units declared with exponent 1 can be re-derived.
//
// TODO(zeph): the restriction on units declared with a higher exponent is
// asymmetric (an acre can't be cubed, a meter can) and is awaiting a decision
// on whether declared exponents should compose.
func (u Unit) WithExponent(n int) (Unit, error) {
	if n == u.Exponent() {
		return u, nil
	}
	if n < 1 || n > MaxExponent {
		return Unit{}, &ExponentError{Unit: u.name, Have: u.Exponent(), Want: n}
	}
	if !u.derived && u.Exponent() != 1 {
		return Unit{}, &ExponentError{Unit: u.name, Have: u.Exponent(), Want: n}
	}
	r := u
	r.exponent = n
	r.derived = n != 1
	return r, nil
}

// Plain returns the unit with exponent 1, if it can be re-derived to it.
func (u Unit) Plain() (Unit, bool) {
	r, err := u.WithExponent(1)
	return r, err == nil
}

// IsOne returns whether u is the dimensionless unit.
func (u Unit) IsOne() bool {
	return u.name == One.name && u.Exponent() == 1
}

// Equal compares units by case-insensitive name and exponent.
func (u Unit) Equal(v Unit) bool {
	return u.key() == v.key()
}

func (u Unit) String() string {
	switch u.Exponent() {
	case 1:
		return u.name
	case 2:
		return u.name + "²"
	case 3:
		return u.name + "³"
	default:
		return u.name + "^" + strconv.Itoa(u.Exponent())
	}
}

// unitKey identifies a unit in the conversion graph.
type unitKey struct {
	name string
	exp  int
}

func (u Unit) key() unitKey {
	return unitKey{name: fold(u.name), exp: u.Exponent()}
}

func (k unitKey) less(j unitKey) bool {
	if k.name != j.name {
		return k.name < j.name
	}
	return k.exp < j.exp
}

// PrefixedUnit is a unit with a prefix, e.g. kilometer.
type PrefixedUnit struct {
	Prefix Prefix
	Unit   Unit
}

// None is the dimensionless unit without a prefix.
var None = PrefixedUnit{Prefix: BasePrefix, Unit: One}

// Equal compares the prefixes and units of p and q.
func (p PrefixedUnit) Equal(q PrefixedUnit) bool {
	return p.Prefix.Equal(q.Prefix) && p.Unit.Equal(q.Unit)
}

// IsNone returns whether p is the dimensionless unit without a prefix.
func (p PrefixedUnit) IsNone() bool {
	return p.Prefix.IsBase() && p.Unit.IsOne()
}

func (p PrefixedUnit) String() string {
	var b strings.Builder
	b.WriteString(p.Prefix.Name())
	b.WriteString(p.Unit.String())
	return b.String()
}
