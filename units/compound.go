package units

import (
	"strings"
	"unicode"
)

// CompoundUnit is a product or quotient of prefixed units, e.g. km/h or
// kg*m/s^2. Operators apply left to right.
type CompoundUnit struct {
	terms []term
	str   string
}

// term is one prefixed unit in a compound and the operator joining it to the
// terms before it. The first term's op is always '*'.
type term struct {
	op   rune
	unit PrefixedUnit
}

// Compound creates a compound unit holding a single prefixed unit.
func Compound(u PrefixedUnit) CompoundUnit {
	return newCompound([]term{{op: '*', unit: u}})
}

func newCompound(terms []term) CompoundUnit {
	var b strings.Builder
	for i, t := range terms {
		if i > 0 {
			b.WriteRune(t.op)
		}
		b.WriteString(t.unit.String())
	}
	return CompoundUnit{terms: terms, str: b.String()}
}

// Units returns the prefixed units in the compound in order.
func (c CompoundUnit) Units() []PrefixedUnit {
	r := make([]PrefixedUnit, len(c.terms))
	for i, t := range c.terms {
		r[i] = t.unit
	}
	return r
}

// Ops returns the operators in the compound. Ops()[i] joins Units()[i] and
// Units()[i+1].
func (c CompoundUnit) Ops() []rune {
	if len(c.terms) == 0 {
		return nil
	}
	r := make([]rune, len(c.terms)-1)
	for i, t := range c.terms[1:] {
		r[i] = t.op
	}
	return r
}

// Single returns the compound's only unit if it has exactly one.
func (c CompoundUnit) Single() (PrefixedUnit, bool) {
	if len(c.terms) != 1 {
		return PrefixedUnit{}, false
	}
	return c.terms[0].unit, true
}

// IsOne returns whether every unit in c is None.
func (c CompoundUnit) IsOne() bool {
	for _, t := range c.terms {
		if !t.unit.IsNone() {
			return false
		}
	}
	return true
}

// Equal returns whether c and d have the same structure and units.
func (c CompoundUnit) Equal(d CompoundUnit) bool {
	if len(c.terms) != len(d.terms) {
		return false
	}
	for i, t := range c.terms {
		if t.op != d.terms[i].op || !t.unit.Equal(d.terms[i].unit) {
			return false
		}
	}
	return true
}

func (c CompoundUnit) String() string {
	return c.str
}

// ParseCompoundUnit parses a compound unit expression. Units are joined by
// '*', '/', '·', or the word "per". Units separated only by whitespace are
// multiplied.
func (c *Converter) ParseCompoundUnit(text string) (CompoundUnit, error) {
	words := splitCompound(text)
	if len(words) == 0 {
		return CompoundUnit{}, &ParseError{Line: text, Reason: "no units"}
	}
	var terms []term
	op := rune(0)
	for _, w := range words {
		switch w {
		case "*", "/":
			if op != 0 || len(terms) == 0 {
				return CompoundUnit{}, &ParseError{Line: text, Reason: "misplaced operator " + w}
			}
			op = rune(w[0])
			continue
		}
		u, err := c.GetPrefixedUnit(w)
		if err != nil {
			return CompoundUnit{}, err
		}
		if op == 0 {
			op = '*'
		}
		terms = append(terms, term{op: op, unit: u})
		op = 0
	}
	if op != 0 {
		return CompoundUnit{}, &ParseError{Line: text, Reason: "trailing operator"}
	}
	return newCompound(terms), nil
}

// splitCompound splits a compound unit expression into unit words and
// normalized operators "*" and "/". Exponent keywords are kept with the word
// they modify.
func splitCompound(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '*' || r == '·' || r == '×':
			flush()
			words = append(words, "*")
		case r == '/':
			flush()
			words = append(words, "/")
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	// Second pass for keywords.
	r := words[:0:0]
	for i := 0; i < len(words); i++ {
		w := words[i]
		switch fold(w) {
		case "per":
			r = append(r, "/")
			continue
		case "square", "sq", "cubic", "cu":
			if i+1 < len(words) && words[i+1] != "*" && words[i+1] != "/" {
				r = append(r, w+" "+words[i+1])
				i++
				continue
			}
		}
		r = append(r, w)
	}
	return r
}
