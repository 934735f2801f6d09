package units

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// fieldSep separates fields of prefix and unit definitions.
var fieldSep = regexp.MustCompile(`[\s,;|]+`)

// stripComment removes a # comment from a definition line. \# is a literal #.
func stripComment(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if i+1 < len(line) && line[i+1] == '#' {
				b.WriteByte('#')
				i++
				continue
			}
		case '#':
			return strings.TrimSpace(b.String())
		}
		b.WriteByte(line[i])
	}
	return strings.TrimSpace(b.String())
}

func fields(line string) []string {
	var r []string
	for _, f := range fieldSep.Split(line, -1) {
		if f != "" {
			r = append(r, f)
		}
	}
	return r
}

// LoadPrefix registers a prefix from a line of the form
//
//	name symbol base power
//
// Blank lines and comments are ignored.
func (c *Converter) LoadPrefix(line string) error {
	f := fields(stripComment(line))
	if len(f) == 0 {
		return nil
	}
	if len(f) != 4 {
		return &ParseError{Line: line, Reason: "prefix needs a name, symbol, base, and power"}
	}
	base, err := strconv.ParseInt(f[2], 10, 64)
	if err != nil {
		return &ParseError{Line: line, Reason: "bad base", Err: err}
	}
	power, err := strconv.ParseInt(f[3], 10, 64)
	if err != nil {
		return &ParseError{Line: line, Reason: "bad power", Err: err}
	}
	p, err := NewPrefix(f[0], f[1], base, power)
	if err != nil {
		return err
	}
	c.RegisterPrefix(p)
	return nil
}

// LoadUnit registers a unit from a line of the form
//
//	name [exponent] [alias...]
//
// Blank lines and comments are ignored.
func (c *Converter) LoadUnit(line string) error {
	f := fields(stripComment(line))
	if len(f) == 0 {
		return nil
	}
	exp, aliases := 1, f[1:]
	if len(f) > 1 {
		if n, err := strconv.Atoi(f[1]); err == nil {
			exp, aliases = n, f[2:]
		}
	}
	u, err := NewUnit(f[0], exp, aliases...)
	if err != nil {
		return err
	}
	c.RegisterUnit(u)
	return nil
}

// LoadConversion registers a conversion from a line of the form
//
//	from factor to
//	from (formula) to
//
// A middle field that is not a number is a formula even without parentheses.
// Units in factor conversions may have prefixes. Blank lines and comments are
// ignored.
func (c *Converter) LoadConversion(line string) error {
	s := stripComment(line)
	if s == "" {
		return nil
	}
	var from, mid, to string
	if i := strings.IndexByte(s, '('); i >= 0 {
		j := strings.LastIndexByte(s, ')')
		if j < i {
			return &ParseError{Line: line, Reason: "unclosed formula"}
		}
		from, mid, to = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:j]), strings.TrimSpace(s[j+1:])
	} else {
		f := strings.Fields(s)
		if len(f) < 3 {
			return &ParseError{Line: line, Reason: "conversion needs a unit, a factor or formula, and a unit"}
		}
		from, mid, to = f[0], strings.Join(f[1:len(f)-1], " "), f[len(f)-1]
	}
	if from == "" || to == "" || mid == "" {
		return &ParseError{Line: line, Reason: "conversion needs a unit, a factor or formula, and a unit"}
	}
	if r, ok := new(big.Rat).SetString(mid); ok {
		return c.loadFactor(line, from, to, r)
	}
	fu, err := c.GetUnit(from)
	if err != nil {
		return &ParseError{Line: line, Reason: "bad source unit", Err: err}
	}
	tu, err := c.GetUnit(to)
	if err != nil {
		return &ParseError{Line: line, Reason: "bad target unit", Err: err}
	}
	return c.RegisterFormula(fu, tu, mid)
}

func (c *Converter) loadFactor(line, from, to string, f *big.Rat) error {
	if f.Sign() == 0 {
		return &ParseError{Line: line, Reason: "conversion factor is zero"}
	}
	fu, err := c.GetPrefixedUnit(from)
	if err != nil {
		return &ParseError{Line: line, Reason: "bad source unit", Err: err}
	}
	tu, err := c.GetPrefixedUnit(to)
	if err != nil {
		return &ParseError{Line: line, Reason: "bad target unit", Err: err}
	}
	// One fp·A is f tp·B, so one A is f·tp/fp B, each prefix raised as it
	// applies to its unit.
	f = new(big.Rat).Mul(f, prefixFactor(tu))
	f.Quo(f, prefixFactor(fu))
	return c.RegisterFactor(fu.Unit, tu.Unit, f)
}

// LoadPrefixes registers a prefix from each line of r. Bad lines are logged
// and skipped; the returned error combines all of them.
func (c *Converter) LoadPrefixes(r io.Reader) error {
	return c.loadLines(r, "prefix", c.LoadPrefix)
}

// LoadUnits registers a unit from each line of r. Bad lines are logged and
// skipped; the returned error combines all of them.
func (c *Converter) LoadUnits(r io.Reader) error {
	return c.loadLines(r, "unit", c.LoadUnit)
}

// LoadConversions registers a conversion from each line of r. Bad lines are
// logged and skipped; the returned error combines all of them.
func (c *Converter) LoadConversions(r io.Reader) error {
	return c.loadLines(r, "conversion", c.LoadConversion)
}

func (c *Converter) loadLines(r io.Reader, kind string, load func(string) error) error {
	var errs error
	sc := bufio.NewScanner(r)
	n, ok := 0, 0
	for sc.Scan() {
		n++
		if err := load(sc.Text()); err != nil {
			c.log.Warn("skipping definition", zap.String("kind", kind), zap.Int("line", n), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s line %d: %w", kind, n, err))
			continue
		}
		ok++
	}
	if err := sc.Err(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reading %s definitions: %w", kind, err))
	}
	c.log.Debug("loaded definitions", zap.String("kind", kind), zap.Int("lines", n), zap.Int("ok", ok))
	return errs
}
