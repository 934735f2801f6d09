package evaluator

import (
	"math/big"
	"strconv"
	"strings"
)

const (
	// DefaultPrecision is the default precision of calculations in bits.
	DefaultPrecision = 256
	// DefaultDigits is the default number of significant decimal digits in
	// formatted results.
	DefaultDigits = 34

	// Results with decimal exponents outside [minPlain, maxPlain] are
	// formatted in scientific notation.
	minPlain = -20
	maxPlain = 40
)

// Format formats x to the given number of significant digits with trailing
// zeros removed. Very large and very small magnitudes use scientific
// notation.
func Format(x *big.Float, digits int) string {
	if digits < 1 {
		digits = DefaultDigits
	}
	switch {
	case x == nil:
		return ""
	case x.IsInf():
		if x.Signbit() {
			return "-Inf"
		}
		return "Inf"
	case x.Sign() == 0:
		return "0"
	}
	s := x.Text('e', digits-1)
	mant, exps, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(exps)
	neg := strings.HasPrefix(mant, "-")
	mant = strings.TrimPrefix(mant, "-")
	ds := strings.TrimRight(strings.Replace(mant, ".", "", 1), "0")
	if ds == "" {
		return "0"
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if exp < minPlain || exp > maxPlain {
		b.WriteString(ds[:1])
		if len(ds) > 1 {
			b.WriteByte('.')
			b.WriteString(ds[1:])
		}
		b.WriteByte('e')
		if exp >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(exp))
		return b.String()
	}
	// Position of the decimal point relative to the start of ds.
	pt := exp + 1
	switch {
	case pt <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -pt))
		b.WriteString(ds)
	case pt >= len(ds):
		b.WriteString(ds)
		b.WriteString(strings.Repeat("0", pt-len(ds)))
	default:
		b.WriteString(ds[:pt])
		b.WriteByte('.')
		b.WriteString(ds[pt:])
	}
	return b.String()
}
