package evaluator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zephyrtronium/calcpaper/units"
)

// Keyword is the word joining the two halves of a unit conversion.
type Keyword int8

const (
	// As is written "as", as in "2 h as min".
	As Keyword = iota
	// In is written "in", as in "3 ft in m".
	In
	// To is written "to", as in "5 km to mi".
	To
)

func (k Keyword) String() string {
	switch k {
	case As:
		return "as"
	case In:
		return "in"
	case To:
		return "to"
	default:
		return "Keyword(?)"
	}
}

// UnitConversion is a parsed "<value> <unit> to <unit>" expression.
type UnitConversion struct {
	// Value is the text of the value expression.
	Value string
	// From and To are the source and target units.
	From, To units.CompoundUnit
	// FromText and ToText are the unit text as written.
	FromText, ToText string
	// Keyword is the word between the units.
	Keyword Keyword
}

var conversionWord = regexp.MustCompile(`(?i)\b(to|in|as)\b`)

// ParseConversion splits a unit conversion suffix from an expression. The
// last of "to", "in", or "as" surrounded by spaces with a unit after it is the
// keyword. The source unit is the longest run of words before it that is a
// unit, or the end of the last word if the value is written against it, as in
// "5km". ok is false if text is not a conversion.
func ParseConversion(c *units.Converter, text string) (conv UnitConversion, ok bool) {
	words := conversionWord.FindAllStringSubmatchIndex(text, -1)
	for i := len(words) - 1; i >= 0; i-- {
		m := words[i]
		start, end := m[0], m[1]
		if !spaceBefore(text, start) || !spaceAfter(text, end) {
			continue
		}
		toText := strings.TrimSpace(text[end:])
		to, err := c.ParseCompoundUnit(toText)
		if err != nil {
			continue
		}
		value, fromText, from, ok := splitSource(c, text[:start])
		if !ok {
			continue
		}
		conv = UnitConversion{
			Value:    value,
			From:     from,
			To:       to,
			FromText: fromText,
			ToText:   toText,
			Keyword:  keyword(text[m[2]:m[3]]),
		}
		return conv, true
	}
	return UnitConversion{}, false
}

func spaceBefore(s string, i int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsSpace(r)
}

func spaceAfter(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsSpace(r)
}

func keyword(s string) Keyword {
	switch strings.ToLower(s) {
	case "in":
		return In
	case "to":
		return To
	default:
		return As
	}
}

func isNumeral(w string) bool {
	_, err := strconv.ParseFloat(w, 64)
	return err == nil
}

// splitSource separates a value expression from the unit that ends it.
func splitSource(c *units.Converter, s string) (value, unitText string, unit units.CompoundUnit, ok bool) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", "", units.CompoundUnit{}, false
	}
	for i := 1; i < len(words); i++ {
		// Unit runs don't start with a numeral: in 2 * 1 km the value is 2 * 1.
		if isNumeral(words[i]) {
			continue
		}
		t := strings.Join(words[i:], " ")
		if u, err := c.ParseCompoundUnit(t); err == nil {
			return strings.Join(words[:i], " "), t, u, true
		}
	}
	// The value may be written against the unit, e.g. 5km or (1+2)m.
	last := words[len(words)-1]
	rest := strings.Join(words[:len(words)-1], " ")
	for j := range last {
		if j == 0 {
			continue
		}
		p := last[j-1]
		if !('0' <= p && p <= '9') && p != '.' && p != ')' {
			continue
		}
		if u, err := c.ParseCompoundUnit(last[j:]); err == nil {
			return strings.TrimSpace(rest + " " + last[:j]), last[j:], u, true
		}
	}
	return "", "", units.CompoundUnit{}, false
}
