package units

import (
	"strconv"
)

// ParseError is an error indicating a malformed definition line, unit
// expression, or numeral.
type ParseError struct {
	// Line is the text that failed to parse.
	Line string
	// Reason describes what was wrong with it.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

func (err *ParseError) Error() string {
	msg := err.Reason
	if err.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += err.Err.Error()
	}
	if err.Line == "" {
		return msg
	}
	return strconv.Quote(err.Line) + ": " + msg
}

func (err *ParseError) Unwrap() error {
	return err.Err
}

// UnknownUnitError is an error indicating a unit, alias, or prefix that is
// not registered.
type UnknownUnitError struct {
	// Name is the token that did not resolve.
	Name string
}

func (err *UnknownUnitError) Error() string {
	return "unknown unit " + strconv.Quote(err.Name)
}

// IncompatibleDimensionError is an error indicating a conversion between
// units of differing exponent or compound structure.
type IncompatibleDimensionError struct {
	From, To string
}

func (err *IncompatibleDimensionError) Error() string {
	return "cannot convert " + err.From + " to " + err.To + ": incompatible dimensions"
}

// UnresolvedConversionError is an error indicating that no chain of factors or
// formulas connects two units.
type UnresolvedConversionError struct {
	From, To string
}

func (err *UnresolvedConversionError) Error() string {
	return "no conversion from " + err.From + " to " + err.To
}

// ExponentError is an error indicating an attempt to re-derive a unit whose
// declared exponent is fixed.
type ExponentError struct {
	// Unit is the name of the unit.
	Unit string
	// Have is the unit's current exponent.
	Have int
	// Want is the requested exponent.
	Want int
}

func (err *ExponentError) Error() string {
	return "cannot raise " + strconv.Quote(err.Unit) + " from exponent " + strconv.Itoa(err.Have) + " to " + strconv.Itoa(err.Want)
}
