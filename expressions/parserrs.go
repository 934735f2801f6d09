package expressions

import "strconv"

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
)

// at appends the column of an error to its message, the same way LexError
// reports it.
func at(msg string, col int) string {
	return msg + " at column " + strconv.Itoa(col)
}

// OperatorError is an error for an operator the parser does not understand in
// its position, like * at the start of an expression or a lone &.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	kind := "binary"
	if err.Unary {
		kind = "unary"
	}
	return at("unknown "+kind+" operator "+strconv.Quote(err.Operator), err.Col)
}

func (err *OperatorError) Pos() int { return err.Col }

// BracketError is an error for a bracket that is never closed, a close bracket
// with nothing open, or a close bracket of the wrong shape.
type BracketError struct {
	// Col is the position of the offending bracket.
	Col int
	// Left is the open bracket, or empty if there is none.
	Left string
	// Right is the close bracket, or empty if there is none.
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return at("close bracket "+err.Right+" with no open bracket", err.Col)
	case err.Right == "":
		return at("open bracket "+err.Left+" is never closed", err.Col)
	default:
		return at("mismatched bracket "+err.Left+"…"+err.Right, err.Col)
	}
}

func (err *BracketError) Pos() int { return err.Col }

// SeparatorError is an error for a comma or semicolon outside the arguments
// of a function call, or between empty arguments.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return at("unexpected separator "+strconv.Quote(err.Sep), err.Col)
}

func (err *SeparatorError) Pos() int { return err.Col }

// CallError is an error for a function call with the wrong number of
// arguments.
type CallError struct {
	// Col is the position of the end of the call.
	Col int
	// Func is the name of the function.
	Func string
	// Len is the number of arguments the call has.
	Len int
}

func (err *CallError) Error() string {
	n := "arguments"
	if err.Len == 1 {
		n = "argument"
	}
	return at("cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" "+n, err.Col)
}

func (err *CallError) Pos() int { return err.Col }

// EmptyExpressionError is an error for a missing operand or an empty pair of
// brackets.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression, or empty at the end of
	// input.
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return at("no expression before "+strconv.Quote(err.End), err.Col)
	case err.Col <= 1:
		return "no expression"
	default:
		return at("no expression at end of input", err.Col)
	}
}

func (err *EmptyExpressionError) Pos() int { return err.Col }
