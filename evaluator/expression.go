package evaluator

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the kind of an evaluated expression.
type Kind int8

const (
	// Number is a numeric result.
	Number Kind = iota
	// Boolean is the result of a comparison or boolean operator.
	Boolean
	// Function is a user-defined function.
	Function
)

var kindNames = [...]string{
	Number:   "Number",
	Boolean:  "Boolean",
	Function: "Function",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// EvaluatedExpression is one evaluated line: an id, the expression text, and
// its result. EvaluatedExpressions are immutable.
type EvaluatedExpression struct {
	id   string
	expr string
	kind Kind
	// result is the numeric value. Booleans are 0 or 1. Functions have none.
	result *big.Float
	// text is the formatted result, or the error message if invalid.
	text  string
	valid bool

	// Function fields.
	params  []string
	boolean bool
}

// NewNumber creates a numeric expression. text is the formatted result; if it
// is empty, the result is formatted to DefaultDigits.
func NewNumber(id, expr string, result *big.Float, text string) EvaluatedExpression {
	if text == "" {
		text = Format(result, DefaultDigits)
	}
	return EvaluatedExpression{
		id:     id,
		expr:   cleanText(expr),
		kind:   Number,
		result: new(big.Float).Copy(result),
		text:   text,
		valid:  true,
	}
}

// NewBoolean creates a boolean expression.
func NewBoolean(id, expr string, result bool) EvaluatedExpression {
	r := new(big.Float)
	if result {
		r.SetInt64(1)
	}
	return EvaluatedExpression{
		id:     id,
		expr:   cleanText(expr),
		kind:   Boolean,
		result: r,
		text:   strconv.FormatBool(result),
		valid:  true,
	}
}

// NewFunction creates a user-defined function. expr is the function body.
// boolean is whether the body is a comparison or boolean operation.
func NewFunction(name string, params []string, body string, boolean bool) EvaluatedExpression {
	params = append([]string(nil), params...)
	return EvaluatedExpression{
		id:      name,
		expr:    cleanText(body),
		kind:    Function,
		text:    signature(name, params),
		valid:   true,
		params:  params,
		boolean: boolean,
	}
}

// NewInvalid creates an expression that failed to evaluate. msg is the error
// message.
func NewInvalid(id, expr, msg string) EvaluatedExpression {
	return EvaluatedExpression{
		id:   id,
		expr: cleanText(expr),
		kind: Number,
		text: cleanText(msg),
	}
}

// cleanText replaces characters that can't appear in a paper row.
func cleanText(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s))
}

func signature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// ID returns the expression's id.
func (e EvaluatedExpression) ID() string { return e.id }

// Expression returns the expression's source text, or the body of a function.
func (e EvaluatedExpression) Expression() string { return e.expr }

// Kind returns the kind of result.
func (e EvaluatedExpression) Kind() Kind { return e.kind }

// Valid returns whether the expression evaluated successfully.
func (e EvaluatedExpression) Valid() bool { return e.valid }

// Result returns a copy of the numeric result. It is nil for functions and
// invalid expressions.
func (e EvaluatedExpression) Result() *big.Float {
	if e.result == nil || !e.valid {
		return nil
	}
	return new(big.Float).Copy(e.result)
}

// Bool returns the result of a boolean expression.
func (e EvaluatedExpression) Bool() bool {
	return e.result != nil && e.result.Sign() != 0
}

// Text returns the formatted result: a number, true or false, a function's
// signature, or an error message.
func (e EvaluatedExpression) Text() string { return e.text }

// Err returns the error message of an invalid expression.
func (e EvaluatedExpression) Err() string {
	if e.valid {
		return ""
	}
	return e.text
}

// Params returns the parameter names of a function.
func (e EvaluatedExpression) Params() []string {
	return append([]string(nil), e.params...)
}

// IsBoolean returns whether the expression is a boolean or a function whose
// body is boolean.
func (e EvaluatedExpression) IsBoolean() bool {
	switch e.kind {
	case Boolean:
		return true
	case Function:
		return e.boolean
	default:
		return false
	}
}

// Equal returns whether two expressions have the same id, text, kind, and
// formatted result.
func (e EvaluatedExpression) Equal(o EvaluatedExpression) bool {
	if e.id != o.id || e.expr != o.expr || e.kind != o.kind || e.text != o.text || e.valid != o.valid {
		return false
	}
	if len(e.params) != len(o.params) {
		return false
	}
	for i, p := range e.params {
		if p != o.params[i] {
			return false
		}
	}
	return true
}

func (e EvaluatedExpression) String() string {
	if e.id == "" {
		return e.expr
	}
	return e.id + " = " + e.expr
}

var signatureRE = regexp.MustCompile(`^([a-zA-Z_]+)\((.*)\)$`)

// Restore rebuilds an evaluated expression from its id, expression text, and
// formatted result as written in a paper. Function signatures, true and false,
// and numbers are recognized; any other result text is an error message and
// the expression is invalid.
func Restore(id, expr, text string) EvaluatedExpression {
	if m := signatureRE.FindStringSubmatch(text); m != nil && m[1] == id {
		var params []string
		if p := strings.TrimSpace(m[2]); p != "" {
			params = splitParams(p)
		}
		return NewFunction(id, params, expr, isBooleanSource(expr))
	}
	switch text {
	case "true", "false":
		return NewBoolean(id, expr, text == "true")
	}
	if r, _, err := big.ParseFloat(text, 10, DefaultPrecision, big.ToNearestEven); err == nil {
		return NewNumber(id, expr, r, text)
	}
	return NewInvalid(id, expr, text)
}
