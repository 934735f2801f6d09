// Package evaluator evaluates lines of calculator input with named results,
// user-defined functions, and unit conversions.
//
// A line is an expression in the grammar of package expressions, optionally
// preceded by id= to name its result. Results without a name get the id #n,
// where n counts the lines evaluated so far. Later lines can refer to any
// earlier result by id; #n is written _n in expressions. A line like
// f(x, y)=x^2+y defines a function instead.
//
// Lines may contain // and /* */ comments and 0b, 0o, and 0x integer literals.
// A line ending in "<unit> to <unit>" (or "in" or "as") converts its value
// between units.
package evaluator

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zephyrtronium/calcpaper/expressions"
	"github.com/zephyrtronium/calcpaper/units"
)

// Evaluator evaluates lines of input and remembers their results. It is not
// safe to use an Evaluator concurrently.
type Evaluator struct {
	conv   *units.Converter
	prec   uint
	digits int
	log    *zap.Logger

	vars  map[string]*big.Float
	funcs map[string]expressions.Func
	count int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithConverter sets the unit converter used for conversions.
func WithConverter(c *units.Converter) Option {
	return func(ev *Evaluator) {
		if c != nil {
			ev.conv = c
		}
	}
}

// WithPrecision sets the precision of calculations in bits.
func WithPrecision(bits uint) Option {
	return func(ev *Evaluator) {
		if bits > 0 {
			ev.prec = bits
		}
	}
}

// WithDigits sets the number of significant digits in formatted results.
func WithDigits(n int) Option {
	return func(ev *Evaluator) {
		if n > 0 {
			ev.digits = n
		}
	}
}

// WithLogger sets the evaluator's logger.
func WithLogger(l *zap.Logger) Option {
	return func(ev *Evaluator) {
		if l != nil {
			ev.log = l
		}
	}
}

// New creates an evaluator. Without WithConverter, it has a converter with no
// units.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		prec:   DefaultPrecision,
		digits: DefaultDigits,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.conv == nil {
		ev.conv = units.NewConverter(units.WithLogger(ev.log))
	}
	ev.Reset()
	return ev
}

// Reset forgets all results and functions. Only the constants pi and e remain.
func (ev *Evaluator) Reset() {
	ev.vars = make(map[string]*big.Float)
	ev.funcs = make(map[string]expressions.Func)
	ev.count = 0
	for _, c := range []string{"pi", "e"} {
		v, err := expressions.EvalString(c, expressions.Prec(ev.prec))
		if err != nil {
			panic("evaluator: computing " + c + ": " + err.Error())
		}
		ev.vars[c] = v
	}
}

// Converter returns the evaluator's unit converter.
func (ev *Evaluator) Converter() *units.Converter {
	return ev.conv
}

// Count returns the number of expressions evaluated or added since the last
// reset.
func (ev *Evaluator) Count() int {
	return ev.count
}

// Variable returns a copy of the value bound to an id.
func (ev *Evaluator) Variable(id string) (*big.Float, bool) {
	v, ok := ev.vars[varName(id)]
	if !ok {
		return nil, false
	}
	return new(big.Float).Copy(v), true
}

// FormatResult formats x to the evaluator's configured digits.
func (ev *Evaluator) FormatResult(x *big.Float) string {
	return Format(x, ev.digits)
}

// Evaluate evaluates one line of input. If it succeeds, its result is bound to
// its id for later lines. Otherwise the error is an *InvalidExpressionError
// and the evaluator is unchanged.
func (ev *Evaluator) Evaluate(text string) (EvaluatedExpression, error) {
	r, err := ev.evaluate(text)
	if err != nil {
		ev.log.Debug("invalid expression", zap.String("text", text), zap.Error(err))
		return EvaluatedExpression{}, &InvalidExpressionError{Expression: text, Err: err}
	}
	ev.log.Debug("evaluated", zap.String("id", r.ID()), zap.String("result", r.Text()))
	return r, nil
}

func (ev *Evaluator) evaluate(text string) (EvaluatedExpression, error) {
	s := StripComments(text)
	if m := definition.FindStringSubmatch(s); m != nil {
		var params []string
		if m[2] != "" {
			params = splitParams(m[2])
		}
		return ev.define(m[1], params, m[3])
	}
	id, body := "", s
	if m := assignment.FindStringSubmatch(s); m != nil {
		id, body = m[1], m[2]
	}
	if id == "" {
		id = "#" + strconv.Itoa(ev.count+1)
	}
	src := normalize(body)
	conv, isConv := ParseConversion(ev.conv, src)
	if isConv {
		src = conv.Value
	}
	r, boolean, err := ev.compute(src)
	if err != nil {
		return EvaluatedExpression{}, err
	}
	if isConv {
		if boolean {
			return EvaluatedExpression{}, errors.New("cannot convert a boolean to " + conv.ToText)
		}
		r, err = ev.conv.ConvertCompound(conv.From, conv.To, r, ev.prec)
		if err != nil {
			return EvaluatedExpression{}, err
		}
	}
	ev.bind(id, r)
	ev.count++
	if boolean {
		return NewBoolean(id, body, r.Sign() != 0), nil
	}
	return NewNumber(id, body, r, ev.FormatResult(r)), nil
}

// define binds a user-defined function.
func (ev *Evaluator) define(name string, params []string, body string) (EvaluatedExpression, error) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p] {
			return EvaluatedExpression{}, errors.New("duplicate parameter " + strconv.Quote(p) + " in " + name)
		}
		seen[p] = true
	}
	e, err := ev.parse(normalize(body), params...)
	if err != nil {
		return EvaluatedExpression{}, err
	}
	for _, v := range e.Vars() {
		if !seen[v] && ev.vars[v] == nil {
			return EvaluatedExpression{}, &expressions.NameError{Name: v}
		}
	}
	delete(ev.vars, name)
	ev.funcs[name] = expressions.Lambda(params, e)
	ev.count++
	return NewFunction(name, params, body, e.IsBoolean()), nil
}

// parse parses src with the evaluator's variables and functions. Names in
// params are variables even if they are also functions.
func (ev *Evaluator) parse(src string, params ...string) (*expressions.Expr, error) {
	fns := make(map[string]expressions.Func, len(ev.vars)+len(ev.funcs)+len(params))
	for name := range ev.vars {
		fns[name] = nil
	}
	for name, fn := range ev.funcs {
		fns[name] = fn
	}
	for _, p := range params {
		fns[p] = nil
	}
	return expressions.Parse(strings.NewReader(src), expressions.ParseFuncs(fns))
}

func (ev *Evaluator) compute(src string) (*big.Float, bool, error) {
	e, err := ev.parse(src)
	if err != nil {
		return nil, false, err
	}
	ctx := expressions.NewContext(expressions.Prec(ev.prec), expressions.SetVars(ev.vars))
	r := ctx.Eval(e)
	if r == nil {
		return nil, false, ctx.Err()
	}
	return new(big.Float).Copy(r), e.IsBoolean(), nil
}

func (ev *Evaluator) bind(id string, r *big.Float) {
	name := varName(id)
	delete(ev.funcs, name)
	ev.vars[name] = new(big.Float).Copy(r)
}

// AddEvaluatedExpression binds the result of an expression evaluated earlier
// without evaluating it again. Functions are parsed again from their bodies.
// Invalid expressions bind nothing but still count toward auto ids.
func (ev *Evaluator) AddEvaluatedExpression(e EvaluatedExpression) error {
	ev.count++
	if !e.Valid() {
		return nil
	}
	switch e.Kind() {
	case Number, Boolean:
		ev.bind(e.ID(), e.result)
	case Function:
		x, err := ev.parse(normalize(e.Expression()), e.params...)
		if err != nil {
			return &InvalidExpressionError{Expression: e.Expression(), Err: err}
		}
		delete(ev.vars, e.ID())
		ev.funcs[e.ID()] = expressions.Lambda(e.params, x)
	}
	return nil
}
