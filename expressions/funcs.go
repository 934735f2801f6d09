package expressions

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals. Functions may but generally should
// not look up variables. The function should set r to its result and should
// not use the value of r otherwise.
type Func interface {
	// Call evaluates the function. The function arguments are passed in invoc.
	// semis is the indices of arguments which are preceded by semicolons.
	// The function may but generally should not look up variables. The
	// function must set r to its result and should not use the value of r
	// otherwise. invoc has a length for which CanCall returned true. Call may
	// modify the elements of invoc.
	Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the expression parser handles instances of this
	// function:
	//
	// 	1.	If a bracketed list of n > 0 expressions follows a function, the
	//		parser treats it as an argument list if CanCall(n). (If n is 1 and
	//		!CanCall(1) and CanCall(0), then the list is a multiplication;
	//		otherwise, it is rejected.)
	//
	// 	2.	If a bare term follows a function and CanCall(1), then the parser
	//		treats the term as an argument to the function. E.g., "exp x" is
	//		parsed as "exp(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

var globalfuncs = map[string]Func{
	"exp":   Monadic(bigfloat.Exp),
	"ln":    Monadic(ln),
	"log":   logfn{},
	"sqrt":  Monadic((*big.Float).Sqrt),
	"abs":   Monadic((*big.Float).Abs),
	"floor": Monadic(floor),
	"ceil":  Monadic(ceil),
	"round": Monadic(round),

	// constants
	"pi": Niladic(bigfloat.Pi),
	"e": Niladic(func(out *big.Float) *big.Float {
		var one big.Float
		one.SetFloat64(1)
		return bigfloat.Exp(out, &one)
	}),
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) (err error) {
	in := invoc[0]
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = r.(error) // panic if not error
		if errors.As(err, new(*DomainError)) || errors.As(err, new(big.ErrNaN)) {
			return
		}
		panic(err)
	}()
	r.SetPrec(ctx.Prec())
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of in; its return value is always ignored. If f is
// called on an argument outside f's domain, it should panic with an error of
// type big.ErrNaN, or that unwraps to it.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) (err error) {
	r.SetPrec(ctx.Prec())
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

// logfn is the common logarithm of one argument, or the logarithm of its
// first argument to the base of its second.
type logfn struct{}

func (logfn) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) error {
	for i, x := range invoc {
		if x.Sign() <= 0 {
			return &DomainError{X: new(big.Float).Copy(x), Arg: i + 1, Func: "log"}
		}
	}
	base := new(big.Float).SetPrec(ctx.Prec()).SetInt64(10)
	if len(invoc) == 2 {
		base.Set(invoc[1])
		if base.Cmp(big.NewFloat(1)) == 0 {
			return &DomainError{X: new(big.Float).Copy(base), Arg: 2, Func: "log"}
		}
	}
	r.SetPrec(ctx.Prec())
	bigfloat.Log(r, invoc[0])
	bigfloat.Log(base, base)
	r.Quo(r, base)
	return nil
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

func ln(out, in *big.Float) *big.Float {
	if in.Sign() <= 0 {
		panic(&DomainError{X: new(big.Float).Copy(in), Arg: 1, Func: "ln"})
	}
	return bigfloat.Log(out, in)
}

func floor(out, in *big.Float) *big.Float {
	if in.IsInf() {
		return out.Set(in)
	}
	i, acc := in.Int(nil)
	if acc == big.Above {
		// Truncation rounded a negative value up.
		i.Sub(i, big.NewInt(1))
	}
	return out.SetInt(i)
}

func ceil(out, in *big.Float) *big.Float {
	if in.IsInf() {
		return out.Set(in)
	}
	i, acc := in.Int(nil)
	if acc == big.Below {
		i.Add(i, big.NewInt(1))
	}
	return out.SetInt(i)
}

func round(out, in *big.Float) *big.Float {
	if in.IsInf() {
		return out.Set(in)
	}
	var h big.Float
	h.SetPrec(in.Prec() + 1).Abs(in)
	h.Add(&h, big.NewFloat(0.5))
	i, _ := h.Int(nil)
	if in.Signbit() {
		i.Neg(i)
	}
	return out.SetInt(i)
}

// MaxCallDepth is the maximum nesting of Lambda calls during one evaluation.
const MaxCallDepth = 64

type lambda struct {
	params []string
	body   *Expr
}

// Lambda creates a Func which evaluates body with its arguments bound to the
// given parameter names. Other names in body are resolved in the context of
// the caller at the time of the call.
func Lambda(params []string, body *Expr) Func {
	return &lambda{params: append([]string(nil), params...), body: body}
}

func (f *lambda) Call(ctx *Context, invoc []*big.Float, semis []int, r *big.Float) error {
	if ctx.depth >= MaxCallDepth {
		return &RecursionError{Depth: ctx.depth}
	}
	sub := ctx.Clone()
	sub.depth = ctx.depth + 1
	for i, p := range f.params {
		sub.Set(p, invoc[i])
	}
	v := sub.Eval(f.body)
	if v == nil {
		return sub.Err()
	}
	r.SetPrec(ctx.Prec()).Set(v)
	return nil
}

func (f *lambda) CanCall(n int) bool {
	return n == len(f.params)
}

// DomainError is an error returned when a function is called on arguments
// outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument. It may be nil if the operation that
	// failed is not known.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
	// Err is the underlying NaN error, if any.
	Err error
}

func (err *DomainError) Error() string {
	if err.X == nil {
		if err.Err != nil {
			return "result is not a number: " + err.Err.Error()
		}
		return "result is not a number"
	}
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

func (err *DomainError) Unwrap() error {
	if err.Err != nil {
		return err.Err
	}
	return big.ErrNaN{}
}

// RecursionError is an error returned when Lambda calls nest too deeply.
type RecursionError struct {
	// Depth is the call depth at which evaluation stopped.
	Depth int
}

func (err *RecursionError) Error() string {
	return "function calls nested too deeply (depth " + strconv.Itoa(err.Depth) + ")"
}
