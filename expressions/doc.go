// Package expressions implements an arbitrary-precision floating-point calculator.
//
// The syntax of expressions is intended to be similar to math you'd write in
// your notes, with maybe a few more spaces. "2 x y" is a multiplication of
// three terms. So is "{2}[x](y)" (although not "2 xy"). "-2^2^n" is the same
// as "-(2^(2^n))", where "a^b" is exponentiation.
//
// Comparisons (=, !=, <, <=, >, >=) and the boolean operators &&, || and !
// bind more loosely than arithmetic and produce 1 for true and 0 for false.
// Expr.IsBoolean reports whether an expression's outermost operation is one
// of them.
//
// Variables let you parse an expression once and evaluate it for many inputs,
// or you can clone contexts for several expressions to use the same variable
// definitions everywhere. Lambda turns a parsed expression into a function
// that other expressions can call.
package expressions
