package apecrunch

// Func is a function from rationals to rationals. Functions may but generally
// should not look up variables.
type Func interface {
	// Call evaluates the function. invoc has a length for which CanCall
	// returned true. Call must not retain invoc.
	Call(ctx *Context, invoc []*Number) (*Number, error)

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
	//		treats the term as an argument to the function. E.g., "sqrt x" is
	//		parsed as "sqrt(x)". (If !CanCall(1), then it is a multiplication.)
	CanCall(n int) bool
}

var two = NewInt(2)

var globalfuncs = map[string]Func{
	"sqrt": Monadic(func(ctx *Context, x *Number) (*Number, error) {
		return x.Root(two)
	}),
	"root": Dyadic(func(ctx *Context, degree, x *Number) (*Number, error) {
		return x.Root(degree)
	}),

	// Planned but not yet implemented over exact rationals. Keeping the
	// names here reserves them so variables can't shadow them later.
	"exp": nil,
	"ln":  nil,
	"log": nil,
	"cos": nil,
	"sin": nil,
	"tan": nil,
}

// reservedconsts are names reserved for constants that have no exact rational
// value (or, for the booleans, no Number value at all).
var reservedconsts = map[string]bool{
	"pi":    true,
	"e":     true,
	"true":  true,
	"false": true,
}

// Reserved reports whether name is a reserved function or constant name and
// therefore unusable as a variable.
func Reserved(name string) bool {
	if _, ok := globalfuncs[name]; ok {
		return true
	}
	return reservedconsts[name]
}

type monadic struct {
	f func(ctx *Context, x *Number) (*Number, error)
}

func (m monadic) Call(ctx *Context, invoc []*Number) (*Number, error) {
	return m.f(ctx, invoc[0])
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func.
func Monadic(f func(ctx *Context, x *Number) (*Number, error)) Func {
	return monadic{f}
}

type dyadic struct {
	f func(ctx *Context, x, y *Number) (*Number, error)
}

func (d dyadic) Call(ctx *Context, invoc []*Number) (*Number, error) {
	return d.f(ctx, invoc[0], invoc[1])
}

func (d dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two variables into a Func.
func Dyadic(f func(ctx *Context, x, y *Number) (*Number, error)) Func {
	return dyadic{f}
}
