package apecrunch

import (
	"io"
	"strconv"
	"strings"
)

// Context is a context for evaluating expressions. It holds the variable
// table that name lookups and assignments use. It is not safe to use a
// Context concurrently.
type Context struct {
	stack []*Number
	nums  map[string]*Number
	vars  *VarTable
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption(*Context)
}

type (
	varopt struct {
		name string
		val  *Number
	}
	tableopt struct {
		t *VarTable
	}
)

func (o varopt) ctxOption(ctx *Context) {
	ctx.vars.vars[o.name] = o.val
}

func (o tableopt) ctxOption(ctx *Context) {
	ctx.vars = o.t
}

// SetVar sets the value of a variable in the context. The name is not
// validated; use Context.Set to enforce the naming rules.
func SetVar(name string, val *Number) ContextOption {
	return varopt{name, val}
}

// WithVars binds an existing variable table to the context. The context
// reads and writes the table in place, so assignments are visible to every
// holder of the table.
func WithVars(t *VarTable) ContextOption {
	return tableopt{t}
}

// NewContext creates a new evaluation context. Unless WithVars is given, the
// context owns a fresh empty variable table.
func NewContext(opts ...ContextOption) *Context {
	ctx := &Context{
		nums: make(map[string]*Number),
		vars: NewVarTable(),
	}
	// Bind tables before setting variables, regardless of option order.
	for _, opt := range opts {
		if o, ok := opt.(tableopt); ok {
			o.ctxOption(ctx)
		}
	}
	for _, opt := range opts {
		if _, ok := opt.(tableopt); ok {
			continue
		}
		opt.ctxOption(ctx)
	}
	return ctx
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a missing variable definition or a division by zero, then the result
// is nil and ctx.Err returns the error. A successful assignment stores into
// the variable table and yields the assigned value; no other evaluation has
// side effects.
func (ctx *Context) Eval(e *Expr) *Number {
	ctx.stack = ctx.stack[:0]
	ctx.err = e.n.eval(ctx)
	if ctx.err != nil {
		return nil
	}
	return ctx.Result()
}

// Eval evaluates the expression with a context. See Context.Eval.
func (e *Expr) Eval(ctx *Context) *Number {
	return ctx.Eval(e)
}

// Result returns the result obtained after evaluating an expression. Panics
// if ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *Number {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("apecrunch: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("apecrunch: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the first error that occurred while evaluating an expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable, enforcing the naming rules.
func (ctx *Context) Set(name string, value *Number) error {
	return ctx.vars.Set(name, value)
}

// Lookup returns the value of a variable. If there is no such variable in
// the context, then the result is nil.
func (ctx *Context) Lookup(name string) *Number {
	v, ok := ctx.vars.Get(name)
	if !ok {
		return nil
	}
	return v
}

// Vars returns the variable table the context evaluates against.
func (ctx *Context) Vars() *VarTable {
	return ctx.vars
}

// push puts a value on the stack.
func (ctx *Context) push(v *Number) {
	ctx.stack = append(ctx.stack, v)
}

// pop removes the top from the stack and returns it.
func (ctx *Context) pop() *Number {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) *Number {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	r, err := ParseNumber(s)
	if err != nil {
		// The lexer only produces literals ParseNumber accepts.
		panic("apecrunch: invalid number: " + s)
	}
	ctx.nums[s] = r
	return r
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.push(ctx.num(n.name))
	case nodeName:
		v, ok := ctx.vars.Get(n.name)
		if !ok {
			return &NameError{Name: n.name}
		}
		ctx.push(v)
	case nodeCall:
		k := len(ctx.stack)
		for l := n.right; l != nil; l = l.right {
			if err := l.left.eval(ctx); err != nil {
				return err
			}
		}
		invoc := ctx.stack[k:len(ctx.stack):len(ctx.stack)]
		r, err := n.fn.Call(ctx, invoc)
		if err != nil {
			return err
		}
		ctx.stack = ctx.stack[:k]
		ctx.push(r)
	case nodeArg:
		panic("apecrunch: eval on nodeArg")
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		ctx.push(ctx.pop().Neg())
	case nodeAdd:
		if err := n.evalPair(ctx); err != nil {
			return err
		}
		r, l := ctx.pop(), ctx.pop()
		ctx.push(l.Add(r))
	case nodeSub:
		if err := n.evalPair(ctx); err != nil {
			return err
		}
		r, l := ctx.pop(), ctx.pop()
		ctx.push(l.Sub(r))
	case nodeMul:
		if err := n.evalPair(ctx); err != nil {
			return err
		}
		r, l := ctx.pop(), ctx.pop()
		ctx.push(l.Mul(r))
	case nodeDiv:
		if err := n.evalPair(ctx); err != nil {
			return err
		}
		r, l := ctx.pop(), ctx.pop()
		v, err := l.Div(r)
		if err != nil {
			return err
		}
		ctx.push(v)
	case nodePow:
		if err := n.evalPair(ctx); err != nil {
			return err
		}
		r, l := ctx.pop(), ctx.pop()
		v, err := l.Pow(r)
		if err != nil {
			return err
		}
		ctx.push(v)
	case nodeRoot:
		if err := n.evalPair(ctx); err != nil {
			return err
		}
		rad, deg := ctx.pop(), ctx.pop()
		v, err := rad.Root(deg)
		if err != nil {
			return err
		}
		ctx.push(v)
	case nodeAssign:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.pop()
		if err := ctx.vars.Set(n.name, v); err != nil {
			return err
		}
		ctx.push(v)
	case nodeNop:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
	default:
		panic("apecrunch: invalid AST node " + n.kind.String())
	}
	return nil
}

// evalPair evaluates the node's left then right children.
func (n *node) evalPair(ctx *Context) error {
	if err := n.left.eval(ctx); err != nil {
		return err
	}
	return n.right.eval(ctx)
}

// Eval is a shortcut to parse an expression and return its result using the
// default functions.
func Eval(src io.RuneScanner, opts ...ContextOption) (*Number, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	ctx.Eval(a)
	return ctx.Result(), ctx.Err()
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (*Number, error) {
	return Eval(strings.NewReader(src), opts...)
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// DivisionByZeroError is an error from dividing by zero, including a zero
// base raised to a negative power.
type DivisionByZeroError struct{}

func (err *DivisionByZeroError) Error() string {
	return "division by zero"
}

// InvalidExponentError is an error from an exponent or root degree with no
// exact result: a fractional exponent whose root is inexact, a non-integer
// or non-positive root degree, or an exponent too large to compute.
type InvalidExponentError struct {
	// Exponent is the offending exponent or degree.
	Exponent *Number
	// Root indicates the exponent was a root degree.
	Root bool
}

func (err *InvalidExponentError) Error() string {
	if err.Root {
		return "invalid root degree " + err.Exponent.String()
	}
	return "invalid exponent " + err.Exponent.String()
}

// ComplexResultError is an error from taking an even root of a negative
// value. Complex numbers are not supported.
type ComplexResultError struct {
	// Degree is the root degree.
	Degree int64
	// Radicand is the negative value.
	Radicand *Number
}

func (err *ComplexResultError) Error() string {
	return "degree-" + strconv.FormatInt(err.Degree, 10) + " root of negative " + err.Radicand.String() + " is complex"
}

// InvalidNameError is an error from assigning to a name that does not match
// the variable grammar.
type InvalidNameError struct {
	// Name is the rejected name.
	Name string
}

func (err *InvalidNameError) Error() string {
	return "invalid variable name " + strconv.Quote(err.Name)
}

// ReservedNameError is an error from assigning to a reserved function or
// constant name.
type ReservedNameError struct {
	// Name is the rejected name.
	Name string
}

func (err *ReservedNameError) Error() string {
	return strconv.Quote(err.Name) + " is reserved"
}
