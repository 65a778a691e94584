package apecrunch

import (
	"math/big"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// approxDigits is the number of decimal digits kept when a root has no exact
// rational value. A result truncated to this scale carries the precision-loss
// flag. Changing this changes stored values, so it is covered by tests.
const approxDigits = 24

// approxPrec is the binary precision used to compute inexact roots before
// truncating to approxDigits decimal digits.
const approxPrec = 256

// maxExponent bounds integer exponents and root degrees so that a single
// input cannot allocate without limit.
const maxExponent = 1 << 20

// Number is an exact rational value in lowest terms. A Number produced by an
// operation whose value cannot be written finitely in decimal carries a
// precision-loss flag; the flag survives any arithmetic deriving from it.
// The zero value is 0.
type Number struct {
	rat    big.Rat
	approx bool
}

// NewInt creates the Number x.
func NewInt(x int64) *Number {
	n := new(Number)
	n.rat.SetInt64(x)
	return n
}

// ParseNumber creates a Number from an integer or decimal literal, e.g. "12",
// "3.25", or "1.5e3".
func ParseNumber(s string) (*Number, error) {
	n := new(Number)
	if _, ok := n.rat.SetString(s); !ok {
		return nil, &LexError{Text: s, Kind: "number", Col: 1}
	}
	return n, nil
}

// NumberFromTerms reconstructs a Number from decimal numerator and
// denominator strings, as stored by the history container.
func NumberFromTerms(num, den string, approx bool) (*Number, bool) {
	n := new(Number)
	if _, ok := n.rat.SetString(num + "/" + den); !ok {
		return nil, false
	}
	n.approx = approx
	return n, true
}

// Terms returns the lowest-term numerator and denominator as decimal strings.
func (n *Number) Terms() (num, den string) {
	return n.rat.Num().String(), n.rat.Denom().String()
}

// Approximate reports whether n carries the precision-loss flag.
func (n *Number) Approximate() bool { return n.approx }

// Sign returns -1, 0, or 1 according to the sign of n.
func (n *Number) Sign() int { return n.rat.Sign() }

// Cmp compares n and o exactly, returning -1, 0, or 1.
func (n *Number) Cmp(o *Number) int { return n.rat.Cmp(&o.rat) }

// Equal reports whether n and o are exactly equal, ignoring flags.
func (n *Number) Equal(o *Number) bool { return n.rat.Cmp(&o.rat) == 0 }

// IsInt reports whether n is an integer.
func (n *Number) IsInt() bool { return n.rat.IsInt() }

// String formats n as an exact ratio, e.g. "-7/3". Approximate values are
// prefixed with "~".
func (n *Number) String() string {
	if n.approx {
		return "~" + n.rat.RatString()
	}
	return n.rat.RatString()
}

// Neg returns -n.
func (n *Number) Neg() *Number {
	r := &Number{approx: n.approx}
	r.rat.Neg(&n.rat)
	return r
}

// Add returns n+o.
func (n *Number) Add(o *Number) *Number {
	r := &Number{approx: n.approx || o.approx}
	r.rat.Add(&n.rat, &o.rat)
	return r
}

// Sub returns n-o.
func (n *Number) Sub(o *Number) *Number {
	r := &Number{approx: n.approx || o.approx}
	r.rat.Sub(&n.rat, &o.rat)
	return r
}

// Mul returns n*o.
func (n *Number) Mul(o *Number) *Number {
	r := &Number{approx: n.approx || o.approx}
	r.rat.Mul(&n.rat, &o.rat)
	return r
}

// Div returns n/o. Division by zero is an error. A quotient whose decimal
// expansion does not terminate gains the precision-loss flag, because any
// rendering of it is truncated.
func (n *Number) Div(o *Number) (*Number, error) {
	if o.rat.Sign() == 0 {
		return nil, &DivisionByZeroError{}
	}
	r := &Number{approx: n.approx || o.approx}
	r.rat.Quo(&n.rat, &o.rat)
	if !terminating(r.rat.Denom()) {
		r.approx = true
	}
	return r, nil
}

// Pow returns n^o. Integer exponents are exact, with negative exponents as
// reciprocal powers. A fractional exponent p/q is attempted as the exact q-th
// root of n^p and is an error when that root is inexact.
func (n *Number) Pow(o *Number) (*Number, error) {
	if o.approx {
		return nil, &InvalidExponentError{Exponent: o}
	}
	num, den := o.rat.Num(), o.rat.Denom()
	if !num.IsInt64() || !den.IsInt64() {
		return nil, &InvalidExponentError{Exponent: o}
	}
	p, q := num.Int64(), den.Int64()
	if p < -maxExponent || p > maxExponent || q > maxExponent {
		return nil, &InvalidExponentError{Exponent: o}
	}
	t, err := n.powInt(p)
	if err != nil {
		return nil, err
	}
	if q == 1 {
		return t, nil
	}
	r, exact, err := t.root(q)
	if err != nil {
		return nil, err
	}
	if !exact {
		return nil, &InvalidExponentError{Exponent: o}
	}
	return r, nil
}

// powInt raises n to an exact integer power.
func (n *Number) powInt(p int64) (*Number, error) {
	if p == 0 {
		return NewInt(1), nil
	}
	neg := p < 0
	if neg {
		if n.rat.Sign() == 0 {
			return nil, &DivisionByZeroError{}
		}
		p = -p
	}
	e := big.NewInt(p)
	r := &Number{approx: n.approx}
	var num, den big.Int
	num.Exp(n.rat.Num(), e, nil)
	den.Exp(n.rat.Denom(), e, nil)
	if neg {
		r.rat.SetFrac(&den, &num)
	} else {
		r.rat.SetFrac(&num, &den)
	}
	return r, nil
}

// Root returns the degree-th root of n. The degree must be a positive
// integer. If n is a perfect power the result is exact; otherwise it is a
// rational truncated to approxDigits decimal digits and carries the
// precision-loss flag. An even root of a negative value is an error.
func (n *Number) Root(degree *Number) (*Number, error) {
	if degree.approx || !degree.IsInt() || degree.Sign() <= 0 || !degree.rat.Num().IsInt64() {
		return nil, &InvalidExponentError{Exponent: degree, Root: true}
	}
	k := degree.rat.Num().Int64()
	if k > maxExponent {
		return nil, &InvalidExponentError{Exponent: degree, Root: true}
	}
	r, _, err := n.root(k)
	return r, err
}

// root computes the k-th root of n, reporting whether it is exact.
func (n *Number) root(k int64) (*Number, bool, error) {
	if k == 1 {
		r := &Number{approx: n.approx}
		r.rat.Set(&n.rat)
		return r, true, nil
	}
	neg := n.rat.Sign() < 0
	if neg && k%2 == 0 {
		return nil, false, &ComplexResultError{Degree: k, Radicand: n}
	}
	var abs big.Rat
	abs.Abs(&n.rat)
	rnum, numExact := nthRoot(abs.Num(), k)
	rden, denExact := nthRoot(abs.Denom(), k)
	if numExact && denExact {
		r := &Number{approx: n.approx}
		r.rat.SetFrac(rnum, rden)
		if neg {
			r.rat.Neg(&r.rat)
		}
		return r, true, nil
	}
	r := approxRoot(&abs, k)
	if neg {
		r.rat.Neg(&r.rat)
	}
	return r, false, nil
}

// approxRoot computes abs^(1/k) to approxPrec bits and truncates it to
// approxDigits decimal digits. abs must be positive.
func approxRoot(abs *big.Rat, k int64) *Number {
	x := new(big.Float).SetPrec(approxPrec).SetRat(abs)
	e := new(big.Float).SetPrec(approxPrec).SetRat(big.NewRat(1, k))
	bigfloat.Pow(x, x, e)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(approxDigits), nil)
	x.Mul(x, new(big.Float).SetPrec(approxPrec).SetInt(scale))
	scaled, _ := x.Int(nil)
	r := &Number{approx: true}
	r.rat.SetFrac(scaled, scale)
	return r
}

// nthRoot returns the floor of the k-th root of x >= 0 and whether the root
// is exact. Newton's method over big.Int, grounded at a power-of-two guess.
func nthRoot(x *big.Int, k int64) (*big.Int, bool) {
	one := big.NewInt(1)
	if x.Sign() == 0 || x.Cmp(one) == 0 {
		return new(big.Int).Set(x), true
	}
	if k == 1 {
		return new(big.Int).Set(x), true
	}
	n := big.NewInt(k)
	km1 := big.NewInt(k - 1)
	r := new(big.Int).Lsh(one, uint((x.BitLen()+int(k)-1)/int(k)))
	for {
		// r' = ((k-1)*r + x/r^(k-1)) / k
		t := new(big.Int).Exp(r, km1, nil)
		t.Quo(x, t)
		next := new(big.Int).Mul(r, km1)
		next.Add(next, t)
		next.Quo(next, n)
		if next.Cmp(r) >= 0 {
			break
		}
		r = next
	}
	pow := new(big.Int).Exp(r, n, nil)
	for pow.Cmp(x) > 0 {
		r.Sub(r, one)
		pow.Exp(r, n, nil)
	}
	for {
		next := new(big.Int).Add(r, one)
		np := new(big.Int).Exp(next, n, nil)
		if np.Cmp(x) > 0 {
			break
		}
		r, pow = next, np
	}
	return r, pow.Cmp(x) == 0
}

// terminating reports whether 1/den has a finite decimal expansion, i.e.
// whether den has no prime factor other than 2 and 5.
func terminating(den *big.Int) bool {
	d := new(big.Int).Set(den)
	five := big.NewInt(5)
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
	}
	for {
		var m big.Int
		q, r := new(big.Int).QuoRem(d, five, &m)
		if r.Sign() != 0 {
			break
		}
		d = q
	}
	return d.Cmp(big.NewInt(1)) == 0
}

// Decimal renders n truncated to at most places decimal digits. The result
// ends in "…" when n carries the precision-loss flag or when truncation
// dropped nonzero digits, signaling that the printed decimal is not exact.
func (n *Number) Decimal(places int) string {
	if places < 0 {
		places = 0
	}
	var b strings.Builder
	var abs big.Rat
	abs.Abs(&n.rat)
	if n.rat.Sign() < 0 {
		b.WriteByte('-')
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	num := new(big.Int).Mul(abs.Num(), scale)
	var rem big.Int
	quo, _ := new(big.Int).QuoRem(num, abs.Denom(), &rem)
	var ip, fp big.Int
	ip.QuoRem(quo, scale, &fp)
	b.WriteString(ip.String())
	if fp.Sign() != 0 {
		digits := fp.String()
		digits = strings.Repeat("0", places-len(digits)) + digits
		digits = strings.TrimRight(digits, "0")
		b.WriteByte('.')
		b.WriteString(digits)
	}
	if n.approx || rem.Sign() != 0 {
		b.WriteString("…")
	}
	return b.String()
}
