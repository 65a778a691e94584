package apecrunch

import (
	"errors"
	"math/big"
	"testing"
)

func num(t *testing.T, s string) *Number {
	t.Helper()
	n, err := ParseNumber(s)
	if err != nil {
		t.Fatalf("%q failed to parse: %v", s, err)
	}
	return n
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		src string
		rat string
	}{
		{"0", "0"},
		{"12", "12"},
		{"3.25", "13/4"},
		{"0.5", "1/2"},
		{"1.5e3", "1500"},
		{"2e-2", "1/50"},
		{".1", "1/10"},
	}
	for _, c := range cases {
		n := num(t, c.src)
		if got := n.String(); got != c.rat {
			t.Errorf("%q parsed to %s, want %s", c.src, got, c.rat)
		}
		if n.Approximate() {
			t.Errorf("%q parsed approximate", c.src)
		}
	}
	if _, err := ParseNumber("bletch"); err == nil {
		t.Error("no error parsing non-number")
	}
}

func TestTerms(t *testing.T) {
	n := num(t, "3.25")
	nm, dn := n.Terms()
	if nm != "13" || dn != "4" {
		t.Errorf("terms of 3.25 are %s/%s, want 13/4", nm, dn)
	}
	r, ok := NumberFromTerms(nm, dn, true)
	if !ok {
		t.Fatal("failed to rebuild from terms")
	}
	if !r.Equal(n) {
		t.Errorf("rebuilt %v, want %v", r, n)
	}
	if !r.Approximate() {
		t.Error("rebuilt number lost its flag")
	}
	if _, ok := NumberFromTerms("x", "y", false); ok {
		t.Error("built a number from garbage terms")
	}
}

func TestArith(t *testing.T) {
	cases := []struct {
		name    string
		op      func(x, y *Number) *Number
		x, y, r string
	}{
		{"add", (*Number).Add, "1/2", "1/3", "5/6"},
		{"sub", (*Number).Sub, "1/2", "1/3", "1/6"},
		{"mul", (*Number).Mul, "2/3", "3/4", "1/2"},
		{"add-int", (*Number).Add, "2", "2", "4"},
		{"sub-neg", (*Number).Sub, "1", "3", "-2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var x, y, want Number
			x.rat.SetString(c.x)
			y.rat.SetString(c.y)
			want.rat.SetString(c.r)
			got := c.op(&x, &y)
			if !got.Equal(&want) {
				t.Errorf("%s %s %s = %v, want %s", c.x, c.name, c.y, got, c.r)
			}
			if got.Approximate() {
				t.Error("exact operands gave an approximate result")
			}
			// The flag is sticky through every operation.
			x.approx = true
			if got := c.op(&x, &y); !got.Approximate() {
				t.Error("flagged operand gave an exact result")
			}
		})
	}
}

func TestDiv(t *testing.T) {
	cases := []struct {
		name   string
		x, y   string
		r      string
		approx bool
	}{
		{"halves", "1", "2", "1/2", false},
		{"eighths", "1", "8", "1/8", false},
		{"tenths", "7", "10", "7/10", false},
		{"twentieths", "3", "20", "3/20", false},
		{"thirds", "1", "3", "1/3", true},
		{"sixths", "1", "6", "1/6", true},
		{"sevenths", "2", "7", "2/7", true},
		{"reduces", "7", "35", "1/5", false},
		{"int", "12", "4", "3", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := num(t, c.x).Div(num(t, c.y))
			if err != nil {
				t.Fatalf("%s/%s: %v", c.x, c.y, err)
			}
			var want big.Rat
			want.SetString(c.r)
			if r.rat.Cmp(&want) != 0 {
				t.Errorf("%s/%s = %v, want %s", c.x, c.y, r, c.r)
			}
			if r.Approximate() != c.approx {
				t.Errorf("%s/%s approximate = %v, want %v", c.x, c.y, r.Approximate(), c.approx)
			}
		})
	}
	if _, err := num(t, "1").Div(num(t, "0")); !errors.As(err, new(*DivisionByZeroError)) {
		t.Errorf("1/0 gave %v, not DivisionByZeroError", err)
	}
}

func TestPow(t *testing.T) {
	cases := []struct {
		name string
		x, y string
		r    string
	}{
		{"square", "2", "10", "1024"},
		{"one", "17", "1", "17"},
		{"zero", "17", "0", "1"},
		{"zero-zero", "0", "0", "1"},
		{"neg", "2", "-2", "1/4"},
		{"frac-base", "2/3", "2", "4/9"},
		{"neg-base", "-3", "3", "-27"},
		{"half", "9", "1/2", "3"},
		{"half-dec", "9", "0.5", "3"},
		{"two-thirds", "8", "2/3", "4"},
		{"frac-frac", "4/9", "1/2", "2/3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := num(t, c.x).Pow(num(t, c.y))
			if err != nil {
				t.Fatalf("%s^%s: %v", c.x, c.y, err)
			}
			var want Number
			want.rat.SetString(c.r)
			if !r.Equal(&want) {
				t.Errorf("%s^%s = %v, want %s", c.x, c.y, r, c.r)
			}
			if r.Approximate() {
				t.Errorf("%s^%s is approximate", c.x, c.y)
			}
		})
	}
	errcases := []struct {
		name string
		x, y string
		err  error
	}{
		{"zero-neg", "0", "-1", new(DivisionByZeroError)},
		{"inexact", "2", "1/2", new(InvalidExponentError)},
		{"inexact-dec", "10", "0.5", new(InvalidExponentError)},
		{"huge", "2", "2097152", new(InvalidExponentError)},
	}
	for _, c := range errcases {
		t.Run(c.name, func(t *testing.T) {
			_, err := num(t, c.x).Pow(num(t, c.y))
			if err == nil {
				t.Fatalf("%s^%s gave no error", c.x, c.y)
			}
			switch c.err.(type) {
			case *DivisionByZeroError:
				if !errors.As(err, new(*DivisionByZeroError)) {
					t.Errorf("%s^%s gave %v, want DivisionByZeroError", c.x, c.y, err)
				}
			case *InvalidExponentError:
				if !errors.As(err, new(*InvalidExponentError)) {
					t.Errorf("%s^%s gave %v, want InvalidExponentError", c.x, c.y, err)
				}
			}
		})
	}
	// A flagged exponent is never acceptable.
	e, err := num(t, "1").Div(num(t, "3"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := num(t, "2").Pow(e); !errors.As(err, new(*InvalidExponentError)) {
		t.Errorf("flagged exponent gave %v, want InvalidExponentError", err)
	}
}

func TestRootExact(t *testing.T) {
	cases := []struct {
		name   string
		x, deg string
		r      string
	}{
		{"sqrt", "9", "2", "3"},
		{"sqrt-frac", "4/9", "2", "2/3"},
		{"cbrt", "27", "3", "3"},
		{"cbrt-neg", "-27", "3", "-3"},
		{"first", "17/5", "1", "17/5"},
		{"big", "1000000000000000000000000", "3", "100000000"},
		{"zero", "0", "4", "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := num(t, c.x).Root(num(t, c.deg))
			if err != nil {
				t.Fatalf("%s√%s: %v", c.deg, c.x, err)
			}
			want := num(t, "0")
			want.rat.SetString(c.r)
			if !r.Equal(want) {
				t.Errorf("%s√%s = %v, want %s", c.deg, c.x, r, c.r)
			}
			if r.Approximate() {
				t.Errorf("%s√%s is approximate", c.deg, c.x)
			}
		})
	}
}

func TestRootApprox(t *testing.T) {
	r, err := num(t, "2").Root(num(t, "2"))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Approximate() {
		t.Error("√2 is not approximate")
	}
	if got := r.Decimal(6); got != "1.414213…" {
		t.Errorf("√2 renders %q, want %q", got, "1.414213…")
	}
	// The truncated value squares to just under 2.
	sq := r.Mul(r)
	if sq.Cmp(num(t, "2")) >= 0 {
		t.Errorf("√2 squared is %v, not less than 2", sq)
	}
	if !sq.Approximate() {
		t.Error("square of √2 lost the flag")
	}
}

func TestRootErrors(t *testing.T) {
	if _, err := num(t, "-4").Root(num(t, "2")); !errors.As(err, new(*ComplexResultError)) {
		t.Errorf("even root of negative gave %v, want ComplexResultError", err)
	}
	for _, deg := range []string{"0", "-2", "3/2", "2097152"} {
		if _, err := num(t, "4").Root(num(t, deg)); !errors.As(err, new(*InvalidExponentError)) {
			t.Errorf("degree %s gave %v, want InvalidExponentError", deg, err)
		}
	}
}

func TestNthRoot(t *testing.T) {
	cases := []struct {
		x     int64
		k     int64
		r     int64
		exact bool
	}{
		{0, 3, 0, true},
		{1, 5, 1, true},
		{343, 3, 7, true},
		{344, 3, 7, false},
		{10, 2, 3, false},
		{4096, 12, 2, true},
		{99, 2, 9, false},
		{100, 2, 10, true},
		{101, 2, 10, false},
	}
	for _, c := range cases {
		r, exact := nthRoot(big.NewInt(c.x), c.k)
		if r.Int64() != c.r || exact != c.exact {
			t.Errorf("nthRoot(%d, %d) = %v, %v, want %d, %v", c.x, c.k, r, exact, c.r, c.exact)
		}
	}
}

func TestTerminating(t *testing.T) {
	cases := []struct {
		den int64
		r   bool
	}{
		{1, true},
		{2, true},
		{5, true},
		{8, true},
		{10, true},
		{64, true},
		{200, true},
		{3, false},
		{6, false},
		{7, false},
		{14, false},
		{30, false},
	}
	for _, c := range cases {
		if got := terminating(big.NewInt(c.den)); got != c.r {
			t.Errorf("terminating(%d) = %v, want %v", c.den, got, c.r)
		}
	}
}

func TestDecimal(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		approx bool
		places int
		r      string
	}{
		{"int", "5", false, 6, "5"},
		{"quarter", "1/4", false, 6, "0.25"},
		{"half-neg", "-7/2", false, 6, "-3.5"},
		{"third", "1/3", false, 6, "0.333333…"},
		{"third-neg", "-7/3", false, 6, "-2.333333…"},
		{"truncated", "-1/8", false, 2, "-0.12…"},
		{"tight", "1/8", false, 3, "0.125"},
		{"zero-places", "7/3", false, 0, "2…"},
		{"flagged-int", "2", true, 6, "2…"},
		{"zero", "0", false, 6, "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var n Number
			n.rat.SetString(c.src)
			n.approx = c.approx
			if got := n.Decimal(c.places); got != c.r {
				t.Errorf("%s to %d places renders %q, want %q", c.src, c.places, got, c.r)
			}
		})
	}
}

func TestNumberString(t *testing.T) {
	var n Number
	n.rat.SetString("1/3")
	if got := n.String(); got != "1/3" {
		t.Errorf("String = %q, want %q", got, "1/3")
	}
	n.approx = true
	if got := n.String(); got != "~1/3" {
		t.Errorf("flagged String = %q, want %q", got, "~1/3")
	}
}
