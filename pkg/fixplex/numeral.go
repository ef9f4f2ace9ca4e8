// Package fixplex implements a fixed-width modular simplex solver: it
// decides feasibility of linear equalities over fixed-precision unsigned
// integers (arithmetic mod 2^W) together with a conjunction of
// strict/non-strict inequalities between variables.
package fixplex

import "math/bits"

// Numeral is a width-W unsigned ring element. Values are always kept
// masked to the owning Ring's width; arithmetic that would overflow wraps
// silently, which is the point (everything is computed mod 2^W).
type Numeral = uint64

// Ring holds the width W that all numeral arithmetic for one Solver
// instance is performed against. The same Ring value is shared by every
// Numeral-valued field the solver owns.
type Ring struct {
	Width uint // 1..64
}

// NewRing constructs a Ring for the given bit width. Width must be in
// [1, 64]; callers are expected to validate this once at construction
// time rather than on every arithmetic call (LoadConfig does so;
// NewSolver and NewRing do not check).
func NewRing(width uint) *Ring {
	return &Ring{Width: width}
}

func (r *Ring) mask() uint64 {
	if r.Width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << r.Width) - 1
}

// Mask truncates x to the ring's width.
func (r *Ring) Mask(x uint64) Numeral {
	return x & r.mask()
}

// Add returns a+b mod 2^W.
func (r *Ring) Add(a, b Numeral) Numeral {
	return r.Mask(a + b)
}

// Neg returns the additive inverse of x, i.e. 0-x mod 2^W.
func (r *Ring) Neg(x Numeral) Numeral {
	return r.Mask(-x)
}

// Sub returns a-b mod 2^W, defined as a + (0-b) per spec.
func (r *Ring) Sub(a, b Numeral) Numeral {
	return r.Add(a, r.Neg(b))
}

// Mul returns a*b mod 2^W.
func (r *Ring) Mul(a, b Numeral) Numeral {
	return r.Mask(a * b)
}

// Shl returns x<<n mod 2^W.
func (r *Ring) Shl(x Numeral, n uint) Numeral {
	if n >= 64 {
		return 0
	}
	return r.Mask(x << n)
}

// Shr returns the logical (unsigned) right shift of x by n.
func (r *Ring) Shr(x Numeral, n uint) Numeral {
	if n >= 64 {
		return 0
	}
	return x >> n
}

// Div performs truncating unsigned division on the ring representation.
// The result is exact only when b divides a; otherwise it is truncated.
// The solver uses it exclusively inside SolveFor for approximate
// patching (spec.md §4.1).
func (r *Ring) Div(a, b Numeral) Numeral {
	if b == 0 {
		return 0
	}
	return a / b
}

// Tz returns the number of trailing zero bits of x, with the convention
// Tz(0) == Width ("divisible by everything up to the ring's width").
func (r *Ring) Tz(x Numeral) uint {
	if x == 0 {
		return r.Width
	}
	tz := uint(bits.TrailingZeros64(x))
	if tz > r.Width {
		return r.Width
	}
	return tz
}

// IsEven reports whether x's low bit is zero.
func (r *Ring) IsEven(x Numeral) bool {
	return x&1 == 0
}

// OddInverse returns the unique y such that x*y == 1 mod 2^W, for odd x.
// Computed via Newton-Hensel iteration (doubling precision each step),
// the same technique used to invert odd numerals for from_rational /
// offset-equality coefficient comparisons.
func (r *Ring) OddInverse(x Numeral) Numeral {
	if x&1 == 0 {
		panic("fixplex: OddInverse called on an even numeral")
	}
	y := x
	for i := 0; i < 6; i++ { // 6 doublings: 2^1 -> 2^64 precision
		y = y * (2 - x*y)
	}
	return r.Mask(y)
}

// FromRational converts a reduced fraction num/den into the ring via
// num * odd_inverse(den). den must be odd; an exact conversion is
// impossible otherwise and ErrEvenDenominator is returned.
func (r *Ring) FromRational(num, den int64) (Numeral, error) {
	if den%2 == 0 {
		return 0, ErrEvenDenominator
	}
	n := r.Mask(uint64(num))
	d := r.Mask(uint64(den))
	if den < 0 {
		d = r.Neg(r.Mask(uint64(-den)))
	}
	if num < 0 {
		n = r.Neg(r.Mask(uint64(-num)))
	}
	return r.Mul(n, r.OddInverse(d)), nil
}

// SolveFor solves c*x + rowValue == 0 for x. An exact solution exists
// iff Tz(c) <= Tz(rowValue). For c == 1 and c == -1 the result is
// exact; for any other c it is rowValue/(-c) when -c < c and
// -(rowValue/c) otherwise, using truncating division on the unsigned
// representatives, which is exact only when that division leaves no
// remainder (spec.md §4.4).
func (r *Ring) SolveFor(rowValue, c Numeral) Numeral {
	if c == 1 {
		return r.Neg(rowValue)
	}
	if r.Add(c, 1) == 0 { // c == -1 in the ring
		return rowValue
	}
	negC := r.Neg(c)
	if negC < c {
		return r.Div(rowValue, negC)
	}
	return r.Neg(r.Div(rowValue, c))
}
