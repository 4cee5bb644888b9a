package defi

import (
	"math/bits"
)

// Signed 128-bit integers (two's complement), used for all ring
// coefficients. Go has no native 128-bit type, so the usual operations
// are implemented over a pair of 64-bit words. Operations that would
// leave the [-2^127, 2^127-1] range do not wrap around: they panic with
// ErrOverflow, which the public entry points recover.
type i128 struct {
	lo uint64
	hi uint64
}

// Make an i128 from a 64-bit signed integer.
func i128_of(x int64) i128 {
	return i128{lo: uint64(x), hi: uint64(x >> 63)}
}

// Return true if x is zero.
func i128_is_zero(x i128) bool {
	return (x.lo | x.hi) == 0
}

// Return true if x is negative.
func i128_is_neg(x i128) bool {
	return int64(x.hi) < 0
}

// Negation. The value -2^127 cannot be negated.
func i128_neg(x i128) i128 {
	if x.hi == 0x8000000000000000 && x.lo == 0 {
		panic(ErrOverflow)
	}
	lo, c := bits.Sub64(0, x.lo, 0)
	hi, _ := bits.Sub64(0, x.hi, c)
	return i128{lo: lo, hi: hi}
}

// Addition.
func i128_add(x i128, y i128) i128 {
	lo, c := bits.Add64(x.lo, y.lo, 0)
	hi, _ := bits.Add64(x.hi, y.hi, c)
	// Overflow iff both operands have the same sign and the result
	// has the other sign.
	if (((^(x.hi ^ y.hi)) & (x.hi ^ hi)) >> 63) != 0 {
		panic(ErrOverflow)
	}
	return i128{lo: lo, hi: hi}
}

// Subtraction.
func i128_sub(x i128, y i128) i128 {
	lo, b := bits.Sub64(x.lo, y.lo, 0)
	hi, _ := bits.Sub64(x.hi, y.hi, b)
	// Overflow iff the operands have distinct signs and the result
	// does not have the sign of x.
	if (((x.hi ^ y.hi) & (x.hi ^ hi)) >> 63) != 0 {
		panic(ErrOverflow)
	}
	return i128{lo: lo, hi: hi}
}

// Absolute value as an unsigned 128-bit pair (hi, lo). This works for
// all inputs, including -2^127.
func i128_abs_u(x i128) (uint64, uint64) {
	if !i128_is_neg(x) {
		return x.hi, x.lo
	}
	lo, c := bits.Sub64(0, x.lo, 0)
	hi, _ := bits.Sub64(0, x.hi, c)
	return hi, lo
}

// Multiplication.
func i128_mul(x i128, y i128) i128 {
	neg := i128_is_neg(x) != i128_is_neg(y)
	xh, xl := i128_abs_u(x)
	yh, yl := i128_abs_u(y)

	// Unsigned product; at least one operand must fit in 64 bits.
	if xh != 0 && yh != 0 {
		panic(ErrOverflow)
	}
	if xh != 0 {
		xh, xl, yh, yl = yh, yl, xh, xl
	}
	// Now xh == 0: (yh*2^64 + yl)*xl
	h0, l0 := bits.Mul64(yl, xl)
	h1, l1 := bits.Mul64(yh, xl)
	if h1 != 0 {
		panic(ErrOverflow)
	}
	hi, c := bits.Add64(h0, l1, 0)
	if c != 0 {
		panic(ErrOverflow)
	}

	// Magnitude must be at most 2^127-1 (positive) or 2^127 (negative).
	if (hi >> 63) != 0 {
		if !neg || hi != 0x8000000000000000 || l0 != 0 {
			panic(ErrOverflow)
		}
		return i128{lo: 0, hi: 0x8000000000000000}
	}
	r := i128{lo: l0, hi: hi}
	if neg {
		r = i128_neg(r)
	}
	return r
}

// Return true if abs(x) < b. The bound b must be positive.
func i128_abs_lt(x i128, b uint64) bool {
	hi, lo := i128_abs_u(x)
	return hi == 0 && lo < b
}

// Convert to int64; the value MUST be in the int64 range.
func i128_to_i64(x i128) int64 {
	return int64(x.lo)
}
