package defi

// Ring engine: polynomials of degree less than M with integer coefficients,
// modulo X^M+X+1. Coefficients are never reduced modulo an integer; they
// are exact signed 128-bit values (see i128.go).

// A ring element: coefficient k is the coefficient of X^k.
type poly [M]i128

// A ring vector.
type rvec []poly

// A ring matrix. Elements are stored row by row in a single slice, so
// that a matrix is allocated (and released) as one object.
type rmat struct {
	rows int
	cols int
	e    []poly
}

// Allocate a new ring vector of length n (all elements are zero).
func new_rvec(n int) rvec {
	return make(rvec, n)
}

// Allocate a new rows x cols ring matrix (all elements are zero).
func new_rmat(rows int, cols int) *rmat {
	return &rmat{rows: rows, cols: cols, e: make([]poly, rows*cols)}
}

// Get a pointer to element (i,j).
func (a *rmat) at(i int, j int) *poly {
	return &a.e[i*a.cols+j]
}

// Set a ring element to a small constant.
func poly_set_const(a *poly, c int64) {
	*a = poly{}
	a[0] = i128_of(c)
}

// Return true if all coefficients are zero.
func poly_is_zero(a *poly) bool {
	for k := 0; k < M; k++ {
		if !i128_is_zero(a[k]) {
			return false
		}
	}
	return true
}

// d <- a + b
func poly_add(d *poly, a *poly, b *poly) {
	for k := 0; k < M; k++ {
		d[k] = i128_add(a[k], b[k])
	}
}

// d <- a - b
func poly_sub(d *poly, a *poly, b *poly) {
	for k := 0; k < M; k++ {
		d[k] = i128_sub(a[k], b[k])
	}
}

// Ring product of a and b. If overwrite is true, then d is first set to
// zero; otherwise, the product is added to the current contents of d.
// d MUST NOT overlap with a or b.
//
// Since both operands have degree at most M-1, monomials of the product
// have degree at most 2*M-2. For i+j >= M, we use X^M = -X-1, so that
// X^(i+j) = -X^(i+j-M+1) - X^(i+j-M), and i+j-M+1 <= M-1.
func poly_mul(a *poly, b *poly, d *poly, overwrite bool) {
	if overwrite {
		*d = poly{}
	}
	for i := 0; i < M; i++ {
		if i128_is_zero(a[i]) {
			continue
		}
		for j := 0; j < M; j++ {
			if i128_is_zero(b[j]) {
				continue
			}
			v := i128_mul(a[i], b[j])
			if i+j < M {
				d[i+j] = i128_add(d[i+j], v)
			} else {
				k := i + j - M
				d[k] = i128_sub(d[k], v)
				d[k+1] = i128_sub(d[k+1], v)
			}
		}
	}
}

// Return true if abs(c) < b for all coefficients c of all elements of v.
func rvec_is_bounded(v rvec, b uint64) bool {
	for i := range v {
		for k := 0; k < M; k++ {
			if !i128_abs_lt(v[i][k], b) {
				return false
			}
		}
	}
	return true
}

// Set all elements of a ring vector to zero.
func rvec_zero(v rvec) {
	for i := range v {
		v[i] = poly{}
	}
}

// Set all elements of a ring matrix to zero.
func rmat_zero(a *rmat) {
	for i := range a.e {
		a.e[i] = poly{}
	}
}

// Set a square ring matrix to the identity.
func rmat_identity(a *rmat) {
	rmat_zero(a)
	for i := 0; i < a.rows; i++ {
		a.at(i, i)[0] = i128_of(1)
	}
}

// Copy src into dst (both matrices must have the same dimensions).
func rmat_copy(dst *rmat, src *rmat) {
	copy(dst.e, src.e)
}

// dst <- transpose of src (dst has dimensions src.cols x src.rows).
func rmat_transpose(dst *rmat, src *rmat) {
	for i := 0; i < src.rows; i++ {
		for j := 0; j < src.cols; j++ {
			*dst.at(j, i) = *src.at(i, j)
		}
	}
}

// c <- a*b (matrix times column vector). len(b) = a.cols and
// len(c) = a.rows; c MUST NOT overlap with b.
func rmat_mul_vec(a *rmat, b rvec, c rvec) {
	rvec_zero(c)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			poly_mul(a.at(i, j), &b[j], &c[i], false)
		}
	}
}

// c <- a*b (row vector times matrix). len(a) = b.rows and
// len(c) = b.cols; c MUST NOT overlap with a.
func rvec_mul_mat(a rvec, b *rmat, c rvec) {
	rvec_zero(c)
	for j := 0; j < b.cols; j++ {
		for i := 0; i < b.rows; i++ {
			poly_mul(&a[i], b.at(i, j), &c[j], false)
		}
	}
}

// c <- a*b (matrix product). c MUST be distinct from a and b.
func rmat_mul(a *rmat, b *rmat, c *rmat) {
	rmat_zero(c)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			d := c.at(i, j)
			for k := 0; k < a.cols; k++ {
				poly_mul(a.at(i, k), b.at(k, j), d, false)
			}
		}
	}
}

// Return sum_i a[i]*b[i] (a ring element).
func rvec_dot(a rvec, b rvec) poly {
	var d poly
	for i := range a {
		poly_mul(&a[i], &b[i], &d, false)
	}
	return d
}

// Run f, converting an ErrOverflow panic into a false return value.
// Other panics are propagated.
func no_overflow(f func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r != ErrOverflow {
				panic(r)
			}
			ok = false
		}
	}()
	f()
	return true
}
