package defi

// Maximum number of candidates generated by the rejection sampling loop
// before signing gives up.
const max_sign_attempts = 1 << 16

// Return true if all coefficients of y are lower than y_bound in
// absolute value.
func valid_y(y rvec) bool {
	return rvec_is_bounded(y, uint64(y_bound))
}

// Internal signing function. The generator has been seeded with the
// signing seed; H is the message hash matrix, B21h = B21*H[0][0]*H[1][1],
// and B22inv is the decoded secret matrix. For each attempt:
//
//	V = A1*H*A2     (A1, A2 random unimodular)
//	T[0] = V00*V01 + V10*V11 - B21h[0]
//	T[1] = V00*V01 - V10*V11 - B21h[1]
//	T[2] = V00*V11 + V01*V10 - B21h[2]
//	y = B22inv*T
//
// and y is accepted if it is within its bound. A candidate whose
// computation overflows the 128-bit coefficients is rejected as well.
// At most max_attempts candidates are generated. The number of generated
// candidates is returned along with y.
func sign_core(rng *prng, H *rmat, B21h rvec, B22inv *rmat, max_attempts int) (rvec, int, error) {
	us := new_unimodular_sampler(rng)
	A1 := new_rmat(2, 2)
	A2 := new_rmat(2, 2)
	HA2 := new_rmat(2, 2)
	V := new_rmat(2, 2)
	T := new_rvec(S)
	y := new_rvec(S)
	var v1v2, v1v4, v2v3, v3v4 poly

	candidate := func() {
		us.sample(A1)
		us.sample(A2)
		rmat_mul(H, A2, HA2)
		rmat_mul(A1, HA2, V)

		poly_mul(V.at(0, 0), V.at(0, 1), &v1v2, true)
		poly_mul(V.at(0, 0), V.at(1, 1), &v1v4, true)
		poly_mul(V.at(0, 1), V.at(1, 0), &v2v3, true)
		poly_mul(V.at(1, 0), V.at(1, 1), &v3v4, true)

		poly_add(&T[0], &v1v2, &v3v4)
		poly_sub(&T[0], &T[0], &B21h[0])
		poly_sub(&T[1], &v1v2, &v3v4)
		poly_sub(&T[1], &T[1], &B21h[1])
		poly_add(&T[2], &v1v4, &v2v3)
		poly_sub(&T[2], &T[2], &B21h[2])

		rmat_mul_vec(B22inv, T, y)
	}

	for attempts := 1; attempts <= max_attempts; attempts++ {
		if no_overflow(candidate) && valid_y(y) {
			rmat_zero(A1)
			rmat_zero(A2)
			rmat_zero(V)
			rvec_zero(T)
			return y, attempts, nil
		}
	}
	return nil, max_attempts, ErrSigningExhausted
}
