package defi

// Open verifies a signed message and recovers the message.
//
//	- pkey is the public key (PublicKeySize bytes)
//	- sm is the signed message (signature followed by the message)
//
// If the public key or the signed message cannot be decoded, then an
// error is returned (ErrInvalidPublicKey or ErrInvalidSignedMessage).
// Otherwise, err is nil and ok tells whether the signature is valid;
// the message is returned only if ok is true.
func Open(pkey []byte, sm []byte) (msg []byte, ok bool, err error) {
	C, err := decode_public(pkey)
	if err != nil {
		return nil, false, err
	}
	y, m, err := decode_signed(sm)
	if err != nil {
		return nil, false, err
	}
	if !verify_core(C, y, m) {
		return nil, false, nil
	}
	return m, true, nil
}

// Verify a detached signature (as produced by [SignDetached]) on a
// message. Returned value is true for a valid signature, false
// otherwise (including when the key or signature cannot be decoded).
func Verify(pkey []byte, msg []byte, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	sm := make([]byte, SignatureSize+len(msg))
	copy(sm, sig)
	copy(sm[SignatureSize:], msg)
	_, ok, err := Open(pkey, sm)
	return err == nil && ok
}

// Core verification: with H the hash matrix of the message,
//
//	z = (H00*H11 - H01*H10, y[0], ..., y[S-1])
//
// and the signature is valid if z^t*C*z = 0 in the ring. A computation
// that overflows the 128-bit coefficients means that the signature is
// invalid.
func verify_core(C *rmat, y rvec, msg []byte) bool {
	if !valid_y(y) {
		return false
	}
	H := hash_to_matrix(msg)

	var zCz poly
	ok := no_overflow(func() {
		var v1v4, v2v3 poly
		poly_mul(H.at(0, 0), H.at(1, 1), &v1v4, true)
		poly_mul(H.at(0, 1), H.at(1, 0), &v2v3, true)

		z := new_rvec(N)
		poly_sub(&z[0], &v1v4, &v2v3)
		copy(z[R:], y)

		Cz := new_rvec(N)
		rmat_mul_vec(C, z, Cz)
		zCz = rvec_dot(z, Cz)
	})
	return ok && poly_is_zero(&zCz)
}
