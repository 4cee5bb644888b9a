package defi

import (
	"fmt"
)

// Sign a message using a given secret key.
//
//	- skey is the secret key (SecretKeySize bytes)
//	- msg is the message to sign
//
// The output is the signed message: the SignatureSize-byte signature
// followed by a copy of msg. Signing is deterministic: signing the same
// message twice with the same key yields the same output. An error is
// returned if the secret key cannot be decoded, or (very improbably) if
// no acceptable signature was found within the attempt bound.
func Sign(skey []byte, msg []byte) ([]byte, error) {
	sm, _, err := sign_inner(skey, msg, max_sign_attempts)
	return sm, err
}

// SignDetached is similar to [Sign], except that only the signature (the
// first SignatureSize bytes of the signed message) is returned.
func SignDetached(skey []byte, msg []byte) ([]byte, error) {
	sm, _, err := sign_inner(skey, msg, max_sign_attempts)
	if err != nil {
		return nil, err
	}
	return sm[:SignatureSize:SignatureSize], nil
}

// SignCounted is similar to [Sign], but it also returns the number of
// candidates that the rejection sampling loop generated (at least 1).
// This is meant for analysis and benchmarks.
func SignCounted(skey []byte, msg []byte) ([]byte, int, error) {
	return sign_inner(skey, msg, max_sign_attempts)
}

// SignatureCoefficients decodes a signature (or signed message) into the
// S*M coefficients of its vector y, element by element. This is meant
// for analysis of the signature distribution.
func SignatureCoefficients(sig []byte) ([]int64, error) {
	y, _, err := decode_signed(sig)
	if err != nil {
		return nil, err
	}
	c := make([]int64, 0, S*M)
	for i := 0; i < S; i++ {
		for k := 0; k < M; k++ {
			c = append(c, i128_to_i64(y[i][k]))
		}
	}
	return c, nil
}

// Inner signature function; the rejection loop generates at most
// max_attempts candidates.
func sign_inner(skey []byte, msg []byte, max_attempts int) ([]byte, int, error) {
	if len(skey) != SecretKeySize {
		return nil, 0, fmt.Errorf("%w: length %d (expected %d)",
			ErrInvalidSecretKey, len(skey), SecretKeySize)
	}

	// B21 is derived from the key seed.
	rng := new(prng)
	defer rng.clear()
	B21 := expand_b21(rng, skey[:seed_bytes])

	B22inv, err := decode_secret_inverse(skey)
	if err != nil {
		return nil, 0, err
	}

	// H = hash of the message; h = H[0][0]*H[1][1]; B21h = B21*h
	H := hash_to_matrix(msg)
	var h poly
	poly_mul(H.at(0, 0), H.at(1, 1), &h, true)
	B21h := new_rvec(S)
	for i := 0; i < S; i++ {
		poly_mul(&B21[i], &h, &B21h[i], true)
	}
	rvec_zero(B21)

	// Reseed from the message and the key.
	seed := signing_seed(skey, msg)
	rng.seed(seed[:])
	for i := range seed {
		seed[i] = 0
	}

	y, attempts, err := sign_core(rng, H, B21h, B22inv, max_attempts)
	if err != nil {
		return nil, attempts, err
	}
	return encode_signed(msg, y), attempts, nil
}
