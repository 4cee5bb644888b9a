package defi

import (
	"crypto/rand"
	"io"

	sha3 "golang.org/x/crypto/sha3"
)

// Maximum number of key pair candidates tried by KeyGenFromSeed.
const max_keygen_attempts = 256

// Generate a new key pair, using the provided random source (nil to use
// the OS RNG). Output is the encoded secret key (SecretKeySize bytes) and
// the encoded public key (PublicKeySize bytes).
func KeyGen(rng io.Reader) (skey []byte, pkey []byte, err error) {
	if rng == nil {
		rng = rand.Reader
	}
	var seed [SeedSize]byte
	if _, err = io.ReadFull(rng, seed[:]); err != nil {
		return nil, nil, err
	}
	return KeyGenFromSeed(seed[:])
}

// Generate a key pair deterministically from a seed of SeedSize bytes.
//
// The secret key consists of a 48-byte seed (from which the secret vector
// B21 is derived, as in signing) and the matrix B22inv. The public key is
// the symmetric matrix C = B^t*F*B with:
//
//	B = [[ 1,   0   ],
//	     [ B21, B22 ]]
//	F = f*diag(-1, -1, 1, 1)
//
// where B22 is a random unimodular S x S matrix (B22inv is its exact
// inverse) and f is a random monomial +/-X^k. Candidates whose
// coefficients do not fit the encodings are discarded; the first
// candidate uses the provided seed directly as the secret-key seed,
// further ones use seeds derived from it with SHAKE256.
func KeyGenFromSeed(seed []byte) (skey []byte, pkey []byte, err error) {
	if len(seed) != SeedSize {
		return nil, nil, ErrInvalidSeed
	}
	skey = make([]byte, SecretKeySize)
	pkey = make([]byte, PublicKeySize)
	for attempt := 0; attempt < max_keygen_attempts; attempt++ {
		sk_seed := keygen_seed(seed, attempt)
		if keygen_inner(sk_seed[:], skey, pkey) {
			return skey, pkey, nil
		}
	}
	return nil, nil, ErrKeyGenExhausted
}

// Get the secret-key seed for a given attempt.
func keygen_seed(seed []byte, attempt int) [seed_bytes]byte {
	var s [seed_bytes]byte
	if attempt == 0 {
		copy(s[:], seed)
		return s
	}
	var cbuf [4]byte
	cbuf[0] = uint8(attempt)
	cbuf[1] = uint8(attempt >> 8)
	cbuf[2] = uint8(attempt >> 16)
	cbuf[3] = uint8(attempt >> 24)
	sh := sha3.NewShake256()
	sh.Write([]byte("DEFIv2 keygen"))
	sh.Write(seed)
	sh.Write(cbuf[:])
	sh.Read(s[:])
	return s
}

// Try to build a key pair from the provided secret-key seed. On success,
// the keys are written into skey and pkey, and true is returned.
func keygen_inner(sk_seed []byte, skey []byte, pkey []byte) bool {
	rng := new(prng)
	B21 := expand_b21(rng, sk_seed)
	rng.clear()

	pc := newSHAKE256x4(sk_seed)
	B22, B22inv := sample_secret_block(pc)
	for i := range B22.e {
		for k := 0; k < M; k++ {
			if !i128_abs_lt(B22.e[i][k], b22_bound) {
				return false
			}
		}
	}

	// f = +/-X^k
	var f poly
	f[pc.next_below(M)] = i128_of(pc.next_sign())

	var C *rmat
	if !no_overflow(func() { C = public_matrix(B21, B22, &f) }) {
		return false
	}
	return encode_public(C, pkey) && encode_secret(sk_seed, B22inv, skey)
}

// Compute C = B^t*F*B, with B = [[1, 0], [B21, B22]] and
// F = f*diag(-1, -1, 1, 1).
func public_matrix(B21 rvec, B22 *rmat, f *poly) *rmat {
	B := new_rmat(N, N)
	poly_set_const(B.at(0, 0), 1)
	for i := 0; i < S; i++ {
		*B.at(R+i, 0) = B21[i]
		for j := 0; j < S; j++ {
			*B.at(R+i, R+j) = *B22.at(i, j)
		}
	}

	// FB = F*B (F is diagonal)
	FB := new_rmat(N, N)
	for i := 0; i < N; i++ {
		var fi poly
		if i < 2 {
			poly_sub(&fi, &fi, f)
		} else {
			fi = *f
		}
		for j := 0; j < N; j++ {
			poly_mul(&fi, B.at(i, j), FB.at(i, j), true)
		}
	}

	Bt := new_rmat(N, N)
	rmat_transpose(Bt, B)
	C := new_rmat(N, N)
	rmat_mul(Bt, FB, C)
	return C
}

// Sample the secret block B22 (unimodular) along with its inverse. B22
// starts as a random signed permutation matrix P (inverse: P^t), then it
// is multiplied on the right by kb elementary matrices E = I + c*e_ij
// (i != j, c = +/-X^k), whose inverses are I - c*e_ij.
func sample_secret_block(pc *shake256x4) (*rmat, *rmat) {
	B22 := new_rmat(S, S)
	B22inv := new_rmat(S, S)

	var perm [S]int
	for i := 0; i < S; i++ {
		perm[i] = i
	}
	for i := S - 1; i > 0; i-- {
		j := pc.next_below(uint32(i + 1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i < S; i++ {
		s := pc.next_sign()
		poly_set_const(B22.at(i, perm[i]), s)
		poly_set_const(B22inv.at(perm[i], i), s)
	}

	E := new_rmat(S, S)
	Einv := new_rmat(S, S)
	tmp := new_rmat(S, S)
	for r := 0; r < kb; r++ {
		i := pc.next_below(S)
		j := pc.next_below(S - 1)
		if j >= i {
			j++
		}
		k := pc.next_below(M)
		s := pc.next_sign()

		rmat_identity(E)
		rmat_identity(Einv)
		E.at(i, j)[k] = i128_of(s)
		Einv.at(i, j)[k] = i128_of(-s)

		rmat_copy(tmp, B22)
		rmat_mul(tmp, E, B22)
		rmat_copy(tmp, B22inv)
		rmat_mul(Einv, tmp, B22inv)
	}
	return B22, B22inv
}
