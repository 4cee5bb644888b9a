package defi

import (
	"errors"

	sha3 "golang.org/x/crypto/sha3"
)

// Scheme parameters (DEFIv2-1).
const (
	M = 28     // ring degree
	N = R + S  // dimension of the public matrix C
	S = 3      // dimension of the secret block
	R = 1      // dimension of the hash block

	ka = 10 // elementary factors per random unimodular 2x2 matrix
	kb = 13 // elementary factors for the secret block B22

	b21_range = 16 // B21 coefficients are in [-8,+8] \ {0}
	b21_half  = 8

	c1_bound      = 2048
	c1_bits       = 12
	c2_bound      = 4096
	c2_bits       = 13
	c3_bound      = 32768
	c3_bits       = 16
	b22_bound     = 128
	b22inv_bound  = 2048
	b22inv_bits   = 12
	y_bound       = int64(1) << 49
	y_bits        = 50
	hash_security = 280 // bits of message digest

	hash_bytes     = hash_security / 8
	hash_bits_coef = hash_security / (N * M / 2)

	seed_bytes = 48
)

// Encoded sizes (in bytes).
const (
	// Size of an encoded public key.
	PublicKeySize = (c1_bits*M + c2_bits*M*S + c3_bits*M*(S*(S+1)/2) + 7) / 8

	// Size of an encoded secret key.
	SecretKeySize = seed_bytes + (b22inv_bits*S*S*M+7)/8

	// Size of a signature, i.e. of the fixed-size head of a signed message.
	SignatureSize = (y_bits*S*M + 7) / 8

	// Size of the seed accepted by KeyGenFromSeed.
	SeedSize = seed_bytes
)

var (
	// ErrInvalidPublicKey is returned when a public key cannot be decoded.
	ErrInvalidPublicKey = errors.New("defi: invalid public key")

	// ErrInvalidSecretKey is returned when a secret key cannot be decoded.
	ErrInvalidSecretKey = errors.New("defi: invalid secret key")

	// ErrInvalidSignedMessage is returned when a signed message is shorter
	// than SignatureSize.
	ErrInvalidSignedMessage = errors.New("defi: invalid signed message")

	// ErrSigningExhausted is returned when signing could not find an
	// acceptable signature within its attempt bound.
	ErrSigningExhausted = errors.New("defi: signature rejection sampling exhausted")

	// ErrInvalidSeed is returned when a key generation seed does not have
	// length SeedSize.
	ErrInvalidSeed = errors.New("defi: invalid key generation seed")

	// ErrKeyGenExhausted is returned when key generation could not find
	// an acceptable key pair within its attempt bound.
	ErrKeyGenExhausted = errors.New("defi: key generation exhausted")

	// ErrOverflow reports that a ring coefficient left the signed 128-bit
	// range.
	ErrOverflow = errors.New("defi: ring coefficient overflow")
)

// Hash a message into the 2x2 ring matrix H. Only the diagonal is set;
// each coefficient of H[0][0] and H[1][1] is a 5-bit chunk of the
// SHAKE256 digest (little-endian bit order), minus 16.
func hash_to_matrix(msg []byte) *rmat {
	var digest [hash_bytes]byte
	sh := sha3.NewShake256()
	sh.Write(msg)
	sh.Read(digest[:])

	H := new_rmat(2, 2)
	br := new_bit_reader(digest[:])
	sub := int64(1) << (hash_bits_coef - 1)
	for i := 0; i < 2; i++ {
		h := H.at(i, i)
		for k := 0; k < M; k++ {
			h[k] = i128_of(int64(br.read(hash_bits_coef)) - sub)
		}
	}
	return H
}

// Compute the seed used for the random matrices in signing:
// SHAKE256(msg) (48 bytes), added bytewise (modulo 256) to the first 48
// bytes of the secret key. Signing is thus deterministic for a given
// (key, message) pair.
func signing_seed(skey []byte, msg []byte) [seed_bytes]byte {
	var seed [seed_bytes]byte
	sh := sha3.NewShake256()
	sh.Write(msg)
	sh.Read(seed[:])
	for i := 0; i < seed_bytes; i++ {
		seed[i] += skey[i]
	}
	return seed
}

// Derive the secret vector B21 from the key seed. The generator is
// seeded with the 48-byte seed, and each coefficient is sampled in
// [-8,+8] \ {0}.
func expand_b21(rng *prng, seed []byte) rvec {
	rng.seed(seed)
	B21 := new_rvec(S)
	for i := 0; i < S; i++ {
		for k := 0; k < M; k++ {
			B21[i][k] = i128_of(rng.next_in_range(b21_range, b21_half))
		}
	}
	return B21
}

// A PRNG based on four parallel SHAKE256 instances, with interleaved
// outputs. Used by key generation.
type shake256x4 struct {
	state [4]sha3.ShakeHash
	buf   [4 * 136]byte
	ptr   int
}

// Create a new SHAKE256x4 instance, initialized with the provided seed.
func newSHAKE256x4(seed []byte) *shake256x4 {
	r := new(shake256x4)
	for i := 0; i < 4; i++ {
		var tmp [1]byte
		tmp[0] = byte(i)
		r.state[i] = sha3.NewShake256()
		r.state[i].Write(seed)
		r.state[i].Write(tmp[:])
	}
	r.ptr = len(r.buf)
	return r
}

// Get next byte from a SHAKE256x4 instance.
func (r *shake256x4) next_u8() uint8 {
	ptr := r.ptr
	if ptr == len(r.buf) {
		r.refill()
		ptr = 0
	}
	r.ptr = ptr + 1
	return r.buf[ptr]
}

// Get next 16-bit value from a SHAKE256x4 instance.
func (r *shake256x4) next_u16() uint16 {
	ptr := r.ptr
	if ptr >= (len(r.buf) - 1) {
		r.refill()
		ptr = 0
	}
	r.ptr = ptr + 2
	return uint16(r.buf[ptr]) + (uint16(r.buf[ptr+1]) << 8)
}

// Get a uniform integer in [0, n-1] (n <= 2^16), with rejection sampling
// on 16-bit values.
func (r *shake256x4) next_below(n uint32) int {
	lim := (uint32(65536) / n) * n
	for {
		x := uint32(r.next_u16())
		if x < lim {
			return int(x % n)
		}
	}
}

// Get a random sign (-1 or +1).
func (r *shake256x4) next_sign() int64 {
	return 1 - 2*int64(r.next_u8()&1)
}

// Refill a SHAKE256x4 instance.
func (r *shake256x4) refill() {
	var tmp [136]byte
	for i := 0; i < 4; i++ {
		r.state[i].Read(tmp[:])
		for j := 0; j < 17; j++ {
			u := (i << 3) + (j << 5)
			v := j << 3
			copy(r.buf[u:u+8], tmp[v:v+8])
		}
	}
	r.ptr = 0
}
