package defi

import (
	"crypto/aes"
	"crypto/cipher"

	sha3 "golang.org/x/crypto/sha3"
)

// AES-256 CTR_DRBG (NIST SP 800-90A, no derivation function, no
// personalization string, no prediction resistance), with the request
// behaviour of the NIST PQC "randombytes()" function: each request
// produces counter-mode blocks, then the state is updated. This is the
// byte source of the signing generator; using the same construction
// as the reference code keeps the derivation of B21 from the key seed
// compatible with externally generated keys.
type ctr_drbg struct {
	key [32]byte
	v   [16]byte
	blk cipher.Block
}

// Initialize the DRBG with a 48-byte entropy input.
func (d *ctr_drbg) init(entropy *[seed_bytes]byte) {
	d.key = [32]byte{}
	d.v = [16]byte{}
	d.rekey()
	d.update(entropy)
}

func (d *ctr_drbg) rekey() {
	blk, err := aes.NewCipher(d.key[:])
	if err != nil {
		// Cannot happen with a 32-byte key.
		panic(err)
	}
	d.blk = blk
}

// Increment V as a 128-bit big-endian integer.
func (d *ctr_drbg) incr_v() {
	for j := 15; j >= 0; j-- {
		d.v[j]++
		if d.v[j] != 0 {
			break
		}
	}
}

// CTR_DRBG_Update: produce 48 bytes from the current state, XOR them
// with the provided data (if any), and use the result as the new
// (key, V).
func (d *ctr_drbg) update(provided *[seed_bytes]byte) {
	var tmp [seed_bytes]byte
	for i := 0; i < 3; i++ {
		d.incr_v()
		d.blk.Encrypt(tmp[i<<4:], d.v[:])
	}
	if provided != nil {
		for i := 0; i < seed_bytes; i++ {
			tmp[i] ^= provided[i]
		}
	}
	copy(d.key[:], tmp[:32])
	copy(d.v[:], tmp[32:])
	d.rekey()
	for i := range tmp {
		tmp[i] = 0
	}
}

// Fill dst with pseudorandom bytes (one DRBG request).
func (d *ctr_drbg) generate(dst []byte) {
	var blk [16]byte
	for len(dst) > 0 {
		d.incr_v()
		d.blk.Encrypt(blk[:], d.v[:])
		n := copy(dst, blk[:])
		dst = dst[n:]
	}
	d.update(nil)
}

// Wipe the DRBG state.
func (d *ctr_drbg) clear() {
	d.key = [32]byte{}
	d.v = [16]byte{}
	d.blk = nil
}

// Size of the generator buffer (bytes obtained per DRBG request).
const rng_buffer_size = 1024

// Deterministic random generator used by signing (and by the derivation
// of B21 from the key seed). Bytes are taken sequentially from a buffer
// that is refilled from the DRBG. Bits are extracted from a separately
// cached byte: next_bit() consumes one buffer byte every 8 bits, while
// next_u8() always takes a fresh buffer byte and leaves the bit cursor
// untouched.
//
// A prng instance is not safe for concurrent use; each signing call uses
// its own instance.
type prng struct {
	drbg    ctr_drbg
	buf     [rng_buffer_size]byte
	ptr     int
	cur     uint8
	bit_ptr uint
}

// Seed (or reseed) the generator. A 48-byte seed is used directly as the
// DRBG entropy input; other lengths are first condensed to 48 bytes
// with SHAKE256. The next request triggers a buffer refill and a new
// byte fetch for bit extraction.
func (r *prng) seed(seed []byte) {
	var e [seed_bytes]byte
	if len(seed) == seed_bytes {
		copy(e[:], seed)
	} else {
		sh := sha3.NewShake256()
		sh.Write(seed)
		sh.Read(e[:])
	}
	r.drbg.init(&e)
	r.ptr = len(r.buf)
	r.bit_ptr = 8
	for i := range e {
		e[i] = 0
	}
}

func (r *prng) refill() {
	r.drbg.generate(r.buf[:])
	r.ptr = 0
}

// Get the next byte.
func (r *prng) next_u8() uint8 {
	if r.ptr == len(r.buf) {
		r.refill()
	}
	x := r.buf[r.ptr]
	r.ptr++
	return x
}

// Get the next bit (0 or 1).
func (r *prng) next_bit() uint {
	if r.bit_ptr == 8 {
		r.cur = r.next_u8()
		r.bit_ptr = 0
	}
	b := uint(r.cur>>r.bit_ptr) & 1
	r.bit_ptr++
	return b
}

// Get a random sign: +1 for a zero bit, -1 for a one bit.
func (r *prng) next_sign() int64 {
	return 1 - 2*int64(r.next_bit())
}

// Get a value in [-half, +half] \ {0}. The range width MUST be a power of
// two, at most 256, and half = width/2. A byte is masked to [0, width-1],
// then values in [half, width-1] are shifted up by one to skip zero.
func (r *prng) next_in_range(width int, half int) int64 {
	a := int(r.next_u8()) & (width - 1)
	adj := 0
	if a >= half {
		adj = 1
	}
	return int64(a - half + adj)
}

// Clear the buffer, the cached byte, and the DRBG state, so that no
// secret-derived randomness remains after use.
func (r *prng) clear() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.cur = 0
	r.ptr = len(r.buf)
	r.bit_ptr = 8
	r.drbg.clear()
}
