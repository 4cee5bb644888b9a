package defi

import (
	"testing"

	sha3 "golang.org/x/crypto/sha3"
)

func TestSizes(t *testing.T) {
	if PublicKeySize != 515 {
		t.Fatalf("ERR: PublicKeySize = %d (exp: 515)\n", PublicKeySize)
	}
	if SecretKeySize != 426 {
		t.Fatalf("ERR: SecretKeySize = %d (exp: 426)\n", SecretKeySize)
	}
	if SignatureSize != 525 {
		t.Fatalf("ERR: SignatureSize = %d (exp: 525)\n", SignatureSize)
	}
	if hash_bytes != 35 || hash_bits_coef != 5 {
		t.Fatalf("ERR: hash_bytes = %d, hash_bits_coef = %d\n",
			hash_bytes, hash_bits_coef)
	}
}

func TestHashToMatrix(t *testing.T) {
	for i := 0; i < 200; i++ {
		msg := []byte{byte(i), byte(i >> 8), 0x55}
		H := hash_to_matrix(msg)
		if !poly_is_zero(H.at(0, 1)) || !poly_is_zero(H.at(1, 0)) {
			t.Fatalf("ERR: non-zero off-diagonal hash element\n")
		}
		for j := 0; j < 2; j++ {
			for k := 0; k < M; k++ {
				c := i128_to_i64(H.at(j, j)[k])
				if c < -16 || c > 15 {
					t.Fatalf("ERR: hash coefficient out of range: %d\n", c)
				}
			}
		}
	}

	// First coefficient is the low 5 bits of the first digest byte,
	// minus 16.
	var d [hash_bytes]byte
	sh := sha3.NewShake256()
	sh.Write([]byte("abc"))
	sh.Read(d[:])
	H := hash_to_matrix([]byte("abc"))
	if i128_to_i64(H.at(0, 0)[0]) != int64(d[0]&0x1F)-16 {
		t.Fatalf("ERR: wrong first hash coefficient\n")
	}
	if i128_to_i64(H.at(1, 1)[M-1]) != int64(d[hash_bytes-1]>>3)-16 {
		t.Fatalf("ERR: wrong last hash coefficient\n")
	}
}

func TestSigningSeed(t *testing.T) {
	skey := make([]byte, SecretKeySize)
	for i := range skey {
		skey[i] = byte(i * 7)
	}
	msg := []byte("seed")
	var d [seed_bytes]byte
	sh := sha3.NewShake256()
	sh.Write(msg)
	sh.Read(d[:])
	s := signing_seed(skey, msg)
	for i := 0; i < seed_bytes; i++ {
		if s[i] != d[i]+skey[i] {
			t.Fatalf("ERR: signing seed byte %d\n", i)
		}
	}
}

func TestExpandB21(t *testing.T) {
	seed := make([]byte, seed_bytes)
	rng := new(prng)
	B21 := expand_b21(rng, seed)
	B21b := expand_b21(rng, seed)
	for i := 0; i < S; i++ {
		for k := 0; k < M; k++ {
			c := i128_to_i64(B21[i][k])
			if c == 0 || c < -b21_half || c > b21_half {
				t.Fatalf("ERR: B21 coefficient out of range: %d\n", c)
			}
			if B21b[i][k] != B21[i][k] {
				t.Fatalf("ERR: B21 expansion is not deterministic\n")
			}
		}
	}
}

func TestSHAKE256x4(t *testing.T) {
	pc := newSHAKE256x4([]byte("shake256x4"))
	var hist [5]int
	for i := 0; i < 10000; i++ {
		v := pc.next_below(5)
		if v < 0 || v >= 5 {
			t.Fatalf("ERR: next_below(5) -> %d\n", v)
		}
		hist[v]++
		s := pc.next_sign()
		if s != 1 && s != -1 {
			t.Fatalf("ERR: next_sign -> %d\n", s)
		}
	}
	for v, n := range hist {
		if n < 1500 || n > 2500 {
			t.Fatalf("ERR: next_below(5) biased: %d -> %d\n", v, n)
		}
	}

	// Same seed, same output.
	p1 := newSHAKE256x4([]byte("x"))
	p2 := newSHAKE256x4([]byte("x"))
	for i := 0; i < 1000; i++ {
		if p1.next_u16() != p2.next_u16() {
			t.Fatalf("ERR: SHAKE256x4 is not deterministic\n")
		}
	}
}
