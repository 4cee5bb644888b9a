package defi

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// The first two 48-byte outputs of the NIST PQC KAT generator, seeded
// with the entropy input 00 01 02 ... 2F (these are the "seed" values of
// count = 0 and count = 1 in the NIST PQC .rsp files).
var kat_drbg = []string{
	"061550234d158c5ec95595fe04ef7a25767f2e24cc2bc479d09d86dc9abcfde7056a8c266f9ef97ed08541dbd2e1ffa1",
	"d81c4d8d734fcbfbeade3d3f8a039faa2a2c9957e835ad55b22e75bf57bb556ac81adde6aeeb4a5a875c3bfcadfa958f",
}

func TestCtrDrbgKAT(t *testing.T) {
	var e [seed_bytes]byte
	for i := range e {
		e[i] = byte(i)
	}
	var d ctr_drbg
	d.init(&e)
	for j, s := range kat_drbg {
		ref, _ := hex.DecodeString(s)
		var out [seed_bytes]byte
		d.generate(out[:])
		if !bytes.Equal(out[:], ref) {
			t.Fatalf("ERR: DRBG output %d: %x\n", j, out[:])
		}
	}
}

func TestPrngDeterministic(t *testing.T) {
	var r1, r2 prng
	r1.seed([]byte("prng"))
	r2.seed([]byte("prng"))
	for i := 0; i < 3000; i++ {
		if r1.next_u8() != r2.next_u8() || r1.next_bit() != r2.next_bit() {
			t.Fatalf("ERR: prng is not deterministic\n")
		}
	}

	// Reseeding restarts the sequence.
	r1.seed([]byte("prng"))
	var r3 prng
	r3.seed([]byte("prng"))
	for i := 0; i < 100; i++ {
		if r1.next_u8() != r3.next_u8() {
			t.Fatalf("ERR: reseeded prng differs\n")
		}
	}

	// A 48-byte seed is used as is; the buffer contents are the DRBG
	// output.
	var e [seed_bytes]byte
	for i := range e {
		e[i] = byte(i)
	}
	var r4 prng
	r4.seed(e[:])
	ref, _ := hex.DecodeString(kat_drbg[0])
	for i := 0; i < len(ref); i++ {
		if r4.next_u8() != ref[i] {
			t.Fatalf("ERR: prng byte %d\n", i)
		}
	}
}

func TestPrngBits(t *testing.T) {
	var r1, r2 prng
	r1.seed([]byte("bits"))
	r2.seed([]byte("bits"))

	// Bits come from a cached byte, low bit first.
	b0 := r2.next_u8()
	for i := 0; i < 3; i++ {
		if r1.next_bit() != uint(b0>>i)&1 {
			t.Fatalf("ERR: bit %d\n", i)
		}
	}

	// next_u8() does not disturb the bit cursor.
	b1 := r2.next_u8()
	if r1.next_u8() != b1 {
		t.Fatalf("ERR: next_u8 after bits\n")
	}
	for i := 3; i < 8; i++ {
		if r1.next_sign() != 1-2*int64((b0>>i)&1) {
			t.Fatalf("ERR: sign from bit %d\n", i)
		}
	}

	// The ninth bit needs a fresh byte.
	b2 := r2.next_u8()
	if r1.next_bit() != uint(b2)&1 {
		t.Fatalf("ERR: bit 8\n")
	}
}

func TestPrngRange(t *testing.T) {
	var r prng
	r.seed([]byte("range"))
	var hist [17]int
	for i := 0; i < 20000; i++ {
		v := r.next_in_range(b21_range, b21_half)
		if v == 0 || v < -b21_half || v > b21_half {
			t.Fatalf("ERR: next_in_range -> %d\n", v)
		}
		hist[v+b21_half]++
	}
	for v, n := range hist {
		if v == b21_half {
			continue
		}
		if n == 0 {
			t.Fatalf("ERR: value %d never produced\n", v-b21_half)
		}
	}
}

func TestPrngRefill(t *testing.T) {
	// Drain more than one buffer, and check that the stream matches
	// two consecutive DRBG requests.
	var r prng
	r.seed([]byte("refill"))
	out := make([]byte, 2*rng_buffer_size)
	for i := range out {
		out[i] = r.next_u8()
	}
	r.seed([]byte("refill"))
	d := r.drbg
	ref := make([]byte, 2*rng_buffer_size)
	d.generate(ref[:rng_buffer_size])
	d.generate(ref[rng_buffer_size:])
	if !bytes.Equal(out, ref) {
		t.Fatalf("ERR: buffer refill\n")
	}
}

func TestPrngClear(t *testing.T) {
	var r prng
	r.seed([]byte("clear"))
	r.next_bit()
	r.next_u8()
	r.clear()
	for i := range r.buf {
		if r.buf[i] != 0 {
			t.Fatalf("ERR: buffer not cleared\n")
		}
	}
	if r.cur != 0 || r.drbg.key != [32]byte{} || r.drbg.v != [16]byte{} {
		t.Fatalf("ERR: state not cleared\n")
	}
}
