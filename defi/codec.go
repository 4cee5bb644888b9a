package defi

// Bit-level encoding. All packed quantities use little-endian bit order:
// bit k of a value is emitted before bit k+1, and the first emitted bit
// of a byte is its least significant bit. A signed coefficient x with
// bound g is stored as the unsigned integer x+g over the field width.

// A sequential bit writer over a byte slice.
type bit_writer struct {
	dst     []byte
	j       int
	acc     uint64
	acc_len uint
}

func new_bit_writer(dst []byte) *bit_writer {
	return &bit_writer{dst: dst}
}

// Append the low nbits bits of v (nbits <= 56).
func (w *bit_writer) write(v uint64, nbits uint) {
	w.acc |= (v & ((uint64(1) << nbits) - 1)) << w.acc_len
	w.acc_len += nbits
	for w.acc_len >= 8 {
		w.dst[w.j] = uint8(w.acc)
		w.j++
		w.acc >>= 8
		w.acc_len -= 8
	}
}

// Append a signed coefficient x with bound g. False is returned (and
// nothing is written) if x+g is not in [0, 2^nbits-1].
func (w *bit_writer) write_centered(x i128, g int64, nbits uint) bool {
	if !i128_abs_lt(x, uint64(g)+1) {
		return false
	}
	u := i128_to_i64(x) + g
	if u < 0 || uint64(u) >= (uint64(1)<<nbits) {
		return false
	}
	w.write(uint64(u), nbits)
	return true
}

// Flush remaining bits (padded with zeros) and return the number of
// written bytes.
func (w *bit_writer) flush() int {
	if w.acc_len > 0 {
		w.dst[w.j] = uint8(w.acc)
		w.j++
		w.acc = 0
		w.acc_len = 0
	}
	return w.j
}

// A sequential bit reader over a byte slice. The caller is responsible
// for checking that the source is long enough.
type bit_reader struct {
	src     []byte
	i       int
	acc     uint64
	acc_len uint
}

func new_bit_reader(src []byte) *bit_reader {
	return &bit_reader{src: src}
}

// Read the next nbits bits (nbits <= 56) as an unsigned integer.
func (r *bit_reader) read(nbits uint) uint64 {
	for r.acc_len < nbits {
		r.acc |= uint64(r.src[r.i]) << r.acc_len
		r.i++
		r.acc_len += 8
	}
	v := r.acc & ((uint64(1) << nbits) - 1)
	r.acc >>= nbits
	r.acc_len -= nbits
	return v
}

// Read a signed coefficient with bound g.
func (r *bit_reader) read_centered(g int64, nbits uint) i128 {
	return i128_of(int64(r.read(nbits)) - g)
}

// Return true if the unused bits of the last read byte are all zero.
func (r *bit_reader) padding_ok() bool {
	return r.acc == 0
}

// Encode the public matrix C: C[0][0] (C1 band), then C[0][j] for
// j = 1..N-1 (C2 band), then C[i][j] for 1 <= i <= j <= N-1 (C3 band).
// Only the upper triangle is encoded. False is returned if a coefficient
// is out of range for its band.
func encode_public(C *rmat, dst []byte) bool {
	w := new_bit_writer(dst)
	for k := 0; k < M; k++ {
		if !w.write_centered(C.at(0, 0)[k], c1_bound, c1_bits) {
			return false
		}
	}
	for j := 1; j < N; j++ {
		for k := 0; k < M; k++ {
			if !w.write_centered(C.at(0, j)[k], c2_bound, c2_bits) {
				return false
			}
		}
	}
	for i := 1; i < N; i++ {
		for j := i; j < N; j++ {
			for k := 0; k < M; k++ {
				if !w.write_centered(C.at(i, j)[k], c3_bound, c3_bits) {
					return false
				}
			}
		}
	}
	w.flush()
	return true
}

// Decode the public key into the symmetric N x N matrix C. The key must
// have length exactly PublicKeySize, and the padding bits of the last
// byte must be zero.
func decode_public(pkey []byte) (*rmat, error) {
	if len(pkey) != PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	C := new_rmat(N, N)
	r := new_bit_reader(pkey)
	for k := 0; k < M; k++ {
		C.at(0, 0)[k] = r.read_centered(c1_bound, c1_bits)
	}
	for j := 1; j < N; j++ {
		for k := 0; k < M; k++ {
			C.at(0, j)[k] = r.read_centered(c2_bound, c2_bits)
		}
	}
	for i := 1; i < N; i++ {
		for j := i; j < N; j++ {
			for k := 0; k < M; k++ {
				C.at(i, j)[k] = r.read_centered(c3_bound, c3_bits)
			}
		}
	}
	if !r.padding_ok() {
		return nil, ErrInvalidPublicKey
	}
	for i := 1; i < N; i++ {
		for j := 0; j < i; j++ {
			*C.at(i, j) = *C.at(j, i)
		}
	}
	return C, nil
}

// Encode the secret key: 48-byte seed, then B22inv (S x S, row by row).
func encode_secret(seed []byte, B22inv *rmat, dst []byte) bool {
	copy(dst[:seed_bytes], seed)
	w := new_bit_writer(dst[seed_bytes:])
	for i := 0; i < S; i++ {
		for j := 0; j < S; j++ {
			for k := 0; k < M; k++ {
				if !w.write_centered(B22inv.at(i, j)[k],
					b22inv_bound, b22inv_bits) {
					return false
				}
			}
		}
	}
	w.flush()
	return true
}

// Decode the B22inv matrix from a secret key.
func decode_secret_inverse(skey []byte) (*rmat, error) {
	if len(skey) != SecretKeySize {
		return nil, ErrInvalidSecretKey
	}
	B22inv := new_rmat(S, S)
	r := new_bit_reader(skey[seed_bytes:])
	for i := 0; i < S; i++ {
		for j := 0; j < S; j++ {
			for k := 0; k < M; k++ {
				B22inv.at(i, j)[k] = r.read_centered(
					b22inv_bound, b22inv_bits)
			}
		}
	}
	if !r.padding_ok() {
		return nil, ErrInvalidSecretKey
	}
	return B22inv, nil
}

// Encode a signed message: the signature vector y (S elements, each
// coefficient over y_bits bits) followed by the raw message bytes. y
// MUST be within its bound (see valid_y()); otherwise, this function
// panics.
func encode_signed(msg []byte, y rvec) []byte {
	sm := make([]byte, SignatureSize+len(msg))
	w := new_bit_writer(sm[:SignatureSize])
	for i := 0; i < S; i++ {
		for k := 0; k < M; k++ {
			if !w.write_centered(y[i][k], y_bound, y_bits) {
				panic("defi: signature coefficient out of range")
			}
		}
	}
	w.flush()
	copy(sm[SignatureSize:], msg)
	return sm
}

// Decode a signed message into the signature vector y and the message.
// The returned message is a copy.
func decode_signed(sm []byte) (rvec, []byte, error) {
	if len(sm) < SignatureSize {
		return nil, nil, ErrInvalidSignedMessage
	}
	y := new_rvec(S)
	r := new_bit_reader(sm[:SignatureSize])
	for i := 0; i < S; i++ {
		for k := 0; k < M; k++ {
			y[i][k] = r.read_centered(y_bound, y_bits)
		}
	}
	msg := make([]byte, len(sm)-SignatureSize)
	copy(msg, sm[SignatureSize:])
	return y, msg, nil
}
