package defi

// Elementary 2x2 factors used to build random unimodular matrices. Each
// pattern {r0,c0, r1,c1, r2,c2} places a random monomial +/-X^k at
// position (r0,c0), and the constant 1 at positions (r1,c1) and (r2,c2).
// Patterns 0 and 1 are [[c,1],[1,0]] and [[0,1],[1,c]] (determinant -1);
// patterns 2 and 3 are [[1,c],[0,1]] and [[1,0],[c,1]] (determinant 1).
var elementary_patterns = [4][6]int{
	{0, 0, 0, 1, 1, 0},
	{1, 1, 0, 1, 1, 0},
	{0, 1, 0, 0, 1, 1},
	{1, 0, 0, 0, 1, 1},
}

// Sampler for random 2x2 unimodular ring matrices. The temporary
// matrices are allocated once and reused across samples.
type unimodular_sampler struct {
	rng *prng
	pe  *rmat
	tmp *rmat
}

func new_unimodular_sampler(rng *prng) *unimodular_sampler {
	return &unimodular_sampler{
		rng: rng,
		pe:  new_rmat(2, 2),
		tmp: new_rmat(2, 2),
	}
}

// Set A to the product of ka random elementary factors. Randomness
// consumption per factor: one byte for the pattern, one byte for the
// monomial degree, one bit for the sign.
func (us *unimodular_sampler) sample(A *rmat) {
	rmat_identity(A)
	for r := 0; r < ka; r++ {
		rmat_copy(us.tmp, A)

		p := &elementary_patterns[us.rng.next_u8()&3]
		k := int(us.rng.next_u8()) % M

		rmat_zero(us.pe)
		us.pe.at(p[0], p[1])[k] = i128_of(us.rng.next_sign())
		us.pe.at(p[2], p[3])[0] = i128_of(1)
		us.pe.at(p[4], p[5])[0] = i128_of(1)

		rmat_mul(us.tmp, us.pe, A)
	}
}
