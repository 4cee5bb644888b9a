// This package implements the DEFIv2 signature algorithm.
//
// DEFIv2 is a post-quantum signature scheme that relies on algebraic
// relations in the polynomial quotient ring Z[X]/(X^28+X+1), rather
// than on number-theoretic assumptions. Coefficients are exact integers
// (there is no modulus); this implementation represents them as signed
// 128-bit values, and treats any computation that would exceed that range
// as a failure.
//
// A key pair consists of a secret key and a public key, both exchanged
// in a fixed-size encoded format ([SecretKeySize] and [PublicKeySize]
// bytes). The public key encodes a symmetric 4x4 ring matrix C; the
// secret key contains a 48-byte seed and the inverse of a secret 3x3
// ring matrix. A new key pair is created with [KeyGen] (from a random
// source, nil meaning crypto/rand.Reader) or [KeyGenFromSeed] (from a
// 48-byte seed, deterministically).
//
// [Sign] produces a "signed message": the [SignatureSize]-byte
// signature followed by the message itself. The signature encodes a
// short ring vector y, found with rejection sampling from random
// unimodular transforms of a matrix derived from the message hash
// (SHAKE256). Signing is deterministic: the same message signed twice
// with the same key yields identical outputs. [SignDetached] returns the
// signature alone.
//
// [Open] checks a signed message against a public key and recovers the
// message. Malformed inputs (wrong key length, truncated signed message)
// are reported as errors; a signature that does not verify is reported
// with a false Boolean result, not an error. [Verify] is the equivalent
// function for detached signatures.
//
// [Scheme] exposes the algorithm through the generic sign.Scheme
// interface of github.com/cloudflare/circl.
//
// All functions are safe for concurrent use: no state is shared between
// calls.
package defi
