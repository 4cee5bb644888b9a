package defi

import (
	"bytes"
	"crypto"
	"errors"
	"io"

	"github.com/cloudflare/circl/sign"
)

// Size of an encoded PrivateKey (as used by the generic interface): the
// secret key followed by the public key.
const PrivateKeySize = SecretKeySize + PublicKeySize

var errContextNotSupported = errors.New("defi: context strings are not supported")

// PublicKey is a DEFIv2 public key for use with the generic signature
// API of circl.
type PublicKey struct {
	b [PublicKeySize]byte
}

// PrivateKey is a DEFIv2 secret key bundled with its public key. The
// public key cannot be recomputed from the secret key alone, hence its
// encoding carries both.
type PrivateKey struct {
	sk  [SecretKeySize]byte
	pub PublicKey
}

// GenerateKey generates a key pair using the provided random source (nil
// to use the OS RNG).
func GenerateKey(rng io.Reader) (*PublicKey, *PrivateKey, error) {
	skey, pkey, err := KeyGen(rng)
	if err != nil {
		return nil, nil, err
	}
	pk, sk := key_pair(skey, pkey)
	return pk, sk, nil
}

// NewKeyFromSeed derives a key pair from a seed of SeedSize bytes.
func NewKeyFromSeed(seed []byte) (*PublicKey, *PrivateKey, error) {
	skey, pkey, err := KeyGenFromSeed(seed)
	if err != nil {
		return nil, nil, err
	}
	pk, sk := key_pair(skey, pkey)
	return pk, sk, nil
}

func key_pair(skey []byte, pkey []byte) (*PublicKey, *PrivateKey) {
	pk := new(PublicKey)
	copy(pk.b[:], pkey)
	sk := new(PrivateKey)
	copy(sk.sk[:], skey)
	sk.pub = *pk
	return pk, sk
}

// Bytes returns the encoded public key.
func (pk *PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk.b[:])
	return b
}

// Bytes returns the encoded private key (secret key || public key).
func (sk *PrivateKey) Bytes() []byte {
	b := make([]byte, PrivateKeySize)
	copy(b, sk.sk[:])
	copy(b[SecretKeySize:], sk.pub.b[:])
	return b
}

// MarshalBinary packs the public key.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.Bytes(), nil
}

// MarshalBinary packs the private key.
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return sk.Bytes(), nil
}

// UnmarshalBinary unpacks the public key from data. The key must decode
// as a public matrix.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	if _, err := decode_public(data); err != nil {
		return err
	}
	copy(pk.b[:], data)
	return nil
}

// UnmarshalBinary unpacks the private key from data.
func (sk *PrivateKey) UnmarshalBinary(data []byte) error {
	if len(data) != PrivateKeySize {
		return ErrInvalidSecretKey
	}
	if _, err := decode_secret_inverse(data[:SecretKeySize]); err != nil {
		return err
	}
	if _, err := decode_public(data[SecretKeySize:]); err != nil {
		return err
	}
	copy(sk.sk[:], data[:SecretKeySize])
	copy(sk.pub.b[:], data[SecretKeySize:])
	return nil
}

// Sign signs the given message and returns the detached signature.
//
// opts.HashFunc() must return zero (the message is signed as is); rand is
// ignored, since signing is deterministic. This makes PrivateKey
// implement the crypto.Signer interface.
func (sk *PrivateKey) Sign(rand io.Reader, msg []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.Hash(0) {
		return nil, errors.New("defi: cannot sign hashed message")
	}
	return SignDetached(sk.sk[:], msg)
}

// Public returns the public key that matches this private key.
func (sk *PrivateKey) Public() crypto.PublicKey {
	pk := sk.pub
	return &pk
}

// Equal returns whether the two private keys are equal.
func (sk *PrivateKey) Equal(other crypto.PrivateKey) bool {
	o, ok := other.(*PrivateKey)
	if !ok {
		return false
	}
	return bytes.Equal(sk.sk[:], o.sk[:]) && bytes.Equal(sk.pub.b[:], o.pub.b[:])
}

// Equal returns whether the two public keys are equal.
func (pk *PublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(*PublicKey)
	if !ok {
		return false
	}
	return bytes.Equal(pk.b[:], o.b[:])
}

// Scheme returns the generic signature interface for DEFIv2.
func (sk *PrivateKey) Scheme() sign.Scheme {
	return sch
}

// Scheme returns the generic signature interface for DEFIv2.
func (pk *PublicKey) Scheme() sign.Scheme {
	return sch
}

// Boilerplate for generic signatures API

type scheme struct{}

var sch sign.Scheme = &scheme{}

// Scheme returns a generic signature interface for DEFIv2.
func Scheme() sign.Scheme { return sch }

func (*scheme) Name() string          { return "DEFIv2" }
func (*scheme) PublicKeySize() int    { return PublicKeySize }
func (*scheme) PrivateKeySize() int   { return PrivateKeySize }
func (*scheme) SignatureSize() int    { return SignatureSize }
func (*scheme) SeedSize() int         { return SeedSize }
func (*scheme) SupportsContext() bool { return false }

func (*scheme) GenerateKey() (sign.PublicKey, sign.PrivateKey, error) {
	return GenerateKey(nil)
}

func (*scheme) Sign(
	sk sign.PrivateKey,
	msg []byte,
	opts *sign.SignatureOpts,
) []byte {
	priv, ok := sk.(*PrivateKey)
	if !ok {
		panic(sign.ErrTypeMismatch)
	}
	if opts != nil && opts.Context != "" {
		panic(errContextNotSupported)
	}
	sig, err := SignDetached(priv.sk[:], msg)
	if err != nil {
		panic(err)
	}
	return sig
}

func (*scheme) Verify(
	pk sign.PublicKey,
	msg, sig []byte,
	opts *sign.SignatureOpts,
) bool {
	pub, ok := pk.(*PublicKey)
	if !ok {
		panic(sign.ErrTypeMismatch)
	}
	if opts != nil && opts.Context != "" {
		return false
	}
	return Verify(pub.b[:], msg, sig)
}

func (*scheme) DeriveKey(seed []byte) (sign.PublicKey, sign.PrivateKey) {
	if len(seed) != SeedSize {
		panic(sign.ErrSeedSize)
	}
	pk, sk, err := NewKeyFromSeed(seed)
	if err != nil {
		panic(err)
	}
	return pk, sk
}

func (*scheme) UnmarshalBinaryPublicKey(buf []byte) (sign.PublicKey, error) {
	if len(buf) != PublicKeySize {
		return nil, sign.ErrPubKeySize
	}
	pk := new(PublicKey)
	if err := pk.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return pk, nil
}

func (*scheme) UnmarshalBinaryPrivateKey(buf []byte) (sign.PrivateKey, error) {
	if len(buf) != PrivateKeySize {
		return nil, sign.ErrPrivKeySize
	}
	sk := new(PrivateKey)
	if err := sk.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return sk, nil
}
