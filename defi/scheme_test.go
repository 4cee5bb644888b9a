package defi

import (
	"crypto"
	"testing"

	"github.com/cloudflare/circl/sign"
	"github.com/stretchr/testify/require"
)

func TestScheme(t *testing.T) {
	sch := Scheme()
	require.Equal(t, "DEFIv2", sch.Name())
	require.Equal(t, PublicKeySize, sch.PublicKeySize())
	require.Equal(t, PrivateKeySize, sch.PrivateKeySize())
	require.Equal(t, SignatureSize, sch.SignatureSize())
	require.Equal(t, SeedSize, sch.SeedSize())
	require.False(t, sch.SupportsContext())

	seed := make([]byte, sch.SeedSize())
	seed[7] = 0x99
	pk, sk := sch.DeriveKey(seed)
	pk2, sk2 := sch.DeriveKey(seed)
	require.True(t, pk.Equal(pk2))
	require.True(t, sk.Equal(sk2))
	require.True(t, sk.Public().(sign.PublicKey).Equal(pk))

	msg := []byte("generic interface")
	sig := sch.Sign(sk, msg, nil)
	require.Len(t, sig, SignatureSize)
	require.True(t, sch.Verify(pk, msg, sig, nil))
	require.False(t, sch.Verify(pk, []byte("other"), sig, nil))
	require.False(t, sch.Verify(pk, msg, sig, &sign.SignatureOpts{Context: "ctx"}))
	require.Panics(t, func() {
		sch.Sign(sk, msg, &sign.SignatureOpts{Context: "ctx"})
	})

	ppk, err := pk.MarshalBinary()
	require.NoError(t, err)
	psk, err := sk.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, ppk, PublicKeySize)
	require.Len(t, psk, PrivateKeySize)

	pk3, err := sch.UnmarshalBinaryPublicKey(ppk)
	require.NoError(t, err)
	sk3, err := sch.UnmarshalBinaryPrivateKey(psk)
	require.NoError(t, err)
	require.True(t, pk.Equal(pk3))
	require.True(t, sk.Equal(sk3))
	require.True(t, sch.Verify(pk3, msg, sch.Sign(sk3, msg, nil), nil))

	_, err = sch.UnmarshalBinaryPublicKey(ppk[1:])
	require.ErrorIs(t, err, sign.ErrPubKeySize)
	_, err = sch.UnmarshalBinaryPrivateKey(psk[1:])
	require.ErrorIs(t, err, sign.ErrPrivKeySize)
	ppk[PublicKeySize-1] |= 0xF0
	_, err = sch.UnmarshalBinaryPublicKey(ppk)
	require.ErrorIs(t, err, ErrInvalidPublicKey)

	require.Panics(t, func() { sch.DeriveKey(seed[1:]) })
}

func TestCryptoSigner(t *testing.T) {
	pk, sk, err := GenerateKey(nil)
	require.NoError(t, err)
	var signer crypto.Signer = sk
	msg := []byte("crypto.Signer")
	sig, err := signer.Sign(nil, msg, crypto.Hash(0))
	require.NoError(t, err)
	require.True(t, Verify(pk.Bytes(), msg, sig))
	require.True(t, pk.Equal(signer.Public()))

	_, err = signer.Sign(nil, msg, crypto.SHA256)
	require.Error(t, err)

	sk2 := new(PrivateKey)
	require.NoError(t, sk2.UnmarshalBinary(sk.Bytes()))
	require.True(t, sk.Equal(sk2))
	require.Error(t, sk2.UnmarshalBinary(sk.Bytes()[:10]))
}
