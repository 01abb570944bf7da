package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey("test secret")
	plaintext := []byte("the password is hunter2")

	ct, nonce, err := Seal(plaintext, key)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ct)

	got, err := Open(ct, nonce, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	key := DeriveKey("test secret")

	_, n1, err := Seal([]byte("x"), key)
	require.NoError(t, err)
	_, n2, err := Seal([]byte("x"), key)
	require.NoError(t, err)
	require.NotEqual(t, n1, n2)
}

func TestOpen_WrongKey(t *testing.T) {
	ct, nonce, err := Seal([]byte("x"), DeriveKey("right"))
	require.NoError(t, err)

	_, err = Open(ct, nonce, DeriveKey("wrong"))
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	key := DeriveKey("test secret")
	ct, nonce, err := Seal([]byte("x"), key)
	require.NoError(t, err)

	ct[0] ^= 0xff
	_, err = Open(ct, nonce, key)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpen_BadNonceSize(t *testing.T) {
	key := DeriveKey("test secret")
	ct, _, err := Seal([]byte("x"), key)
	require.NoError(t, err)

	_, err = Open(ct, []byte("short"), key)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestSeal_BadKeySize(t *testing.T) {
	_, _, err := Seal([]byte("x"), []byte("too short"))
	require.Error(t, err)
}
