// Package cryptox implements the at-rest sealing of one-time secrets.
// Secrets are encrypted with XChaCha20-Poly1305 under a key derived from the
// server secret, so a database dump alone never exposes plaintext.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// DeriveKey stretches an arbitrary server secret into a 32-byte key suitable
// for XChaCha20-Poly1305.
func DeriveKey(secret string) []byte {
	hash := sha256.Sum256([]byte(secret))
	return hash[:]
}

// Seal encrypts plaintext with XChaCha20-Poly1305.
//
// The key must be 32 bytes (use DeriveKey). A fresh random 24-byte nonce is
// generated for each call and returned separately; both values must be stored
// to decrypt later.
//
// Example:
//
//	key := cryptox.DeriveKey("server secret")
//	ct, nonce, err := cryptox.Seal([]byte("the password is hunter2"), key)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Open decrypts ciphertext produced by Seal. It returns ErrInvalidCiphertext
// when the ciphertext has been tampered with or the key/nonce do not match.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != chacha20poly1305.NonceSizeX {
		return nil, ErrInvalidCiphertext
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	return plaintext, nil
}
