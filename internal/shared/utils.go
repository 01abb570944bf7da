// Package shared provides utility functions for generating the random,
// URL-safe identifiers and capability tokens that gate every sharebin object.
package shared

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandString generates a URL-safe random string from size random bytes.
// The bytes are encoded with unpadded base64url, so the result is safe to
// embed directly in a path segment or query parameter. The final string
// length is ceil(size*4/3).
//
// Example:
//
//	s, err := MakeRandString(16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s) // e.g., "3n9Yw1kQ7eZb5TqA2rX0dg"
//
// It returns an error if the random number generator fails.
func MakeRandString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as secret plaintext from
// memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
