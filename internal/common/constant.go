// Package common contains shared constants and sentinel errors used across
// sharebin components.
package common

// IDBytes is the number of random bytes behind every object identifier.
const IDBytes = 16

// TokenBytes is the number of random bytes behind every capability token.
// Tokens are bearer secrets carried in URLs; 16 bytes keeps them comfortably
// above the 8-byte minimum required for unguessability.
const TokenBytes = 16
