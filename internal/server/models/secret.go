package models

// Secret is the payload for a one-time secret. The plaintext is sealed with
// XChaCha20-Poly1305 before it ever reaches the store; Ciphertext and Nonce
// are what Open needs besides the server key.
type Secret struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}
