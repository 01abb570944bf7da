package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/cryptox"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sharebin/internal/shared"
)

// SecretService manages one-time secrets: stored sealed, revealed at most
// once, destroyed on reveal.
type SecretService struct {
	repo objects.Repository
	key  []byte
}

// NewSecretService constructs a SecretService. secret is the server secret
// the at-rest sealing key is derived from.
func NewSecretService(repo objects.Repository, secret string) *SecretService {
	return &SecretService{repo: repo, key: cryptox.DeriveKey(secret)}
}

// Create seals plaintext and stores it under a fresh id. The plaintext
// buffer is wiped before returning.
func (s *SecretService) Create(ctx context.Context, plaintext []byte, ttl *time.Duration) (*models.StoredObject, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("%w: secret is required", common.ErrInvalidInput)
	}

	ciphertext, nonce, err := cryptox.Seal(plaintext, s.key)
	if err != nil {
		return nil, err
	}
	shared.WipeByteArray(plaintext)

	data, err := json.Marshal(models.Secret{Ciphertext: ciphertext, Nonce: nonce})
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, models.TypeSecret, data, ttl)
}

// Reveal returns the plaintext exactly once. The row is deleted in the same
// atomic operation that reads it, so of any set of concurrent reveals at
// most one succeeds; every later call is NotFound.
func (s *SecretService) Reveal(ctx context.Context, id string) ([]byte, error) {
	obj, err := s.repo.TakeOnce(ctx, id, models.TypeSecret)
	if err != nil {
		return nil, err
	}

	var secret models.Secret
	if err := json.Unmarshal(obj.Data, &secret); err != nil {
		return nil, fmt.Errorf("corrupt secret payload: %w", err)
	}

	return cryptox.Open(secret.Ciphertext, secret.Nonce, s.key)
}
