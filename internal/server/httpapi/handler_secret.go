package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/timex"
)

type createSecretRequest struct {
	Secret string          `json:"secret"`
	TTL    *timex.Duration `json:"ttl"`
}

type createSecretResponse struct {
	ID        string     `json:"id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type revealSecretResponse struct {
	Secret string `json:"secret"`
}

// CreateSecret handles POST /api/secrets.
func (h *Handler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	var req createSecretRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}
	ttl, err := h.ttlOf(req.TTL)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	obj, err := h.secrets.Create(r.Context(), []byte(req.Secret), ttl)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSecretResponse{ID: obj.ID, ExpiresAt: obj.ExpiresAt})
}

// RevealSecret handles POST /api/secrets/{id}/reveal. The reveal destroys
// the secret, so it is a POST: a GET must not have side effects.
func (h *Handler) RevealSecret(w http.ResponseWriter, r *http.Request) {
	plaintext, err := h.secrets.Reveal(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revealSecretResponse{Secret: string(plaintext)})
}
