package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/services"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// parts spill to temp files.
const maxUploadMemory = 32 << 20

type fileShareResponse struct {
	ID        string                `json:"id"`
	Files     []services.SharedFile `json:"files"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"`
}

// CreateFileShare handles POST /api/shares as a multipart form: one or more
// "file" parts plus an optional "ttl" field. The share id is minted first so
// blobs upload under it before the metadata row exists.
func (h *Handler) CreateFileShare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.serviceError(w, r, fmt.Errorf("%w: invalid multipart form", common.ErrInvalidInput))
		return
	}

	ttl := h.defaultTTL
	if raw := r.FormValue("ttl"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			h.serviceError(w, r, fmt.Errorf("%w: invalid ttl", common.ErrInvalidInput))
			return
		}
		ttl = parsed
	}
	if h.maxTTL > 0 && ttl > h.maxTTL {
		ttl = h.maxTTL
	}

	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		h.serviceError(w, r, fmt.Errorf("%w: at least one file is required", common.ErrInvalidInput))
		return
	}

	id, err := h.shares.MintID()
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	files := make([]models.FileMeta, 0, len(parts))
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			h.serviceError(w, r, fmt.Errorf("%w: unreadable file part", common.ErrInvalidInput))
			return
		}
		meta, err := h.shares.UploadFile(r.Context(), id, part.Filename, part.Size, f)
		f.Close()
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
		files = append(files, *meta)
	}

	obj, err := h.shares.Create(r.Context(), id, files, ttl)
	if err != nil {
		// The row never materialized, so the sweep cannot reclaim the
		// uploaded blobs. Best effort; a leftover prefix only costs storage.
		if derr := h.shares.DiscardUploads(r.Context(), id); derr != nil {
			h.logger.Warn(r.Context(), "discarding uploads failed", "share_id", id, "error", derr)
		}
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": obj.ID, "expires_at": obj.ExpiresAt})
}

// GetFileShare handles GET /api/shares/{id}, returning presigned download
// URLs for every file.
func (h *Handler) GetFileShare(w http.ResponseWriter, r *http.Request) {
	files, obj, err := h.shares.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fileShareResponse{
		ID:        obj.ID,
		Files:     files,
		CreatedAt: obj.CreatedAt,
		ExpiresAt: obj.ExpiresAt,
	})
}

// RemoveFileShare handles DELETE /api/shares/{id}.
func (h *Handler) RemoveFileShare(w http.ResponseWriter, r *http.Request) {
	if err := h.shares.Remove(r.Context(), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
