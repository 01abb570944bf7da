package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/timex"
)

type createNoteRequest struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	TTL     *timex.Duration `json:"ttl"`
}

type updateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content,omitempty"`
	HTML      string     `json:"html,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}
	ttl, err := h.ttlOf(req.TTL)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	obj, err := h.notes.Create(r.Context(), req.Title, req.Content, ttl)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, noteResponse{
		ID:        obj.ID,
		CreatedAt: obj.CreatedAt,
		ExpiresAt: obj.ExpiresAt,
	})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, obj, err := h.notes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{
		ID:        obj.ID,
		Title:     note.Title,
		Content:   note.Content,
		HTML:      h.notes.RenderHTML(note),
		CreatedAt: obj.CreatedAt,
		ExpiresAt: obj.ExpiresAt,
	})
}

// UpdateNote handles PUT /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}

	if err := h.notes.Update(r.Context(), r.PathValue("id"), req.Title, req.Content); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
