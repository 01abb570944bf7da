package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/timex"
)

type createPollRequest struct {
	Question string          `json:"question"`
	Slots    []string        `json:"slots"`
	TTL      *timex.Duration `json:"ttl"`
}

type respondPollRequest struct {
	Name  string `json:"name"`
	Votes []int  `json:"votes"`
}

type pollResponse struct {
	ID        string                `json:"id"`
	Question  string                `json:"question"`
	Slots     []string              `json:"slots"`
	Responses []models.PollResponse `json:"responses"`
	Tally     []int                 `json:"tally"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"`
}

// CreatePoll handles POST /api/polls.
func (h *Handler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}
	ttl, err := h.ttlOf(req.TTL)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	obj, err := h.polls.Create(r.Context(), req.Question, req.Slots, ttl)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": obj.ID, "expires_at": obj.ExpiresAt})
}

// GetPoll handles GET /api/polls/{id}. The tally is derived per view.
func (h *Handler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, obj, err := h.polls.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pollResponse{
		ID:        obj.ID,
		Question:  poll.Question,
		Slots:     poll.Slots,
		Responses: poll.Responses,
		Tally:     poll.Tally(),
		CreatedAt: obj.CreatedAt,
		ExpiresAt: obj.ExpiresAt,
	})
}

// RespondPoll handles POST /api/polls/{id}/responses.
func (h *Handler) RespondPoll(w http.ResponseWriter, r *http.Request) {
	var req respondPollRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}

	poll, err := h.polls.Respond(r.Context(), r.PathValue("id"), req.Name, req.Votes)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"responses": poll.Responses, "tally": poll.Tally()})
}
