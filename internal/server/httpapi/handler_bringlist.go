package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/services"
	"github.com/dmitrijs2005/sharebin/internal/timex"
)

type createBringListRequest struct {
	Title string          `json:"title"`
	Needs []needLineInput `json:"needs"`
	TTL   *timex.Duration `json:"ttl"`
}

type needLineInput struct {
	Item         string  `json:"item"`
	AmountNeeded float64 `json:"amount_needed"`
}

type claimRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type customItemRequest struct {
	Name   string  `json:"name"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

type bringListResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Needs       []needLineView   `json:"needs"`
	CustomItems []customItemView `json:"custom_items"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

// needLineView is the public shape of a need-line: claim tokens are omitted,
// claimed/remaining are derived.
type needLineView struct {
	Item         string      `json:"item"`
	AmountNeeded float64     `json:"amount_needed"`
	Claims       []claimView `json:"claims"`
	Claimed      float64     `json:"claimed"`
	Remaining    float64     `json:"remaining"`
}

type claimView struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type customItemView struct {
	Name   string  `json:"name"`
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

func toBringListResponse(list *models.BringList, obj *models.StoredObject) bringListResponse {
	needs := make([]needLineView, 0, len(list.Needs))
	for i := range list.Needs {
		n := &list.Needs[i]
		claims := make([]claimView, 0, len(n.Claims))
		for _, c := range n.Claims {
			claims = append(claims, claimView{Name: c.Name, Amount: c.Amount})
		}
		needs = append(needs, needLineView{
			Item:         n.Item,
			AmountNeeded: n.AmountNeeded,
			Claims:       claims,
			Claimed:      n.Claimed(),
			Remaining:    n.Remaining(),
		})
	}
	items := make([]customItemView, 0, len(list.CustomItems))
	for _, it := range list.CustomItems {
		items = append(items, customItemView{Name: it.Name, Item: it.Item, Amount: it.Amount})
	}
	return bringListResponse{
		ID:          obj.ID,
		Title:       list.Title,
		Needs:       needs,
		CustomItems: items,
		CreatedAt:   obj.CreatedAt,
		ExpiresAt:   obj.ExpiresAt,
	}
}

// CreateBringList handles POST /api/bringlists.
func (h *Handler) CreateBringList(w http.ResponseWriter, r *http.Request) {
	var req createBringListRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}
	ttl, err := h.ttlOf(req.TTL)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	needs := make([]models.NeedLine, 0, len(req.Needs))
	for _, n := range req.Needs {
		needs = append(needs, models.NeedLine{Item: n.Item, AmountNeeded: n.AmountNeeded})
	}
	obj, err := h.lists.Create(r.Context(), req.Title, needs, ttl)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": obj.ID, "expires_at": obj.ExpiresAt})
}

// GetBringList handles GET /api/bringlists/{id}.
func (h *Handler) GetBringList(w http.ResponseWriter, r *http.Request) {
	list, obj, err := h.lists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBringListResponse(list, obj))
}

func lineIndex(r *http.Request) (int, error) {
	line, err := strconv.Atoi(r.PathValue("line"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid need-line index", common.ErrInvalidInput)
	}
	return line, nil
}

// ClaimNeed handles POST /api/bringlists/{id}/needs/{line}/claims. An
// over-capacity claim is rejected with the remaining quantity so the caller
// can retry with less.
func (h *Handler) ClaimNeed(w http.ResponseWriter, r *http.Request) {
	line, err := lineIndex(r)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}

	token, err := h.lists.Claim(r.Context(), r.PathValue("id"), line, req.Name, req.Amount)
	if err != nil {
		var capErr *services.CapacityError
		if errors.As(err, &capErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":     capErr.Error(),
				"remaining": capErr.Remaining,
			})
			return
		}
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// UnclaimNeed handles DELETE /api/bringlists/{id}/needs/{line}/claims. The
// claim token comes from the X-Share-Token header.
func (h *Handler) UnclaimNeed(w http.ResponseWriter, r *http.Request) {
	line, err := lineIndex(r)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if err := h.lists.Unclaim(r.Context(), r.PathValue("id"), line, r.Header.Get(tokenHeader)); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCustomItem handles POST /api/bringlists/{id}/items.
func (h *Handler) AddCustomItem(w http.ResponseWriter, r *http.Request) {
	var req customItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}

	token, err := h.lists.AddCustomItem(r.Context(), r.PathValue("id"), req.Name, req.Item, req.Amount)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

// RemoveCustomItem handles DELETE /api/bringlists/{id}/items.
func (h *Handler) RemoveCustomItem(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.RemoveCustomItem(r.Context(), r.PathValue("id"), r.Header.Get(tokenHeader)); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
