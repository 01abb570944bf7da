package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/services"
	"github.com/dmitrijs2005/sharebin/internal/timex"
)

type createExpenseRequest struct {
	Name         string          `json:"name"`
	Participants []string        `json:"participants"`
	TTL          *timex.Duration `json:"ttl"`
}

type addExpenseEntryRequest struct {
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	PaidBy       string   `json:"paid_by"`
	SplitBetween []string `json:"split_between"`
}

type expenseResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Participants []string              `json:"participants"`
	Entries      []models.ExpenseEntry `json:"entries"`
	Balances     []models.Balance      `json:"balances"`
	CreatedAt    time.Time             `json:"created_at"`
	ExpiresAt    *time.Time            `json:"expires_at,omitempty"`
}

// CreateExpense handles POST /api/expenses. The response is the only place
// participant tokens ever appear; the creator distributes them out of band.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}
	ttl, err := h.ttlOf(req.TTL)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	obj, expense, err := h.expenses.Create(r.Context(), req.Name, req.Participants, ttl)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":           obj.ID,
		"participants": expense.Participants,
		"expires_at":   obj.ExpiresAt,
	})
}

// GetExpense handles GET /api/expenses/{id}. Balances are recomputed per
// view and rounded for display; participant tokens are not echoed.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, obj, err := h.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	names := make([]string, 0, len(expense.Participants))
	for _, p := range expense.Participants {
		names = append(names, p.Name)
	}
	writeJSON(w, http.StatusOK, expenseResponse{
		ID:           obj.ID,
		Name:         expense.Name,
		Participants: names,
		Entries:      expense.Entries,
		Balances:     services.RoundBalances(services.Settle(expense)),
		CreatedAt:    obj.CreatedAt,
		ExpiresAt:    obj.ExpiresAt,
	})
}

// AddExpenseEntry handles POST /api/expenses/{id}/entries. The participant
// token comes from the X-Share-Token header.
func (h *Handler) AddExpenseEntry(w http.ResponseWriter, r *http.Request) {
	var req addExpenseEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.serviceError(w, r, err)
		return
	}

	entry := models.ExpenseEntry{
		Description:  req.Description,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		SplitBetween: req.SplitBetween,
	}
	expense, err := h.expenses.AddEntry(r.Context(), r.PathValue("id"), r.Header.Get(tokenHeader), entry)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"entries":  expense.Entries,
		"balances": services.RoundBalances(services.Settle(expense)),
	})
}

// RemoveExpenseEntry handles DELETE /api/expenses/{id}/entries/{index}.
func (h *Handler) RemoveExpenseEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.serviceError(w, r, fmt.Errorf("%w: invalid entry index", common.ErrInvalidInput))
		return
	}

	if _, err := h.expenses.RemoveEntry(r.Context(), r.PathValue("id"), r.Header.Get(tokenHeader), index); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
