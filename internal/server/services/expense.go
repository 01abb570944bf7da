package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sharebin/internal/shared"
)

// ExpenseService manages shared expense ledgers. Viewing needs only the
// link; appending or removing entries needs a participant token minted at
// creation for this specific expense.
type ExpenseService struct {
	repo objects.Repository
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(repo objects.Repository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

// Create stores a new expense and mints one capability token per
// participant. Tokens are never rotated afterwards.
func (s *ExpenseService) Create(ctx context.Context, name string, participantNames []string, ttl *time.Duration) (*models.StoredObject, *models.Expense, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	if len(participantNames) < 2 {
		return nil, nil, fmt.Errorf("%w: at least two participants are required", common.ErrInvalidInput)
	}

	expense := models.Expense{Name: name, Entries: []models.ExpenseEntry{}}
	seen := make(map[string]struct{}, len(participantNames))
	for _, pn := range participantNames {
		pn = strings.TrimSpace(pn)
		if pn == "" {
			return nil, nil, fmt.Errorf("%w: empty participant name", common.ErrInvalidInput)
		}
		if _, dup := seen[pn]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate participant name", common.ErrInvalidInput)
		}
		seen[pn] = struct{}{}

		token, err := shared.MakeRandString(common.TokenBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("token generation error: %w", err)
		}
		expense.Participants = append(expense.Participants, models.ExpenseParticipant{Name: pn, Token: token})
	}

	data, err := json.Marshal(expense)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.repo.Create(ctx, models.TypeExpense, data, ttl)
	if err != nil {
		return nil, nil, err
	}
	return obj, &expense, nil
}

// Get returns the expense behind id.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, *models.StoredObject, error) {
	obj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var expense models.Expense
	if err := unmarshalAs(obj, models.TypeExpense, &expense); err != nil {
		return nil, nil, err
	}
	return &expense, obj, nil
}

func validateEntry(expense *models.Expense, entry models.ExpenseEntry) error {
	if strings.TrimSpace(entry.Description) == "" {
		return fmt.Errorf("%w: description is required", common.ErrInvalidInput)
	}
	if entry.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}
	if !expense.HasParticipant(entry.PaidBy) {
		return fmt.Errorf("%w: unknown payer", common.ErrInvalidInput)
	}
	if len(entry.SplitBetween) == 0 {
		return fmt.Errorf("%w: split_between is required", common.ErrInvalidInput)
	}
	for _, name := range entry.SplitBetween {
		if !expense.HasParticipant(name) {
			return fmt.Errorf("%w: unknown participant in split", common.ErrInvalidInput)
		}
	}
	return nil
}

// AddEntry appends one entry on behalf of the token's holder. A token minted
// for a different expense is Forbidden, never NotFound.
func (s *ExpenseService) AddEntry(ctx context.Context, id, token string, entry models.ExpenseEntry) (*models.Expense, error) {
	var updated models.Expense
	_, err := s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var expense models.Expense
		if err := unmarshalAs(obj, models.TypeExpense, &expense); err != nil {
			return nil, err
		}
		if expense.ParticipantByToken(token) == nil {
			return nil, common.ErrForbidden
		}
		if err := validateEntry(&expense, entry); err != nil {
			return nil, err
		}

		expense.Entries = append(expense.Entries, entry)
		updated = expense
		return json.Marshal(expense)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveEntry deletes the entry at index on behalf of the token's holder.
func (s *ExpenseService) RemoveEntry(ctx context.Context, id, token string, index int) (*models.Expense, error) {
	var updated models.Expense
	_, err := s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var expense models.Expense
		if err := unmarshalAs(obj, models.TypeExpense, &expense); err != nil {
			return nil, err
		}
		if expense.ParticipantByToken(token) == nil {
			return nil, common.ErrForbidden
		}
		if index < 0 || index >= len(expense.Entries) {
			return nil, fmt.Errorf("%w: entry index %d out of range", common.ErrInvalidInput, index)
		}

		expense.Entries = append(expense.Entries[:index], expense.Entries[index+1:]...)
		updated = expense
		return json.Marshal(expense)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
