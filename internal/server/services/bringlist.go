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

// CapacityError reports a claim rejected for exceeding a need-line's
// remaining quantity. It wraps ErrInvalidInput and carries the actual
// remaining amount so the caller can adjust.
type CapacityError struct {
	Remaining float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested amount exceeds remaining capacity (%g left)", e.Remaining)
}

func (e *CapacityError) Unwrap() error { return common.ErrInvalidInput }

// BringListService manages potluck lists: capacity-bounded claims against
// need-lines plus free-form custom items, each guarded by its own token.
type BringListService struct {
	repo objects.Repository
}

// NewBringListService constructs a BringListService.
func NewBringListService(repo objects.Repository) *BringListService {
	return &BringListService{repo: repo}
}

// Create stores a new bring-list with the given need-lines.
func (s *BringListService) Create(ctx context.Context, title string, needs []models.NeedLine, ttl *time.Duration) (*models.StoredObject, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrInvalidInput)
	}
	for i := range needs {
		if strings.TrimSpace(needs[i].Item) == "" {
			return nil, fmt.Errorf("%w: empty item", common.ErrInvalidInput)
		}
		if needs[i].AmountNeeded <= 0 {
			return nil, fmt.Errorf("%w: amount_needed must be positive", common.ErrInvalidInput)
		}
		needs[i].Claims = []models.Claim{}
	}

	data, err := json.Marshal(models.BringList{Title: title, Needs: needs, CustomItems: []models.CustomItem{}})
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, models.TypeBringList, data, ttl)
}

// Get returns the bring-list behind id.
func (s *BringListService) Get(ctx context.Context, id string) (*models.BringList, *models.StoredObject, error) {
	obj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var list models.BringList
	if err := unmarshalAs(obj, models.TypeBringList, &list); err != nil {
		return nil, nil, err
	}
	return &list, obj, nil
}

// Claim reserves amount on the need-line at index line and returns the
// minted claim token. The remaining capacity is recomputed against current
// claims under the repository's row lock, so concurrent claims serializing
// on the same object can never overshoot amount_needed; an over-capacity
// request fails with *CapacityError carrying what is actually left.
func (s *BringListService) Claim(ctx context.Context, id string, line int, name string, amount float64) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}

	token, err := shared.MakeRandString(common.TokenBytes)
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	_, err = s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var list models.BringList
		if err := unmarshalAs(obj, models.TypeBringList, &list); err != nil {
			return nil, err
		}
		if line < 0 || line >= len(list.Needs) {
			return nil, fmt.Errorf("%w: need-line %d out of range", common.ErrInvalidInput, line)
		}

		need := &list.Needs[line]
		if remaining := need.Remaining(); amount > remaining {
			return nil, &CapacityError{Remaining: remaining}
		}

		need.Claims = append(need.Claims, models.Claim{Name: name, Amount: amount, Token: token})
		return json.Marshal(list)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Unclaim withdraws the claim identified by token from the need-line at
// index line. A wrong token on an existing line is Forbidden.
func (s *BringListService) Unclaim(ctx context.Context, id string, line int, token string) error {
	_, err := s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var list models.BringList
		if err := unmarshalAs(obj, models.TypeBringList, &list); err != nil {
			return nil, err
		}
		if line < 0 || line >= len(list.Needs) {
			return nil, fmt.Errorf("%w: need-line %d out of range", common.ErrInvalidInput, line)
		}

		need := &list.Needs[line]
		for i, claim := range need.Claims {
			if token != "" && claim.Token == token {
				need.Claims = append(need.Claims[:i], need.Claims[i+1:]...)
				return json.Marshal(list)
			}
		}
		return nil, common.ErrForbidden
	})
	return err
}

// AddCustomItem appends a free-form item outside the needed list and returns
// the token that allows deleting it later.
func (s *BringListService) AddCustomItem(ctx context.Context, id, name, item string, amount float64) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(item) == "" {
		return "", fmt.Errorf("%w: name and item are required", common.ErrInvalidInput)
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	}

	token, err := shared.MakeRandString(common.TokenBytes)
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	_, err = s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var list models.BringList
		if err := unmarshalAs(obj, models.TypeBringList, &list); err != nil {
			return nil, err
		}
		list.CustomItems = append(list.CustomItems, models.CustomItem{Name: name, Item: item, Amount: amount, Token: token})
		return json.Marshal(list)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// RemoveCustomItem deletes the custom item identified by token.
func (s *BringListService) RemoveCustomItem(ctx context.Context, id, token string) error {
	_, err := s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var list models.BringList
		if err := unmarshalAs(obj, models.TypeBringList, &list); err != nil {
			return nil, err
		}
		for i, item := range list.CustomItems {
			if token != "" && item.Token == token {
				list.CustomItems = append(list.CustomItems[:i], list.CustomItems[i+1:]...)
				return json.Marshal(list)
			}
		}
		return nil, common.ErrForbidden
	})
	return err
}
