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
)

// PollService manages scheduling polls with append-only responses.
type PollService struct {
	repo objects.Repository
}

// NewPollService constructs a PollService.
func NewPollService(repo objects.Repository) *PollService {
	return &PollService{repo: repo}
}

// Create stores a new poll with the given candidate slots.
func (s *PollService) Create(ctx context.Context, question string, slots []string, ttl *time.Duration) (*models.StoredObject, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", common.ErrInvalidInput)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: at least one slot is required", common.ErrInvalidInput)
	}
	for _, slot := range slots {
		if strings.TrimSpace(slot) == "" {
			return nil, fmt.Errorf("%w: empty slot", common.ErrInvalidInput)
		}
	}

	data, err := json.Marshal(models.Poll{Question: question, Slots: slots, Responses: []models.PollResponse{}})
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, models.TypePoll, data, ttl)
}

// Get returns the poll behind id.
func (s *PollService) Get(ctx context.Context, id string) (*models.Poll, *models.StoredObject, error) {
	obj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var poll models.Poll
	if err := unmarshalAs(obj, models.TypePoll, &poll); err != nil {
		return nil, nil, err
	}
	return &poll, obj, nil
}

// Respond appends one ballot. Votes are slot indexes; duplicates of the same
// participant name are allowed; two guests can share a name. The append runs under the
// repository's row lock, so concurrent ballots cannot overwrite each other.
func (s *PollService) Respond(ctx context.Context, id, name string, votes []int) (*models.Poll, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}

	var updated models.Poll
	_, err := s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var poll models.Poll
		if err := unmarshalAs(obj, models.TypePoll, &poll); err != nil {
			return nil, err
		}

		for _, v := range votes {
			if v < 0 || v >= len(poll.Slots) {
				return nil, fmt.Errorf("%w: vote index %d out of range", common.ErrInvalidInput, v)
			}
		}

		poll.Responses = append(poll.Responses, models.PollResponse{Name: name, Votes: votes})
		updated = poll
		return json.Marshal(poll)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
