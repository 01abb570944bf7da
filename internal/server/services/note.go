// Package services implements the six sharing tools on top of the generic
// object repository. The store is payload-agnostic; every type-specific
// invariant (capability tokens, capacity, one-time reveal) lives here.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/repositories/objects"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	htmlSanitizer = bluemonday.UGCPolicy()
)

// NoteService manages shared notes.
type NoteService struct {
	repo objects.Repository
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo objects.Repository) *NoteService {
	return &NoteService{repo: repo}
}

// unmarshalAs decodes an object payload after checking the type tag. A tag
// mismatch means the caller followed a URL of the wrong tool; it is reported
// as NotFound so ids never leak across tools.
func unmarshalAs[T any](obj *models.StoredObject, typ models.ObjectType, out *T) error {
	if obj.Type != typ {
		return common.ErrNotFound
	}
	if err := json.Unmarshal(obj.Data, out); err != nil {
		return fmt.Errorf("corrupt %s payload: %w", typ, err)
	}
	return nil
}

// Create stores a new note. A nil ttl means the note never expires.
func (s *NoteService) Create(ctx context.Context, title, content string, ttl *time.Duration) (*models.StoredObject, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrInvalidInput)
	}

	data, err := json.Marshal(models.Note{Title: title, Content: content})
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, models.TypeNote, data, ttl)
}

// Get returns the note behind id.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, *models.StoredObject, error) {
	obj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var note models.Note
	if err := unmarshalAs(obj, models.TypeNote, &note); err != nil {
		return nil, nil, err
	}
	return &note, obj, nil
}

// Update replaces the note's content in place. Id and timestamps are
// unchanged.
func (s *NoteService) Update(ctx context.Context, id, title, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", common.ErrInvalidInput)
	}

	_, err := s.repo.UpdateFn(ctx, id, func(obj *models.StoredObject) (json.RawMessage, error) {
		var note models.Note
		if err := unmarshalAs(obj, models.TypeNote, &note); err != nil {
			return nil, err
		}
		note.Title = title
		note.Content = content
		return json.Marshal(note)
	})
	return err
}

// Delete removes the note. Deleting an absent note is NotFound.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	existed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return common.ErrNotFound
	}
	return nil
}

// RenderHTML converts the note's markdown to sanitized HTML. The result is
// derived per view and never persisted.
func (s *NoteService) RenderHTML(note *models.Note) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(note.Content), &buf); err != nil {
		return htmlSanitizer.Sanitize(note.Content)
	}
	return htmlSanitizer.Sanitize(buf.String())
}
