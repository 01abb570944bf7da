package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/repositories/objects"
	"github.com/stretchr/testify/require"
)

var _ objects.Repository = (*fakeRepo)(nil)

func TestNoteService_CreateAndGet(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNoteService(repo)
	ctx := context.Background()

	obj, err := svc.Create(ctx, "groceries", "- milk\n- eggs", nil)
	require.NoError(t, err)
	require.Equal(t, models.TypeNote, obj.Type)
	require.Nil(t, obj.ExpiresAt)

	note, got, err := svc.Get(ctx, obj.ID)
	require.NoError(t, err)
	require.Equal(t, "groceries", note.Title)
	require.Equal(t, "- milk\n- eggs", note.Content)
	require.Equal(t, obj.ID, got.ID)
}

func TestNoteService_CreateRequiresContent(t *testing.T) {
	svc := NewNoteService(newFakeRepo())

	_, err := svc.Create(context.Background(), "t", "   ", nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNoteService_CreateWithTTLExpires(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNoteService(repo)
	ctx := context.Background()

	ttl := time.Minute
	obj, err := svc.Create(ctx, "", "temp", &ttl)
	require.NoError(t, err)

	repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, _, err = svc.Get(ctx, obj.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNoteService_Update(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNoteService(repo)
	ctx := context.Background()

	obj, err := svc.Create(ctx, "v1", "old", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, obj.ID, "v2", "new"))

	note, _, err := svc.Get(ctx, obj.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", note.Title)
	require.Equal(t, "new", note.Content)
}

func TestNoteService_DeleteThenGetIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewNoteService(repo)
	ctx := context.Background()

	obj, err := svc.Create(ctx, "", "x", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, obj.ID))
	require.ErrorIs(t, svc.Delete(ctx, obj.ID), common.ErrNotFound)

	_, _, err = svc.Get(ctx, obj.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNoteService_GetWrongTypeIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	ctx := context.Background()

	obj, err := NewPollService(repo).Create(ctx, "when?", []string{"mon"}, nil)
	require.NoError(t, err)

	_, _, err = NewNoteService(repo).Get(ctx, obj.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNoteService_CreatePropagatesRepoError(t *testing.T) {
	repo := newFakeRepo()
	repo.failWith = errors.New("db down")
	svc := NewNoteService(repo)

	_, err := svc.Create(context.Background(), "", "x", nil)
	require.ErrorContains(t, err, "db down")
}

func TestNoteService_RenderHTMLSanitizes(t *testing.T) {
	svc := NewNoteService(newFakeRepo())

	html := svc.RenderHTML(&models.Note{Content: "# hi\n\n<script>alert(1)</script>"})
	require.Contains(t, html, "<h1")
	require.NotContains(t, html, "<script>")
}
