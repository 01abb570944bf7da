package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/server/blob"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
	"github.com/dmitrijs2005/sharebin/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sharebin/internal/shared"
	"github.com/google/uuid"
)

// SharedFile is one download entry in a fileshare view.
type SharedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// FileShareService manages file-share metadata and its externally-owned
// bytes. The flow is id-first: the id is minted before the row exists so
// blobs can be uploaded under it, then the metadata row is created with
// CreateWithID.
type FileShareService struct {
	repo  objects.Repository
	blobs blob.Store
}

// NewFileShareService constructs a FileShareService.
func NewFileShareService(repo objects.Repository, blobs blob.Store) *FileShareService {
	return &FileShareService{repo: repo, blobs: blobs}
}

// MintID returns a fresh share id suitable for uploading blobs under before
// the metadata row exists.
func (s *FileShareService) MintID() (string, error) {
	return shared.MakeRandString(common.IDBytes)
}

// UploadFile streams one file's bytes into the share's blob prefix and
// returns its metadata entry.
func (s *FileShareService) UploadFile(ctx context.Context, shareID, name string, size int64, body io.Reader) (*models.FileMeta, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", common.ErrInvalidInput)
	}

	storedName := uuid.NewString()
	if err := s.blobs.Upload(ctx, shareID, storedName, body); err != nil {
		return nil, err
	}
	return &models.FileMeta{Name: name, StoredName: storedName, Size: size}, nil
}

// Create persists the metadata row for files already uploaded under id.
// Shares always expire; ttl is mandatory so the blob prefix cannot leak
// forever. A duplicate id surfaces as Conflict.
func (s *FileShareService) Create(ctx context.Context, id string, files []models.FileMeta, ttl time.Duration) (*models.StoredObject, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", common.ErrInvalidInput)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", common.ErrInvalidInput)
	}

	data, err := json.Marshal(models.FileShare{Files: files})
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(ttl)
	return s.repo.CreateWithID(ctx, id, models.TypeFileShare, data, &expiresAt)
}

// Get returns the share's files with presigned download URLs. A share that
// expired between sweeps is deleted by the read itself, so the blob prefix
// is cascaded here rather than waiting for a sweep that will never see it.
func (s *FileShareService) Get(ctx context.Context, id string) ([]SharedFile, *models.StoredObject, error) {
	obj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrExpired) {
			if rerr := s.blobs.RemoveAll(ctx, id); rerr != nil {
				return nil, nil, fmt.Errorf("blob cleanup error: %w", rerr)
			}
		}
		return nil, nil, err
	}

	var share models.FileShare
	if err := unmarshalAs(obj, models.TypeFileShare, &share); err != nil {
		return nil, nil, err
	}

	files := make([]SharedFile, 0, len(share.Files))
	for _, f := range share.Files {
		url, err := s.blobs.PresignGet(ctx, id, f.StoredName)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, SharedFile{Name: f.Name, Size: f.Size, URL: url})
	}
	return files, obj, nil
}

// DiscardUploads removes any blobs uploaded under an id whose metadata row
// never came to exist. Without a row the sweep cannot find the prefix, so
// callers of the id-first upload flow invoke this when Create fails.
func (s *FileShareService) DiscardUploads(ctx context.Context, id string) error {
	return s.blobs.RemoveAll(ctx, id)
}

// Remove deletes the metadata row and then the blob prefix. The row goes
// first so no caller can resolve the share while its bytes disappear; blob
// removal is idempotent and safe to retry if the second step fails.
func (s *FileShareService) Remove(ctx context.Context, id string) error {
	existed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return common.ErrNotFound
	}
	return s.blobs.RemoveAll(ctx, id)
}
