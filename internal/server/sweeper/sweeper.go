// Package sweeper runs the periodic expiration pass. Lazy expiration on read
// keeps expired data unobservable, but only the sweep reclaims storage and
// external blobs for objects nobody reads again.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/logging"
	"github.com/dmitrijs2005/sharebin/internal/server/models"
)

// Purger is the slice of the object repository the sweeper needs.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) ([]models.PurgedObject, error)
}

// Cleaner removes the external resources owned by a purged object. The blob
// store satisfies it; injecting the interface keeps the sweeper from
// hardwiring the cascade.
type Cleaner interface {
	RemoveAll(ctx context.Context, objectID string) error
}

// timeNow is a seam for tests.
var timeNow = time.Now

// Sweeper owns the background expiration task.
type Sweeper struct {
	purger   Purger
	cleaner  Cleaner
	interval time.Duration
	logger   logging.Logger
}

// New constructs a Sweeper. interval is the pause between passes.
func New(purger Purger, cleaner Cleaner, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{purger: purger, cleaner: cleaner, interval: interval, logger: logger.With("component", "sweeper")}
}

// Run executes one pass immediately, then one per interval, until ctx is
// canceled. It blocks; callers start it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep purges all currently-expired rows and cascades blob deletion for
// fileshare objects. The row goes first and blob removal is idempotent, so a
// failure or crash between the two steps leaves only an orphan prefix that a
// later retry (or operator) can remove; callers already observe NotFound.
// A cleanup failure never aborts the rest of the batch.
func (s *Sweeper) Sweep(ctx context.Context) {
	purged, err := s.purger.PurgeExpired(ctx, timeNow().UTC())
	if err != nil {
		s.logger.Error(ctx, "purge failed", "error", err)
		return
	}
	if len(purged) == 0 {
		return
	}

	s.logger.Info(ctx, "purged expired objects", "count", len(purged))

	for _, obj := range purged {
		if obj.Type != models.TypeFileShare {
			continue
		}
		if err := s.cleaner.RemoveAll(ctx, obj.ID); err != nil {
			s.logger.Error(ctx, "blob cleanup failed", "id", obj.ID, "error", err)
		}
	}
}
