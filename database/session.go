// session.go - Request-scoped units of work over the connection pool

package database

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"go-blog-backend/apperr"
	"go-blog-backend/metrics"
)

// Sessions hands out one transaction per caller and bounds how many can be
// open at once. A caller that cannot get a slot within the acquire timeout
// fails with resource_exhausted instead of queueing forever.
type Sessions struct {
	db             *gorm.DB
	sem            *semaphore.Weighted
	acquireTimeout time.Duration
	metrics        *metrics.Metrics
}

func NewSessions(db *gorm.DB, size int, acquireTimeout time.Duration, m *metrics.Metrics) *Sessions {
	if size < 1 {
		size = 1
	}
	return &Sessions{
		db:             db,
		sem:            semaphore.NewWeighted(int64(size)),
		acquireTimeout: acquireTimeout,
		metrics:        m,
	}
}

// DB exposes the pool for health checks and migrations.
func (s *Sessions) DB() *gorm.DB { return s.db }

// Do runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back when fn fails, panics or ctx is cancelled. The slot is
// released exactly once on every path.
func (s *Sessions) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	start := time.Now()                    // Measure how long the caller waits
	if err := s.acquire(ctx); err != nil { // Wait for a free slot
		s.metrics.SessionExhausted()
		return err
	}
	s.metrics.SessionAcquired(time.Since(start))

	outcome := "rollback" // Overwritten only after a commit
	defer func() {
		s.sem.Release(1) // Give the slot back on every path
		s.metrics.SessionReleased(outcome)
	}()

	err := s.db.WithContext(ctx).Transaction(fn) // Commit on nil, roll back on error or panic
	if err != nil {
		var typed *apperr.Error
		// past the deadline the driver reports a done transaction, not the cause
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.As(err, &typed) {
			return apperr.Exhausted("database operation timed out", errors.Join(ctxErr, err))
		}
		return apperr.FromDB(err, "record not found")
	}
	outcome = "commit"
	return nil
}

func (s *Sessions) acquire(ctx context.Context) error {
	waitCtx := ctx
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}
	err := s.sem.Acquire(waitCtx, 1)
	switch {
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.Canceled):
		return apperr.Exhausted("request cancelled while waiting for a database session", err)
	default:
		return apperr.Exhausted("no database session available", err)
	}
}
