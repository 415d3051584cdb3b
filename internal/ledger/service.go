// Package ledger is the only sanctioned mutation surface for wallets,
// donations and fund requests.
//
// Every mutation is one store transaction that re-reads the aggregates it
// touches, applies the domain transition and writes them back under an
// optimistic version check. Version conflicts are retried a bounded number
// of times before surfacing domain.ErrTransientConflict.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"crowdfund_ledger/internal/cache"
	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/metrics"
	"crowdfund_ledger/internal/store"

	"github.com/sirupsen/logrus"
)

// Defaults used when Options leaves a field zero
const (
	DefaultMaxAttempts = 5
	DefaultCacheTTL    = 60 * time.Second
	baseBackoff        = 5 * time.Millisecond
	maxBackoffShift    = 4
)

// Options tunes a Service
type Options struct {
	VerificationThreshold int                // distinct endorsements needed to verify a request
	MaxAttempts           int                // commit attempts per mutation
	CacheTTL              time.Duration      // lifetime of read snapshots
	Logger                logrus.FieldLogger // audit log, discarded when nil
	Clock                 func() time.Time   // time source, time.Now when nil
}

// Service implements wallet accounting, fund requests, settlement and verification
type Service struct {
	store       store.Store
	cache       cache.Cache
	gate        domain.VerificationGate
	maxAttempts int
	ttl         time.Duration
	log         logrus.FieldLogger
	now         func() time.Time
}

// New builds a Service over st, using c for read snapshots
func New(st store.Store, c cache.Cache, opts Options) *Service {
	s := &Service{
		store:       st,
		cache:       c,
		gate:        domain.NewVerificationGate(opts.VerificationThreshold),
		maxAttempts: opts.MaxAttempts,
		ttl:         opts.CacheTTL,
		log:         opts.Logger,
		now:         opts.Clock,
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCacheTTL
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// VerificationThreshold is the number of distinct endorsements that verifies a request
func (s *Service) VerificationThreshold() int {
	return s.gate.Threshold
}

// commit runs fn in a store transaction, retrying on version conflicts.
// fn must assign its results unconditionally since it may run more than once.
func (s *Service) commit(ctx context.Context, op string, fn func(tx store.Tx) error) error {
	for attempt := 1; ; attempt++ {
		err := s.store.Transaction(ctx, fn)
		if !errors.Is(err, store.ErrConflict) {
			return err // committed, or failed for good
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("%s after %d attempts: %w", op, attempt, domain.ErrTransientConflict)
		}
		metrics.ObserveRetry(op)
		s.log.WithFields(logrus.Fields{"operation": op, "attempt": attempt}).Debug("commit conflict, retrying")

		backoff := baseBackoff << min(attempt-1, maxBackoffShift) // Capped exponential backoff
		timer := time.NewTimer(backoff + rand.N(backoff)) // Jitter spreads competing writers
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// audit logs and counts the outcome of a mutation
func (s *Service) audit(op, message string, fields logrus.Fields, err error) {
	entry := s.log.WithFields(fields).WithField("type", op)
	switch kind := domain.Kind(err); {
	case err == nil:
		entry.WithField("timestamp", s.now().Format(time.RFC3339)).Info(message)
		metrics.ObserveOperation(op, "ok")
	case kind != "":
		entry.WithField("error", err.Error()).Warn(message + " rejected")
		metrics.ObserveOperation(op, kind)
	default:
		entry.WithField("error", err.Error()).Error(message + " failed")
		metrics.ObserveOperation(op, "error")
	}
}

// cached serves key from the snapshot cache or fills it with load
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, bool, error) {
	var v T
	if found, err := s.cache.Get(ctx, key, &v); err == nil && found {
		return v, true, nil
	} else if err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache read failed")
	}
	v, err := load()
	if err != nil {
		return v, false, err
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache write failed")
	}
	return v, false, nil
}

// forget drops snapshots made stale by a commit
func (s *Service) forget(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("cache invalidation failed")
	}
}

// List is one page of a newest-first listing
type List[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newList[T any](items []T, total int64, page store.Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{
		Items:      items,
		Page:       page.Number,
		PageSize:   page.Size,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}
