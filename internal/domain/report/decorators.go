package report

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MultiSaver saves every report to all of its savers concurrently.
type MultiSaver []Saver

var _ Saver = MultiSaver(nil)

// Save returns the first error reported by any saver.
func (m MultiSaver) Save(ctx context.Context, r *Report) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m {
		g.Go(func() error {
			return s.Save(ctx, r)
		})
	}
	return g.Wait()
}

// Find returns the report from the first saver that can find it.
func (m MultiSaver) Find(ctx context.Context, id string) (*Report, error) {
	for _, s := range m {
		f, ok := s.(Finder)
		if !ok {
			continue
		}
		r, err := f.Find(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return r, err
	}
	return nil, ErrNotFound
}

// DedupSaver refuses reports whose content was already saved through it with
// ErrDuplicate. Membership is tracked with a bloom filter, so a false
// positive refuses a report that was never saved; size capacity accordingly.
type DedupSaver struct {
	next Saver

	mu     sync.Mutex
	filter *bloom.BloomFilter
}

var _ Saver = (*DedupSaver)(nil)

// NewDedupSaver wraps next with a filter sized for capacity distinct reports.
func NewDedupSaver(next Saver, capacity uint) *DedupSaver {
	return &DedupSaver{
		next:   next,
		filter: bloom.NewWithEstimates(capacity, 0.001),
	}
}

// Save forwards r to the wrapped saver, or returns ErrDuplicate when its
// content was seen before.
func (s *DedupSaver) Save(ctx context.Context, r *Report) error {
	s.mu.Lock()
	seen := s.filter.TestString(r.Content)
	s.mu.Unlock()

	if seen {
		zctx.From(ctx).Debug("Duplicate report skipped", zap.String("report_id", r.ID))
		return ErrDuplicate
	}

	if err := s.next.Save(ctx, r); err != nil {
		return err
	}

	s.mu.Lock()
	s.filter.AddString(r.Content)
	s.mu.Unlock()
	return nil
}

// Find delegates to the wrapped saver when it is a Finder.
func (s *DedupSaver) Find(ctx context.Context, id string) (*Report, error) {
	if f, ok := s.next.(Finder); ok {
		return f.Find(ctx, id)
	}
	return nil, ErrNotFound
}

// RetrySaver retries failed saves with a fixed delay.
type RetrySaver struct {
	next     Saver
	attempts uint
	delay    time.Duration
}

var _ Saver = (*RetrySaver)(nil)

// NewRetrySaver wraps next. attempts counts the first try.
func NewRetrySaver(next Saver, attempts uint, delay time.Duration) *RetrySaver {
	if attempts == 0 {
		attempts = 1
	}
	return &RetrySaver{next: next, attempts: attempts, delay: delay}
}

// Save calls the wrapped saver until it succeeds, the attempts are used up,
// or ctx is done.
func (s *RetrySaver) Save(ctx context.Context, r *Report) error {
	return retry.Do(
		func() error {
			return s.next.Save(ctx, r)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			zctx.From(ctx).Warn("Report save failed, retrying",
				zap.String("report_id", r.ID),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// Find delegates to the wrapped saver when it is a Finder.
func (s *RetrySaver) Find(ctx context.Context, id string) (*Report, error) {
	if f, ok := s.next.(Finder); ok {
		return f.Find(ctx, id)
	}
	return nil, ErrNotFound
}
