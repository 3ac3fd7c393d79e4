package discount

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"
)

// Builder constructs a fresh Strategy.
type Builder func() Strategy

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithRules makes the Factory fall back to repo for categories that have no
// registered builder.
func WithRules(repo RuleRepository) FactoryOption {
	return func(f *Factory) {
		f.rules = repo
	}
}

// Factory maps categories to strategies. Code-registered builders take
// precedence over rules from the repository.
type Factory struct {
	mu       sync.RWMutex
	builders map[Category]Builder
	rules    RuleRepository
}

// NewFactory returns a Factory with the built-in regular, vip and student
// categories registered.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		builders: map[Category]Builder{
			CategoryRegular: Regular,
			CategoryVIP:     VIP,
			CategoryStudent: Student,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register adds or replaces the builder for c. The category is normalized
// like ParseCategory does, so "Employee" and "employee" are the same.
func (f *Factory) Register(c Category, b Builder) error {
	if b == nil {
		return errors.Wrapf(ErrInvalidBuilder, "category %q", c)
	}
	c, err := ParseCategory(string(c))
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[c] = b
	return nil
}

// New returns the Strategy for c, or ErrUnknownCategory.
func (f *Factory) New(ctx context.Context, c Category) (Strategy, error) {
	c, err := ParseCategory(string(c))
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	b, ok := f.builders[c]
	f.mu.RUnlock()
	if ok {
		return b(), nil
	}

	if f.rules == nil {
		return nil, errors.Wrapf(ErrUnknownCategory, "category %q", c)
	}

	rule, err := f.rules.FindByCategory(ctx, c)
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			return nil, errors.Wrapf(ErrUnknownCategory, "category %q", c)
		}
		return nil, errors.Wrap(err, "lookup rule")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return PercentOff(rule.PercentOff), nil
}

// Categories lists every category the Factory can build, sorted.
func (f *Factory) Categories(ctx context.Context) ([]Category, error) {
	f.mu.RLock()
	out := make([]Category, 0, len(f.builders))
	for c := range f.builders {
		out = append(out, c)
	}
	f.mu.RUnlock()

	if f.rules != nil {
		rules, err := f.rules.List(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list rules")
		}
		for _, r := range rules {
			out = append(out, r.Category)
		}
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}
