// Package report produces a formatted report through three single-purpose
// collaborators: a Generator produces raw data, a Formatter renders it, and
// a Saver persists the result. Processor composes them in that order.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrEmptyContent is returned when the generator produces no data.
	ErrEmptyContent = errors.New("report data is empty")
	// ErrDuplicate is returned when a report with the same content was
	// already saved and the new one was not stored.
	ErrDuplicate = errors.New("report with the same content already saved")
)

// Report is a formatted, persisted report.
type Report struct {
	ID        string
	Content   string
	CreatedAt time.Time
}

// Generator produces the raw report data.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// Formatter renders raw data into report content.
type Formatter interface {
	Format(data string) string
}

// Saver persists a report.
type Saver interface {
	Save(ctx context.Context, r *Report) error
}

// Finder loads a previously saved report by ID.
type Finder interface {
	Find(ctx context.Context, id string) (*Report, error)
}
