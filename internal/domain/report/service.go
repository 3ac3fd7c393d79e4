package report

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Service builds a Processor per request around a shared formatter and saver.
type Service struct {
	formatter Formatter
	saver     Saver
	opts      []ProcessorOption
	processed metric.Int64Counter
}

// NewService creates a Service. Processed reports are counted on the meter
// from mp; opts are passed to every Processor.
func NewService(f Formatter, s Saver, mp metric.MeterProvider, opts ...ProcessorOption) (*Service, error) {
	processed, err := mp.Meter("solidkart/report").Int64Counter("report.processed",
		metric.WithDescription("Number of reports generated and saved"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create processed counter")
	}
	if s == nil {
		s = NopSaver{}
	}
	return &Service{formatter: f, saver: s, opts: opts, processed: processed}, nil
}

// Create runs the pipeline over data, or over the default data when empty.
func (s *Service) Create(ctx context.Context, data string) (*Report, error) {
	g := DefaultGenerator()
	if data != "" {
		g = StaticGenerator(data)
	}

	r, err := NewProcessor(g, s.formatter, s.saver, s.opts...).Process(ctx)
	if err != nil {
		return nil, err
	}

	s.processed.Add(ctx, 1)
	zctx.From(ctx).Info("Report processed", zap.String("report_id", r.ID))
	return r, nil
}

// Find loads a saved report. It returns ErrNotFound when the saver cannot
// look reports up.
func (s *Service) Find(ctx context.Context, id string) (*Report, error) {
	f, ok := s.saver.(Finder)
	if !ok {
		return nil, ErrNotFound
	}
	return f.Find(ctx, id)
}
