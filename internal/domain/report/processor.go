package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithTracerProvider traces each pipeline stage with spans from tp.
func WithTracerProvider(tp trace.TracerProvider) ProcessorOption {
	return func(p *Processor) {
		p.tracer = tp.Tracer("solidkart/report")
	}
}

// Processor runs generate, format and save, in that order.
type Processor struct {
	generator Generator
	formatter Formatter
	saver     Saver

	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// NewProcessor composes the three stages. A nil saver discards the report.
func NewProcessor(g Generator, f Formatter, s Saver, opts ...ProcessorOption) *Processor {
	if s == nil {
		s = NopSaver{}
	}
	p := &Processor{
		generator: g,
		formatter: f,
		saver:     s,
		tracer:    noop.NewTracerProvider().Tracer("solidkart/report"),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process generates data, formats it, saves the result and returns it.
func (p *Processor) Process(ctx context.Context) (_ *Report, rerr error) {
	ctx, span := p.tracer.Start(ctx, "report.Process")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	data, err := p.generate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}
	if data == "" {
		return nil, ErrEmptyContent
	}

	r := &Report{
		ID:        p.newID(),
		Content:   p.format(ctx, data),
		CreatedAt: p.now().UTC(),
	}

	if err := p.save(ctx, r); err != nil {
		return nil, errors.Wrap(err, "save")
	}

	return r, nil
}

func (p *Processor) generate(ctx context.Context) (string, error) {
	ctx, span := p.tracer.Start(ctx, "report.Generate")
	defer span.End()
	return p.generator.Generate(ctx)
}

func (p *Processor) format(ctx context.Context, data string) string {
	_, span := p.tracer.Start(ctx, "report.Format")
	defer span.End()
	return p.formatter.Format(data)
}

func (p *Processor) save(ctx context.Context, r *Report) error {
	ctx, span := p.tracer.Start(ctx, "report.Save")
	defer span.End()
	return p.saver.Save(ctx, r)
}
