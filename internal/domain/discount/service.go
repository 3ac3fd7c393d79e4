package discount

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// QuoteRequest holds the input for pricing an amount.
type QuoteRequest struct {
	Category string
	Amount   decimal.Decimal
}

// Quote is the priced result for a single amount.
type Quote struct {
	Category   Category
	Amount     decimal.Decimal
	Discounted decimal.Decimal
	Saved      decimal.Decimal
}

// Service resolves a strategy per request and prices the amount with it.
type Service struct {
	factory *Factory
	quotes  metric.Int64Counter
}

// NewService creates a Service. Quotes are counted on the meter from mp.
func NewService(factory *Factory, mp metric.MeterProvider) (*Service, error) {
	quotes, err := mp.Meter("solidkart/discount").Int64Counter("discount.quotes",
		metric.WithDescription("Number of priced quotes"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create quotes counter")
	}
	return &Service{factory: factory, quotes: quotes}, nil
}

// Quote prices req.Amount for req.Category.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	c, err := ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	strategy, err := s.factory.New(ctx, c)
	if err != nil {
		return nil, err
	}

	discounted, err := NewCalculator(strategy).Calculate(req.Amount)
	if err != nil {
		return nil, err
	}

	amount := req.Amount.Round(2)
	q := &Quote{
		Category:   c,
		Amount:     amount,
		Discounted: discounted,
		Saved:      amount.Sub(discounted),
	}

	s.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("category", string(c))))
	zctx.From(ctx).Debug("Quote priced",
		zap.String("category", string(c)),
		zap.Stringer("amount", q.Amount),
		zap.Stringer("discounted", q.Discounted),
	)

	return q, nil
}

// Categories lists the categories that can be quoted.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.factory.Categories(ctx)
}
