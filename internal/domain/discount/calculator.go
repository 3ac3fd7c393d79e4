package discount

import "github.com/shopspring/decimal"

// Calculator prices amounts with a strategy injected at construction time.
type Calculator struct {
	strategy Strategy
}

// NewCalculator creates a Calculator. A nil strategy charges the full amount.
func NewCalculator(s Strategy) *Calculator {
	if s == nil {
		s = Regular()
	}
	return &Calculator{strategy: s}
}

// Calculate applies the strategy and rounds the result to 2 decimal places.
// Amounts failing CheckAmount are rejected before any arithmetic.
func (c *Calculator) Calculate(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := CheckAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return c.strategy.Apply(amount).Round(2), nil
}
