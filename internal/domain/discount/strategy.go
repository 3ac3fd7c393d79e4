package discount

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Strategy transforms an amount into the amount a customer pays.
type Strategy interface {
	Apply(amount decimal.Decimal) decimal.Decimal
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(amount decimal.Decimal) decimal.Decimal

// Apply calls f(amount).
func (f StrategyFunc) Apply(amount decimal.Decimal) decimal.Decimal {
	return f(amount)
}

// Multiplier scales the amount by a fixed factor.
type Multiplier struct {
	Factor decimal.Decimal
}

var _ Strategy = Multiplier{}

// Apply returns amount * Factor.
func (m Multiplier) Apply(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(m.Factor)
}

// PercentOff returns a Multiplier that removes p percent of the amount.
func PercentOff(p decimal.Decimal) Multiplier {
	return Multiplier{Factor: hundred.Sub(p).Div(hundred)}
}

// Regular charges the full amount.
func Regular() Strategy {
	return Multiplier{Factor: one}
}

// VIP charges 90% of the amount.
func VIP() Strategy {
	return Multiplier{Factor: decimal.RequireFromString("0.90")}
}

// Student charges 95% of the amount.
func Student() Strategy {
	return Multiplier{Factor: decimal.RequireFromString("0.95")}
}
