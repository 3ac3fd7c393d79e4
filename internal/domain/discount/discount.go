// Package discount prices an amount for a customer category.
//
// Each category maps to a Strategy. Strategies are built by a Factory, so a
// new category is added by registering a builder (or inserting a rule row)
// rather than by editing a conditional chain.
package discount

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Category identifies a customer pricing tier.
type Category string

const (
	// CategoryRegular pays the full amount.
	CategoryRegular Category = "regular"
	// CategoryVIP receives 10% off.
	CategoryVIP Category = "vip"
	// CategoryStudent receives 5% off.
	CategoryStudent Category = "student"
)

var (
	// ErrUnknownCategory is returned when no strategy is known for a category.
	ErrUnknownCategory = errors.New("unknown customer category")
	// ErrNegativeAmount is returned when a negative amount is priced.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrInvalidRule is returned when a stored rule has a percentage outside [0, 100].
	ErrInvalidRule = errors.New("invalid discount rule")
	// ErrAmountOutOfRange is returned for amounts with too many integer or
	// fractional digits to price.
	ErrAmountOutOfRange = errors.New("amount out of range")
	// ErrInvalidBuilder is returned when registering a nil Builder.
	ErrInvalidBuilder = errors.New("invalid strategy builder")
)

const (
	// MaxIntegerDigits bounds the digits before the decimal point of an amount.
	MaxIntegerDigits = 15
	// MaxFractionDigits bounds the digits after the decimal point of an amount.
	MaxFractionDigits = 18
)

// CheckAmount rejects negative amounts and amounts outside the priceable
// range. It inspects only the coefficient and exponent, so it stays cheap for
// inputs like "1e2000000000".
func CheckAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	exp := int(amount.Exponent())
	if exp < -MaxFractionDigits {
		return errors.Wrapf(ErrAmountOutOfRange, "more than %d fractional digits", MaxFractionDigits)
	}
	if amount.NumDigits()+exp > MaxIntegerDigits {
		return errors.Wrapf(ErrAmountOutOfRange, "more than %d integer digits", MaxIntegerDigits)
	}
	return nil
}

var categoryAliases = map[string]Category{
	"estudante": CategoryStudent,
	"normal":    CategoryRegular,
}

// ParseCategory normalizes user input into a Category. Matching is
// case-insensitive and ignores surrounding whitespace. An empty value is
// rejected with ErrUnknownCategory; any other value is returned as-is so that
// data-defined categories can still be resolved by the Factory.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return "", errors.Wrap(ErrUnknownCategory, "empty category")
	}
	if c, ok := categoryAliases[v]; ok {
		return c, nil
	}
	return Category(v), nil
}

// Rule is a data-defined category priced as a percentage off.
type Rule struct {
	Category    Category
	PercentOff  decimal.Decimal
	Description string
}

// Validate checks that PercentOff lies in [0, 100].
func (r Rule) Validate() error {
	if CheckAmount(r.PercentOff) != nil || r.PercentOff.GreaterThan(hundred) {
		return errors.Wrapf(ErrInvalidRule, "category %q: percent off %s", r.Category, r.PercentOff)
	}
	return nil
}

// RuleRepository provides lookup of data-defined discount rules.
type RuleRepository interface {
	FindByCategory(ctx context.Context, c Category) (*Rule, error)
	List(ctx context.Context) ([]Rule, error)
}
