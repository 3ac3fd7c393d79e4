package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/solidkart/internal/domain/discount"
)

const (
	getRuleByCategorySQL = `SELECT category, percent_off, description
		FROM discount_rules WHERE category = LOWER($1) AND active = TRUE`

	listRulesSQL = `SELECT category, percent_off, description
		FROM discount_rules WHERE active = TRUE ORDER BY category`

	upsertRuleSQL = `INSERT INTO discount_rules (category, percent_off, description)
		VALUES (LOWER($1), $2, $3)
		ON CONFLICT (category) DO UPDATE
		SET percent_off = EXCLUDED.percent_off, description = EXCLUDED.description, active = TRUE`
)

var _ discount.RuleRepository = (*RuleRepository)(nil)

// RuleRepository implements discount.RuleRepository backed by PostgreSQL.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository returns a RuleRepository that uses the given pool.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// FindByCategory looks up an active rule. Returns discount.ErrUnknownCategory
// when no matching rule exists.
func (r *RuleRepository) FindByCategory(ctx context.Context, c discount.Category) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx, getRuleByCategorySQL, string(c))
	if err != nil {
		return nil, fmt.Errorf("finding rule for %q: %w", c, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrUnknownCategory
		}
		return nil, fmt.Errorf("finding rule for %q: %w", c, err)
	}
	return &rule, nil
}

// List returns all active rules ordered by category.
func (r *RuleRepository) List(ctx context.Context) ([]discount.Rule, error) {
	rows, err := r.pool.Query(ctx, listRulesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return pgx.CollectRows(rows, scanRule)
}

// Upsert creates or replaces the rule for rule.Category.
func (r *RuleRepository) Upsert(ctx context.Context, rule discount.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, upsertRuleSQL,
		string(rule.Category), rule.PercentOff, rule.Description,
	); err != nil {
		return fmt.Errorf("upserting rule %q: %w", rule.Category, err)
	}
	return nil
}

func scanRule(row pgx.CollectableRow) (discount.Rule, error) {
	var (
		rule     discount.Rule
		category string
	)
	err := row.Scan(&category, &rule.PercentOff, &rule.Description)
	rule.Category = discount.Category(category)
	return rule, err
}
