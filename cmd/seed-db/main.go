package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/solidkart/internal/domain/discount"
	"github.com/xenking/solidkart/internal/storage/postgres"
)

type ruleJSON struct {
	Category    string          `json:"category"`
	PercentOff  decimal.Decimal `json:"percentOff"`
	Description string          `json:"description"`
}

func main() {
	var (
		databaseURL string
		rulesFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&rulesFile, "rules-file", "db/seed/rules.json", "path to discount rules JSON file")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, rulesFile); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}

	lg.Info("Seed completed successfully")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, rulesFile string) error {
	lg.Info("Connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	rules, err := readRules(rulesFile)
	if err != nil {
		return errors.Wrap(err, "read rules")
	}

	repo := postgres.NewRuleRepository(pool)
	lg.Info("Upserting discount rules", zap.Int("count", len(rules)))

	for _, r := range rules {
		if err := repo.Upsert(ctx, r); err != nil {
			return errors.Wrapf(err, "upsert rule %s", r.Category)
		}
		lg.Info("Upserted rule",
			zap.String("category", string(r.Category)),
			zap.String("percent_off", r.PercentOff.String()),
		)
	}

	return nil
}

func readRules(path string) ([]discount.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read rules file")
	}

	var raw []ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse rules JSON")
	}

	rules := make([]discount.Rule, 0, len(raw))
	for _, r := range raw {
		c, err := discount.ParseCategory(r.Category)
		if err != nil {
			return nil, err
		}
		rule := discount.Rule{Category: c, PercentOff: r.PercentOff, Description: r.Description}
		if err := rule.Validate(); err != nil {
			return nil, errors.Wrapf(err, "rule %s", r.Category)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
