package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/solidkart/internal/domain/discount"
	"github.com/xenking/solidkart/internal/storage/postgres"
)

type rootOptions struct {
	verbose     bool
	databaseURL string
	logger      *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "solidctl",
		Short: "Price amounts per customer category and generate reports",
		Long: `solidctl quotes discounts through the same strategy factory as the API
server and runs the report pipeline locally.

Categories stored in PostgreSQL are available when --database-url is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			lg, err := config.Build()
			if err != nil {
				return errors.Wrap(err, "build logger")
			}
			opts.logger = lg
			cmd.SetContext(zctx.Base(cmd.Context(), lg))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL for stored discount rules")

	cmd.AddCommand(
		newQuoteCmd(opts),
		newCategoriesCmd(opts),
		newReportCmd(),
		newRulesCmd(opts),
	)
	return cmd
}

// connect opens a pool when a database URL is configured. The returned
// cleanup func is always safe to call.
func (o *rootOptions) connect(ctx context.Context) (*pgxpool.Pool, func(), error) {
	if o.databaseURL == "" {
		return nil, func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, o.databaseURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to database")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, errors.Wrap(err, "run migrations")
	}
	return pool, pool.Close, nil
}

// discountService builds the same service the API server uses.
func (o *rootOptions) discountService(ctx context.Context) (*discount.Service, func(), error) {
	pool, cleanup, err := o.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	var factoryOpts []discount.FactoryOption
	if pool != nil {
		factoryOpts = append(factoryOpts, discount.WithRules(postgres.NewRuleRepository(pool)))
	}
	svc, err := discount.NewService(discount.NewFactory(factoryOpts...), noop.NewMeterProvider())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
