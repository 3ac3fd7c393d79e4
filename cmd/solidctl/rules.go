package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xenking/solidkart/internal/domain/discount"
	"github.com/xenking/solidkart/internal/storage/postgres"
)

var errNoDatabase = errors.New("rules are stored in PostgreSQL: set --database-url")

func newRulesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage data-defined discount categories",
	}
	cmd.AddCommand(newRulesListCmd(opts), newRulesSetCmd(opts))
	return cmd
}

func newRulesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored discount rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, cleanup, err := opts.ruleRepository(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rules, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeRules(cmd.OutOrStdout(), rules)
		},
	}
}

func newRulesSetCmd(opts *rootOptions) *cobra.Command {
	var (
		category    string
		percentOff  string
		description string
	)

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Create or replace a stored discount rule",
		Example: `  solidctl rules set --category employee --percent-off 20 --database-url postgres://...`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := discount.ParseCategory(category)
			if err != nil {
				return err
			}
			p, err := decimal.NewFromString(percentOff)
			if err != nil {
				return errors.Wrapf(err, "parse percent off %q", percentOff)
			}
			rule := discount.Rule{Category: c, PercentOff: p, Description: description}
			if err := rule.Validate(); err != nil {
				return err
			}

			repo, cleanup, err := opts.ruleRepository(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := repo.Upsert(cmd.Context(), rule); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s%% off\n", rule.Category, rule.PercentOff.String())
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name")
	cmd.Flags().StringVarP(&percentOff, "percent-off", "p", "", "Percentage off, between 0 and 100")
	cmd.Flags().StringVar(&description, "description", "", "Human readable description")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("percent-off")
	return cmd
}

func (o *rootOptions) ruleRepository(cmd *cobra.Command) (*postgres.RuleRepository, func(), error) {
	if o.databaseURL == "" {
		return nil, nil, errNoDatabase
	}
	pool, cleanup, err := o.connect(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRuleRepository(pool), cleanup, nil
}

func writeRules(out io.Writer, rules []discount.Rule) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "CATEGORY\tPERCENT OFF\tDESCRIPTION"); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range rules {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Category, r.PercentOff.String(), r.Description); err != nil {
			return errors.Wrapf(err, "write rule %s", r.Category)
		}
	}
	return w.Flush()
}
