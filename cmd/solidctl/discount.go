package main

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xenking/solidkart/internal/domain/discount"
)

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		amount   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Apply the discount of a customer category to an amount",
		Example: `  solidctl quote --category vip --amount 100
  solidctl quote --category estudante --amount 59.90 --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return errors.Wrapf(err, "parse amount %q", amount)
			}

			svc, cleanup, err := opts.discountService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := svc.Quote(cmd.Context(), discount.QuoteRequest{Category: category, Amount: value})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !detailed {
				_, err = fmt.Fprintln(out, q.Discounted.StringFixed(2))
				return err
			}
			_, err = fmt.Fprintf(out, "category:   %s\namount:     %s\ndiscounted: %s\nsaved:      %s\n",
				q.Category, q.Amount.StringFixed(2), q.Discounted.StringFixed(2), q.Saved.StringFixed(2))
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(discount.CategoryRegular), "Customer category")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to price")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Print amount, discounted price and savings")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List known customer categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := opts.discountService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			cats, err := svc.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range cats {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
