package main

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/solidkart/internal/app"
	"github.com/xenking/solidkart/internal/domain/report"
)

var errGzipWithoutDir = errors.New("--gzip requires --dir")

func newReportCmd() *cobra.Command {
	var (
		data string
		cfg  = app.DefaultReportConfig()
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate, format and save a report",
		Long: `report runs the generate, format and save pipeline once and prints the
formatted content. Without --dir the report is discarded after formatting.`,
		Example: `  solidctl report
  solidctl report --data "vendas de outubro" --dir ./reports --gzip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Compress && cfg.Dir == "" {
				return errGzipWithoutDir
			}
			if cfg.Dir != "" {
				cfg.Sinks = []string{app.SinkFile}
			}
			saver, err := app.NewReportSaver(cfg, nil)
			if err != nil {
				return err
			}
			svc, err := report.NewService(report.DefaultFormatter(), saver, noop.NewMeterProvider())
			if err != nil {
				return err
			}

			r, err := svc.Create(cmd.Context(), data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), r.Content)
			return err
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Report data (defaults to the built-in sample)")
	cmd.Flags().StringVar(&cfg.Dir, "dir", "", "Save the report under this directory")
	cmd.Flags().BoolVar(&cfg.Compress, "gzip", false, "Gzip the saved report")
	cmd.Flags().IntVar(&cfg.Retries, "retries", cfg.Retries, "Save attempts")
	return cmd
}
