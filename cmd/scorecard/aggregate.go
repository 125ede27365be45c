//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/one-acre-fund/application-score-card/infrastructure/storage"
	"github.com/one-acre-fund/application-score-card/internal/application"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

func aggregateCommand() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "Validate every record and write the sorted, normalized score cards",
		Flags: []cli.Flag{
			configFlag(),
			inputFlag(),
			workersFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File that receives the aggregated JSON array",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics in text format to this file after the run",
			},
			&cli.BoolFlag{
				Name:  "report-unscored",
				Usage: "Include the number of unscored areas in each record",
			},
			&cli.BoolFlag{
				Name:  "skip-validation",
				Usage: "Aggregate and write every record that can be scored, without the validation gate",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			runner, registry, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer writeMetrics(cfg, registry)

			source := storage.NewDirectorySource(cfg.InputDir)
			sink := storage.NewJSONFileSink(cfg.OutputPath)

			if cmd.Bool("skip-validation") {
				return aggregateUnchecked(ctx, cmd, runner, source, sink, cfg.OutputPath)
			}

			report, err := runner.Run(ctx, source, sink)
			if err != nil {
				return err
			}

			printOutcomes(cmd.Root().Writer, report.Failures())
			if report.Failed() {
				status := "output not written"
				if report.Written {
					status = "output written"
				}
				return fmt.Errorf("%w: %d records, %s", errBatchFailed, len(report.Failures()), status)
			}

			fmt.Fprintf(cmd.Root().Writer, "wrote %d records to %s (%d warnings)\n",
				len(report.Records), cfg.OutputPath, report.WarningCount())
			return nil
		},
	}
}

func aggregateUnchecked(
	ctx context.Context,
	cmd *cli.Command,
	runner *application.Runner,
	source ports.RecordSource,
	sink ports.RecordSink,
	outputPath string,
) error {
	docs, err := source.Load(ctx)
	if err != nil {
		return err
	}

	report := runner.AggregateAll(ctx, docs)
	for _, o := range report.Failures() {
		slog.Warn("record skipped", "source", o.Source, "error", o.Err)
	}

	if err := runner.Write(ctx, report, sink); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "wrote %d of %d records to %s\n", len(report.Records), len(docs), outputPath)
	return nil
}
