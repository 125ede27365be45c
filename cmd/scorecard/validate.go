//nolint:wrapcheck
package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/one-acre-fund/application-score-card/infrastructure/storage"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check assessment records for structural errors and advisory warnings",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			configFlag(),
			inputFlag(),
			workersFlag(),
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

			var source ports.RecordSource = storage.NewDirectorySource(cfg.InputDir)
			if cmd.NArg() > 0 {
				source = storage.NewFileSource(cmd.Args().Slice()...)
			}

			docs, err := source.Load(ctx)
			if err != nil {
				return err
			}

			report := runner.ValidateAll(ctx, docs)
			printOutcomes(cmd.Root().Writer, report.Validation)

			failed := len(report.Failures())
			fmt.Fprintf(cmd.Root().Writer, "\n%d records, %d failed, %d warnings\n",
				len(docs), failed, report.WarningCount())

			if report.Failed() {
				return fmt.Errorf("%w: %d of %d", errBatchFailed, failed, len(docs))
			}
			return nil
		},
	}
}
