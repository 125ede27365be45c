//nolint:wrapcheck
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/one-acre-fund/application-score-card/infrastructure/middleware"
	"github.com/one-acre-fund/application-score-card/internal/application"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

var errBatchFailed = errors.New("one or more records failed")

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML configuration file",
		Sources: cli.EnvVars("SCORECARD_CONFIG"),
	}
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Directory holding one JSON assessment per file",
	}
}

func workersFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "Maximum number of records processed in parallel",
	}
}

// loadConfig reads the configuration file and environment, then applies
// command line flags that were set explicitly.
func loadConfig(cmd *cli.Command) (application.Config, error) {
	cfg, err := application.LoadConfig(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("input") {
		cfg.InputDir = cmd.String("input")
	}
	if cmd.IsSet("output") {
		cfg.OutputPath = cmd.String("output")
	}
	if cmd.IsSet("workers") {
		cfg.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("metrics-file") {
		cfg.Metrics.TextfilePath = cmd.String("metrics-file")
	}
	if cmd.IsSet("addr") {
		cfg.HTTP.Addr = cmd.String("addr")
	}
	if cmd.IsSet("report-unscored") {
		cfg.Aggregator.ReportUnscoredAreas = cmd.Bool("report-unscored")
	}

	return cfg, cfg.Validate()
}

// newRunner wires the runner with Prometheus metrics on a private registry
// and the OpenTelemetry stage observer.
func newRunner(cfg application.Config) (*application.Runner, *prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	runner, err := application.NewRunner(cfg,
		application.WithMetrics(middleware.NewPrometheusMetrics(registry)),
		application.WithObserver(middleware.NewOTelBatchObserver()),
		application.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, nil, err
	}
	return runner, registry, nil
}

func writeMetrics(cfg application.Config, registry *prometheus.Registry) {
	if cfg.Metrics.TextfilePath == "" {
		return
	}
	if err := prometheus.WriteToTextfile(cfg.Metrics.TextfilePath, registry); err != nil {
		slog.Warn("failed to write metrics", "error", ports.NewMetricsError("scorecard", "write_textfile", err),
			"path", cfg.Metrics.TextfilePath)
	}
}

// printOutcomes writes one line per failed record followed by its messages,
// and every warning, to w.
func printOutcomes(w io.Writer, outcomes []application.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Validation != nil && o.Validation.Valid && len(o.Validation.Warnings) == 0:
			fmt.Fprintf(w, "ok      %s\n", o.Source)
		case o.Err != nil:
			fmt.Fprintf(w, "FAIL    %s\n", o.Source)
		default:
			fmt.Fprintf(w, "warn    %s\n", o.Source)
		}

		if o.Validation != nil {
			for _, msg := range o.Validation.Errors {
				fmt.Fprintf(w, "    error:   %s\n", msg)
			}
			for _, msg := range o.Validation.Warnings {
				fmt.Fprintf(w, "    warning: %s\n", msg)
			}
		} else if o.Err != nil {
			fmt.Fprintf(w, "    error:   %v\n", o.Err)
		}
	}
}
