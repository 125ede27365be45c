package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/one-acre-fund/application-score-card/internal/testutils"
)

func main() {
	ctx := context.Background()

	appl := &cli.Command{
		Name:  "generate_sample_assessments",
		Usage: "Write synthetic assessment records for local runs and load tests",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "size",
				Usage: "Number of records to generate",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed; 0 picks one from the clock",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Directory receiving one JSON file per record",
				Value: "testdata/sample_assessments",
			},
			&cli.FloatFlag{
				Name:  "placeholder-rate",
				Usage: "Share of entries left with template comments",
				Value: testutils.DefaultGeneratorOptions().PlaceholderRate,
			},
			&cli.FloatFlag{
				Name:  "unknown-rate",
				Usage: "Share of entries not yet assessed",
				Value: testutils.DefaultGeneratorOptions().UnknownRate,
			},
		},
		Action: generate,
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

func generate(_ context.Context, cmd *cli.Command) error {
	seed := int64(cmd.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := testutils.DefaultGeneratorOptions()
	opts.PlaceholderRate = cmd.Float("placeholder-rate")
	opts.UnknownRate = cmd.Float("unknown-rate")

	dataset := testutils.GenerateSampleAssessments(int(cmd.Int("size")), seed, opts)

	output := cmd.String("output")
	paths, err := testutils.SaveAssessmentDataset(dataset, output)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	stats := testutils.ComputeDatasetStatistics(dataset)
	w := cmd.Root().Writer

	fmt.Fprintf(w, "Generated sample assessments:\n")
	fmt.Fprintf(w, "- Directory: %s\n", output)
	fmt.Fprintf(w, "- Files: %d\n", len(paths))
	fmt.Fprintf(w, "- Seed: %d\n", seed)
	fmt.Fprintf(w, "- Kinds: %v\n", stats.KindCount)
	fmt.Fprintf(w, "- Areas: %v\n", stats.AreaCount)
	fmt.Fprintf(w, "- Average areas per record: %.2f\n", stats.AvgAreas)
	fmt.Fprintf(w, "- Unknown entries: %d\n", stats.UnknownEntries)
	return nil
}
