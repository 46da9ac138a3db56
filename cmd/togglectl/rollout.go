package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

const noVariation = "(default)"

type bucketCount struct {
	Variation string
	Count     int
}

// simulateRollout evaluates name for samples random subjects and counts the
// variation each one lands in.
func simulateRollout(ev *toggle.Evaluator, snap *toggle.Snapshot, name string, base toggle.Attributes, samples int) ([]bucketCount, error) {
	counts := make(map[string]int)
	for range samples {
		attrs := make(toggle.Attributes, len(base)+1)
		for k, v := range base {
			attrs[k] = v
		}
		attrs[toggle.IdentityKey] = uuid.NewString()

		res, err := ev.Evaluate(snap, name, attrs, nil, noVariation)
		if err != nil {
			return nil, err
		}
		counts[res.VariationID]++
	}

	out := make([]bucketCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, bucketCount{Variation: v, Count: n})
	}
	slices.SortFunc(out, func(a, b bucketCount) int {
		switch {
		case a.Variation < b.Variation:
			return -1
		case a.Variation > b.Variation:
			return 1
		}
		return 0
	})
	return out, nil
}

func newRolloutCmd(a *app) *cobra.Command {
	var (
		file, name string
		samples    int
		pairs      []string
	)

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Simulate bucketing for random subjects and print the split",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if samples <= 0 {
				return fmt.Errorf("--samples must be positive, got %d", samples)
			}
			snap, err := a.loadSnapshot(cmd.Context(), file)
			if err != nil {
				return err
			}
			base, err := parseAttrs(pairs)
			if err != nil {
				return err
			}

			ev := toggle.NewEvaluator(toggle.WithLogger(a.log))
			counts, err := simulateRollout(ev, snap, name, base, samples)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VARIATION\tCOUNT\tSHARE")
			for _, c := range counts {
				fmt.Fprintf(w, "%s\t%d\t%.2f%%\n", c.Variation, c.Count, 100*float64(c.Count)/float64(samples))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file (.json, .yaml)")
	cmd.Flags().StringVarP(&name, "toggle", "t", "", "toggle name")
	cmd.Flags().IntVarP(&samples, "samples", "n", 10000, "number of random subjects")
	cmd.Flags().StringArrayVarP(&pairs, "attr", "a", nil, "extra context attribute key=value, repeatable")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("toggle")
	return cmd
}
