package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

type evalOutput struct {
	Toggle      string        `json:"toggle"`
	Value       any           `json:"value"`
	VariationID string        `json:"variationId,omitempty"`
	Reason      toggle.Reason `json:"reason"`
	Error       string        `json:"error,omitempty"`
}

func newEvalCmd(a *app) *cobra.Command {
	var (
		file, name, def, variation string
		pairs                      []string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one toggle from a snapshot file",
		Example: `  togglectl eval --file toggles.yaml --toggle checkout --attr uuid=42 --attr country=DE
  togglectl eval --file toggles.json --toggle limit --default 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.loadSnapshot(cmd.Context(), file)
			if err != nil {
				return err
			}
			attrs, err := parseAttrs(pairs)
			if err != nil {
				return err
			}

			ev := toggle.NewEvaluator(toggle.WithLogger(a.log))
			res, evalErr := ev.Evaluate(snap, name, attrs, parseValue(def), variation)

			out := evalOutput{
				Toggle:      name,
				Value:       res.Value,
				VariationID: res.VariationID,
				Reason:      res.Reason,
			}
			if evalErr != nil {
				out.Error = evalErr.Error()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			return evalErr
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file (.json, .yaml)")
	cmd.Flags().StringVarP(&name, "toggle", "t", "", "toggle name")
	cmd.Flags().StringVar(&def, "default", "null", "default value, parsed as JSON when possible")
	cmd.Flags().StringVar(&variation, "variation", "", "default variation id")
	cmd.Flags().StringArrayVarP(&pairs, "attr", "a", nil, "context attribute key=value, repeatable")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("toggle")
	return cmd
}
