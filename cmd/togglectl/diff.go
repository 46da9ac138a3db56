package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/togglekit/pkg/toggle"
)

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "List toggles that are new or changed between two snapshot files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := a.loadSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			next, err := a.loadSnapshot(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			for _, key := range toggle.ChangedKeys(next, prev) {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}
