package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/snapshot"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var fields string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show project statistics from the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldList := parseFields(fields)
			if err := core.ValidateStatsFields(fieldList); err != nil {
				return err
			}
			root, err := opts.projectRoot()
			if err != nil {
				return err
			}
			s, err := snapshot.Open(root)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Stats(core.StatsOptions{Fields: fieldList})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), buildStatsMap(result, fieldList), func(w io.Writer) error {
				return printStatsText(w, result, fieldList)
			})
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output")
	return cmd
}
