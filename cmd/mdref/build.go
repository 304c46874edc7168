package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/snapshot"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Index the project and write the snapshot",
		Long: `Build walks the project, indexes every sidecar entry and structured
reference, and writes the result to .mdref/index.sqlite for the query and
stats commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.openProject()
			if err != nil {
				return err
			}
			info, err := snapshot.Write(p)
			if err != nil {
				return err
			}
			stats, err := p.Stats(core.StatsOptions{})
			if err != nil {
				return err
			}
			out := buildOutput{BuildInfo: info, Stats: stats}
			w := cmd.OutOrStdout()
			return opts.print(w, out, func(w io.Writer) error { return printBuildText(w, out) })
		},
	}
}
