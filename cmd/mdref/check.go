package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var fields string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report invalid references, untracked and missing files",
		Long: `Check loads the project and reports structured references that point at
no indexed entry, content files listed in no sidecar, and sidecar entries
whose file is gone. It exits with status 1 when an invalid reference is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldList := parseFields(fields)
			p, err := opts.openProject()
			if err != nil {
				return err
			}
			result, err := p.Diagnose(core.DiagnoseOptions{Fields: fieldList})
			if err != nil {
				return err
			}
			err = opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printDiagnoseText(w, result, fieldList)
			})
			if err != nil {
				return err
			}
			if result.HasProblems() {
				return errProblemsFound
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output (invalid_references,untracked,missing)")
	return cmd
}
