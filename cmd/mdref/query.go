package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/snapshot"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var file, fields string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up a file in the snapshot",
		Long: `Query reads .mdref/index.sqlite written by 'mdref build' and prints the
entry, references and referenced-by lists of a file without walking the
project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			fieldList := parseFields(fields)
			root, err := opts.projectRoot()
			if err != nil {
				return err
			}
			s, err := snapshot.Open(root)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Query(file, snapshot.QueryOptions{Fields: fieldList})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printQueryText(w, result, fieldList)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "project-relative path of the file")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output (entry,references,referenced_by,invalid)")
	return cmd
}
