package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
)

func newRefsCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Show the structured references of a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			if err := core.ValidateCanonical(file, "file"); err != nil {
				return err
			}
			p, err := opts.openProject()
			if err != nil {
				return err
			}
			path := core.NormalizePath(file)
			refs := p.Refs.GetReferences(path)
			out := refsOutput{
				Path:         path,
				References:   refs.References,
				ReferencedBy: refs.ReferencedBy,
				Invalid:      p.Refs.GetInvalidReferences(path),
			}
			if out.Invalid == nil {
				out.Invalid = []string{}
			}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) error { return printRefsText(w, out) })
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "project-relative path of the file")
	return cmd
}
