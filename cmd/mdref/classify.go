package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var from, link string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a link target as written in a document",
		Example: `  mdref classify --from contents/chapter1.md --link ../settings/character1.md
  mdref classify --from README.md --link https://example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return errors.New("--from is required")
			}
			if link == "" {
				return errors.New("--link is required")
			}
			root, err := opts.projectRoot()
			if err != nil {
				return err
			}
			cfg, err := core.LoadConfig(root)
			if err != nil {
				return err
			}
			c := core.NewResolver(root, cfg.ExternalSchemes).Classify(link, from)
			out := classifyOutput{From: core.NormalizePath(from), Link: link, Kind: c.Kind.String(), Path: c.Path}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) error { return printClassifyText(w, out) })
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "project-relative path of the document containing the link")
	cmd.Flags().StringVar(&link, "link", "", "raw link target")
	return cmd
}
