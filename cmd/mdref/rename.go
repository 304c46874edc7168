package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/snapshot"
)

type renameOutput struct {
	From   string              `json:"from"`
	To     string              `json:"to"`
	Report *core.RewriteReport `json:"report"`
}

func newRenameCmd(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename or move a file and rewrite every link to it",
		Long: `Rename moves a file listed in a sidecar, moves its sidecar entry, and
rewrites the inline links and structured references that point at it.
Links carrying a #fragment are left untouched. An existing snapshot is
rewritten afterwards. Exits with status 1 when some file could not be
rewritten.`,
		Example: `  mdref rename --from settings/character1.md --to settings/hero.md
  mdref rename --from contents/chapter1.md --to contents/part1/chapter1.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return errors.New("--from is required")
			}
			if to == "" {
				return errors.New("--to is required")
			}
			p, err := opts.openProject()
			if err != nil {
				return err
			}
			report, err := p.RenameFile(from, to)
			if err != nil {
				return err
			}
			if _, err := os.Stat(snapshot.Path(p.Root)); err == nil {
				if _, err := snapshot.Write(p); err != nil {
					return err
				}
			}

			out := renameOutput{From: from, To: to, Report: report}
			err = opts.print(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return printReportText(w, from, to, report)
			})
			if err != nil {
				return err
			}
			if !report.Success() {
				return errProblemsFound
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "current project-relative path")
	cmd.Flags().StringVar(&to, "to", "", "new project-relative path")
	return cmd
}
