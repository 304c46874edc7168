package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/fsys"
	"github.com/ryotapoi/mdref/internal/logger"
	"github.com/ryotapoi/mdref/internal/sidecar"
)

var version = "dev"

// errProblemsFound makes the process exit with status 1 after the command
// has already printed its result.
var errProblemsFound = errors.New("problems found")

// rootOptions holds the persistent flags shared by every sub-command.
type rootOptions struct {
	project string
	format  string
	verbose int
	logFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errProblemsFound) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "mdref",
		Short: "Keep links between Markdown project files consistent",
		Long: `mdref indexes a writing project whose directories carry YAML sidecar
metadata, tracks the references between its files, and rewrites every
inline link and structured reference when a file is renamed or moved.`,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			logger.Configure(opts.verbose, opts.logFile)
			return nil
		},
	}
	cmd.SetVersionTemplate("mdref version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.project, "project", "p", ".", "project root directory")
	flags.StringVar(&opts.format, "format", "text", "output format (json or text)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(
		newBuildCmd(opts),
		newRefsCmd(opts),
		newClassifyCmd(opts),
		newCheckCmd(opts),
		newRenameCmd(opts),
		newQueryCmd(opts),
		newStatsCmd(opts),
	)
	return cmd
}

func resolveVersion() string {
	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return v
}

// projectRoot returns the absolute project directory.
func (o *rootOptions) projectRoot() (string, error) {
	root, err := filepath.Abs(o.project)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", root)
	}
	return root, nil
}

// openProject loads the configuration and builds both indexes.
func (o *rootOptions) openProject() (*core.Project, error) {
	root, err := o.projectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := core.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	g := fsys.NewOS(root)
	p := core.NewProject(root, g, sidecar.New(g, cfg.MetaFile), cfg)
	if err := p.Rebuild(); err != nil {
		return nil, err
	}
	return p, nil
}

// print writes v in the selected format; text renders with textFn.
func (o *rootOptions) print(w io.Writer, v any, textFn func(io.Writer) error) error {
	if o.format == "json" {
		return printJSON(w, v)
	}
	return textFn(w)
}
