package cmd

import (
	"fmt"

	"github.com/ZanzyTHEbar/asset-index/aidx/query"

	"github.com/spf13/cobra"
)

type dirsOptions struct {
	snapshot  string
	dir       string
	recursive bool
}

// newDirsCommand creates the 'assetidx dirs' command
func newDirsCommand(g *globalOptions) *cobra.Command {
	opts := &dirsOptions{}

	cmd := &cobra.Command{
		Use:   "dirs",
		Short: "List the indexed directories of a snapshot",
		Long: `Print a directory and its subdirectories, one per line, each followed
by the number of files below it. Without --dir every root is listed.
Only direct subdirectories are printed unless --recursive is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirs(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Snapshot path (default: query.snapshot)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory to list (default: every root)")
	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "List every directory below, not only direct subdirectories")

	return cmd
}

func runDirs(cmd *cobra.Command, g *globalOptions, opts *dirsOptions) error {
	snapshot := opts.snapshot
	if snapshot == "" {
		snapshot = g.cfg.Query.Snapshot
	}
	engine, err := query.Open(snapshot, g.logger)
	if err != nil {
		return err
	}

	dirs, err := engine.Directories(opts.dir, opts.recursive)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range dirs {
		fmt.Fprintf(out, "%s\t%d\n", d.Path, len(d.Files))
	}
	return nil
}
