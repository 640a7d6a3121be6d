package cmd

import (
	"github.com/ZanzyTHEbar/asset-index/aidx/indexing"
	"github.com/ZanzyTHEbar/asset-index/aidx/query"

	"github.com/spf13/cobra"
)

type inspectOptions struct {
	snapshot string
	dir      string
	depth    int
}

// newInspectCommand creates the 'assetidx inspect' command
func newInspectCommand(g *globalOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a snapshot as YAML",
		Long: `Print the file table and the named posting lists of a snapshot as YAML.
With --dir only that directory is printed, down to --depth levels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Snapshot path (default: query.snapshot)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Print only this directory")
	cmd.Flags().IntVar(&opts.depth, "depth", -1, "Levels of subdirectories to print with --dir (-1: all)")

	return cmd
}

func runInspect(cmd *cobra.Command, g *globalOptions, opts *inspectOptions) error {
	snapshot := opts.snapshot
	if snapshot == "" {
		snapshot = g.cfg.Query.Snapshot
	}
	engine, err := query.Open(snapshot, g.logger)
	if err != nil {
		return err
	}

	if opts.dir == "" {
		return indexing.WriteYAML(cmd.OutOrStdout(), indexing.NewManifest(engine.Index()))
	}
	d, err := engine.Directory(opts.dir)
	if err != nil {
		return err
	}
	return indexing.WriteYAML(cmd.OutOrStdout(), indexing.NewDirectoryManifest(d, opts.depth))
}
