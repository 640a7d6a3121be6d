package cmd

import (
	"fmt"

	"github.com/ZanzyTHEbar/asset-index/aidx/query"
	"github.com/ZanzyTHEbar/asset-index/aidx/solver"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	snapshot  string
	dir       string
	nonstrict bool
	first     bool
}

// newQueryCommand creates the 'assetidx query' command
func newQueryCommand(g *globalOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [term...]",
		Short: "Find files carrying every given token",
		Long: `Print the files under a directory whose names carry all given tokens.

A term is stem:NAME, ext:NAME or a bare NAME (a stem word). Words seen more
than once in one file name are addressed as NAME#N, N counting from 0. A #
inside a word is written ## (see inspect for the names of a directory).

With --nonstrict a term that is unknown, or that would leave no match, is
skipped instead of failing the query. Without terms every file under the
directory matches.`,
		Example: `  assetidx query --dir art/tiles grass ext:png
  assetidx query --first --nonstrict hero idle`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Snapshot path (default: query.snapshot)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory to search (default: the only root)")
	cmd.Flags().BoolVar(&opts.nonstrict, "nonstrict", false, "Skip terms that would empty the result (default: !query.strict)")
	cmd.Flags().BoolVar(&opts.first, "first", false, "Print only the lowest-ranked match")

	return cmd
}

func runQuery(cmd *cobra.Command, g *globalOptions, opts *queryOptions, args []string) error {
	terms, err := query.ParseTerms(args)
	if err != nil {
		return err
	}

	snapshot := opts.snapshot
	if snapshot == "" {
		snapshot = g.cfg.Query.Snapshot
	}
	policy := solver.Strict
	if !g.cfg.Query.Strict {
		policy = solver.Nonstrict
	}
	if cmd.Flags().Changed("nonstrict") {
		policy = solver.Strict
		if opts.nonstrict {
			policy = solver.Nonstrict
		}
	}

	engine, err := query.Open(snapshot, g.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	noMatch := func() {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "no match")
	}

	if opts.first {
		path, ok, err := engine.FindFirst(opts.dir, terms, policy)
		if err != nil {
			return err
		}
		if !ok {
			noMatch()
			return nil
		}
		fmt.Fprintln(out, path)
		return nil
	}

	m, err := engine.Find(opts.dir, terms, policy)
	if err != nil {
		return err
	}
	if len(m.Paths) == 0 {
		noMatch()
		return nil
	}
	for _, p := range m.Paths {
		fmt.Fprintln(out, p)
	}
	return nil
}
