package cmd

import (
	"fmt"

	internal "github.com/ZanzyTHEbar/asset-index/aidx"
	"github.com/ZanzyTHEbar/asset-index/aidx/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// globalOptions is shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE before any subcommand runs.
type globalOptions struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

func (o *globalOptions) load() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := o.logLevel
	if level == "" {
		level = cfg.Log.Level
	}
	o.cfg = cfg
	o.logger = internal.GetLeveledLogger(level)
	return nil
}

// NewRootCommand creates and returns the root cobra command for assetidx
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   internal.DefaultAppCMDShortCut,
		Short: "Token index over asset directory trees",
		Long: `assetidx walks one or more asset directories, splits every file name
into stem and extension tokens and stores, for every directory, the sorted
list of files carrying each token.

Queries name a directory and a set of tokens and return the files under
that directory carrying all of them. Files built from widely shared tokens
get the lowest identifiers, so the first match is the most generic one.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: search ., .., /etc/assetidx, ~/.config/assetidx)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newBuildCommand(opts))
	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newInspectCommand(opts))
	cmd.AddCommand(newDirsCommand(opts))

	return cmd
}
