package internal

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultConfigPath is the default path to the config directory
	DefaultAppName        = "assetidx"
	DefaultAppCMDShortCut = "assetidx"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultGlobalConfig   = filepath.Join(DefaultConfigPath, "config.yaml")

	// Index build defaults
	DefaultIgnoreFile   = ".assetignore"
	DefaultSnapshotPath = "assets.aidx"
	DefaultDelimiters   = []string{"_", "-", " "}
	DefaultLogLevel     = "info"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// GetLeveledLogger returns GetLogger filtered to the named level.
// Unknown or empty levels fall back to DefaultLogLevel.
func GetLeveledLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl, _ = zerolog.ParseLevel(DefaultLogLevel)
	}
	return GetLogger().Level(lvl)
}
