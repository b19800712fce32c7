package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xtablet/tabmap/internal/logger"
)

// Commit and Date are overridden at release-build time, e.g.
//
//	go build -ldflags "-X github.com/xtablet/tabmap/cmd.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/xtablet/tabmap/cmd.Date=$(date -u +%Y-%m-%d)"
var (
	Commit = "unknown"
	Date   = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		logger.Infof("tabmap %s", Version)
		logger.Infof("commit: %s", Commit)
		logger.Infof("built: %s", Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
