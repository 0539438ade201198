package cmd

import (
	"github.com/spf13/cobra"
)

func newVersionCmd(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("mirrorsync %s\n", info.Version)
			cmd.Printf("  commit: %s\n", info.Commit)
			cmd.Printf("  built:  %s\n", info.Date)
		},
	}
}
