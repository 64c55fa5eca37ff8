package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crater-survey/internal/version"
)

// getVersion returns the version string shown by --version.
func getVersion() string {
	return version.Version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cratersurvey %s (commit %s, built %s)\n",
				version.Version, version.GitCommit, version.BuildTime)
		},
	}
}
