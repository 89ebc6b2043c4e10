package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mcp-k8s-agent",
		Long:  `Print the version of mcp-k8s-agent and of its built-in policy.`,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mcp-k8s-agent version %s (policy %s)\n", rootCmd.Version, policy.DefaultVersion)
		},
	}
}
