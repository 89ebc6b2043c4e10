package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcp-k8s-agent application.
var rootCmd = &cobra.Command{
	Use:   "mcp-k8s-agent",
	Short: "Policy-gated MCP server for Kubernetes",
	Long: `mcp-k8s-agent is a Model Context Protocol (MCP) server that lets AI agents
inspect and make narrow, approved changes to a Kubernetes cluster.

Every tool call passes a policy gate before it reaches the cluster, and every
result is sanitized before it is returned to the agent.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-k8s-agent serve').`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-k8s-agent version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPolicyCmd())
}
