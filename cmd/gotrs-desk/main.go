package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/gotrs-desk/internal/version"
)

var (
	configDir  string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "gotrs-desk",
	Short: "GOTRS Desk - multi-tenant ticket listing service",
	Long: `GOTRS Desk serves tenant-scoped, role-aware ticket listings
over HTTP and from the command line.`,
	Version:       version.Get().String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "gotrs-desk version %s\n", info.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", info.GitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", info.BuildDate)
		fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", info.GoVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "Directory holding default.yaml and an optional config.yaml")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "Load this single YAML file instead of --config")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
