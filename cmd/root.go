package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/99-jordan/yarro-maintenance-triage/cmd/http"
	systemcmd "github.com/99-jordan/yarro-maintenance-triage/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "yarro",
	Short: "Yarro AI triage engine for tenant maintenance tickets.",
	Long: `Yarro receives tenant maintenance messages, classifies them with an AI
reasoning service, keeps a rolling conversation summary per ticket, and applies
the proposed actions with full audit trails.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
