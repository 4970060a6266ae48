// Command poa runs the dashboard session controller: an HTTP surface for
// the browser, plus terminal commands for seeding and voice testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "poa",
	Short:         "POA dashboard session controller",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default: ./config.toml or /etc/poa/config.toml)")
	rootCmd.AddCommand(serveCmd, seedCmd, matchCmd, listenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
