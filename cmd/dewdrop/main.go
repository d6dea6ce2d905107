// Command dewdrop aggregates developer blog feeds into categorized "Dew
// Drop" digests and publishes them to WordPress. It runs either as a local
// HTTP server (serve) or as one-shot pipeline commands (export, publish).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "dewdrop",
	Short: "Dew Drop digest generator for developer blog feeds",
	Long: `Dewdrop fetches RSS and Atom feeds from developer blogs, groups the
posts into categories using keyword rules, renders a numbered "Dew Drop"
digest in HTML or Markdown, and can publish the result to WordPress.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data", "path to data directory")

	rootCmd.AddCommand(serveCmd, exportCmd, publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
