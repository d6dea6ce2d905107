package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alvinashcraft/dewdrop/internal/service"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch feeds and export a categorized digest",
	Long: `Export fetches every active feed source, categorizes the posts with
the keyword rules, and writes a numbered digest file to the configured
output directory. Feeds that fail to fetch are reported but do not abort
the export.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		result, err := app.svc.Export(cmd.Context(), service.ExportOptions{Format: exportFormat})
		if err != nil {
			return err
		}

		fmt.Printf("Exported %q\n", result.Digest.Title)
		fmt.Printf("  posts:      %d in %d categories\n", result.Digest.PostCount, result.Digest.CategoryCount)
		fmt.Printf("  content id: %s\n", result.Digest.ContentID)
		fmt.Printf("  file:       %s\n", result.Digest.Path)

		for _, f := range result.FailedFeeds {
			fmt.Printf("  failed feed: %s: %s\n", f.Source, f.Error)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", `digest format: "html" or "markdown" (default from config)`)
}
