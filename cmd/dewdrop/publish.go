package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alvinashcraft/dewdrop/internal/service"
)

var (
	publishForce      bool
	publishLatest     bool
	publishStatus     string
	publishCategories []string
)

var publishCmd = &cobra.Command{
	Use:   "publish [file]",
	Short: "Publish a digest artifact to WordPress",
	Long: `Publish pushes an exported digest file to WordPress as a new post
using the configured application password. Without a file argument,
--latest publishes the most recently exported digest. Artifacts that were
already published are refused unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !publishLatest {
			return fmt.Errorf("give a digest file or use --latest")
		}

		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		opts := service.PublishOptions{
			Confirm:    publishForce,
			Status:     publishStatus,
			Categories: publishCategories,
		}
		if len(args) > 0 {
			opts.Path = args[0]
		} else {
			latest, err := app.store.GetLatestDigest(cmd.Context())
			if err != nil {
				return fmt.Errorf("no digest exported yet")
			}
			opts.DigestID = latest.ID
		}

		result, err := app.svc.Publish(cmd.Context(), opts)
		if errors.Is(err, service.ErrAlreadyPublished) {
			return fmt.Errorf("%s is already published; use --force to republish", targetLabel(opts))
		}
		if err != nil {
			return err
		}

		fmt.Printf("Published %s as WordPress post %d\n", result.Path, result.PostID)
		if result.Warning != "" {
			fmt.Println("Warning:", result.Warning)
		}
		return nil
	},
}

func targetLabel(opts service.PublishOptions) string {
	if opts.Path != "" {
		return opts.Path
	}
	return fmt.Sprintf("digest %d", opts.DigestID)
}

func init() {
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "republish even if already marked published")
	publishCmd.Flags().BoolVar(&publishLatest, "latest", false, "publish the most recently exported digest")
	publishCmd.Flags().StringVar(&publishStatus, "status", "", `post status: "draft" or "publish" (default from config)`)
	publishCmd.Flags().StringSliceVar(&publishCategories, "category", nil, "WordPress category name (repeatable)")
}
