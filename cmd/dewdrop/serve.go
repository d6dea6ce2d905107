package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/alvinashcraft/dewdrop/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API server",
	Long: `Serve starts the HTTP API on localhost. The API exposes feed source
management, digest export, digest history, and WordPress publishing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()

		router := api.NewRouter(app.store, app.svc)

		// Localhost only: the API carries no authentication.
		addr := fmt.Sprintf("localhost:%d", app.cfg.Server.Port)
		slog.Info("starting server", "addr", "http://"+addr)

		if err := http.ListenAndServe(addr, router); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}
