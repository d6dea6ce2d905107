package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/alvinashcraft/dewdrop/internal/service"
)

// Export handles POST /api/export. It runs the full digest pipeline and
// returns the recorded digest plus any per-feed fetch failures. A concurrent
// export or publish yields 409 Conflict.
func Export(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			Format string `json:"format"`
		}
		// An empty body means defaults.
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		result, err := svc.Export(ctx, service.ExportOptions{Format: body.Format})
		if err != nil {
			if errors.Is(err, service.ErrBusy) {
				writeError(w, http.StatusConflict, "Another export or publish is already running")
				return
			}
			slog.Error("export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Export failed: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
