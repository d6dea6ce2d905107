package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alvinashcraft/dewdrop/internal/service"
	"github.com/alvinashcraft/dewdrop/internal/storage"
)

// Publish handles POST /api/publish. It pushes a digest artifact to
// WordPress. The artifact is selected by path or digest_id; confirm must be
// true to republish an already-published artifact.
func Publish(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			Path       string   `json:"path"`
			DigestID   int64    `json:"digest_id"`
			Confirm    bool     `json:"confirm"`
			Status     string   `json:"status"`
			Categories []string `json:"categories"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if body.Path == "" && body.DigestID == 0 {
			writeError(w, http.StatusBadRequest, "path or digest_id is required")
			return
		}

		result, err := svc.Publish(ctx, service.PublishOptions{
			Path:       body.Path,
			DigestID:   body.DigestID,
			Confirm:    body.Confirm,
			Status:     body.Status,
			Categories: body.Categories,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrBusy):
				writeError(w, http.StatusConflict, "Another export or publish is already running")
			case errors.Is(err, service.ErrAlreadyPublished):
				writeError(w, http.StatusConflict, "Digest is already published; set confirm to republish")
			case errors.Is(err, service.ErrWordPressNotConfigured):
				writeError(w, http.StatusServiceUnavailable, "WordPress is not configured. Set wordpress.base_url in config.toml")
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, http.StatusNotFound, "Digest not found")
			default:
				slog.Error("publish failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Publish failed: "+err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
