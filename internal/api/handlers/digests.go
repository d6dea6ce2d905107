package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alvinashcraft/dewdrop/internal/models"
	"github.com/alvinashcraft/dewdrop/internal/storage"
)

// ListDigests handles GET /api/digests. It returns recorded digests, newest
// first, capped by the optional limit query parameter.
func ListDigests(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid limit parameter")
				return
			}
			limit = n
		}

		digests, err := store.ListDigests(ctx, limit)
		if err != nil {
			slog.Error("failed to list digests", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list digests")
			return
		}
		if digests == nil {
			digests = []models.Digest{}
		}

		writeJSON(w, http.StatusOK, digests)
	}
}

// GetLatestDigest handles GET /api/digests/latest. It returns the most
// recently exported digest, or 404 when none exists yet.
func GetLatestDigest(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		d, err := store.GetLatestDigest(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "No digest exported yet")
				return
			}
			slog.Error("failed to get latest digest", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get latest digest")
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}
