package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alvinashcraft/dewdrop/internal/models"
	"github.com/alvinashcraft/dewdrop/internal/storage"
)

// GetSources handles GET /api/sources. It returns all feed sources,
// including inactive ones.
func GetSources(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sources, err := store.GetAllSources(ctx)
		if err != nil {
			slog.Error("failed to get sources", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get sources")
			return
		}

		writeJSON(w, http.StatusOK, sources)
	}
}

// CreateSource handles POST /api/sources. It adds a new feed source, active
// by default.
func CreateSource(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			Name    string `json:"name"`
			FeedURL string `json:"feed_url"`
			SiteURL string `json:"site_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		body.Name = strings.TrimSpace(body.Name)
		body.FeedURL = strings.TrimSpace(body.FeedURL)
		if body.Name == "" || body.FeedURL == "" {
			writeError(w, http.StatusBadRequest, "name and feed_url are required")
			return
		}
		if u, err := url.Parse(body.FeedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			writeError(w, http.StatusBadRequest, "feed_url must be an http(s) URL")
			return
		}

		src := models.FeedSource{
			Name:     body.Name,
			FeedURL:  body.FeedURL,
			SiteURL:  body.SiteURL,
			IsActive: true,
		}
		id, err := store.CreateSource(ctx, &src)
		if err != nil {
			slog.Error("failed to create source", "name", body.Name, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create source")
			return
		}
		src.ID = id

		writeJSON(w, http.StatusCreated, src)
	}
}

// ToggleSource handles PUT /api/sources/{id}. It sets the is_active flag for
// a feed source.
func ToggleSource(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body struct {
			IsActive bool `json:"is_active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		if err := store.ToggleSource(ctx, id, body.IsActive); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Source not found")
				return
			}
			slog.Error("failed to toggle source", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to toggle source")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}
