package storage

import (
	"context"
	"errors"
	"testing"
)

func TestSetSetting_And_GetSetting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	type prefs struct {
		Theme string `json:"theme"`
		Count int    `json:"count"`
	}

	if err := store.SetSetting(ctx, "ui", prefs{Theme: "dark", Count: 3}); err != nil {
		t.Fatalf("SetSetting() error: %v", err)
	}

	var got prefs
	if err := store.GetSetting(ctx, "ui", &got); err != nil {
		t.Fatalf("GetSetting() error: %v", err)
	}
	if got.Theme != "dark" || got.Count != 3 {
		t.Errorf("got %+v, want {dark 3}", got)
	}

	// Overwrite.
	if err := store.SetSetting(ctx, "ui", prefs{Theme: "light", Count: 4}); err != nil {
		t.Fatalf("SetSetting() overwrite error: %v", err)
	}
	if err := store.GetSetting(ctx, "ui", &got); err != nil {
		t.Fatalf("GetSetting() error: %v", err)
	}
	if got.Theme != "light" {
		t.Errorf("Theme = %q, want %q after overwrite", got.Theme, "light")
	}
}

func TestGetSetting_NotFound(t *testing.T) {
	store := newTestStore(t)

	var dest string
	err := store.GetSetting(context.Background(), "missing", &dest)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestNextDigestSequence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := store.NextDigestSequence(ctx)
		if err != nil {
			t.Fatalf("NextDigestSequence() error: %v", err)
		}
		if got != want {
			t.Errorf("NextDigestSequence() = %d, want %d", got, want)
		}
	}
}

func TestNextDigestSequence_ResumesFromStoredValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetSetting(ctx, digestSequenceKey, 4287); err != nil {
		t.Fatalf("SetSetting() error: %v", err)
	}

	got, err := store.NextDigestSequence(ctx)
	if err != nil {
		t.Fatalf("NextDigestSequence() error: %v", err)
	}
	if got != 4288 {
		t.Errorf("NextDigestSequence() = %d, want 4288", got)
	}
}
