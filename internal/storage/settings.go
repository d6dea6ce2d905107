package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// digestSequenceKey is the settings key holding the last issued digest
// sequence number.
const digestSequenceKey = "digest_sequence"

// GetSetting retrieves a setting by key and JSON-unmarshals it into dest.
// Returns ErrNotFound if the key does not exist.
func (s *Store) GetSetting(ctx context.Context, key string, dest any) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("getting setting %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("unmarshaling setting %q: %w", key, err)
	}
	return nil
}

// SetSetting JSON-marshals value and stores it under the given key. If the
// key already exists, its value and updated_at are overwritten.
func (s *Store) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling setting %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// NextDigestSequence increments and returns the persisted digest sequence
// number. The first call on a fresh database returns 1. The read and write
// run inside one transaction so concurrent exports cannot mint the same
// number.
func (s *Store) NextDigestSequence(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var raw string
	seq := 0
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, digestSequenceKey,
	).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First export on this database.
	case err != nil:
		return 0, fmt.Errorf("reading digest sequence: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &seq); err != nil {
			return 0, fmt.Errorf("unmarshaling digest sequence: %w", err)
		}
	}

	seq++

	data, err := json.Marshal(seq)
	if err != nil {
		return 0, fmt.Errorf("marshaling digest sequence: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		digestSequenceKey, string(data),
	); err != nil {
		return 0, fmt.Errorf("storing digest sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing digest sequence: %w", err)
	}
	return seq, nil
}
