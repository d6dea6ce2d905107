package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

// CreateDigest records a newly exported digest and returns its row ID.
// Content IDs are not unique across rows: re-exporting unchanged feeds on the
// same day fingerprints to the same content ID and records a fresh row.
func (s *Store) CreateDigest(ctx context.Context, d *models.Digest) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO digests (content_id, sequence, title, format, path, post_count, category_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ContentID, d.Sequence, d.Title, d.Format, d.Path, d.PostCount, d.CategoryCount,
	)
	if err != nil {
		return 0, fmt.Errorf("creating digest %q: %w", d.ContentID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting created digest id: %w", err)
	}
	return id, nil
}

// GetDigestByID returns the digest with the given row ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetDigestByID(ctx context.Context, id int64) (*models.Digest, error) {
	row := s.db.QueryRowContext(ctx, digestSelect+` WHERE id = ?`, id)

	d, err := scanDigest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting digest by id: %w", err)
	}
	return d, nil
}

// GetDigestByContentID returns the newest digest with the given content ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetDigestByContentID(ctx context.Context, contentID string) (*models.Digest, error) {
	row := s.db.QueryRowContext(ctx, digestSelect+` WHERE content_id = ? ORDER BY id DESC LIMIT 1`, contentID)

	d, err := scanDigest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting digest by content id: %w", err)
	}
	return d, nil
}

// GetLatestDigest returns the most recently created digest.
// Returns nil, ErrNotFound when no digest has been exported yet.
func (s *Store) GetLatestDigest(ctx context.Context) (*models.Digest, error) {
	row := s.db.QueryRowContext(ctx, digestSelect+` ORDER BY id DESC LIMIT 1`)

	d, err := scanDigest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest digest: %w", err)
	}
	return d, nil
}

// ListDigests returns up to limit digests, newest first.
func (s *Store) ListDigests(ctx context.Context, limit int) ([]models.Digest, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, digestSelect+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying digests: %w", err)
	}
	defer rows.Close()

	var digests []models.Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning digest: %w", err)
		}
		digests = append(digests, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating digests: %w", err)
	}
	return digests, nil
}

// MarkDigestPublished records the WordPress post ID and publish time for
// every digest row with the given content ID; rows sharing a content ID hold
// identical content. Returns ErrNotFound when the content ID is unknown
// (e.g. a file exported by another machine).
func (s *Store) MarkDigestPublished(ctx context.Context, contentID string, postID int64, publishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE digests SET wordpress_post_id = ?, published_at = ? WHERE content_id = ?`,
		postID, publishedAt.UTC().Format("2006-01-02 15:04:05"), contentID,
	)
	if err != nil {
		return fmt.Errorf("marking digest %q published: %w", contentID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected for digest %q: %w", contentID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const digestSelect = `SELECT id, content_id, sequence, title, format, path, post_count, category_count, wordpress_post_id, published_at, created_at FROM digests`

// scanner is a minimal interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDigest scans a single digest row into a models.Digest.
func scanDigest(row scanner) (*models.Digest, error) {
	var (
		d           models.Digest
		postID      sql.NullInt64
		publishedAt sql.NullString
		createdAt   string
	)

	if err := row.Scan(
		&d.ID, &d.ContentID, &d.Sequence, &d.Title, &d.Format, &d.Path,
		&d.PostCount, &d.CategoryCount, &postID, &publishedAt, &createdAt,
	); err != nil {
		return nil, err
	}

	if postID.Valid {
		v := postID.Int64
		d.WordPressPostID = &v
	}
	d.PublishedAt = parseTimePtr(nullStringToPtr(publishedAt))
	d.CreatedAt = parseTime(createdAt)

	return &d, nil
}
