package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MuratFaizulla/mediapleer/internal/repository/upload"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("upload store: missing database connection")
	}

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			stored_name TEXT NOT NULL,
			url TEXT NOT NULL,
			size INTEGER NOT NULL,
			uploaded_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_uploads_uploaded_at ON uploads(uploaded_at);
	`)
	if err != nil {
		return fmt.Errorf("upload store: ensure schema: %w", err)
	}

	return nil
}

func (s *Store) Insert(ctx context.Context, f *upload.File) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, filename, stored_name, url, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.Id, f.Filename, f.StoredName, f.Url, f.Size, f.UploadedAt.Unix())
	if err != nil {
		return fmt.Errorf("upload store: insert: %w", err)
	}

	return nil
}

func (s *Store) ListOlderThan(ctx context.Context, cutoff time.Time) ([]upload.File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, stored_name, url, size, uploaded_at
		FROM uploads
		WHERE uploaded_at < ?
	`, cutoff.Unix())
	if err != nil {
		return nil, fmt.Errorf("upload store: list older than: %w", err)
	}
	defer rows.Close()

	var files []upload.File
	for rows.Next() {
		var f upload.File
		var uploadedAt int64
		if err := rows.Scan(&f.Id, &f.Filename, &f.StoredName, &f.Url, &f.Size, &uploadedAt); err != nil {
			return nil, fmt.Errorf("upload store: scan: %w", err)
		}
		f.UploadedAt = time.Unix(uploadedAt, 0)
		files = append(files, f)
	}

	return files, rows.Err()
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM uploads WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("upload store: delete: %w", err)
	}

	return nil
}
