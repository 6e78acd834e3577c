package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/MuratFaizulla/mediapleer/internal/repository/upload"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type iUploadRepo interface {
	Insert(ctx context.Context, f *upload.File) error
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]upload.File, error)
	Delete(ctx context.Context, ids []string) error
}

type Config struct {
	// Dir is where files land on disk, PublicPath the URL prefix clients
	// play them from.
	Dir         string
	PublicPath  string
	MaxFileSize int64
	MaxAge      time.Duration
}

type service struct {
	repo   iUploadRepo
	cfg    *Config
	logger *slog.Logger
}

func NewService(repo iUploadRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// UploadedFile is what the client turns into a playable playlist entry.
type UploadedFile struct {
	Filename string `json:"filename"`
	Url      string `json:"url"`
	Size     int64  `json:"size"`
}

// Save stores a batch of multipart files under the uploads directory and
// records them in the index. Oversized files fail the whole batch.
func (s *service) Save(ctx context.Context, files []*multipart.FileHeader) ([]UploadedFile, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	saved := make([]UploadedFile, 0, len(files))
	for _, fh := range files {
		if fh.Size > s.cfg.MaxFileSize {
			return nil, fmt.Errorf("file %q exceeds the %d byte limit", fh.Filename, s.cfg.MaxFileSize)
		}

		storedName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeName(fh.Filename))
		if err := s.writeFile(fh, filepath.Join(s.cfg.Dir, storedName)); err != nil {
			return nil, err
		}

		url := s.cfg.PublicPath + "/" + storedName
		if err := s.repo.Insert(ctx, &upload.File{
			Id:         uuid.NewString(),
			Filename:   fh.Filename,
			StoredName: storedName,
			Url:        url,
			Size:       fh.Size,
			UploadedAt: time.Now(),
		}); err != nil {
			return nil, fmt.Errorf("failed to index upload: %w", err)
		}

		s.logger.InfoContext(ctx, "stored upload", "filename", fh.Filename, "stored_name", storedName, "size", fh.Size)
		saved = append(saved, UploadedFile{Filename: fh.Filename, Url: url, Size: fh.Size})
	}

	return saved, nil
}

func (s *service) writeFile(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %q: %w", path, err)
	}

	return nil
}

// Cleanup removes uploads older than the configured age from disk and index
// and reports how many were deleted. Local playlist entries pointing at a
// removed file simply 404 afterwards; the sync engine tolerates that.
func (s *service) Cleanup(ctx context.Context) (int, error) {
	stale, err := s.repo.ListOlderThan(ctx, time.Now().Add(-s.cfg.MaxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale uploads: %w", err)
	}

	ids := make([]string, 0, len(stale))
	for _, f := range stale {
		if err := os.Remove(filepath.Join(s.cfg.Dir, f.StoredName)); err != nil && !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "failed to remove stale upload", "stored_name", f.StoredName, "error", err)
			continue
		}
		ids = append(ids, f.Id)
	}

	if err := s.repo.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("failed to deindex stale uploads: %w", err)
	}

	if len(ids) > 0 {
		s.logger.InfoContext(ctx, "cleaned up stale uploads", "count", len(ids))
	}

	return len(ids), nil
}

func sanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
