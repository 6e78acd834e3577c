package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MuratFaizulla/mediapleer/internal/controller"
	conninmemory "github.com/MuratFaizulla/mediapleer/internal/repository/connection/inmemory"
	roomredis "github.com/MuratFaizulla/mediapleer/internal/repository/room/redis"
	uploadsqlite "github.com/MuratFaizulla/mediapleer/internal/repository/upload/sqlite"
	roomservice "github.com/MuratFaizulla/mediapleer/internal/service/room"
	uploadservice "github.com/MuratFaizulla/mediapleer/internal/service/upload"
	"github.com/MuratFaizulla/mediapleer/pkg/ctxlogger"
	"github.com/MuratFaizulla/mediapleer/pkg/redisclient"
)

type AppConfig struct {
	Host                string        `json:"host"`
	Port                int           `json:"port"`
	LogLevel            string        `json:"log_level"`
	LogPath             string        `json:"log_path"`
	RedisHost           string        `json:"redis_host"`
	RedisPort           int           `json:"redis_port"`
	RedisPassword       string        `json:"-"`
	RoomTTL             time.Duration `json:"room_ttl"`
	UploadsDir          string        `json:"uploads_dir"`
	UploadIndexPath     string        `json:"upload_index_path"`
	UploadMaxBytes      int64         `json:"upload_max_bytes"`
	UploadMaxAge        time.Duration `json:"upload_max_age"`
	CleanupInterval     time.Duration `json:"cleanup_interval"`
	CommandHistoryLimit int           `json:"command_history_limit"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.RoomTTL < time.Minute {
		return fmt.Errorf("room ttl must be at least a minute")
	}
	if cfg.UploadMaxBytes < 1 {
		return fmt.Errorf("upload max bytes must be greater than 0")
	}
	if cfg.CommandHistoryLimit < 1 {
		return fmt.Errorf("command history limit must be greater than 0")
	}

	return nil
}

// logWriter opens the configured log destination. An empty path means
// stdout; a file path is created along with its directory and appended to.
func logWriter(path string) (io.Writer, error) {
	if path == "" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return f, nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	logDst, err := logWriter(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open log destination: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(logDst, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	db, err := sql.Open("sqlite", cfg.UploadIndexPath)
	if err != nil {
		return fmt.Errorf("failed to open upload index: %w", err)
	}
	defer db.Close()

	uploadStore := uploadsqlite.NewStore(db)
	if err := uploadStore.EnsureSchema(); err != nil {
		return err
	}

	roomRepo := roomredis.NewRepo(rc, cfg.RoomTTL, logger)
	connRepo := conninmemory.NewRepo()
	roomService := roomservice.NewService(roomRepo, connRepo, &roomservice.Config{
		CommandHistoryLimit: cfg.CommandHistoryLimit,
	}, logger)
	uploadService := uploadservice.NewService(uploadStore, &uploadservice.Config{
		Dir:         cfg.UploadsDir,
		PublicPath:  "/uploads",
		MaxFileSize: cfg.UploadMaxBytes,
		MaxAge:      cfg.UploadMaxAge,
	}, logger)

	c := controller.NewController(roomService, uploadService, &controller.Config{
		UploadsDir: cfg.UploadsDir,
	}, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: c.GetMux(),
	}

	serverCtx, serverStopCtx := context.WithCancel(ctx)

	// stale uploads sweeper
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-serverCtx.Done():
				return
			case <-ticker.C:
				if _, err := uploadService.Cleanup(serverCtx); err != nil {
					logger.WarnContext(serverCtx, "upload cleanup failed", "error", err)
				}
			}
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
