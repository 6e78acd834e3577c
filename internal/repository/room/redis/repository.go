package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc           *redis.Client
	logger       *slog.Logger
	ttl          time.Duration
	createScript string
	casScript    string
}

// NewRepo loads the room scripts once and keeps their hashes. ttl is a
// safety net against rooms orphaned by abnormal process death: rooms are
// deleted explicitly on last-user-departure, the TTL only catches leaks.
func NewRepo(rc *redis.Client, ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
		ttl:    ttl,
		createScript: rc.ScriptLoad(context.Background(), `
			if redis.call('EXISTS', KEYS[1]) == 1 then
				return 0
			end
			redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
			redis.call('SET', KEYS[2], 1, 'EX', ARGV[2])
			return 1
		`).Val(),
		casScript: rc.ScriptLoad(context.Background(), `
			local version = redis.call('GET', KEYS[2])
			if not version then
				return -1
			end
			if version ~= ARGV[1] then
				return 0
			end
			redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
			redis.call('SET', KEYS[2], version + 1, 'EX', ARGV[3])
			return version + 1
		`).Val(),
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getVersionKey(roomId string) string {
	return "room:" + roomId + ":version"
}

func (r repo) getUserCountKey() string {
	return "users:count"
}

func (r repo) ttlSeconds() int64 {
	return int64(r.ttl / time.Second)
}
