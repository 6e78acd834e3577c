package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/internal/repository/room"
)

func (r repo) Exists(ctx context.Context, roomId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return res > 0, nil
}

func (r repo) Get(ctx context.Context, roomId string) (room.StoredRoom, error) {
	roomKey := r.getRoomKey(roomId)
	versionKey := r.getVersionKey(roomId)

	raw, err := r.rc.Get(ctx, roomKey).Result()
	if err != nil {
		if err == redis.Nil {
			return room.StoredRoom{}, room.ErrRoomNotFound
		}

		return room.StoredRoom{}, fmt.Errorf("failed to get room: %w", err)
	}

	rawVersion, err := r.rc.Get(ctx, versionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return room.StoredRoom{}, room.ErrRoomNotFound
		}

		return room.StoredRoom{}, fmt.Errorf("failed to get room version: %w", err)
	}

	version, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil {
		return room.StoredRoom{}, fmt.Errorf("failed to parse room version: %w", err)
	}

	var state domain.RoomState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return room.StoredRoom{}, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	pipe := r.rc.Pipeline()
	pipe.Expire(ctx, roomKey, r.ttl)
	pipe.Expire(ctx, versionKey, r.ttl)
	pipe.Exec(ctx)

	return room.StoredRoom{State: state, Version: version}, nil
}

func (r repo) Create(ctx context.Context, params *room.CreateRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params.RoomId)
	raw, err := json.Marshal(params.State)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	keys := []string{r.getRoomKey(params.RoomId), r.getVersionKey(params.RoomId)}
	res, err := r.rc.EvalSha(ctx, r.createScript, keys, raw, r.ttlSeconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if res == 0 {
		return room.ErrRoomAlreadyExists
	}

	return nil
}

// Set writes the state back only if the stored version still matches
// params.Version. On success the version advances by one.
func (r repo) Set(ctx context.Context, params *room.SetRoomParams) error {
	raw, err := json.Marshal(params.State)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	keys := []string{r.getRoomKey(params.RoomId), r.getVersionKey(params.RoomId)}
	res, err := r.rc.EvalSha(ctx, r.casScript, keys,
		strconv.FormatInt(params.Version, 10), raw, r.ttlSeconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	switch res {
	case -1:
		return room.ErrRoomNotFound
	case 0:
		return room.ErrVersionConflict
	default:
		return nil
	}
}

func (r repo) Delete(ctx context.Context, roomId string) error {
	res, err := r.rc.Del(ctx, r.getRoomKey(roomId), r.getVersionKey(roomId)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if res == 0 {
		return room.ErrRoomNotFound
	}

	return nil
}

func (r repo) IncUserCount(ctx context.Context) (int64, error) {
	return r.rc.Incr(ctx, r.getUserCountKey()).Result()
}

func (r repo) DecUserCount(ctx context.Context) (int64, error) {
	return r.rc.Decr(ctx, r.getUserCountKey()).Result()
}

func (r repo) UserCount(ctx context.Context) (int64, error) {
	res, err := r.rc.Get(ctx, r.getUserCountKey()).Int64()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("failed to get user count: %w", err)
	}

	return res, nil
}
