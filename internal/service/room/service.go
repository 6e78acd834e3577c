package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/internal/repository/connection"
	"github.com/MuratFaizulla/mediapleer/internal/repository/room"
)

// casAttempts bounds the optimistic-concurrency retry: a conflict on every
// attempt surfaces as an operation failure instead of spinning.
const casAttempts = 3

var (
	ErrUserNotFound = errors.New("user not found")

	// errRejected marks a validation-rejected command: logged, dropped,
	// no broadcast, no error surfaced to the client.
	errRejected = errors.New("command rejected")
)

type iRoomRepo interface {
	Exists(ctx context.Context, roomId string) (bool, error)
	Get(ctx context.Context, roomId string) (room.StoredRoom, error)
	Create(ctx context.Context, params *room.CreateRoomParams) error
	Set(ctx context.Context, params *room.SetRoomParams) error
	Delete(ctx context.Context, roomId string) error
	IncUserCount(ctx context.Context) (int64, error)
	DecUserCount(ctx context.Context) (int64, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, client connection.Client) error
	RemoveByConn(conn *websocket.Conn) (connection.Client, error)
	GetRoomConns(roomId string) []*websocket.Conn
}

type Config struct {
	CommandHistoryLimit int
}

type service struct {
	roomRepo     iRoomRepo
	connRepo     iConnRepo
	logger       *slog.Logger
	historyLimit int
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:     roomRepo,
		connRepo:     connRepo,
		logger:       logger,
		historyLimit: cfg.CommandHistoryLimit,
	}
}

// BroadcastResponse carries the state to broadcast and the room's live
// connections. A nil Room means nothing changed and nothing is sent.
type BroadcastResponse struct {
	Room  *domain.RoomState
	Conns []*websocket.Conn
}

func nowSeconds() float64 {
	return float64(time.Now().UnixMilli()) / 1000
}

// update runs one read-modify-write transaction against the room store:
// load, authorize, mutate, stamp serverTime, write back with the version
// carried from the read. A concurrent writer invalidates the version and the
// whole cycle retries on a fresh read, so the net effect of concurrent
// commands is always some total order of them.
func (s *service) update(ctx context.Context, roomId, senderId string, cmd domain.Command, mutate func(*domain.RoomState) error) (*domain.RoomState, error) {
	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		stored, err := s.roomRepo.Get(ctx, roomId)
		if err != nil {
			return nil, fmt.Errorf("failed to get room: %w", err)
		}

		state := stored.State
		if err := s.authorize(&state, senderId, cmd); err != nil {
			return nil, err
		}
		if err := mutate(&state); err != nil {
			return nil, err
		}
		state.ServerTime = time.Now().UnixMilli()

		err = s.roomRepo.Set(ctx, &room.SetRoomParams{
			RoomId:  roomId,
			State:   state,
			Version: stored.Version,
		})
		if err == nil {
			return &state, nil
		}
		if !errors.Is(err, room.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to set room: %w", err)
		}

		lastErr = err
		s.logger.DebugContext(ctx, "room write conflict", "room_id", roomId, "attempt", attempt+1)
	}

	return nil, lastErr
}

// respond maps an update outcome to what the controller broadcasts.
func (s *service) respond(roomId string, state *domain.RoomState, err error) (BroadcastResponse, error) {
	if err != nil {
		if errors.Is(err, errRejected) {
			return BroadcastResponse{}, nil
		}

		return BroadcastResponse{}, err
	}

	return BroadcastResponse{Room: state, Conns: s.connRepo.GetRoomConns(roomId)}, nil
}

func (s *service) appendLog(rs *domain.RoomState, cmd domain.Command, userId string, target any) {
	rs.AppendLog(domain.CommandLog{
		Command: cmd,
		UserId:  userId,
		Target:  target,
		Time:    time.Now().UnixMilli(),
	}, s.historyLimit)
}
