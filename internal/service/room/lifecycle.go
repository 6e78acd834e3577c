package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/internal/repository/connection"
	"github.com/MuratFaizulla/mediapleer/internal/repository/room"
)

type JoinRoomParams struct {
	Conn     *websocket.Conn
	RoomId   string
	SocketId string
	// Uid lets a client resume its previous identity after a reconnect.
	// Empty means a fresh user.
	Uid string
	Ip  string
}

type JoinRoomResponse struct {
	Room  *domain.RoomState
	Uid   string
	Conns []*websocket.Conn
}

// JoinRoom registers a connection with a room, creating the room with this
// user as owner when it does not exist yet.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	uid := params.Uid
	if uid == "" {
		uid = uuid.NewString()
	}

	exists, err := s.roomRepo.Exists(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to check if room exists: %w", err)
	}

	var state *domain.RoomState
	if !exists {
		created := domain.NewRoomState(params.RoomId, domain.NewUserState(uid, params.SocketId, params.Ip))
		created.ServerTime = time.Now().UnixMilli()
		err := s.roomRepo.Create(ctx, &room.CreateRoomParams{RoomId: params.RoomId, State: created})
		switch {
		case err == nil:
			state = &created
			s.logger.InfoContext(ctx, "room created", "room_id", params.RoomId, "owner_id", uid)
		case errors.Is(err, room.ErrRoomAlreadyExists):
			// lost the creation race, join the existing room below
		default:
			return JoinRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
		}
	}

	if state == nil {
		state, err = s.update(ctx, params.RoomId, uid, "", func(rs *domain.RoomState) error {
			if user := rs.UserByUid(uid); user != nil {
				user.SocketIds = append([]string{params.SocketId}, user.SocketIds...)
				user.Ip = params.Ip
				return nil
			}

			rs.Users = append(rs.Users, domain.NewUserState(uid, params.SocketId, params.Ip))

			return nil
		})
		if err != nil {
			return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
		}
	}

	if err := s.connRepo.Add(params.Conn, connection.Client{
		RoomId:   params.RoomId,
		Uid:      uid,
		SocketId: params.SocketId,
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to register connection: %w", err)
	}

	if _, err := s.roomRepo.IncUserCount(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to increment user count", "error", err)
	}

	return JoinRoomResponse{
		Room:  state,
		Uid:   uid,
		Conns: s.connRepo.GetRoomConns(params.RoomId),
	}, nil
}

type DisconnectResponse struct {
	// Room is nil when the departure emptied and deleted the room.
	Room        *domain.RoomState
	Conns       []*websocket.Conn
	RoomDeleted bool
}

// Disconnect runs the departure lifecycle: drop the socket from its user,
// remove the user when no sockets remain, delete the room when no users
// remain, otherwise repair ownership and hand back the survivors.
func (s *service) Disconnect(ctx context.Context, conn *websocket.Conn) (DisconnectResponse, error) {
	client, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to remove connection: %w", err)
	}

	if _, err := s.roomRepo.DecUserCount(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to decrement user count", "error", err)
	}

	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		stored, err := s.roomRepo.Get(ctx, client.RoomId)
		if err != nil {
			if errors.Is(err, room.ErrRoomNotFound) {
				return DisconnectResponse{RoomDeleted: true}, nil
			}

			return DisconnectResponse{}, fmt.Errorf("failed to get room: %w", err)
		}

		state := stored.State
		if user := state.UserByUid(client.Uid); user != nil {
			user.SocketIds = removeString(user.SocketIds, client.SocketId)
			if len(user.SocketIds) == 0 {
				state.RemoveUserByUid(client.Uid)
			}
		}

		if len(state.Users) == 0 {
			if err := s.roomRepo.Delete(ctx, client.RoomId); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
				return DisconnectResponse{}, fmt.Errorf("failed to delete room: %w", err)
			}
			s.logger.InfoContext(ctx, "deleted empty room", "room_id", client.RoomId)

			return DisconnectResponse{RoomDeleted: true}, nil
		}

		state.ReassignOwner()
		state.ServerTime = time.Now().UnixMilli()

		err = s.roomRepo.Set(ctx, &room.SetRoomParams{
			RoomId:  client.RoomId,
			State:   state,
			Version: stored.Version,
		})
		if err == nil {
			return DisconnectResponse{
				Room:  &state,
				Conns: s.connRepo.GetRoomConns(client.RoomId),
			}, nil
		}
		if !errors.Is(err, room.ErrVersionConflict) {
			return DisconnectResponse{}, fmt.Errorf("failed to set room: %w", err)
		}

		lastErr = err
	}

	return DisconnectResponse{}, lastErr
}

func removeString(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}

	return list
}
