package room

import (
	"context"
	"fmt"
	"time"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
)

type UpdateUserParams struct {
	RoomId   string
	SenderId string
	Name     *string
	Avatar   *string
}

// UpdateUser merges name and avatar into the issuing user's state. Other
// user fields are server-owned and not writable through this command.
func (s *service) UpdateUser(ctx context.Context, params *UpdateUserParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandUpdateUser, func(rs *domain.RoomState) error {
		user := rs.UserByUid(params.SenderId)
		if user == nil {
			return ErrUserNotFound
		}

		if params.Name != nil {
			user.Name = *params.Name
		}
		if params.Avatar != nil {
			user.Avatar = *params.Avatar
		}
		s.appendLog(rs, domain.CommandUpdateUser, params.SenderId, nil)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

// Fetch returns the current room state for a single requesting connection.
// Only the outbound copy gets a fresh serverTime: the stored state is not
// touched, so fetch can be repeated forever without effect.
func (s *service) Fetch(ctx context.Context, roomId string) (*domain.RoomState, error) {
	stored, err := s.roomRepo.Get(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	state := stored.State
	state.ServerTime = time.Now().UnixMilli()

	return &state, nil
}
