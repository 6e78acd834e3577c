package room

import (
	"context"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
)

type PlayEndedParams struct {
	RoomId   string
	SenderId string
}

// PlayEnded runs the playlist transition: loop the current item, advance,
// restart from the first item, or stop on an empty playlist.
func (s *service) PlayEnded(ctx context.Context, params *PlayEndedParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandPlayEnded, func(rs *domain.RoomState) error {
		var lastKnownProgress float64
		if user := rs.UserByUid(params.SenderId); user != nil {
			lastKnownProgress = user.Player.Progress
		}

		transition := rs.TargetState.AdvanceOnEnded(lastKnownProgress, nowSeconds())
		s.logger.DebugContext(ctx, "play ended",
			"room_id", params.RoomId,
			"transition", transition,
			"current_index", rs.TargetState.Playlist.CurrentIndex)
		s.appendLog(rs, domain.CommandPlayEnded, params.SenderId, string(transition))

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type PlayItemFromPlaylistParams struct {
	RoomId   string
	SenderId string
	Index    int
}

func (s *service) PlayItemFromPlaylist(ctx context.Context, params *PlayItemFromPlaylistParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandPlayItemFromPlaylist, func(rs *domain.RoomState) error {
		if params.Index < 0 || params.Index >= len(rs.TargetState.Playlist.Items) {
			s.logger.InfoContext(ctx, "rejected playlist index",
				"room_id", params.RoomId,
				"index", params.Index,
				"playlist_length", len(rs.TargetState.Playlist.Items))
			return errRejected
		}

		rs.TargetState.Playing = rs.TargetState.Playlist.Items[params.Index]
		rs.TargetState.Playlist.CurrentIndex = params.Index
		rs.TargetState.Progress = 0
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandPlayItemFromPlaylist, params.SenderId, params.Index)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type UpdatePlaylistParams struct {
	RoomId   string
	SenderId string
	Playlist domain.Playlist
}

// UpdatePlaylist replaces the playlist wholesale after bounds validation.
func (s *service) UpdatePlaylist(ctx context.Context, params *UpdatePlaylistParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandUpdatePlaylist, func(rs *domain.RoomState) error {
		if err := params.Playlist.Validate(); err != nil {
			s.logger.InfoContext(ctx, "rejected playlist",
				"room_id", params.RoomId,
				"current_index", params.Playlist.CurrentIndex,
				"playlist_length", len(params.Playlist.Items))
			return errRejected
		}

		rs.TargetState.Playlist = params.Playlist
		s.appendLog(rs, domain.CommandUpdatePlaylist, params.SenderId, len(params.Playlist.Items))

		return nil
	})

	return s.respond(params.RoomId, state, err)
}
