package room

import (
	"context"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/pkg/mediaurl"
)

type SetPausedParams struct {
	RoomId   string
	SenderId string
	Paused   bool
}

func (s *service) SetPaused(ctx context.Context, params *SetPausedParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandSetPaused, func(rs *domain.RoomState) error {
		rs.TargetState.Paused = params.Paused
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandSetPaused, params.SenderId, params.Paused)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type SetLoopParams struct {
	RoomId   string
	SenderId string
	Loop     bool
}

func (s *service) SetLoop(ctx context.Context, params *SetLoopParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandSetLoop, func(rs *domain.RoomState) error {
		rs.TargetState.Loop = params.Loop
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandSetLoop, params.SenderId, params.Loop)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type SetPlaybackRateParams struct {
	RoomId       string
	SenderId     string
	PlaybackRate float64
}

func (s *service) SetPlaybackRate(ctx context.Context, params *SetPlaybackRateParams) (BroadcastResponse, error) {
	if params.PlaybackRate <= 0 {
		s.logger.InfoContext(ctx, "rejected playback rate",
			"room_id", params.RoomId, "playback_rate", params.PlaybackRate)
		return BroadcastResponse{}, nil
	}

	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandSetPlaybackRate, func(rs *domain.RoomState) error {
		rs.TargetState.PlaybackRate = params.PlaybackRate
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandSetPlaybackRate, params.SenderId, params.PlaybackRate)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type SetProgressParams struct {
	RoomId   string
	SenderId string
	Progress float64
}

// SetProgress records the issuing user's locally observed progress. It is
// telemetry about that user's player, not a mutation of the shared timeline,
// so lastSync is left alone.
func (s *service) SetProgress(ctx context.Context, params *SetProgressParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandSetProgress, func(rs *domain.RoomState) error {
		user := rs.UserByUid(params.SenderId)
		if user == nil {
			return ErrUserNotFound
		}
		user.Player.Progress = params.Progress

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type SeekParams struct {
	RoomId   string
	SenderId string
	Progress float64
}

func (s *service) Seek(ctx context.Context, params *SeekParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandSeek, func(rs *domain.RoomState) error {
		rs.TargetState.Progress = params.Progress
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandSeek, params.SenderId, params.Progress)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type PlayAgainParams struct {
	RoomId   string
	SenderId string
}

func (s *service) PlayAgain(ctx context.Context, params *PlayAgainParams) (BroadcastResponse, error) {
	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandPlayAgain, func(rs *domain.RoomState) error {
		rs.TargetState.Progress = 0
		rs.TargetState.Paused = false
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandPlayAgain, params.SenderId, nil)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

type PlayUrlParams struct {
	RoomId   string
	SenderId string
	Url      string
}

// PlayUrl classifies the URL, builds a one-off media element and plays it,
// dropping the playlist selection. A malformed URL is dropped silently.
func (s *service) PlayUrl(ctx context.Context, params *PlayUrlParams) (BroadcastResponse, error) {
	kind, err := mediaurl.Classify(params.Url)
	if err != nil {
		s.logger.InfoContext(ctx, "rejected play url",
			"room_id", params.RoomId, "url", params.Url, "error", err)
		return BroadcastResponse{}, nil
	}

	element := domain.MediaElement{
		Src:         []domain.MediaOption{{Src: params.Url}},
		Sub:         []domain.Subtitle{},
		Source:      sourceFromKind(kind),
		OriginalUrl: params.Url,
	}

	state, err := s.update(ctx, params.RoomId, params.SenderId, domain.CommandPlayUrl, func(rs *domain.RoomState) error {
		rs.TargetState.Playing = element
		rs.TargetState.Playlist.CurrentIndex = -1
		rs.TargetState.Progress = 0
		rs.TargetState.Paused = false
		rs.TargetState.LastSync = nowSeconds()
		s.appendLog(rs, domain.CommandPlayUrl, params.SenderId, params.Url)

		return nil
	})

	return s.respond(params.RoomId, state, err)
}

func sourceFromKind(kind mediaurl.Kind) domain.Source {
	switch kind {
	case mediaurl.KindYouTube:
		return domain.SourceYouTube
	case mediaurl.KindOneDrive:
		return domain.SourceOneDrive
	case mediaurl.KindLocal:
		return domain.SourceLocal
	default:
		return domain.SourceDirectUrl
	}
}
