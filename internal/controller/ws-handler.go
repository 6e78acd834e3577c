package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/internal/domain"
	"github.com/MuratFaizulla/mediapleer/internal/service/room"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c controller) handleSetPaused(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var paused bool
	if !c.unmarshalPayload(ctx, payload, &paused) {
		return nil
	}

	resp, err := c.roomService.SetPaused(ctx, &room.SetPausedParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Paused:   paused,
	})
	if err != nil {
		return fmt.Errorf("failed to set paused: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handleSetLoop(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var loop bool
	if !c.unmarshalPayload(ctx, payload, &loop) {
		return nil
	}

	resp, err := c.roomService.SetLoop(ctx, &room.SetLoopParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Loop:     loop,
	})
	if err != nil {
		return fmt.Errorf("failed to set loop: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handleSetPlaybackRate(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var playbackRate float64
	if !c.unmarshalPayload(ctx, payload, &playbackRate) {
		return nil
	}

	resp, err := c.roomService.SetPlaybackRate(ctx, &room.SetPlaybackRateParams{
		RoomId:       c.getRoomIdFromCtx(ctx),
		SenderId:     c.getUidFromCtx(ctx),
		PlaybackRate: playbackRate,
	})
	if err != nil {
		return fmt.Errorf("failed to set playback rate: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handleSetProgress(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var progress float64
	if !c.unmarshalPayload(ctx, payload, &progress) {
		return nil
	}

	resp, err := c.roomService.SetProgress(ctx, &room.SetProgressParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Progress: progress,
	})
	if err != nil {
		return fmt.Errorf("failed to set progress: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handleSeek(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var progress float64
	if !c.unmarshalPayload(ctx, payload, &progress) {
		return nil
	}

	resp, err := c.roomService.Seek(ctx, &room.SeekParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Progress: progress,
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handlePlayAgain(ctx context.Context, _ *websocket.Conn, _ json.RawMessage) error {
	resp, err := c.roomService.PlayAgain(ctx, &room.PlayAgainParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to play again: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handlePlayEnded(ctx context.Context, _ *websocket.Conn, _ json.RawMessage) error {
	resp, err := c.roomService.PlayEnded(ctx, &room.PlayEndedParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to run play ended: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handlePlayItemFromPlaylist(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var index int
	if !c.unmarshalPayload(ctx, payload, &index) {
		return nil
	}

	resp, err := c.roomService.PlayItemFromPlaylist(ctx, &room.PlayItemFromPlaylistParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Index:    index,
	})
	if err != nil {
		return fmt.Errorf("failed to play item from playlist: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handleUpdatePlaylist(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var playlist domain.Playlist
	if !c.unmarshalPayload(ctx, payload, &playlist) {
		return nil
	}

	resp, err := c.roomService.UpdatePlaylist(ctx, &room.UpdatePlaylistParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Playlist: playlist,
	})
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

type UpdateUserInput struct {
	Name   *string `json:"name" validate:"omitempty,max=32"`
	Avatar *string `json:"avatar" validate:"omitempty,max=512"`
}

func (c controller) handleUpdateUser(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input UpdateUserInput
	if !c.unmarshalPayload(ctx, payload, &input) {
		return nil
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.InfoContext(ctx, "rejected user update", "errors", validationErrors)
		return nil
	}

	resp, err := c.roomService.UpdateUser(ctx, &room.UpdateUserParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Name:     input.Name,
		Avatar:   input.Avatar,
	})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

func (c controller) handlePlayUrl(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var url string
	if !c.unmarshalPayload(ctx, payload, &url) {
		return nil
	}

	resp, err := c.roomService.PlayUrl(ctx, &room.PlayUrlParams{
		RoomId:   c.getRoomIdFromCtx(ctx),
		SenderId: c.getUidFromCtx(ctx),
		Url:      url,
	})
	if err != nil {
		return fmt.Errorf("failed to play url: %w", err)
	}

	return c.broadcastUpdate(ctx, resp)
}

// handleFetch unicasts the current room state to the requesting connection.
func (c controller) handleFetch(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) error {
	state, err := c.roomService.Fetch(ctx, c.getRoomIdFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch room state: %w", err)
	}

	if err := c.writer.WriteJSON(conn, &Output{Type: "update", Payload: state}); err != nil {
		return fmt.Errorf("failed to write room state: %w", err)
	}

	return nil
}
