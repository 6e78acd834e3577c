package controller

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/pkg/wsrouter"
)

// getWSRouter wires exactly one handler per command kind.
func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	// timeline
	mux.Handle("setPaused", c.handleSetPaused)
	mux.Handle("setLoop", c.handleSetLoop)
	mux.Handle("setPlaybackRate", c.handleSetPlaybackRate)
	mux.Handle("seek", c.handleSeek)
	mux.Handle("playAgain", c.handlePlayAgain)
	mux.Handle("playUrl", c.handlePlayUrl)

	// playlist
	mux.Handle("playEnded", c.handlePlayEnded)
	mux.Handle("playItemFromPlaylist", c.handlePlayItemFromPlaylist)
	mux.Handle("updatePlaylist", c.handleUpdatePlaylist)

	// user
	mux.Handle("setProgress", c.handleSetProgress)
	mux.Handle("updateUser", c.handleUpdateUser)
	mux.Handle("fetch", c.handleFetch)

	mux.OnError(func(ctx context.Context, _ *websocket.Conn, err error) {
		c.logger.WarnContext(ctx, "command failed",
			"command", wsrouter.GetMessageTypeFromCtx(ctx),
			"error", err)
	})

	return mux
}
