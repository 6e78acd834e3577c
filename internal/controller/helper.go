package controller

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/internal/service/room"
	"github.com/MuratFaizulla/mediapleer/pkg/wsrouter"
)

// unmarshalPayload reports whether the payload parsed. A malformed payload
// is a validation rejection: logged and dropped, never an error.
func (c controller) unmarshalPayload(ctx context.Context, payload json.RawMessage, dst any) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		c.logger.InfoContext(ctx, "rejected payload",
			"command", wsrouter.GetMessageTypeFromCtx(ctx),
			"error", err)
		return false
	}

	return true
}

// broadcastUpdate pushes the full room state to every live connection in
// the room. A nil Room means the command was a no-op.
func (c controller) broadcastUpdate(ctx context.Context, resp room.BroadcastResponse) error {
	if resp.Room == nil {
		return nil
	}

	return c.broadcast(ctx, resp.Conns, &Output{Type: "update", Payload: resp.Room})
}

func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) error {
	for _, conn := range conns {
		if err := c.writer.WriteJSON(conn, out); err != nil {
			// a dead conn unwinds through its own read loop; others still
			// get the update
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}

	return nil
}

// clientIp resolves the client address behind proxies: first hop of
// X-Forwarded-For, then X-Real-Ip, then the raw peer address.
func clientIp(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if realIp := r.Header.Get("X-Real-Ip"); realIp != "" {
		return realIp
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
