package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MuratFaizulla/mediapleer/internal/service/room"
	"github.com/MuratFaizulla/mediapleer/pkg/ctxlogger"
)

// joinRoom upgrades the connection and binds it to a room for its whole
// lifetime. Room ids are case-insensitive; a missing id is rejected before
// the upgrade. A client may pass its previous uid to resume its identity.
func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomId := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "room-id")))
	if roomId == "" {
		http.Error(w, "room id is required", http.StatusBadRequest)
		return
	}

	uid := r.URL.Query().Get("uid")
	ip := clientIp(r)

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	joinResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		Conn:     conn,
		RoomId:   roomId,
		SocketId: uuid.NewString(),
		Uid:      uid,
		Ip:       ip,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to join room", "room_id", roomId, "error", err)
		conn.Close()
		return
	}

	ctx := ctxlogger.AppendCtx(r.Context(),
		slog.String("room_id", roomId),
		slog.String("uid", joinResp.Uid))
	ctx = context.WithValue(ctx, roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, uidCtxKey, joinResp.Uid)

	c.logger.InfoContext(ctx, "user joined", "ip", ip)

	// everyone, the joiner included, converges on the new member list
	if err := c.broadcast(ctx, joinResp.Conns, &Output{Type: "update", Payload: joinResp.Room}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast join", "error", err)
	}

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	c.disconnect(ctx, conn)
}

// disconnect runs the departure lifecycle and tells the survivors.
func (c controller) disconnect(ctx context.Context, conn *websocket.Conn) {
	c.writer.forget(conn)

	resp, err := c.roomService.Disconnect(ctx, conn)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect", "error", err)
		return
	}

	c.logger.InfoContext(ctx, "user left", "room_deleted", resp.RoomDeleted)

	if resp.Room != nil {
		if err := c.broadcast(ctx, resp.Conns, &Output{Type: "update", Payload: resp.Room}); err != nil {
			c.logger.WarnContext(ctx, "failed to broadcast departure", "error", err)
		}
	}
}
