package controller

import "context"

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	uidCtxKey
)

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c controller) getUidFromCtx(ctx context.Context) string {
	uid, ok := ctx.Value(uidCtxKey).(string)
	if !ok {
		return ""
	}

	return uid
}
