package room

import "github.com/MuratFaizulla/mediapleer/internal/domain"

type CreateRoomParams struct {
	RoomId string
	State  domain.RoomState
}

type SetRoomParams struct {
	RoomId  string
	State   domain.RoomState
	Version int64
}
