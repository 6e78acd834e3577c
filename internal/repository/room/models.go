package room

import "github.com/MuratFaizulla/mediapleer/internal/domain"

// StoredRoom is a room state snapshot together with the version it was read
// at. The version must be carried back into Set: it is what makes the
// read-modify-write cycle atomic.
type StoredRoom struct {
	State   domain.RoomState
	Version int64
}
