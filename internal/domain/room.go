package domain

// Command is the closed set of mutating room commands, recorded in the
// command history for attribution.
type Command string

const (
	CommandSetPaused            Command = "setPaused"
	CommandSetLoop              Command = "setLoop"
	CommandSetPlaybackRate      Command = "setPlaybackRate"
	CommandSetProgress          Command = "setProgress"
	CommandSeek                 Command = "seek"
	CommandPlayAgain            Command = "playAgain"
	CommandPlayEnded            Command = "playEnded"
	CommandPlayItemFromPlaylist Command = "playItemFromPlaylist"
	CommandUpdatePlaylist       Command = "updatePlaylist"
	CommandUpdateUser           Command = "updateUser"
	CommandPlayUrl              Command = "playUrl"
)

// CommandLog is one entry of the append-only audit trail.
type CommandLog struct {
	Command Command `json:"command"`
	UserId  string  `json:"userId"`
	Target  any     `json:"target,omitempty"`
	Time    int64   `json:"time"`
}

// RoomState is the canonical state of one synchronized-viewing session.
// The room store exclusively owns it; everything else works on transient
// copies fetched for a single operation.
type RoomState struct {
	ServerTime     int64        `json:"serverTime"`
	Id             string       `json:"id"`
	OwnerId        string       `json:"ownerId"`
	Users          []UserState  `json:"users"`
	TargetState    TargetState  `json:"targetState"`
	CommandHistory []CommandLog `json:"commandHistory"`
}

// NewRoomState builds a room with its first user as sole member and owner.
func NewRoomState(id string, owner UserState) RoomState {
	return RoomState{
		Id:             id,
		OwnerId:        owner.Uid,
		Users:          []UserState{owner},
		TargetState:    NewTargetState(),
		CommandHistory: []CommandLog{},
	}
}

// UserByUid returns a pointer into Users so callers can mutate the entry
// in place before the state is written back.
func (r *RoomState) UserByUid(uid string) *UserState {
	for i := range r.Users {
		if r.Users[i].Uid == uid {
			return &r.Users[i]
		}
	}

	return nil
}

func (r *RoomState) RemoveUserByUid(uid string) bool {
	for i := range r.Users {
		if r.Users[i].Uid == uid {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return true
		}
	}

	return false
}

// ReassignOwner repairs OwnerId after a departure: ownership always
// references a uid present in Users.
func (r *RoomState) ReassignOwner() {
	if len(r.Users) == 0 {
		return
	}

	if r.UserByUid(r.OwnerId) == nil {
		r.OwnerId = r.Users[0].Uid
	}
}

// AppendLog records a mutating command, keeping at most limit entries.
func (r *RoomState) AppendLog(log CommandLog, limit int) {
	r.CommandHistory = append(r.CommandHistory, log)
	if limit > 0 && len(r.CommandHistory) > limit {
		r.CommandHistory = r.CommandHistory[len(r.CommandHistory)-limit:]
	}
}
