package domain

// PlayerState is one user's locally observed playback state. It extends the
// shared TargetState shape with client-only fields that never flow back into
// the room-wide timeline.
type PlayerState struct {
	TargetState
	CurrentSrc MediaOption `json:"currentSrc"`
	CurrentSub Subtitle    `json:"currentSub"`
	Volume     float64     `json:"volume"`
	Muted      bool        `json:"muted"`
	Fullscreen bool        `json:"fullscreen"`
	Error      string      `json:"error,omitempty"`
	Duration   float64     `json:"duration"`
}

// UserState is one joined participant. Uid is stable across reconnects,
// SocketIds[0] is the live transport identity used to route events.
type UserState struct {
	SocketIds []string    `json:"socketIds"`
	Ip        string      `json:"ip"`
	Uid       string      `json:"uid"`
	Name      string      `json:"name"`
	Avatar    string      `json:"avatar"`
	Player    PlayerState `json:"player"`
}

func NewUserState(uid, socketId, ip string) UserState {
	return UserState{
		SocketIds: []string{socketId},
		Ip:        ip,
		Uid:       uid,
		Player: PlayerState{
			TargetState: NewTargetState(),
			Volume:      1,
		},
	}
}
