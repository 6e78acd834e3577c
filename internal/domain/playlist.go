package domain

import "errors"

var ErrIndexOutOfRange = errors.New("playlist index out of range")

// Playlist is the ordered play queue. CurrentIndex is -1 when nothing from
// the playlist is selected, otherwise it points into Items.
type Playlist struct {
	Items        []MediaElement `json:"items"`
	CurrentIndex int            `json:"currentIndex"`
}

func NewPlaylist() Playlist {
	return Playlist{
		Items:        []MediaElement{},
		CurrentIndex: -1,
	}
}

func (p Playlist) Validate() error {
	if p.CurrentIndex < -1 || p.CurrentIndex >= len(p.Items) {
		return ErrIndexOutOfRange
	}

	return nil
}

// TargetState is the authoritative shared timeline all clients converge
// toward. LastSync (epoch seconds) is the anchor clients use to extrapolate
// Progress since the last authoritative update.
type TargetState struct {
	Playlist     Playlist     `json:"playlist"`
	Playing      MediaElement `json:"playing"`
	Paused       bool         `json:"paused"`
	Progress     float64      `json:"progress"`
	PlaybackRate float64      `json:"playbackRate"`
	Loop         bool         `json:"loop"`
	LastSync     float64      `json:"lastSync"`
}

func NewTargetState() TargetState {
	return TargetState{
		Playlist:     NewPlaylist(),
		Paused:       true,
		PlaybackRate: 1,
	}
}

// Transition names which branch AdvanceOnEnded took.
type Transition string

const (
	TransitionLoop         Transition = "loop"
	TransitionAdvance      Transition = "advance"
	TransitionCycleRestart Transition = "cycle-restart"
	TransitionStop         Transition = "stop"
)

// AdvanceOnEnded applies the end-of-item transition:
// loop the current item when Loop is set, otherwise advance to the next
// playlist item, restart from the first item when the last one ended, or
// stop when the playlist is empty. Stopping freezes Progress at the issuing
// user's last reported local progress since there is nothing to advance to.
func (t *TargetState) AdvanceOnEnded(lastKnownProgress float64, now float64) Transition {
	var tr Transition
	switch {
	case t.Loop:
		t.Progress = 0
		t.Paused = false
		tr = TransitionLoop
	case t.Playlist.CurrentIndex+1 < len(t.Playlist.Items):
		t.Playlist.CurrentIndex++
		t.Playing = t.Playlist.Items[t.Playlist.CurrentIndex]
		t.Progress = 0
		t.Paused = false
		tr = TransitionAdvance
	case len(t.Playlist.Items) > 0:
		t.Playlist.CurrentIndex = 0
		t.Playing = t.Playlist.Items[0]
		t.Progress = 0
		t.Paused = false
		tr = TransitionCycleRestart
	default:
		t.Progress = lastKnownProgress
		t.Paused = true
		tr = TransitionStop
	}

	t.LastSync = now

	return tr
}
