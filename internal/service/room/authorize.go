package room

import "github.com/MuratFaizulla/mediapleer/internal/domain"

// authorize is the ownership permission gate. No command requires ownership
// today: the owner is a displayed, reassignable marker. When a command
// should become owner-only (clearing the playlist, kicking a user), the
// decision belongs here and nowhere else.
func (s *service) authorize(rs *domain.RoomState, senderId string, cmd domain.Command) error {
	_ = rs
	_ = senderId
	_ = cmd

	return nil
}
