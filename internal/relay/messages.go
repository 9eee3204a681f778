package relay

import "github.com/mossy-p/socio-relay/internal/models"

// Messages fans chat and typing events out to a room.
type Messages struct {
	rooms *Rooms
}

func NewMessages(rooms *Rooms) *Messages {
	return &Messages{rooms: rooms}
}

// RelayToRoom delivers env to every member of roomID except exclude and
// returns how many members accepted it.
func (m *Messages) RelayToRoom(roomID string, exclude Conn, env models.Envelope) int {
	sent := 0
	for _, c := range m.rooms.MembersOf(roomID) {
		if exclude != nil && c.ID() == exclude.ID() {
			continue
		}
		if send(c, env) {
			sent++
		}
	}
	return sent
}
