package relay

import "sync"

// Rooms tracks which connections joined which conversation. Rooms are
// created on first join and dropped once empty.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]Conn
	joined  map[string]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]Conn),
		joined:  make(map[string]map[string]struct{}),
	}
}

func (r *Rooms) Join(roomID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[roomID]
	if !ok {
		set = make(map[string]Conn)
		r.members[roomID] = set
	}
	set[conn.ID()] = conn

	rooms, ok := r.joined[conn.ID()]
	if !ok {
		rooms = make(map[string]struct{})
		r.joined[conn.ID()] = rooms
	}
	rooms[roomID] = struct{}{}
}

func (r *Rooms) Leave(roomID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leave(roomID, conn.ID())
}

// LeaveAll removes conn from every room and returns the rooms it was in.
func (r *Rooms) LeaveAll(conn Conn) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := r.joined[conn.ID()]
	left := make([]string, 0, len(rooms))
	for roomID := range rooms {
		left = append(left, roomID)
	}
	for _, roomID := range left {
		r.leave(roomID, conn.ID())
	}
	return left
}

// leave must be called with mu held.
func (r *Rooms) leave(roomID, connID string) {
	if set, ok := r.members[roomID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.members, roomID)
		}
	}
	if rooms, ok := r.joined[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.joined, connID)
		}
	}
}

// MembersOf returns a snapshot of the room's members; empty for unknown rooms.
func (r *Rooms) MembersOf(roomID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.members[roomID]
	out := make([]Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Rooms) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
