package relay

import "sync"

// Registry maps a user to at most one live connection.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Conn
	byConn map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Conn),
		byConn: make(map[string]string),
	}
}

// Register binds userID to conn. Last write wins. It returns the user that
// conn was bound to before, when that was a different user.
func (r *Registry) Register(userID string, conn Conn) (previousUser string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUser[userID]; ok && old.ID() != conn.ID() {
		delete(r.byConn, old.ID())
	}

	if prev, ok := r.byConn[conn.ID()]; ok && prev != userID {
		delete(r.byUser, prev)
		previousUser = prev
	}

	r.byUser[userID] = conn
	r.byConn[conn.ID()] = userID
	return previousUser
}

// Unregister removes whichever user is bound to conn. Calling it for a
// connection that is not bound, or twice, is a no-op.
func (r *Registry) Unregister(conn Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[conn.ID()]
	if !ok {
		return "", false
	}
	delete(r.byConn, conn.ID())
	if cur, ok := r.byUser[userID]; ok && cur.ID() == conn.ID() {
		delete(r.byUser, userID)
	}
	return userID, true
}

func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[userID]
	return conn, ok
}

// UserOf returns the user bound to conn, if any.
func (r *Registry) UserOf(conn Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[conn.ID()]
	return userID, ok
}

// Connections returns a snapshot of every registered connection.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.byUser))
	for _, c := range r.byUser {
		out = append(out, c)
	}
	return out
}

// OnlineUsers returns the ids of every registered user.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		out = append(out, id)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
