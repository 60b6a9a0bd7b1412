package registry

import (
	"errors"
	"sort"
	"sync"
)

// ErrUsernameConflict is returned when a username is already held by a
// different live connection.
var ErrUsernameConflict = errors.New("username already exists")

// ErrUnknownConnection is returned when an operation references a
// connection with no registered user.
var ErrUnknownConnection = errors.New("unknown connection")

// User is a snapshot of a registered identity. Rooms always contains the
// private identity-room (named after the connection id) plus exactly one
// chat room.
type User struct {
	Conn     string
	Username string
	Rooms    []string
}

// ChatRooms returns the user's rooms excluding the private identity-room.
func (u User) ChatRooms() []string {
	rooms := make([]string, 0, len(u.Rooms))
	for _, room := range u.Rooms {
		if room != u.Conn {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

// InRoom reports whether the user is a member of the named room.
func (u User) InRoom(name string) bool {
	for _, room := range u.Rooms {
		if room == name {
			return true
		}
	}
	return false
}

type entry struct {
	conn     string
	username string
	rooms    map[string]struct{}
}

// Registry maps connection ids to users and enforces username uniqueness.
// It owns the authoritative membership sets; transport-level subscriptions
// follow registry mutations, never the other way around.
type Registry struct {
	mu     sync.RWMutex
	byConn map[string]*entry
	byName map[string]*entry
}

// NewRegistry initializes an empty identity registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]*entry),
		byName: make(map[string]*entry),
	}
}

// Register inserts a user for the connection, joined to its private
// identity-room and the default room. It fails with ErrUsernameConflict
// when the username is held by another connection.
func (r *Registry) Register(conn, username string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if other, ok := r.byName[username]; ok && other.conn != conn {
		return User{}, ErrUsernameConflict
	}

	e := &entry{
		conn:     conn,
		username: username,
		rooms: map[string]struct{}{
			conn:        {},
			DefaultRoom: {},
		},
	}
	r.byConn[conn] = e
	r.byName[username] = e
	return snapshot(e), nil
}

// Unregister removes the user keyed by the connection. It reports the
// removed user so callers can notify its rooms; a missing connection is a
// no-op.
func (r *Registry) Unregister(conn string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byConn[conn]
	if !ok {
		return User{}, false
	}
	delete(r.byConn, conn)
	if current, ok := r.byName[e.username]; ok && current == e {
		delete(r.byName, e.username)
	}
	return snapshot(e), true
}

// FindByConnection looks up the user registered for a connection.
func (r *Registry) FindByConnection(conn string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byConn[conn]
	if !ok {
		return User{}, false
	}
	return snapshot(e), true
}

// FindByUsername looks up a user by exact username match.
func (r *Registry) FindByUsername(name string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[name]
	if !ok {
		return User{}, false
	}
	return snapshot(e), true
}

// Rename changes the username bound to a connection. It fails with
// ErrUsernameConflict when the new name belongs to a different connection
// and leaves the registration untouched in that case.
func (r *Registry) Rename(conn, newUsername string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byConn[conn]
	if !ok {
		return "", ErrUnknownConnection
	}
	if other, ok := r.byName[newUsername]; ok && other.conn != conn {
		return "", ErrUsernameConflict
	}

	old := e.username
	delete(r.byName, old)
	e.username = newUsername
	r.byName[newUsername] = e
	return old, nil
}

// SwitchRoom replaces the user's chat-room memberships with the single
// target room, keeping the private identity-room. It returns the rooms
// that were left.
func (r *Registry) SwitchRoom(conn, room string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byConn[conn]
	if !ok {
		return nil, ErrUnknownConnection
	}

	left := make([]string, 0, len(e.rooms))
	for name := range e.rooms {
		if name == e.conn || name == room {
			continue
		}
		delete(e.rooms, name)
		left = append(left, name)
	}
	sort.Strings(left)
	e.rooms[room] = struct{}{}
	return left, nil
}

// Users returns a snapshot of all registered users sorted by username.
func (r *Registry) Users() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.byConn))
	for _, e := range r.byConn {
		users = append(users, snapshot(e))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users
}

func snapshot(e *entry) User {
	rooms := make([]string, 0, len(e.rooms))
	for room := range e.rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return User{Conn: e.conn, Username: e.username, Rooms: rooms}
}
