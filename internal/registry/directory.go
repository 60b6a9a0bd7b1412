package registry

import (
	"sort"
	"sync"
)

const (
	// DefaultRoom always exists and cannot be deleted.
	DefaultRoom = "default"

	// SystemCreator attributes rooms created by the server itself.
	SystemCreator = "system"
)

// Room describes a known room. Descriptors persist for the process
// lifetime even when the room is empty.
type Room struct {
	Name      string
	CreatedBy string
}

// Directory is the set of known rooms for one channel partition.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]Room
}

// NewDirectory creates a directory seeded with the default room.
func NewDirectory() *Directory {
	return &Directory{
		rooms: map[string]Room{
			DefaultRoom: {Name: DefaultRoom, CreatedBy: SystemCreator},
		},
	}
}

// Exists reports whether the named room is known.
func (d *Directory) Exists(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[name]
	return ok
}

// Ensure inserts the room if absent, attributing it to the creator, and
// reports whether it was newly created. Creation and join are one atomic
// step from the caller's perspective; Ensure is the creation half.
func (d *Directory) Ensure(name, creator string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[name]; ok {
		return false
	}
	d.rooms[name] = Room{Name: name, CreatedBy: creator}
	return true
}

// Rooms returns all room descriptors sorted by name.
func (d *Directory) Rooms() []Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rooms := make([]Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}

// NormalizeRoom maps an empty room request to the default room. Room names
// are otherwise free-form.
func NormalizeRoom(name string) string {
	if name == "" {
		return DefaultRoom
	}
	return name
}
