package registry

import "testing"

func TestNewDirectorySeedsDefaultRoom(t *testing.T) {
	d := NewDirectory()
	if !d.Exists(DefaultRoom) {
		t.Fatal("default room missing from fresh directory")
	}
	rooms := d.Rooms()
	if len(rooms) != 1 || rooms[0].CreatedBy != SystemCreator {
		t.Fatalf("rooms = %v, want single system-created default", rooms)
	}
}

func TestEnsureCreatesOnce(t *testing.T) {
	d := NewDirectory()

	if !d.Ensure("games", "conn-1") {
		t.Fatal("first Ensure did not create the room")
	}
	if d.Ensure("games", "conn-2") {
		t.Fatal("second Ensure recreated an existing room")
	}

	rooms := d.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	// Creator attribution sticks to the first creator.
	for _, room := range rooms {
		if room.Name == "games" && room.CreatedBy != "conn-1" {
			t.Fatalf("games created by %q, want conn-1", room.CreatedBy)
		}
	}
}

func TestRoomDescriptorPersistsWhenEmpty(t *testing.T) {
	d := NewDirectory()
	d.Ensure("games", "conn-1")

	// Membership lives elsewhere; nothing removes a descriptor.
	if !d.Exists("games") {
		t.Fatal("room descriptor vanished")
	}
}

func TestNormalizeRoom(t *testing.T) {
	if got := NormalizeRoom(""); got != DefaultRoom {
		t.Fatalf("NormalizeRoom(\"\") = %q, want %q", got, DefaultRoom)
	}
	if got := NormalizeRoom("games"); got != "games" {
		t.Fatalf("NormalizeRoom(games) = %q", got)
	}
}
