package registry

import (
	"errors"
	"testing"
)

func TestRegisterJoinsDefaultAndIdentityRoom(t *testing.T) {
	r := NewRegistry()

	user, err := r.Register("conn-1", "alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username = %q, want alice", user.Username)
	}
	if !user.InRoom(DefaultRoom) {
		t.Fatalf("user not in default room: %v", user.Rooms)
	}
	if !user.InRoom("conn-1") {
		t.Fatalf("user not in identity-room: %v", user.Rooms)
	}
	if got := user.ChatRooms(); len(got) != 1 || got[0] != DefaultRoom {
		t.Fatalf("ChatRooms = %v, want [default]", got)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("conn-1", "alice"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := r.Register("conn-2", "alice"); !errors.Is(err, ErrUsernameConflict) {
		t.Fatalf("second Register err = %v, want ErrUsernameConflict", err)
	}

	// The losing connection must leave no trace.
	if _, ok := r.FindByConnection("conn-2"); ok {
		t.Fatal("conn-2 registered despite conflict")
	}
	user, ok := r.FindByUsername("alice")
	if !ok || user.Conn != "conn-1" {
		t.Fatalf("alice bound to %q, want conn-1", user.Conn)
	}
}

func TestUnregisterFreesUsername(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("conn-1", "alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	user, ok := r.Unregister("conn-1")
	if !ok {
		t.Fatal("Unregister reported missing connection")
	}
	if user.Username != "alice" {
		t.Fatalf("removed username = %q, want alice", user.Username)
	}

	if _, err := r.Register("conn-2", "alice"); err != nil {
		t.Fatalf("re-Register after Unregister: %v", err)
	}
}

func TestUnregisterUnknownConnection(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Unregister("ghost"); ok {
		t.Fatal("Unregister of unknown connection reported a user")
	}
}

func TestRenameConflictLeavesRegistrationUnchanged(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("conn-1", "alice"); err != nil {
		t.Fatalf("Register alice: %v", err)
	}
	if _, err := r.Register("conn-2", "bob"); err != nil {
		t.Fatalf("Register bob: %v", err)
	}

	if _, err := r.Rename("conn-2", "alice"); !errors.Is(err, ErrUsernameConflict) {
		t.Fatalf("Rename err = %v, want ErrUsernameConflict", err)
	}
	user, ok := r.FindByConnection("conn-2")
	if !ok || user.Username != "bob" {
		t.Fatalf("conn-2 username = %q, want bob", user.Username)
	}
}

func TestRenameRebindsUsername(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("conn-1", "alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	old, err := r.Rename("conn-1", "alicia")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if old != "alice" {
		t.Fatalf("old name = %q, want alice", old)
	}

	if _, ok := r.FindByUsername("alice"); ok {
		t.Fatal("old username still resolvable")
	}
	user, ok := r.FindByUsername("alicia")
	if !ok || user.Conn != "conn-1" {
		t.Fatalf("alicia bound to %q, want conn-1", user.Conn)
	}

	// The freed name is immediately reusable.
	if _, err := r.Register("conn-2", "alice"); err != nil {
		t.Fatalf("Register freed name: %v", err)
	}
}

func TestRenameUnknownConnection(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Rename("ghost", "alice"); !errors.Is(err, ErrUnknownConnection) {
		t.Fatalf("Rename err = %v, want ErrUnknownConnection", err)
	}
}

func TestSwitchRoomReplacesChatMembership(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("conn-1", "alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	left, err := r.SwitchRoom("conn-1", "games")
	if err != nil {
		t.Fatalf("SwitchRoom: %v", err)
	}
	if len(left) != 1 || left[0] != DefaultRoom {
		t.Fatalf("left = %v, want [default]", left)
	}

	user, _ := r.FindByConnection("conn-1")
	if got := user.ChatRooms(); len(got) != 1 || got[0] != "games" {
		t.Fatalf("ChatRooms = %v, want [games]", got)
	}
	if !user.InRoom("conn-1") {
		t.Fatal("identity-room membership lost on switch")
	}
}

func TestSwitchRoomToCurrentRoomLeavesNothing(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("conn-1", "alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	left, err := r.SwitchRoom("conn-1", DefaultRoom)
	if err != nil {
		t.Fatalf("SwitchRoom: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("left = %v, want none", left)
	}
}

func TestUsersSortedByUsername(t *testing.T) {
	r := NewRegistry()

	for _, reg := range []struct{ conn, name string }{
		{"conn-1", "carol"},
		{"conn-2", "alice"},
		{"conn-3", "bob"},
	} {
		if _, err := r.Register(reg.conn, reg.name); err != nil {
			t.Fatalf("Register %s: %v", reg.name, err)
		}
	}

	users := r.Users()
	want := []string{"alice", "bob", "carol"}
	if len(users) != len(want) {
		t.Fatalf("got %d users, want %d", len(users), len(want))
	}
	for i, name := range want {
		if users[i].Username != name {
			t.Fatalf("users[%d] = %q, want %q", i, users[i].Username, name)
		}
	}
}
