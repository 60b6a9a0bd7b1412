package server

import (
	"testing"

	"parley/internal/protocol"
)

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewRoomHub()
	a := make(chan protocol.Envelope, 1)
	b := make(chan protocol.Envelope, 1)
	hub.Register("default", "conn-a", a)
	hub.Register("default", "conn-b", b)

	hub.Broadcast("default", protocol.Envelope{ID: "env-1"})

	for name, ch := range map[string]chan protocol.Envelope{"a": a, "b": b} {
		select {
		case env := <-ch:
			if env.ID != "env-1" {
				t.Fatalf("subscriber %s got id %q", name, env.ID)
			}
		default:
			t.Fatalf("subscriber %s got nothing", name)
		}
	}
}

func TestBroadcastSkipsOtherRooms(t *testing.T) {
	hub := NewRoomHub()
	other := make(chan protocol.Envelope, 1)
	hub.Register("games", "conn-a", other)

	hub.Broadcast("default", protocol.Envelope{ID: "env-1"})

	select {
	case env := <-other:
		t.Fatalf("unrelated room received %q", env.ID)
	default:
	}
}

func TestBroadcastDropsSlowConsumer(t *testing.T) {
	hub := NewRoomHub()
	full := make(chan protocol.Envelope, 1)
	full <- protocol.Envelope{ID: "stale"}
	hub.Register("default", "conn-a", full)

	// Must not block even though the buffer is full.
	hub.Broadcast("default", protocol.Envelope{ID: "env-1"})

	if env := <-full; env.ID != "stale" {
		t.Fatalf("buffered id = %q, want stale", env.ID)
	}
	select {
	case env := <-full:
		t.Fatalf("dropped envelope was delivered: %q", env.ID)
	default:
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewRoomHub()
	ch := make(chan protocol.Envelope, 1)
	hub.Register("default", "conn-a", ch)
	hub.Unregister("default", "conn-a")

	hub.Broadcast("default", protocol.Envelope{ID: "env-1"})

	select {
	case env := <-ch:
		t.Fatalf("unregistered subscriber received %q", env.ID)
	default:
	}
}

func TestUnicastTargetsIdentityRoom(t *testing.T) {
	hub := NewRoomHub()
	a := make(chan protocol.Envelope, 1)
	b := make(chan protocol.Envelope, 1)
	hub.Register("conn-a", "conn-a", a)
	hub.Register("conn-b", "conn-b", b)

	hub.Unicast("conn-a", protocol.Envelope{ID: "env-1"})

	select {
	case env := <-a:
		if env.ID != "env-1" {
			t.Fatalf("got id %q", env.ID)
		}
	default:
		t.Fatal("target got nothing")
	}
	select {
	case <-b:
		t.Fatal("non-target received unicast")
	default:
	}
}
