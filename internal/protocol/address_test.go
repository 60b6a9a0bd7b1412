package protocol

import "testing"

func TestParseServerAddress(t *testing.T) {
	tests := []struct {
		raw  string
		want ServerAddress
	}{
		{"localhost", ServerAddress{Host: "localhost", Port: DefaultPort}},
		{"localhost:4000", ServerAddress{Host: "localhost", Port: 4000}},
		{"chat.example.com/games", ServerAddress{Host: "chat.example.com", Port: DefaultPort, Channel: "games"}},
		{"chat.example.com:4000/games", ServerAddress{Host: "chat.example.com", Port: 4000, Channel: "games"}},
		{"10.0.0.5:3636/", ServerAddress{Host: "10.0.0.5", Port: 3636}},
		{"  localhost  ", ServerAddress{Host: "localhost", Port: DefaultPort}},
		{"::1", ServerAddress{Host: "::1", Port: DefaultPort}},
		{"[::1]", ServerAddress{Host: "::1", Port: DefaultPort}},
		{"[::1]:4000", ServerAddress{Host: "::1", Port: 4000}},
		{"[fe80::2]:4000/games", ServerAddress{Host: "fe80::2", Port: 4000, Channel: "games"}},
	}

	for _, tt := range tests {
		got, err := ParseServerAddress(tt.raw)
		if err != nil {
			t.Fatalf("ParseServerAddress(%q): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseServerAddress(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseServerAddressErrors(t *testing.T) {
	for _, raw := range []string{"", ":3636", "localhost:notaport", "localhost:0", "localhost:70000", "/games", "[::1", "[::1]4000", "[]:4000"} {
		if _, err := ParseServerAddress(raw); err == nil {
			t.Fatalf("ParseServerAddress(%q) accepted invalid input", raw)
		}
	}
}

func TestAddr(t *testing.T) {
	addr := ServerAddress{Host: "localhost", Port: 3636, Channel: "games"}
	if got := addr.Addr(); got != "localhost:3636" {
		t.Fatalf("Addr() = %q", got)
	}
	addr = ServerAddress{Host: "::1", Port: 3636}
	if got := addr.Addr(); got != "[::1]:3636" {
		t.Fatalf("IPv6 Addr() = %q", got)
	}
}
