package client

import (
	"testing"

	"github.com/charmbracelet/bubbles/viewport"

	"parley/internal/config"
	"parley/internal/protocol"
)

func newTestApp() *App {
	return &App{
		cfg:      config.DefaultClient(),
		styles:   buildStyles(),
		commands: defaultCommands(),
		viewport: viewport.New(80, 20),
		username: "alice",
	}
}

func TestHandleEnvelopeSuppressesOwnChat(t *testing.T) {
	app := newTestApp()

	app.handleEnvelope(protocol.Envelope{
		Type:    protocol.MessageTypeChat,
		Payload: protocol.ChatMessage{Username: "alice", Message: "hi"},
	})
	if len(app.history) != 0 {
		t.Fatalf("own chat echoed from network: %v", app.history)
	}

	app.handleEnvelope(protocol.Envelope{
		Type:    protocol.MessageTypeChat,
		Payload: protocol.ChatMessage{Username: "bob", Message: "hi"},
	})
	if len(app.history) != 1 {
		t.Fatalf("history = %v, want single line", app.history)
	}
}

func TestHandleEnvelopeRendersEmoteFromAnyone(t *testing.T) {
	app := newTestApp()

	// Emotes are not locally echoed, so our own must come back in.
	app.handleEnvelope(protocol.Envelope{
		Type:    protocol.MessageTypeEmote,
		Payload: protocol.ChatMessage{Username: "alice", Message: "waves"},
	})
	if len(app.history) != 1 {
		t.Fatalf("history = %v, want single emote line", app.history)
	}
}

func TestHandleEnvelopeIgnoresUnknownType(t *testing.T) {
	app := newTestApp()

	app.handleEnvelope(protocol.Envelope{Type: protocol.MessageType("bogus")})
	if len(app.history) != 0 {
		t.Fatalf("unknown type reached history: %v", app.history)
	}
	if app.logLine.body == "" {
		t.Fatal("unknown type produced no log line")
	}
}

func TestHandleConfirmAppliesRename(t *testing.T) {
	app := newTestApp()
	app.pendingName = "alicia"

	app.handleEnvelope(protocol.Envelope{
		Type:    protocol.MessageTypeConfirm,
		Payload: protocol.ConfirmPayload{Username: "alicia"},
	})
	if app.username != "alicia" {
		t.Fatalf("username = %q, want alicia", app.username)
	}
	if app.pendingName != "" {
		t.Fatalf("pendingName = %q, want cleared", app.pendingName)
	}
}

func TestHandleDeniedClearsPendingRename(t *testing.T) {
	app := newTestApp()
	app.pendingName = "bob"

	app.handleEnvelope(protocol.Envelope{
		Type:    protocol.MessageTypeDenied,
		Payload: protocol.DeniedPayload{Reason: "Username already exists"},
	})
	if app.pendingName != "" {
		t.Fatalf("pendingName = %q, want cleared", app.pendingName)
	}
	if app.username != "alice" {
		t.Fatalf("username = %q, want unchanged", app.username)
	}
	if app.logLine.level != logLevelError {
		t.Fatal("denial not surfaced as error")
	}
}

func TestNewAppRejectsBadAddress(t *testing.T) {
	cfg := config.DefaultClient()
	cfg.ServerAddr = "localhost:notaport"
	if _, err := NewApp(cfg); err == nil {
		t.Fatal("NewApp accepted an unparseable address")
	}
}
