package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/protocol"
	"parley/internal/registry"
)

type commandSpec struct {
	trigger     string
	usage       string
	description string
	aliases     []string
}

func defaultCommands() []commandSpec {
	return []commandSpec{
		{trigger: "/room", usage: "/room [name]", description: "Join (or create) a room; no name means default"},
		{trigger: "/whisper", usage: "/whisper <user> <message>", description: "Send a private message", aliases: []string{"/w", "/tell"}},
		{trigger: "/username", usage: "/username <name>", description: "Change your username", aliases: []string{"/nick"}},
		{trigger: "/list", usage: "/list", description: "List users and their rooms"},
		{trigger: "/me", usage: "/me <action>", description: "Send an emote"},
		{trigger: "/clear", usage: "/clear", description: "Clear the chat history"},
		{trigger: "/id", usage: "/id", description: "Show your connection id"},
		{trigger: "/server", usage: "/server", description: "Show the server address"},
		{trigger: "/status", usage: "/status", description: "Show session status"},
		{trigger: "/help", usage: "/help", description: "List available commands"},
		{trigger: "/exit", usage: "/exit", description: "Exit the client", aliases: []string{"/quit"}},
	}
}

// splitCommand splits a raw line into a command name (up to the first
// whitespace, without the marker) and the remainder as argument. A line
// that is just the marker, or that does not start with it, is not a
// command and is sent verbatim as chat.
func splitCommand(raw string, prefix rune) (string, string, bool) {
	if len(raw) <= len(string(prefix)) || !strings.HasPrefix(raw, string(prefix)) {
		return "", "", false
	}
	content := raw[len(string(prefix)):]
	name := content
	arg := ""
	if idx := strings.IndexAny(content, " \t"); idx >= 0 {
		name = content[:idx]
		arg = strings.TrimSpace(content[idx+1:])
	}
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), arg, true
}

func (a *App) handleSubmit(value string) tea.Cmd {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if name, arg, ok := splitCommand(value, a.cfg.Prefix()); ok {
		return a.executeCommand(name, arg)
	}
	return a.sendChatMessage(value)
}

func (a *App) executeCommand(name, arg string) tea.Cmd {
	switch name {
	case "room":
		return a.commandRoom(arg)
	case "whisper", "w", "tell":
		return a.commandWhisper(arg)
	case "username", "nick":
		return a.commandUsername(arg)
	case "list":
		return a.commandList()
	case "me":
		return a.commandEmote(arg)
	case "clear":
		a.history = nil
		a.updateViewportContent()
		a.logf("Cleared chat history")
		return nil
	case "id":
		if a.connID == "" {
			a.logf("No connection id yet")
		} else {
			a.logf("Connection id: %s", a.connID)
		}
		return nil
	case "server":
		a.logf("Server: %s (channel %q)", a.addr.Addr(), a.addr.Channel)
		return nil
	case "status":
		status := "offline"
		if a.online {
			status = "online"
		}
		a.logf("Status: %s | user: %s | room: %s", status, orDash(a.username), orDash(a.room))
		return nil
	case "help":
		a.appendHelp()
		return nil
	case "exit", "quit":
		return a.quit()
	default:
		a.logErrorf("Unknown command: /%s", name)
		return nil
	}
}

func (a *App) commandRoom(arg string) tea.Cmd {
	if !a.ensureOnline() {
		return nil
	}
	room := registry.NormalizeRoom(strings.TrimSpace(arg))
	env := protocol.Envelope{
		Type:    protocol.MessageTypeRoom,
		Payload: protocol.RoomRequest{Room: room},
	}
	a.room = room
	a.logf("Joining room #%s ...", room)
	return a.sendEnvelope(env, "room request")
}

func (a *App) commandWhisper(arg string) tea.Cmd {
	if !a.ensureOnline() {
		return nil
	}
	target := arg
	message := ""
	if idx := strings.IndexAny(arg, " \t"); idx >= 0 {
		target = arg[:idx]
		message = strings.TrimSpace(arg[idx+1:])
	}
	if target == "" || message == "" {
		a.logErrorf("Usage: /whisper <user> <message>")
		return nil
	}
	env := protocol.Envelope{
		Type: protocol.MessageTypeWhisper,
		Payload: protocol.WhisperRequest{
			From:    a.username,
			To:      target,
			Message: message,
		},
	}
	a.appendLine(fmt.Sprintf("-> [%s] %s", target, message))
	return a.sendEnvelope(env, "whisper")
}

func (a *App) commandUsername(arg string) tea.Cmd {
	if !a.ensureOnline() {
		return nil
	}
	name := strings.TrimSpace(arg)
	if name == "" {
		a.logErrorf("Usage: /username <name>")
		return nil
	}
	a.pendingName = name
	env := protocol.Envelope{
		Type:    protocol.MessageTypeUsername,
		Payload: protocol.RenameRequest{Username: name},
	}
	return a.sendEnvelope(env, "rename request")
}

func (a *App) commandList() tea.Cmd {
	if !a.ensureOnline() {
		return nil
	}
	return a.sendEnvelope(protocol.Envelope{Type: protocol.MessageTypeListUsers}, "user listing")
}

func (a *App) commandEmote(arg string) tea.Cmd {
	if !a.ensureOnline() {
		return nil
	}
	action := strings.TrimSpace(arg)
	if action == "" {
		a.logErrorf("Usage: /me <action>")
		return nil
	}
	env := protocol.Envelope{
		Type:    protocol.MessageTypeEmote,
		Payload: protocol.ChatMessage{Message: action},
	}
	return a.sendEnvelope(env, "emote")
}

func (a *App) sendChatMessage(content string) tea.Cmd {
	if !a.ensureOnline() {
		return nil
	}
	// Local echo; the network copy with our own username is suppressed.
	a.appendLine(fmt.Sprintf("%s: %s", a.username, content))
	env := protocol.Envelope{
		Type:    protocol.MessageTypeChat,
		Payload: protocol.ChatMessage{Message: content},
	}
	return a.sendEnvelope(env, "chat message")
}

func (a *App) ensureOnline() bool {
	if a.session == nil || !a.online {
		a.logErrorf("Not connected")
		return false
	}
	return true
}

func (a *App) sendEnvelope(env protocol.Envelope, description string) tea.Cmd {
	session := a.session
	if session == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		err := session.Send(ctx, env)
		return sendResultMsg{session: session, description: description, err: err}
	}
}

func (a *App) appendHelp() {
	a.appendLine("Commands:")
	for _, spec := range a.commands {
		line := fmt.Sprintf("  %-28s %s", spec.usage, spec.description)
		if len(spec.aliases) > 0 {
			line += fmt.Sprintf(" (aliases: %s)", strings.Join(spec.aliases, ", "))
		}
		a.appendLine(line)
	}
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

const sendTimeout = 5 * time.Second
