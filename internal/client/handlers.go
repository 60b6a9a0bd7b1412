package client

import (
	"fmt"

	"parley/internal/protocol"
)

// handleEnvelope applies one inbound envelope to the display. The set of
// types is closed; anything else is an explicit "ignored" outcome, never a
// crash.
func (a *App) handleEnvelope(env protocol.Envelope) {
	switch env.Type {
	case protocol.MessageTypeChat:
		msg, err := decodeChatMessage(env.Payload)
		if err != nil {
			a.logErrorf("Malformed chat message: %v", err)
			return
		}
		// Our own input is echoed locally, never doubled from the network.
		if msg.Username == a.username {
			return
		}
		a.appendLine(fmt.Sprintf("%s: %s", msg.Username, msg.Message))
	case protocol.MessageTypeEmote:
		msg, err := decodeChatMessage(env.Payload)
		if err != nil {
			a.logErrorf("Malformed emote: %v", err)
			return
		}
		a.appendLine(fmt.Sprintf("* %s %s", msg.Username, msg.Message))
	case protocol.MessageTypeNotice:
		msg, err := decodeChatMessage(env.Payload)
		if err != nil {
			a.logErrorf("Malformed notice: %v", err)
			return
		}
		a.appendLine(a.styles.notice.Render(fmt.Sprintf("*** %s", msg.Message)))
	case protocol.MessageTypeTell:
		msg, err := decodeChatMessage(env.Payload)
		if err != nil {
			a.logErrorf("Malformed whisper: %v", err)
			return
		}
		a.appendLine(a.styles.tell.Render(fmt.Sprintf("[whisper] %s: %s", msg.From, msg.Message)))
	case protocol.MessageTypeConfirm:
		a.handleConfirm(env)
	case protocol.MessageTypeDenied:
		a.handleDenied(env)
	default:
		a.logf("Ignored message type: %s", env.Type)
	}
}

// handleConfirm covers rename confirmations; handshake confirms are
// consumed inside Session.Handshake and never reach this path.
func (a *App) handleConfirm(env protocol.Envelope) {
	confirm, err := decodeConfirmPayload(env.Payload)
	if err != nil {
		a.logErrorf("Malformed confirmation: %v", err)
		return
	}
	if confirm.Conn != "" {
		a.connID = confirm.Conn
	}
	if confirm.Username != "" {
		a.username = confirm.Username
		a.pendingName = ""
		a.logf("You are now known as %s", confirm.Username)
	}
}

func (a *App) handleDenied(env protocol.Envelope) {
	denied, err := decodeDeniedPayload(env.Payload)
	if err != nil {
		a.logErrorf("Malformed denial: %v", err)
		return
	}
	reason := denied.Reason
	if reason == "" {
		reason = "request denied"
	}
	if a.pendingName != "" {
		a.logErrorf("Rename to %s failed: %s", a.pendingName, reason)
		a.pendingName = ""
		return
	}
	a.logErrorf("Denied: %s", reason)
}
