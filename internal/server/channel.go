package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parley/internal/protocol"
	"parley/internal/registry"
)

// reasonUsernameConflict is the wire-visible denial reason for a taken name.
const reasonUsernameConflict = "Username already exists"

// Channel is one isolated partition of the chat state: an identity
// registry, a room directory, and a hub, with a single lock serializing
// mutation sequences across them. Rooms and usernames in one channel are
// invisible to another.
type Channel struct {
	name      string
	mu        sync.Mutex
	registry  *registry.Registry
	directory *registry.Directory
	hub       *RoomHub
	log       zerolog.Logger
}

// NewChannel creates an empty channel partition.
func NewChannel(name string, logger *zerolog.Logger) *Channel {
	channelLog := zerolog.Nop()
	if logger != nil {
		channelLog = logger.With().Str("channel", name).Logger()
	}
	return &Channel{
		name:      name,
		registry:  registry.NewRegistry(),
		directory: registry.NewDirectory(),
		hub:       NewRoomHub(),
		log:       channelLog,
	}
}

// Handshake registers the connection under the requested username and, on
// success, activates it and announces it to the default room. Both the
// initial and the reconnection handshake revalidate username uniqueness;
// a reconnecting client whose old registration is gone simply re-registers
// under its new connection id.
func (c *Channel) Handshake(ctx context.Context, sess *clientSession, req protocol.HandshakeRequest) bool {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		_ = sess.send(ctx, newDenied("Username required"))
		return false
	}

	c.mu.Lock()
	user, err := c.registry.Register(sess.id, username)
	if err != nil {
		c.mu.Unlock()
		c.log.Info().Str("conn", sess.id).Str("username", username).Bool("first", req.First).
			Msg("handshake denied: username conflict")
		_ = sess.send(ctx, newDenied(reasonUsernameConflict))
		return false
	}
	for _, room := range user.Rooms {
		c.hub.Register(room, sess.id, sess.sendCh)
	}
	c.mu.Unlock()

	_ = sess.send(ctx, newEnvelope(protocol.MessageTypeConfirm, protocol.ConfirmPayload{
		Username: username,
		Conn:     sess.id,
	}))
	c.hub.Broadcast(registry.DefaultRoom, newNotice(joinNotice(username, registry.DefaultRoom)))

	c.log.Info().Str("conn", sess.id).Str("username", username).Bool("first", req.First).
		Str("remote", sess.remoteAddr()).Msg("handshake accepted")
	return true
}

// Dispatch routes one inbound envelope from an active session. Unknown
// types are answered with a notice rather than dropped silently.
func (c *Channel) Dispatch(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	switch env.Type {
	case protocol.MessageTypeChat, protocol.MessageTypeEmote:
		if !sess.limiter.Allow() {
			_ = sess.send(ctx, newNotice("You're sending messages too fast"))
			return
		}
		c.handleSend(ctx, sess, env)
	case protocol.MessageTypeWhisper:
		if !sess.limiter.Allow() {
			_ = sess.send(ctx, newNotice("You're sending messages too fast"))
			return
		}
		c.handleWhisper(ctx, sess, env)
	case protocol.MessageTypeRoom:
		c.handleRoom(ctx, sess, env)
	case protocol.MessageTypeUsername:
		c.handleRename(ctx, sess, env)
	case protocol.MessageTypeListUsers:
		c.handleListUsers(ctx, sess)
	default:
		c.log.Warn().Str("conn", sess.id).Str("type", string(env.Type)).Msg("unknown message type")
		_ = sess.send(ctx, newNotice(fmt.Sprintf("Ignored unknown message type: %s", env.Type)))
	}
}

// Disconnect unregisters the connection and tells its rooms it is gone.
// Safe to call for sessions that never completed a handshake.
func (c *Channel) Disconnect(sess *clientSession) {
	c.mu.Lock()
	user, ok := c.registry.Unregister(sess.id)
	if ok {
		for _, room := range user.Rooms {
			c.hub.Unregister(room, sess.id)
		}
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	for _, room := range user.ChatRooms() {
		c.hub.Broadcast(room, newNotice(fmt.Sprintf("[%s] has left [#%s]!", user.Username, room)))
	}
	c.log.Info().Str("conn", sess.id).Str("username", user.Username).Msg("unregistered")
}

func (c *Channel) handleSend(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	user, ok := c.registry.FindByConnection(sess.id)
	if !ok {
		return
	}
	msg, err := decodeChatMessage(env.Payload)
	if err != nil {
		_ = sess.send(ctx, newNotice("Malformed message payload"))
		return
	}

	delivery := newEnvelope(env.Type, protocol.ChatMessage{
		Username: user.Username,
		Message:  msg.Message,
	})
	for _, room := range user.ChatRooms() {
		c.hub.Broadcast(room, delivery)
	}
}

func (c *Channel) handleWhisper(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	sender, ok := c.registry.FindByConnection(sess.id)
	if !ok {
		return
	}
	req, err := decodeWhisperRequest(env.Payload)
	if err != nil {
		_ = sess.send(ctx, newNotice("Malformed whisper payload"))
		return
	}

	target, ok := c.registry.FindByUsername(req.To)
	if !ok {
		_ = sess.send(ctx, newNotice(fmt.Sprintf("No such user: %s", req.To)))
		return
	}

	c.hub.Unicast(target.Conn, newEnvelope(protocol.MessageTypeTell, protocol.ChatMessage{
		From:    sender.Username,
		To:      target.Username,
		Message: req.Message,
	}))
}

func (c *Channel) handleRoom(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	user, ok := c.registry.FindByConnection(sess.id)
	if !ok {
		return
	}
	req, err := decodeRoomRequest(env.Payload)
	if err != nil {
		_ = sess.send(ctx, newNotice("Malformed room payload"))
		return
	}
	room := registry.NormalizeRoom(strings.TrimSpace(req.Room))

	c.mu.Lock()
	created := c.directory.Ensure(room, sess.id)
	left, err := c.registry.SwitchRoom(sess.id, room)
	if err != nil {
		c.mu.Unlock()
		return
	}
	for _, old := range left {
		c.hub.Unregister(old, sess.id)
	}
	c.hub.Register(room, sess.id, sess.sendCh)
	c.mu.Unlock()

	c.hub.Broadcast(room, newNotice(joinNotice(user.Username, room)))
	c.log.Debug().Str("conn", sess.id).Str("room", room).Bool("created", created).
		Strs("left", left).Msg("room switch")
}

func (c *Channel) handleRename(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	req, err := decodeRenameRequest(env.Payload)
	if err != nil {
		_ = sess.send(ctx, newNotice("Malformed username payload"))
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		_ = sess.send(ctx, newDenied("Username required"))
		return
	}

	old, err := c.registry.Rename(sess.id, username)
	if err != nil {
		_ = sess.send(ctx, newDenied(reasonUsernameConflict))
		return
	}

	_ = sess.send(ctx, newConfirm(username))

	user, ok := c.registry.FindByConnection(sess.id)
	if !ok {
		return
	}
	notice := newNotice(fmt.Sprintf("[%s] is now known as [%s]!", old, username))
	for _, room := range user.ChatRooms() {
		c.hub.Broadcast(room, notice)
	}
	c.log.Info().Str("conn", sess.id).Str("old", old).Str("new", username).Msg("renamed")
}

func (c *Channel) handleListUsers(ctx context.Context, sess *clientSession) {
	for _, user := range c.registry.Users() {
		for _, room := range user.ChatRooms() {
			_ = sess.send(ctx, newNotice(fmt.Sprintf("[%s] is in [#%s]", user.Username, room)))
		}
	}
}

func joinNotice(username, room string) string {
	return fmt.Sprintf("[%s] has joined [#%s]!", username, room)
}

func newEnvelope(kind protocol.MessageType, payload interface{}) protocol.Envelope {
	return protocol.Envelope{
		ID:        uuid.NewString(),
		Type:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func newNotice(message string) protocol.Envelope {
	return newEnvelope(protocol.MessageTypeNotice, protocol.ChatMessage{Message: message})
}

func newConfirm(username string) protocol.Envelope {
	return newEnvelope(protocol.MessageTypeConfirm, protocol.ConfirmPayload{Username: username})
}

func newDenied(reason string) protocol.Envelope {
	return newEnvelope(protocol.MessageTypeDenied, protocol.DeniedPayload{Reason: reason})
}
