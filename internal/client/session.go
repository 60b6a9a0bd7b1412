package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"parley/internal/config"
	"parley/internal/protocol"
)

// ErrHandshakeTimeout is returned when the server never answers the
// handshake within the configured wait. Fatal to the client session.
var ErrHandshakeTimeout = errors.New("handshake timed out")

// DeniedError reports a handshake or re-handshake rejected by the server.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return "handshake denied"
	}
	return fmt.Sprintf("handshake denied: %s", e.Reason)
}

// Session manages one client-side connection: framed JSON codec, the
// handshake exchange, and the inbound message pump. A session is never
// reused across reconnects; each reconnect builds a fresh one so stale
// subscriptions are dropped wholesale.
type Session struct {
	cfg        config.ClientConfig
	addr       protocol.ServerAddress
	conn       net.Conn
	encoder    *protocol.Encoder
	decoder    *protocol.Decoder
	msgCh      chan protocol.Envelope
	cancelFn   context.CancelFunc
	confirm    protocol.ConfirmPayload
	userClosed atomic.Bool
}

// NewSession initializes a session for the parsed server address.
func NewSession(cfg config.ClientConfig, addr protocol.ServerAddress) *Session {
	return &Session{
		cfg:   cfg,
		addr:  addr,
		msgCh: make(chan protocol.Envelope, 32),
	}
}

// Connect dials the server and starts the inbound pump. Messages() yields
// decoded envelopes until the connection drops, then closes.
func (s *Session) Connect(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr.Addr())
	if err != nil {
		return err
	}
	s.conn = conn
	s.encoder = protocol.NewEncoder(conn)
	s.decoder = protocol.NewDecoder(conn, protocol.DefaultMaxFrameBytes)

	pumpCtx, cancel := context.WithCancel(context.Background())
	s.cancelFn = cancel
	go s.readLoop(pumpCtx)
	return nil
}

// Handshake sends the identity exchange and waits for the server verdict.
// The wait is bounded: a silent server yields ErrHandshakeTimeout rather
// than hanging forever.
func (s *Session) Handshake(ctx context.Context, first bool, username string) error {
	req := protocol.Envelope{
		Type: protocol.MessageTypeHandshake,
		Payload: protocol.HandshakeRequest{
			First:    first,
			Username: username,
			Channel:  s.addr.Channel,
		},
	}
	if err := s.Send(ctx, req); err != nil {
		return err
	}

	timeout := s.cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case env, ok := <-s.msgCh:
			if !ok {
				return errors.New("connection closed during handshake")
			}
			switch env.Type {
			case protocol.MessageTypeConfirm:
				confirm, err := decodeConfirmPayload(env.Payload)
				if err != nil {
					return fmt.Errorf("malformed handshake confirmation: %w", err)
				}
				s.confirm = confirm
				return nil
			case protocol.MessageTypeDenied:
				denied, err := decodeDeniedPayload(env.Payload)
				if err != nil {
					return &DeniedError{}
				}
				return &DeniedError{Reason: denied.Reason}
			default:
				// Not a handshake verdict; keep waiting.
			}
		case <-timer.C:
			return ErrHandshakeTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Send dispatches an envelope to the server, assigning id and timestamp.
func (s *Session) Send(ctx context.Context, env protocol.Envelope) error {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	env.Timestamp = time.Now()
	return s.encoder.Encode(ctx, env)
}

// Messages returns the inbound envelope stream. The channel closes when
// the connection is gone.
func (s *Session) Messages() <-chan protocol.Envelope {
	return s.msgCh
}

// Confirm reports the payload of the handshake confirmation, including the
// server-assigned connection id. Zero until Handshake succeeds.
func (s *Session) Confirm() protocol.ConfirmPayload {
	return s.confirm
}

// Addr reports the parsed server address this session dialed.
func (s *Session) Addr() protocol.ServerAddress {
	return s.addr
}

// Close terminates the session deliberately. A deliberate close is not
// treated as connection loss and never triggers reconnection.
func (s *Session) Close() error {
	s.userClosed.Store(true)
	if s.cancelFn != nil {
		s.cancelFn()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// UserClosed reports whether Close was called locally, as opposed to the
// transport dropping.
func (s *Session) UserClosed() bool {
	return s.userClosed.Load()
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.msgCh)
	for {
		env, err := s.decoder.Decode(ctx)
		if err != nil {
			return
		}
		select {
		case s.msgCh <- env:
		case <-ctx.Done():
			return
		}
	}
}
