package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"parley/internal/protocol"
)

// Handshake states for one connection. Transitions happen only on the
// connection's own read loop, so no lock is needed.
type sessionState int

const (
	stateAwaitingHandshake sessionState = iota
	stateActive
)

// clientSession tracks per-connection state and outbound delivery. The id
// doubles as the private identity-room name and is never reused across
// reconnects.
type clientSession struct {
	id        string
	conn      net.Conn
	sendCh    chan protocol.Envelope
	state     sessionState
	channel   *Channel
	limiter   *rate.Limiter
	closeOnce sync.Once
}

func newClientSession(conn net.Conn, messageRate float64, messageBurst int) *clientSession {
	return &clientSession{
		id:      uuid.NewString(),
		conn:    conn,
		sendCh:  make(chan protocol.Envelope, 64),
		limiter: rate.NewLimiter(rate.Limit(messageRate), messageBurst),
	}
}

func (s *clientSession) send(ctx context.Context, env protocol.Envelope) error {
	select {
	case s.sendCh <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *clientSession) writeLoop(ctx context.Context, encoder *protocol.Encoder, writeTimeout time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-s.sendCh:
			if !ok {
				return nil
			}
			if s.conn != nil && writeTimeout > 0 {
				if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return err
				}
			}
			if err := encoder.Encode(ctx, env); err != nil {
				return err
			}
		}
	}
}

func (s *clientSession) remoteAddr() string {
	if s.conn == nil {
		return ""
	}
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (s *clientSession) close() {
	s.closeOnce.Do(func() {
		close(s.sendCh)
	})
}
