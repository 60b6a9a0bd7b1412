package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"parley/internal/config"
	"parley/internal/protocol"
)

// App coordinates network listeners, session lifecycle, and channel
// partitions. Each channel owns an independent registry, directory, and hub.
type App struct {
	cfg       config.ServerConfig
	log       *zerolog.Logger
	listener  net.Listener
	closeOnce sync.Once

	chmu     sync.Mutex
	channels map[string]*Channel
}

// NewApp constructs a server instance using the provided configuration.
func NewApp(cfg config.ServerConfig, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		log:      logger,
		channels: make(map[string]*Channel),
	}
}

// Run starts accepting connections until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return err
	}
	a.listener = listener
	a.log.Info().Str("addr", a.cfg.ListenAddr).Msg("listening")

	errCh := make(chan error, 1)

	go func() {
		<-ctx.Done()
		a.closeOnce.Do(func() {
			_ = a.listener.Close()
		})
	}()

	go func() {
		for {
			conn, err := a.listener.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					errCh <- nil
					return
				}
				errCh <- err
				return
			}
			go a.handleConnection(ctx, conn)
		}
	}()

	return <-errCh
}

// channel returns the partition for the given name, creating it on first
// use. The root channel is the empty name.
func (a *App) channel(name string) *Channel {
	a.chmu.Lock()
	defer a.chmu.Unlock()

	if ch, ok := a.channels[name]; ok {
		return ch
	}
	ch := NewChannel(name, a.log)
	a.channels[name] = ch
	return ch
}

func (a *App) handleConnection(parentCtx context.Context, conn net.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sess := newClientSession(conn, a.cfg.MessageRate, a.cfg.MessageBurst)
	decoder := protocol.NewDecoder(conn, a.cfg.MaxFrameBytes)
	encoder := protocol.NewEncoder(conn)

	a.log.Debug().Str("conn", sess.id).Str("remote", sess.remoteAddr()).Msg("connection accepted")

	go func() {
		if err := sess.writeLoop(ctx, encoder, a.cfg.WriteTimeout); err != nil &&
			!errors.Is(err, context.Canceled) {
			a.log.Warn().Err(err).Str("conn", sess.id).Msg("write loop ended")
		}
		cancel()
	}()

	a.readLoop(ctx, sess, decoder)

	if sess.channel != nil {
		sess.channel.Disconnect(sess)
	}
	sess.close()
	a.log.Debug().Str("conn", sess.id).Msg("connection closed")
}

// readLoop processes envelopes for one connection strictly in order; each
// inbound event is fully dispatched before the next is read.
func (a *App) readLoop(ctx context.Context, sess *clientSession, decoder *protocol.Decoder) {
	for {
		if a.cfg.ReadTimeout > 0 {
			if err := sess.conn.SetReadDeadline(time.Now().Add(a.cfg.ReadTimeout)); err != nil {
				return
			}
		}
		env, err := decoder.Decode(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			a.log.Warn().Err(err).Str("conn", sess.id).Msg("decode")
			return
		}

		a.route(ctx, sess, env)
	}
}

func (a *App) route(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	if env.Type == protocol.MessageTypeHandshake {
		a.handleHandshake(ctx, sess, env)
		return
	}
	if sess.state != stateActive {
		_ = sess.send(ctx, newNotice("Handshake required before chatting"))
		return
	}
	sess.channel.Dispatch(ctx, sess, env)
}

func (a *App) handleHandshake(ctx context.Context, sess *clientSession, env protocol.Envelope) {
	if sess.state == stateActive {
		_ = sess.send(ctx, newNotice("Already handshaken"))
		return
	}
	req, err := decodeHandshakeRequest(env.Payload)
	if err != nil {
		_ = sess.send(ctx, newDenied("Malformed handshake payload"))
		return
	}

	ch := a.channel(req.Channel)
	if ch.Handshake(ctx, sess, req) {
		sess.channel = ch
		sess.state = stateActive
	}
}
