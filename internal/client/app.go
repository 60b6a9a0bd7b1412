package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/config"
	"parley/internal/protocol"
	"parley/internal/registry"
)

// App implements the bubbletea tea.Model interface for the terminal
// client. All username/id/room fields are a display cache; the server's
// confirm/denied responses are the single source of truth.
type App struct {
	cfg      config.ClientConfig
	addr     protocol.ServerAddress
	styles   styleSet
	commands []commandSpec

	input    textinput.Model
	viewport viewport.Model
	helper   help.Model

	width      int
	height     int
	showHelp   bool
	helpView   string
	helpHeight int

	history []string
	logLine logEntry

	session          *Session
	online           bool
	reconnecting     bool
	reconnectAttempt int

	username    string
	pendingName string
	connID      string
	room        string

	quitPrompt bool
}

type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelError
)

type logEntry struct {
	body  string
	level logLevel
}

// NewApp builds the client model. The configured server address must parse
// and the username must be non-empty before the model is constructed.
func NewApp(cfg config.ClientConfig) (*App, error) {
	addr, err := protocol.ParseServerAddress(cfg.ServerAddr)
	if err != nil {
		return nil, err
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "message or /command"
	input.Focus()

	app := &App{
		cfg:      cfg,
		addr:     addr,
		styles:   buildStyles(),
		commands: defaultCommands(),
		input:    input,
		viewport: viewport.New(0, 0),
		helper:   help.New(),
		username: cfg.Username,
		room:     registry.DefaultRoom,
	}
	app.updateViewportContent()
	return app, nil
}

// Init connects to the configured server immediately.
func (a *App) Init() tea.Cmd {
	a.logf("Connecting to %s ...", a.addr.Addr())
	return tea.Batch(
		textinput.Blink,
		connectCmd(a.cfg, a.addr, a.username, true, 1, ""),
	)
}

// Update handles user input and internal events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.updateViewportSize()
		a.updateInputWidth()
		a.updateViewportContent()
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case connectResultMsg:
		return a.handleConnectResult(m)
	case envelopeMsg:
		return a.handleEnvelopeMsg(m)
	case sessionClosedMsg:
		return a.handleSessionClosed(m)
	case reconnectTickMsg:
		return a.handleReconnectTick(m)
	case sendResultMsg:
		if m.err != nil {
			a.logErrorf("Failed to send %s: %v", m.description, m.err)
		}
		return a, nil
	default:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		// A second interrupt while the confirmation prompt is
		// outstanding forces immediate termination.
		if a.quitPrompt {
			return a, a.quit()
		}
		a.quitPrompt = true
		a.logf("Really quit? Type y and press Enter to confirm; anything else resumes.")
		return a, nil
	case tea.KeyEnter:
		value := a.input.Value()
		a.input.SetValue("")
		a.updateHelp()
		if a.quitPrompt {
			a.quitPrompt = false
			if answer := strings.ToLower(strings.TrimSpace(value)); answer == "y" || answer == "yes" {
				return a, a.quit()
			}
			a.logf("Resumed")
			return a, nil
		}
		return a, a.handleSubmit(value)
	case tea.KeyTab:
		a.handleTabCompletion()
		return a, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.updateHelp()
	return a, cmd
}

func (a *App) quit() tea.Cmd {
	if a.session != nil {
		_ = a.session.Close()
		a.session = nil
	}
	a.online = false
	return tea.Quit
}

func (a *App) handleConnectResult(msg connectResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var denied *DeniedError
		switch {
		case errors.Is(msg.err, ErrHandshakeTimeout):
			a.logErrorf("Handshake timed out; exiting")
			return a, tea.Quit
		case errors.As(msg.err, &denied):
			a.logErrorf("%v; exiting", msg.err)
			return a, tea.Quit
		default:
			a.logErrorf("Connection failed: %v (retrying)", msg.err)
			a.reconnecting = true
			a.reconnectAttempt = msg.attempt
			return a, a.scheduleReconnect(msg.attempt+1, msg.first, msg.rejoinRoom)
		}
	}

	a.session = msg.session
	a.online = true
	a.reconnecting = false
	a.reconnectAttempt = 0
	a.room = registry.DefaultRoom

	// The confirm payload is authoritative for the connection id and the
	// accepted username.
	confirm := msg.session.Confirm()
	if confirm.Conn != "" {
		a.connID = confirm.Conn
	}
	if confirm.Username != "" {
		a.username = confirm.Username
	}
	a.logf("Connected to %s as %s", a.addr.Addr(), a.username)

	cmds := []tea.Cmd{listenCmd(msg.session)}
	if msg.rejoinRoom != "" && msg.rejoinRoom != registry.DefaultRoom {
		if cmd := a.commandRoom(msg.rejoinRoom); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleEnvelopeMsg(msg envelopeMsg) (tea.Model, tea.Cmd) {
	if msg.session != a.session || a.session == nil {
		return a, nil
	}
	a.handleEnvelope(msg.envelope)
	return a, listenCmd(a.session)
}

func (a *App) handleSessionClosed(msg sessionClosedMsg) (tea.Model, tea.Cmd) {
	if msg.session != a.session || a.session == nil {
		return a, nil
	}
	a.online = false
	a.session = nil
	if msg.closedByUser {
		return a, nil
	}

	// Involuntary drop: drive the reconnection handshake with the cached
	// username and rejoin the cached room once confirmed.
	rejoin := a.room
	a.reconnecting = true
	a.logErrorf("Connection lost; reconnecting ...")
	return a, a.scheduleReconnect(1, false, rejoin)
}

func (a *App) handleReconnectTick(msg reconnectTickMsg) (tea.Model, tea.Cmd) {
	if a.online {
		return a, nil
	}
	a.reconnectAttempt = msg.attempt
	return a, connectCmd(a.cfg, a.addr, a.username, msg.first, msg.attempt, msg.rejoinRoom)
}

func (a *App) scheduleReconnect(attempt int, first bool, rejoinRoom string) tea.Cmd {
	delay := a.backoff(attempt)
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return reconnectTickMsg{attempt: attempt, first: first, rejoinRoom: rejoinRoom}
	})
}

func (a *App) backoff(attempt int) time.Duration {
	delay := a.cfg.ReconnectBackoff
	if delay <= 0 {
		delay = time.Second
	}
	maxDelay := a.cfg.MaxBackoff
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}

type connectResultMsg struct {
	session    *Session
	first      bool
	attempt    int
	rejoinRoom string
	err        error
}

type envelopeMsg struct {
	session  *Session
	envelope protocol.Envelope
}

type sessionClosedMsg struct {
	session      *Session
	closedByUser bool
}

type reconnectTickMsg struct {
	attempt    int
	first      bool
	rejoinRoom string
}

type sendResultMsg struct {
	session     *Session
	description string
	err         error
}

const connectTimeout = 5 * time.Second

func connectCmd(cfg config.ClientConfig, addr protocol.ServerAddress, username string, first bool, attempt int, rejoinRoom string) tea.Cmd {
	return func() tea.Msg {
		session := NewSession(cfg, addr)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := session.Connect(ctx); err != nil {
			return connectResultMsg{first: first, attempt: attempt, rejoinRoom: rejoinRoom, err: err}
		}

		if err := session.Handshake(context.Background(), first, username); err != nil {
			_ = session.Close()
			return connectResultMsg{first: first, attempt: attempt, rejoinRoom: rejoinRoom, err: err}
		}

		return connectResultMsg{session: session, first: first, attempt: attempt, rejoinRoom: rejoinRoom}
	}
}

func listenCmd(session *Session) tea.Cmd {
	if session == nil {
		return nil
	}
	ch := session.Messages()
	return func() tea.Msg {
		env, ok := <-ch
		if !ok {
			return sessionClosedMsg{session: session, closedByUser: session.UserClosed()}
		}
		return envelopeMsg{session: session, envelope: env}
	}
}
