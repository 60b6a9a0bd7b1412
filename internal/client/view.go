package client

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mattn/go-runewidth"
)

type styleSet struct {
	title         string
	titleStyle    lipgloss.Style
	statusOnline  lipgloss.Style
	statusOffline lipgloss.Style
	label         lipgloss.Style
	value         lipgloss.Style
	notice        lipgloss.Style
	tell          lipgloss.Style
	logBody       lipgloss.Style
	logBodyError  lipgloss.Style
	help          lipgloss.Style
}

func buildStyles() styleSet {
	base := lipgloss.NewStyle()
	return styleSet{
		title:         "Parley",
		titleStyle:    base.Foreground(lipgloss.Color("13")).Bold(true),
		statusOnline:  base.Foreground(lipgloss.Color("10")).Bold(true),
		statusOffline: base.Foreground(lipgloss.Color("9")).Bold(true),
		label:         base.Foreground(lipgloss.Color("8")),
		value:         base.Foreground(lipgloss.Color("15")),
		notice:        base.Foreground(lipgloss.Color("11")),
		tell:          base.Foreground(lipgloss.Color("13")),
		logBody:       base.Foreground(lipgloss.Color("7")),
		logBodyError:  base.Foreground(lipgloss.Color("9")),
		help:          base.Foreground(lipgloss.Color("12")),
	}
}

var homeContent = buildHomeContent()

// View renders the terminal UI.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.showHelp && a.helpView != "" {
		b.WriteString(a.styles.help.Render(a.helpView))
		b.WriteString("\n")
	}

	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.logLineView())
	b.WriteString("\n")
	b.WriteString(a.statusLine())

	return b.String()
}

func (a *App) appendLine(line string) {
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return
	}
	a.history = append(a.history, line)
	a.updateViewportContent()
	a.viewport.GotoBottom()
}

func (a *App) updateViewportContent() {
	if len(a.history) == 0 {
		a.viewport.SetContent(homeContent)
		return
	}
	width := a.viewport.Width
	if width <= 0 {
		width = a.width
	}
	lines := wrapLines(a.history, width)
	a.viewport.SetContent(strings.Join(lines, "\n"))
	a.viewport.GotoBottom()
}

func (a *App) updateViewportSize() {
	if a.height == 0 {
		return
	}
	const fixed = 3
	height := a.height - fixed - a.helpHeight
	if height < 3 {
		height = 3
	}
	a.viewport.Height = height
	a.viewport.Width = a.width
}

func (a *App) updateInputWidth() {
	width := a.width
	if width <= 0 {
		width = 60
	}
	promptWidth := lipgloss.Width(a.input.Prompt)
	usable := width - promptWidth - 1
	if usable < 10 {
		usable = 10
	}
	a.input.Width = usable
}

func (a *App) statusLine() string {
	status := "OFFLINE"
	style := a.styles.statusOffline
	switch {
	case a.online:
		status = "ONLINE"
		style = a.styles.statusOnline
	case a.reconnecting:
		status = fmt.Sprintf("RECONNECTING (%d)", a.reconnectAttempt)
	}

	server := a.addr.Addr()
	if a.addr.Channel != "" {
		server += "/" + a.addr.Channel
	}

	parts := []string{
		a.styles.titleStyle.Render(a.styles.title),
		style.Render(status),
		a.styles.label.Render("Server") + ": " + a.styles.value.Render(server),
		a.styles.label.Render("User") + ": " + a.styles.value.Render(orDash(a.username)),
		a.styles.label.Render("Room") + ": " + a.styles.value.Render("#"+orDash(a.room)),
	}
	return strings.Join(parts, " | ")
}

func (a *App) logLineView() string {
	if a.logLine.body == "" {
		return " "
	}
	if a.logLine.level == logLevelError {
		return a.styles.logBodyError.Render(a.logLine.body)
	}
	return a.styles.logBody.Render(a.logLine.body)
}

func (a *App) logf(format string, args ...interface{}) {
	a.logLine = logEntry{body: fmt.Sprintf(format, args...), level: logLevelInfo}
}

func (a *App) logErrorf(format string, args ...interface{}) {
	a.logLine = logEntry{body: fmt.Sprintf(format, args...), level: logLevelError}
}

func (a *App) updateHelp() {
	value := a.input.Value()
	if value == "" || !strings.HasPrefix(value, string(a.cfg.Prefix())) {
		a.showHelp = false
		a.helpView = ""
		a.helpHeight = 0
		a.updateViewportSize()
		return
	}

	token := value
	if idx := strings.IndexAny(value, " \t"); idx >= 0 {
		token = value[:idx]
	}

	bindings := a.matchingBindings(token)
	if len(bindings) == 0 {
		a.showHelp = false
		a.helpView = ""
		a.helpHeight = 0
		a.updateViewportSize()
		return
	}

	a.showHelp = true
	a.helper.Width = a.width
	view := strings.TrimRight(a.helper.View(dynamicKeyMap{keys: bindings}), "\n")
	a.helpView = view
	a.helpHeight = countLines(view)
	a.updateViewportSize()
}

func (a *App) matchingBindings(prefix string) []key.Binding {
	prefix = strings.ToLower(prefix)
	var bindings []key.Binding
	for _, c := range a.commands {
		if strings.HasPrefix(strings.ToLower(c.trigger), prefix) {
			bindings = append(bindings, key.NewBinding(
				key.WithKeys(c.usage),
				key.WithHelp(c.usage, c.description),
			))
		}
	}
	return bindings
}

func (a *App) handleTabCompletion() {
	value := a.input.Value()
	if value == "" {
		return
	}

	cursor := a.input.Position()
	runes := []rune(value)
	if cursor != len(runes) {
		return
	}
	if !strings.HasPrefix(value, string(a.cfg.Prefix())) {
		return
	}
	if strings.ContainsAny(value, " \t") {
		return
	}

	matches := make([]string, 0)
	for _, cmd := range a.commands {
		if strings.HasPrefix(cmd.trigger, value) {
			matches = append(matches, cmd.trigger)
		}
	}
	if len(matches) == 0 {
		return
	}

	prefix := longestCommonPrefix(matches)
	if len(prefix) <= len(value) {
		return
	}

	a.input.SetValue(prefix)
	a.input.CursorEnd()
	a.updateHelp()
}

func longestCommonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, s := range values[1:] {
		for !strings.HasPrefix(s, prefix) {
			if prefix == "" {
				return ""
			}
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

func buildHomeContent() string {
	fig := figure.NewColorFigure("PARLEY", "3-d", "green", true)
	art := strings.TrimRight(fig.String(), "\n")
	info := []string{
		"You join #default automatically after connecting.",
		"Type a message and press Enter to chat.",
		"Use /room <name> to switch or create a room.",
		"Use /whisper <user> <message> for private messages.",
		"Use /help to browse all commands.",
	}

	var b strings.Builder
	b.WriteString(art)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(info, "\n"))
	return b.String()
}

func wrapLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	const minWidth = 10
	if width < minWidth {
		width = minWidth
	}

	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		segment := line
		if segment == "" {
			wrapped = append(wrapped, "")
			continue
		}
		for len(segment) > 0 {
			if runewidth.StringWidth(segment) <= width {
				wrapped = append(wrapped, segment)
				break
			}
			cut := wrapCutIndex(segment, width)
			part := strings.TrimRight(segment[:cut], " ")
			if part == "" && cut > 0 {
				part = segment[:cut]
			}
			wrapped = append(wrapped, part)
			segment = strings.TrimLeft(segment[cut:], " ")
		}
	}
	return wrapped
}

func wrapCutIndex(s string, limit int) int {
	var width int
	lastSpace := -1
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > limit {
			if lastSpace >= 0 {
				return lastSpace + 1
			}
			if width == 0 {
				return i + 1
			}
			return i
		}
		width += rw
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}
	return len(s)
}

type dynamicKeyMap struct {
	keys []key.Binding
}

func (d dynamicKeyMap) ShortHelp() []key.Binding {
	return d.keys
}

func (d dynamicKeyMap) FullHelp() [][]key.Binding {
	if len(d.keys) == 0 {
		return [][]key.Binding{}
	}
	return [][]key.Binding{d.keys}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
