// Package tui is the terminal front-end: a record/stop panel above the
// archive grid.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clipdeck/internal/domain"
	"clipdeck/internal/usecase"
	"clipdeck/internal/view"
)

type recorderPort interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (domain.StopResult, error)
}

type archivePort interface {
	Refresh(ctx context.Context) ([]domain.ArchiveEntry, error)
}

type deckPort interface {
	Toggle(ctx context.Context, i int) error
}

type actionDoneMsg struct {
	action string
	err    error
}

type keyMap struct {
	Record  key.Binding
	Stop    key.Binding
	Toggle  key.Binding
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Record:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "play/stop")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "move")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←/→", "move")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "move")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↑/↓", "move")),
		Refresh: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Stop, k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Stop},
		{k.Toggle, k.Left, k.Up, k.Refresh},
		{k.Help, k.Quit},
	}
}

var (
	colorText    = lipgloss.Color("#cdd6f4")
	colorMuted   = lipgloss.Color("#a6adc8")
	colorBorder  = lipgloss.Color("#45475a")
	colorFocus   = lipgloss.Color("#b4befe")
	colorPlaying = lipgloss.Color("#a6e3a1")
	colorRec     = lipgloss.Color("#f38ba8")

	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#74c7ec")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	recStyle    = lipgloss.NewStyle().Foreground(colorRec).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(colorText)

	tileStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(tileWidth)
	tileFocused = tileStyle.BorderForeground(colorFocus)
	tilePlaying = tileStyle.BorderForeground(colorPlaying)
	barFill     = lipgloss.NewStyle().Foreground(colorPlaying)
)

const (
	tileWidth      = 20
	barWidth       = tileWidth - 2
	defaultColumns = 3
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	recorder recorderPort
	archive  archivePort
	deck     deckPort

	keys     keyMap
	help     help.Model
	showHelp bool

	state    domain.SessionState
	status   string
	snapshot domain.PlaybackSnapshot
	loaded   bool
	cursor   int
	width    int
}

func NewModel(ctx context.Context, recorder recorderPort, archive archivePort, deck deckPort) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return Model{
		ctx:      ctx,
		recorder: recorder,
		archive:  archive,
		deck:     deck,
		keys:     defaultKeys(),
		help:     help.New(),
		state:    domain.SessionStateIdle,
		status:   view.MessageReady,
		snapshot: domain.PlaybackSnapshot{Active: -1},
	}
}

// Init loads the archive, as the page did on load.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.state = msg.state
		if text := view.ReasonMessage(msg.reason); text != "" {
			m.status = text
		}

	case uploadMsg:
		m.status = msg.message

	case archiveMsg:
		m.loaded = true

	case playbackMsg:
		m.snapshot = msg.snapshot
		m.clampCursor()

	case errorMsg:
		m.status = view.ErrorMessage(msg.code, msg.detail)

	case actionDoneMsg:
		// Failures already reached the status line through the event sink.
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Record):
		if m.state != domain.SessionStateIdle {
			return m, nil
		}
		return m, m.startCmd()
	case key.Matches(msg, m.keys.Stop):
		if m.state != domain.SessionStateRecording {
			return m, nil
		}
		return m, m.stopCmd()
	case key.Matches(msg, m.keys.Toggle):
		if len(m.snapshot.Entries) == 0 {
			return m, nil
		}
		return m, m.toggleCmd(m.cursor)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Left):
		m.cursor--
	case key.Matches(msg, m.keys.Right):
		m.cursor++
	case key.Matches(msg, m.keys.Up):
		m.cursor -= m.columns()
	case key.Matches(msg, m.keys.Down):
		m.cursor += m.columns()
	}
	m.clampCursor()
	return m, nil
}

func (m *Model) clampCursor() {
	n := len(m.snapshot.Entries)
	switch {
	case n == 0 || m.cursor < 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	}
}

func (m Model) columns() int {
	if m.width == 0 {
		return defaultColumns
	}
	return max(1, m.width/(tileWidth+4))
}

func (m Model) startCmd() tea.Cmd {
	ctx, recorder := m.ctx, m.recorder
	return func() tea.Msg {
		return actionDoneMsg{action: "record", err: recorder.Start(ctx)}
	}
}

func (m Model) stopCmd() tea.Cmd {
	ctx, recorder := m.ctx, m.recorder
	return func() tea.Msg {
		_, err := recorder.Stop(ctx)
		return actionDoneMsg{action: "stop", err: ignoreNoSession(err)}
	}
}

func (m Model) toggleCmd(i int) tea.Cmd {
	ctx, deck := m.ctx, m.deck
	return func() tea.Msg {
		return actionDoneMsg{action: "toggle", err: deck.Toggle(ctx, i)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	if m.archive == nil {
		return nil
	}
	ctx, archive := m.ctx, m.archive
	return func() tea.Msg {
		_, err := archive.Refresh(ctx)
		return actionDoneMsg{action: "refresh", err: err}
	}
}

func ignoreNoSession(err error) error {
	if errors.Is(err, usecase.ErrNoActiveSession) {
		return nil
	}
	return err
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("clipdeck"))
	if m.state == domain.SessionStateRecording {
		b.WriteString("  " + recStyle.Render("● REC"))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n\n")

	switch {
	case len(m.snapshot.Entries) > 0:
		b.WriteString(m.renderGrid())
	case m.loaded:
		b.WriteString(mutedStyle.Render("The archive is empty."))
	default:
		b.WriteString(mutedStyle.Render("Loading archive..."))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderGrid() string {
	tiles := view.ArchiveGrid(m.snapshot)
	cols := m.columns()

	var rows []string
	for start := 0; start < len(tiles); start += cols {
		end := min(start+cols, len(tiles))
		cells := make([]string, 0, end-start)
		for _, tile := range tiles[start:end] {
			cells = append(cells, m.renderTile(tile))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderTile(tile view.Tile) string {
	style := tileStyle
	switch {
	case tile.Playing:
		style = tilePlaying
	case tile.Index == m.cursor:
		style = tileFocused
	}

	title := tile.Title
	if runes := []rune(title); len(runes) > barWidth {
		title = string(runes[:barWidth-1]) + "…"
	}
	return style.Render(title + "\n" + progressBar(tile.Progress, barWidth) + "\n" + mutedStyle.Render(tile.Width))
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return barFill.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
