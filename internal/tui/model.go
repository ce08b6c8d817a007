// Package tui provides the Bubble Tea bell dashboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/schoolbell/internal/app"
	"github.com/verte-zerg/schoolbell/internal/engine"
	"github.com/verte-zerg/schoolbell/internal/gate"
	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/stats"
)

// Backend is the running scheduler as seen by the dashboard.
type Backend interface {
	Now() time.Time
	Timetable() *model.Timetable
	Next() (engine.Prediction, bool)
	Gate() *gate.Gate
	Ring(kind app.CueKind)
	Playing() string
	Recent() []model.LogEntry
	Events() <-chan model.LogEntry
}

const (
	tabToday = iota
	tabLog
)

type promptKind int

const (
	promptNone promptKind = iota
	promptUntil
	promptPassword
)

// cueKeys maps the number row to manual cues.
var cueKeys = map[string]app.CueKind{
	"1": app.CueStudent,
	"2": app.CueTeacher,
	"3": app.CueExit,
	"4": app.CueMarch,
	"5": app.CueSiren,
	"6": app.CueTribute,
	"7": app.CueSirenMarch,
	"0": app.CueStop,
	"s": app.CueStop,
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	clockStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	openStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	closedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	bannerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	borderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	tableHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Bold(true).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Padding(0, 1)
	doneRowStyle     = cellStyle.Foreground(lipgloss.Color("#52C41A"))
	activeRowStyle   = cellStyle.Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

type tickMsg time.Time

type eventMsg model.LogEntry

// Model implements the Bubble Tea dashboard.
type Model struct {
	backend  Backend
	saveMode func(model.Mode) error

	width  int
	height int
	now    time.Time

	tabs      []string
	activeTab int
	logTable  table.Model

	prompt  promptKind
	input   textinput.Model
	pending func() tea.Cmd

	last    model.LogEntry
	hasLast bool
	errMsg  string
}

// NewModel constructs the dashboard. saveMode persists mode changes and
// may be nil.
func NewModel(backend Backend, saveMode func(model.Mode) error) *Model {
	m := &Model{
		backend:  backend,
		saveMode: saveMode,
		now:      backend.Now(),
		tabs:     []string{"Bugün", "Kayıt"},
	}
	m.input = textinput.New()
	m.input.CharLimit = 32
	m.input.Cursor.SetMode(cursor.CursorBlink)
	m.logTable = table.New(
		table.WithColumns(logColumns(0)),
		table.WithHeight(10),
	)
	m.logTable.SetStyles(logTableStyles())
	if recent := backend.Recent(); len(recent) > 0 {
		m.last = recent[len(recent)-1]
		m.hasLast = true
	}
	m.refreshLog()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForEvent(m.backend.Events()))
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(ch <-chan model.LogEntry) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tickMsg:
		m.now = m.backend.Now()
		return m, tick()
	case eventMsg:
		m.last = model.LogEntry(msg)
		m.hasLast = true
		m.refreshLog()
		return m, waitForEvent(m.backend.Events())
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if kind, ok := cueKeys[key]; ok {
		m.setError("")
		m.backend.Ring(kind)
		return m, nil
	}
	switch key {
	case "q":
		return m, tea.Quit
	case "tab", "left", "right", "h", "l":
		m.activeTab = (m.activeTab + 1) % len(m.tabs)
		if m.activeTab == tabLog {
			m.logTable.Focus()
		} else {
			m.logTable.Blur()
		}
		return m, tea.ClearScreen
	case "z":
		return m, m.guarded(m.toggleGate)
	case "u":
		return m, m.guarded(m.startUntil)
	case "m":
		return m, m.guarded(m.cycleMode)
	}
	if m.activeTab == tabLog {
		var cmd tea.Cmd
		m.logTable, cmd = m.logTable.Update(msg)
		return m, cmd
	}
	return m, nil
}

// guarded runs action at once when no password is set, otherwise after
// the password prompt succeeds.
func (m *Model) guarded(action func() tea.Cmd) tea.Cmd {
	if m.backend.Gate().CheckPassword("") {
		return action()
	}
	m.pending = action
	return m.openPrompt(promptPassword, "Şifre: ", "")
}

func (m *Model) openPrompt(kind promptKind, prompt, placeholder string) tea.Cmd {
	m.prompt = kind
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	if kind == promptPassword {
		m.input.EchoMode = textinput.EchoPassword
	} else {
		m.input.EchoMode = textinput.EchoNormal
	}
	m.updateLayout()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.pending = nil
	m.input.Blur()
	m.input.SetValue("")
	m.updateLayout()
}

// setError changes the footer error line; the footer height follows it.
func (m *Model) setError(msg string) {
	if m.errMsg == msg {
		return
	}
	m.errMsg = msg
	m.updateLayout()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		switch m.prompt {
		case promptPassword:
			if !m.backend.Gate().CheckPassword(value) {
				m.setError("Hatalı şifre")
				m.closePrompt()
				return m, nil
			}
			action := m.pending
			m.closePrompt()
			m.setError("")
			if action == nil {
				return m, nil
			}
			return m, action()
		case promptUntil:
			at, err := model.ParseLooseTimeOfDay(value)
			if err != nil {
				m.setError(fmt.Sprintf("Geçersiz saat: %q", value))
				return m, nil
			}
			m.backend.Gate().CloseUntil(at)
			m.setError("")
			m.closePrompt()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleGate() tea.Cmd {
	g := m.backend.Gate()
	if g.Snapshot().Open {
		g.Close()
	} else {
		g.Open()
	}
	return nil
}

func (m *Model) startUntil() tea.Cmd {
	return m.openPrompt(promptUntil, "Kapalı kalma saati (SS:DD): ", "13:00")
}

func (m *Model) cycleMode() tea.Cmd {
	g := m.backend.Gate()
	mode := nextMode(g.Mode())
	g.SetMode(mode)
	if m.saveMode != nil {
		if err := m.saveMode(mode); err != nil {
			m.setError(fmt.Sprintf("Mod kaydedilemedi: %v", err))
		}
	}
	return nil
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.logTable.SetColumns(logColumns(m.width))
	m.logTable.SetWidth(m.width)
	m.logTable.SetHeight(max(1, bodyHeight-1))
	m.input.Width = max(10, m.width-lipgloss.Width(m.input.Prompt)-2)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 3
	footerHeight = 2
	if m.errMsg != "" {
		footerHeight++
	}
	if m.prompt != promptNone {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func logColumns(width int) []table.Column {
	desc := 36
	if width > 0 {
		desc = max(16, width-8-10-6)
	}
	return []table.Column{
		{Title: "Saat", Width: 8},
		{Title: "Kaynak", Width: 10},
		{Title: "Açıklama", Width: desc},
	}
}

func logTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) refreshLog() {
	recent := m.backend.Recent()
	rows := make([]table.Row, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		rows = append(rows, table.Row{e.At.Format("15:04:05"), stats.SourceLabel(e.Source), e.Description})
	}
	m.logTable.SetRows(rows)
}

// View implements tea.Model.
func (m *Model) View() string {
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{m.renderHeader(), m.renderBody(), m.renderFooter()}, "\n")
	}
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	st := m.backend.Gate().Snapshot()
	gateLine := gateText(st.Open, st.ReenableAt)
	if st.Open {
		gateLine = openStyle.Render(gateLine)
	} else {
		gateLine = closedStyle.Render(gateLine)
	}
	status := fmt.Sprintf("%s  %s", gateLine, mutedStyle.Render("Mod: "+st.Mode.Label()))

	canRing := st.Open && st.Mode != model.ModeHoliday
	next, ok := m.backend.Next()
	banner := bannerStyle.Render(truncateLine(Countdown(m.now, next, ok, canRing), m.width))

	clockLine := clockStyle.Render(m.now.Format("15:04:05")) + "  " + mutedStyle.Render(turkishDate(m.now))
	return strings.Join([]string{m.renderTabs(), clockLine, status, banner}, "\n")
}

func (m *Model) renderBody() string {
	if m.activeTab == tabLog {
		return m.logTable.View()
	}
	return RenderDay(m.backend.Timetable(), m.now, m.width)
}

func (m *Model) renderFooter() string {
	var lines []string
	switch {
	case m.hasLast:
		lines = append(lines, fmt.Sprintf("Son olay: %s %s %s",
			m.last.At.Format("15:04:05"), stats.SourceLabel(m.last.Source), m.last.Description))
	default:
		lines = append(lines, "Son olay: -")
	}
	if playing := m.backend.Playing(); playing != "" {
		lines[0] += "  ♪ " + playing
	}
	lines[0] = truncateLine(lines[0], m.width)
	if m.prompt != promptNone {
		lines = append(lines, m.input.View())
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	lines = append(lines, footerStyle.Render(truncateLine(
		"1-7: zil/marş/siren  0: durdur  z: aç/kapat  u: saate kadar kapat  m: mod  tab: sekme  q: çıkış", m.width)))
	return strings.Join(lines, "\n")
}
