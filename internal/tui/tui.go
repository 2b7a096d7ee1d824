// Package tui renders the advisory chat as a terminal application.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
	"github.com/karth1ksr/mf-recommendation-engine/internal/session"
)

type theme struct {
	header     lipgloss.Style
	footer     lipgloss.Style
	userLabel  lipgloss.Style
	botLabel   lipgloss.Style
	bubble     lipgloss.Style
	fundName   lipgloss.Style
	fundMeta   lipgloss.Style
	panel      lipgloss.Style
	panelTitle lipgloss.Style
	rowLabel   lipgloss.Style
	muted      lipgloss.Style
	errText    lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("#01cdfe")
	green := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	gray := lipgloss.Color("#9ca3d8")

	return theme{
		header: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 1),
		footer:     lipgloss.NewStyle().Foreground(gray).Padding(0, 1),
		userLabel:  lipgloss.NewStyle().Foreground(green).Bold(true),
		botLabel:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		bubble:     lipgloss.NewStyle().PaddingLeft(2),
		fundName:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		fundMeta:   lipgloss.NewStyle().Foreground(gray),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(pink).Bold(true),
		rowLabel:   lipgloss.NewStyle().Foreground(accent),
		muted:      lipgloss.NewStyle().Foreground(gray),
		errText:    lipgloss.NewStyle().Foreground(pink),
	}
}

// orchestratorUpdateMsg signals that the orchestrator mutated visible state.
type orchestratorUpdateMsg struct{}

// sendDoneMsg signals that an outbound dispatch finished.
type sendDoneMsg struct{}

// resetDoneMsg carries the result of a session reset.
type resetDoneMsg struct{ err error }

// Model is the bubbletea model for the advisor chat.
type Model struct {
	orch  *session.Orchestrator
	theme theme

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	width   int
	height  int
	ready   bool
	status  string
	micOn   bool
	sending bool
}

// NewModel builds the chat UI around an orchestrator.
func NewModel(orch *session.Orchestrator) Model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Ask about mutual funds..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true

	return Model{
		orch:     orch,
		theme:    newTheme(),
		input:    input,
		timeline: timeline,
		spinner:  sp,
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenUpdates(m.orch))
}

// listenUpdates re-arms the orchestrator update subscription.
func listenUpdates(orch *session.Orchestrator) tea.Cmd {
	ch := orch.Updates()
	return func() tea.Msg {
		<-ch
		return orchestratorUpdateMsg{}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		orch.Send(context.Background(), text)
		return sendDoneMsg{}
	}
}

func (m Model) resetCmd() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		_, err := orch.Reset(context.Background())
		return resetDoneMsg{err: err}
	}
}

func (m Model) audioCmd(enabled bool) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		if err := orch.SetLocalAudioEnabled(context.Background(), enabled); err != nil {
			return resetDoneMsg{err: err}
		}
		return orchestratorUpdateMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.timeline.Width = m.timelineWidth()
		m.timeline.Height = maxInt(1, m.height-5)
		m.ready = true
		m.refreshTimeline()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.sending {
				break
			}
			m.input.SetValue("")
			m.sending = true
			m.status = "sending..."
			m.orch.Log().Append(domain.RoleUser, text, false)
			m.refreshTimeline()
			cmds = append(cmds, m.sendCmd(text))
		case "ctrl+r":
			m.status = "resetting session..."
			cmds = append(cmds, m.resetCmd())
		case "ctrl+a":
			m.micOn = !m.micOn
			cmds = append(cmds, m.audioCmd(m.micOn))
		case "esc":
			if m.orch.View().IsOpen() {
				m.orch.CloseComparison()
			}
		}

	case orchestratorUpdateMsg:
		m.refreshTimeline()
		cmds = append(cmds, listenUpdates(m.orch))

	case sendDoneMsg:
		m.sending = false
		m.status = "ready"
		m.refreshTimeline()

	case resetDoneMsg:
		if msg.err != nil {
			m.status = m.theme.errText.Render(msg.err.Error())
		} else {
			m.status = "ready"
		}
		m.refreshTimeline()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.timeline, cmd = m.timeline.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) timelineWidth() int {
	if m.orch.View().IsOpen() && m.width > 80 {
		return m.width - 44
	}
	return maxInt(20, m.width-2)
}

func (m *Model) refreshTimeline() {
	m.timeline.Width = m.timelineWidth()
	m.timeline.SetContent(renderBubbles(m.orch.Log().Bubbles(), m.theme, m.timeline.Width))
	m.timeline.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.theme.header.Render("Mutual Fund Advisor") +
		m.theme.muted.Render("  ["+m.orch.State().String()+"]")

	main := m.timeline.View()
	if m.orch.View().IsOpen() {
		panel := renderComparison(m.orch.View(), m.theme)
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, panel)
	}

	statusLine := m.status
	if m.orch.Log().Loading() {
		statusLine = m.spinner.View() + " thinking..."
	}
	mic := "mic off"
	if m.micOn {
		mic = "mic on"
	}
	footer := m.theme.footer.Render(
		statusLine + "  ·  " + mic + "  ·  enter send · ctrl+a mic · ctrl+r reset · esc close panel · ctrl+c quit",
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, main, m.input.View(), footer)
}

// Run starts the TUI event loop and blocks until exit.
func Run(orch *session.Orchestrator) error {
	p := tea.NewProgram(NewModel(orch), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
