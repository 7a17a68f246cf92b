// Package tui renders the chat session in the terminal. All session mutation
// happens inside Update, the single event loop; stream fragments arrive as
// Bubble Tea messages.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"profadvisor/internal/chatclient"
	"profadvisor/internal/models"
)

const defaultGreeting = "Hello! I'm the Rate My Professor support assistant. How can I help you today?"

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// streamEvent is one update from the background stream reader.
type streamEvent struct {
	fragment string
	err      error
	done     bool
}

// streamEventMsg delivers a streamEvent to Update.
type streamEventMsg streamEvent

// Streamer is the transport the TUI drives.
type Streamer interface {
	Stream(ctx context.Context, session []models.ChatMessage, onFragment func(string)) error
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	client  Streamer
	session *chatclient.Session

	input    textinput.Model
	viewport viewport.Model
	events   chan streamEvent
	status   string
	ready    bool
}

// New creates a new chat TUI model.
func New(client Streamer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about a professor and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		client:   client,
		session:  chatclient.NewSession(defaultGreeting),
		input:    ti,
		viewport: vp,
		status:   "Connected. Type a question to get started.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := ih + 3 // input box + status + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderSession())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.startTurn()
		}

	case streamEventMsg:
		return m.handleStreamEvent(streamEvent(msg))
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// startTurn begins a send. Input stays disabled while a stream is open, so a
// second turn cannot interleave with the one being written.
func (m Model) startTurn() (tea.Model, tea.Cmd) {
	if m.session.InFlight() {
		m.status = "Still answering - please wait."
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	outbound, err := m.session.Begin(text)
	if err != nil {
		if err != chatclient.ErrEmptyInput {
			m.status = "Error: " + err.Error()
		}
		return m, nil
	}

	m.input.SetValue("")
	m.input.Blur()
	m.status = "Thinking..."
	m.viewport.SetContent(m.renderSession())
	m.viewport.GotoBottom()

	events := make(chan streamEvent, 16)
	m.events = events
	client := m.client
	go func() {
		err := client.Stream(context.Background(), outbound, func(fragment string) {
			events <- streamEvent{fragment: fragment}
		})
		if err != nil {
			events <- streamEvent{err: err}
		} else {
			events <- streamEvent{done: true}
		}
		close(events)
	}()

	return m, waitForEvent(events)
}

func (m Model) handleStreamEvent(ev streamEvent) (tea.Model, tea.Cmd) {
	switch {
	case ev.err != nil:
		m.session.Fail(ev.err)
		m.status = "Turn failed - resend your message."
		m.input.Focus()
	case ev.done:
		m.session.Complete()
		m.status = "Ready."
		m.input.Focus()
	default:
		m.session.AppendFragment(ev.fragment)
		m.status = "Streaming..."
	}

	m.viewport.SetContent(m.renderSession())
	m.viewport.GotoBottom()

	if ev.err != nil || ev.done {
		return m, textinput.Blink
	}
	return m, waitForEvent(m.events)
}

// waitForEvent delivers the next stream event to the update loop.
func waitForEvent(events chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamEventMsg(streamEvent{done: true})
		}
		return streamEventMsg(ev)
	}
}

func (m Model) renderSession() string {
	var sb strings.Builder
	for i, msg := range m.session.Messages() {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch msg.Role {
		case models.RoleUser:
			sb.WriteString(userStyle.Render("You: ") + msg.Content)
		case models.RoleAssistant:
			sb.WriteString(assistantStyle.Render("Advisor: ") + msg.Content)
		default:
			sb.WriteString(systemStyle.Render(msg.Content))
		}
	}
	return sb.String()
}

// View renders the full screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(m.status)
}
