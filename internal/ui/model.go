// ABOUTME: Bubbletea model for the capture server TUI
// ABOUTME: Renders encoder progress, queue health and connected listeners
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sendspin/sendspin-capture/pkg/frontend"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status holds server state for the TUI
type Status struct {
	Name        string
	Port        int
	Path        string
	SourceTitle string
	NativeRate  int
	TargetRate  int
	FrameSize   int
	Encoder     frontend.Stats
	QueueDepth  int
	QueueCap    int
	QueueDrops  uint64
	Clients     []ClientInfo
}

// ClientInfo holds listener information for display
type ClientInfo struct {
	Name    string
	ID      string
	Codec   string
	Sent    uint64
	Dropped uint64
}

// Model is the bubbletea model for the server TUI
type Model struct {
	status    Status
	startTime time.Time
	quitting  bool
	quitChan  chan struct{}
}

type tickMsg time.Time

// StatusMsg replaces the displayed status
type StatusMsg Status

// NewModel creates a model that signals quitChan when the user quits
func NewModel(status Status, quitChan chan struct{}) Model {
	return Model{
		status:    status,
		startTime: time.Now(),
		quitChan:  quitChan,
	}
}

func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickEvery()

	case StatusMsg:
		m.status = Status(msg)
		return m, nil
	}

	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down capture server...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Sendspin Capture"))
	b.WriteString("\n\n")

	field := func(name, value string) {
		b.WriteString(headerStyle.Render(name + ": "))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("Server", m.status.Name)
	field("Endpoint", fmt.Sprintf(":%d%s", m.status.Port, m.status.Path))
	field("Uptime", time.Since(m.startTime).Round(time.Second).String())
	field("Source", m.status.SourceTitle)
	field("Format", m.formatLine())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Encoder"))
	b.WriteString("\n")
	st := m.status.Encoder
	field("  Frames", fmt.Sprintf("%d", st.Frames))
	field("  Audio", formatAudioDuration(st.Frames, m.status.FrameSize, m.status.TargetRate))
	field("  Phase", fmt.Sprintf("%.4f", st.Phase))
	field("  Buffered", fmt.Sprintf("%d samples", st.BufferedSamples))

	queue := fmt.Sprintf("%d/%d", m.status.QueueDepth, m.status.QueueCap)
	b.WriteString(headerStyle.Render("  Queue: "))
	b.WriteString(valueStyle.Render(queue))
	if m.status.QueueDrops > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf(" (%d dropped)", m.status.QueueDrops)))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Listeners (%d)", len(m.status.Clients))))
	b.WriteString("\n")

	if len(m.status.Clients) == 0 {
		b.WriteString(valueStyle.Render("  No listeners connected"))
		b.WriteString("\n")
	} else {
		for _, client := range m.status.Clients {
			b.WriteString(fmt.Sprintf("  • %s", client.Name))
			b.WriteString(valueStyle.Render(fmt.Sprintf(" (%s, %d sent)", client.Codec, client.Sent)))
			if client.Dropped > 0 {
				b.WriteString(warnStyle.Render(fmt.Sprintf(" %d dropped", client.Dropped)))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}

func (m Model) formatLine() string {
	if m.status.TargetRate == 0 {
		return "-"
	}
	return fmt.Sprintf("%dHz -> %dHz mono, %d-sample frames", m.status.NativeRate, m.status.TargetRate, m.status.FrameSize)
}

// formatAudioDuration returns the audio time represented by frames
func formatAudioDuration(frames uint64, frameSize, rate int) string {
	if rate <= 0 {
		return "0s"
	}
	d := time.Duration(frames) * time.Duration(frameSize) * time.Second / time.Duration(rate)
	return d.Round(time.Millisecond).String()
}
