// ABOUTME: TUI program control for the capture server
// ABOUTME: Wraps the bubbletea program and its status update channel
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ServerTUI manages the server TUI
type ServerTUI struct {
	program  *tea.Program
	updates  chan Status
	quitChan chan struct{}
}

// NewServerTUI creates a new server TUI
func NewServerTUI() *ServerTUI {
	return &ServerTUI{
		updates:  make(chan Status, 10),
		quitChan: make(chan struct{}, 1),
	}
}

// Start runs the TUI until it quits. It blocks.
func (t *ServerTUI) Start(initial Status) error {
	t.program = tea.NewProgram(NewModel(initial, t.quitChan), tea.WithAltScreen())

	go func() {
		for status := range t.updates {
			t.program.Send(StatusMsg(status))
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status update to the TUI without blocking
func (t *ServerTUI) Update(status Status) {
	select {
	case t.updates <- status:
	default:
	}
}

// Stop stops the TUI
func (t *ServerTUI) Stop() {
	if t.program != nil {
		t.program.Quit()
	}
	close(t.updates)
}

// QuitChan returns the channel that signals when the user wants to quit
func (t *ServerTUI) QuitChan() <-chan struct{} {
	return t.quitChan
}
