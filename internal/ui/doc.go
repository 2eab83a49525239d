// ABOUTME: Terminal UI package for the capture server
// ABOUTME: Live encoder and listener stats using bubbletea
// Package ui renders the capture server status in the terminal.
//
// Example:
//
//	tui := ui.NewServerTUI()
//	go tui.Start(ui.Status{Name: "studio"})
//	tui.Update(status)
package ui
