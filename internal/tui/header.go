package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// HeaderModel renders the card title and the endpoint in use.
type HeaderModel struct {
	version  string
	endpoint string
}

// NewHeaderModel creates a header.
func NewHeaderModel(version, endpoint string) HeaderModel {
	return HeaderModel{version: version, endpoint: endpoint}
}

// View renders the header.
func (h HeaderModel) View() string {
	title := titleStyle.Render("LCM Calculator")
	if h.version != "" && h.version != "dev" {
		title += versionStyle.Render(" " + h.version)
	}
	lines := []string{
		title,
		subtitleStyle.Render("Least common multiple of every number in an interval"),
	}
	if h.endpoint != "" {
		lines = append(lines, versionStyle.Render("endpoint: "+h.endpoint))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
