package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lcmform/internal/ui"
)

// Styles of the form card, rebuilt from the ui theme by initTUIStyles.
var (
	cardStyle           lipgloss.Style
	titleStyle          lipgloss.Style
	subtitleStyle       lipgloss.Style
	versionStyle        lipgloss.Style
	labelStyle          lipgloss.Style
	focusedPromptStyle  lipgloss.Style
	blurredPromptStyle  lipgloss.Style
	inputTextStyle      lipgloss.Style
	placeholderStyle    lipgloss.Style
	fieldErrorStyle     lipgloss.Style
	buttonStyle         lipgloss.Style
	buttonDisabledStyle lipgloss.Style
	spinnerStyle        lipgloss.Style
	resultPanelStyle    lipgloss.Style
	resultValueStyle    lipgloss.Style
	resultLabelStyle    lipgloss.Style
	noteStyle           lipgloss.Style
	errorPanelStyle     lipgloss.Style
	hintStyle           lipgloss.Style
	footerKeyStyle      lipgloss.Style
	footerDescStyle     lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme. Run calls it
// again after the application has selected the theme.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	cardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(1, 3)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	subtitleStyle = lipgloss.NewStyle().Foreground(t.Dim)
	versionStyle = lipgloss.NewStyle().Foreground(t.Dim)
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Text)

	focusedPromptStyle = lipgloss.NewStyle().Foreground(t.Accent)
	blurredPromptStyle = lipgloss.NewStyle().Foreground(t.Dim)
	inputTextStyle = lipgloss.NewStyle().Foreground(t.Text)
	placeholderStyle = lipgloss.NewStyle().Foreground(t.Dim)
	fieldErrorStyle = lipgloss.NewStyle().Foreground(t.Error)

	buttonStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Accent).
		Padding(0, 2)
	buttonDisabledStyle = buttonStyle.
		Foreground(t.Dim).
		BorderForeground(t.Dim)
	spinnerStyle = lipgloss.NewStyle().Foreground(t.Accent)

	resultPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Success).
		Padding(0, 2)
	resultValueStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	resultLabelStyle = lipgloss.NewStyle().Foreground(t.Dim)
	noteStyle = lipgloss.NewStyle().Italic(true).Foreground(t.Warning)

	errorPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error).
		Foreground(t.Error).
		Padding(0, 2)

	hintStyle = lipgloss.NewStyle().Foreground(t.Info)
	footerKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	footerDescStyle = lipgloss.NewStyle().Foreground(t.Dim)
}
