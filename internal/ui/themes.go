package ui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the ANSI escape sequences used by line-oriented output
// (the submit command and the REPL).
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

// Theme names accepted by SetTheme and the --theme flag.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeNone  = "none"
)

var (
	// DarkTheme is tuned for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      ThemeDark,
		Primary:   "\033[38;5;63m",  // indigo
		Secondary: "\033[38;5;245m", // grey
		Success:   "\033[38;5;78m",  // green
		Warning:   "\033[38;5;221m", // amber
		Error:     "\033[38;5;203m", // red
		Info:      "\033[38;5;75m",  // sky blue
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker tones for light backgrounds.
	LightTheme = Theme{
		Name:      ThemeLight,
		Primary:   "\033[38;5;55m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;25m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme emits no escape sequences at all.
	NoColorTheme = Theme{Name: ThemeNone}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// TUITheme is the lipgloss palette of the interactive form.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the blue to indigo palette of the form card.
	DarkTUITheme = TUITheme{
		Text:    lipgloss.Color("#E5E7EB"),
		Border:  lipgloss.Color("#6366F1"),
		Accent:  lipgloss.Color("#818CF8"),
		Success: lipgloss.Color("#34D399"),
		Warning: lipgloss.Color("#FBBF24"),
		Error:   lipgloss.Color("#F87171"),
		Dim:     lipgloss.Color("#6B7280"),
		Info:    lipgloss.Color("#60A5FA"),
	}

	// LightTUITheme mirrors DarkTUITheme for light terminals.
	LightTUITheme = TUITheme{
		Text:    lipgloss.Color("#1F2937"),
		Border:  lipgloss.Color("#4F46E5"),
		Accent:  lipgloss.Color("#4338CA"),
		Success: lipgloss.Color("#047857"),
		Warning: lipgloss.Color("#B45309"),
		Error:   lipgloss.Color("#B91C1C"),
		Dim:     lipgloss.Color("#6B7280"),
		Info:    lipgloss.Color("#1D4ED8"),
	}

	// NoColorTUITheme renders everything in the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
	}
)

// GetCurrentTUITheme returns the TUI palette paired with the active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	switch currentTheme.Name {
	case ThemeNone:
		return NoColorTUITheme
	case ThemeLight:
		return LightTUITheme
	default:
		return DarkTUITheme
	}
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// ValidTheme reports whether name is a known theme. The empty string selects
// the default and is valid.
func ValidTheme(name string) bool {
	switch strings.ToLower(name) {
	case "", ThemeDark, ThemeLight, ThemeNone:
		return true
	}
	return false
}

// SetTheme activates a theme by name. Unknown names fall back to dark.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = themeByName(name)
}

func themeByName(name string) Theme {
	switch strings.ToLower(name) {
	case ThemeLight:
		return LightTheme
	case ThemeNone:
		return NoColorTheme
	default:
		return DarkTheme
	}
}

// InitTheme selects the theme at startup. noColor, or a NO_COLOR variable
// present in the environment (https://no-color.org/), wins over name.
func InitTheme(name string, noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = themeByName(name)
}
