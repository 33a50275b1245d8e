// Package ui holds the color themes shared by the line-oriented output of the
// CLI and the lipgloss palette of the interactive form.
//
// The active theme is process-wide and guarded by a mutex; it is chosen once at
// startup with InitTheme and read back through
// the getters or the Color* helpers.
package ui
