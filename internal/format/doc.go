// Package format provides display formatting for calculation results and
// durations, shared by the CLI and TUI front ends.
package format
