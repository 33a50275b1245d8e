// Package cli implements the line-oriented front ends of lcmform: the
// one-shot submit runner, the interactive REPL and the result presenter they
// share. Both drive a form.Session, the same state object the TUI uses.
package cli
