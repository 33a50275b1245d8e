// Package logging provides a unified logging interface for lcmform.
// It abstracts the underlying logging implementation, allowing consistent logging
// across the form session, endpoint client and reference server.
package logging
