// Package form implements the LCM request form: validation of the two raw
// inputs, the submission lifecycle against a remote endpoint, and the
// presentation state that front ends render.
//
// A Session is the single owner of that state. Front ends read it through
// Snapshot and change it only through SetField and Submit (or the Begin and
// Complete pair when the request runs on an event loop).
package form
