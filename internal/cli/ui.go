//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// SpinnerRefreshRate is the frame interval of the submission spinner.
const SpinnerRefreshRate = 100 * time.Millisecond

// Spinner abstracts the terminal spinner shown while a request is in flight,
// so tests can observe it without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation and clears its line.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate,
		spinner.WithWriter(out),
		spinner.WithHiddenCursor(true))
	return &realSpinner{s}
}

// isTerminal reports whether w is attached to a terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// startSpinner shows a spinner with suffix on out and returns the function
// that stops it. Nothing is drawn when out is not a terminal, so piped output
// stays clean.
func startSpinner(out io.Writer, suffix string) (stop func()) {
	if !isTerminal(out) {
		return func() {}
	}
	s := newSpinner(out)
	s.UpdateSuffix(suffix)
	s.Start()
	return s.Stop
}
