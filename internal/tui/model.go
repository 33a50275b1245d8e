package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/lcmform/internal/config"
	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/form"
)

// calculationDoneMsg carries the endpoint answer back to the event loop.
type calculationDoneMsg struct {
	generation uint64
	result     form.Result
	err        error
}

// Model is the root bubbletea model: a two-field form bound to a form.Session.
// The session is mutated only from Update, so its state follows the event
// loop; the endpoint call itself runs in a tea.Cmd.
type Model struct {
	session *form.Session
	snap    form.Snapshot

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	keymap  KeyMap
	header  HeaderModel

	parentCtx  context.Context
	generation uint64
	outcome    form.Outcome
	verbose    bool
	width      int
	quitting   bool
}

// NewModel creates the form model. The inputs start with the session's
// current values.
func NewModel(ctx context.Context, session *form.Session, cfg config.AppConfig, version string) Model {
	snap := session.Snapshot()

	inputs := make([]textinput.Model, len(form.Fields))
	for i, f := range form.Fields {
		in := textinput.New()
		in.CharLimit = 32
		in.Width = 24
		in.Prompt = "> "
		in.TextStyle = inputTextStyle
		in.PlaceholderStyle = placeholderStyle
		in.SetValue(snap.Value(f))
		switch f {
		case form.FieldX:
			in.Placeholder = "e.g. 1"
		case form.FieldY:
			in.Placeholder = "e.g. 10"
		}
		inputs[i] = in
	}

	m := Model{
		session:   session,
		snap:      snap,
		inputs:    inputs,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		keymap:    DefaultKeyMap(),
		header:    NewHeaderModel(version, cfg.EndpointURL),
		parentCtx: ctx,
		outcome:   form.OutcomeIgnored,
		verbose:   cfg.Verbose,
	}
	m.setFocus(0)
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case calculationDoneMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.outcome = m.session.Complete(msg.result, msg.err)
		m.snap = m.session.Snapshot()
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.session.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Submit):
		return m.submit()

	case key.Matches(msg, m.keymap.NextField):
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.PrevField):
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, textinput.Blink

	case key.Matches(msg, m.keymap.Clear):
		if m.snap.Loading {
			return m, nil
		}
		for i, f := range form.Fields {
			m.inputs[i].SetValue("")
			m.session.SetField(f, "")
		}
		m.snap = m.session.Snapshot()
		m.setFocus(0)
		return m, nil
	}

	return m.updateFocused(msg)
}

// submit starts a submission unless one is already loading.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.snap.Loading {
		return m, nil
	}
	reqCtx, input, err := m.session.Begin(m.parentCtx)
	m.snap = m.session.Snapshot()
	if err != nil {
		if errors.Is(err, form.ErrValidation) {
			m.outcome = form.OutcomeRejected
			for i, f := range form.Fields {
				if m.snap.FieldErrors.Has(f) {
					m.setFocus(i)
					break
				}
			}
		}
		return m, nil
	}

	m.generation++
	return m, tea.Batch(m.spinner.Tick, requestCmd(m.session, reqCtx, input, m.generation))
}

// requestCmd performs the endpoint call off the event loop.
func requestCmd(session *form.Session, ctx context.Context, input form.Input, gen uint64) tea.Cmd {
	return func() tea.Msg {
		res, err := session.Request(ctx, input)
		return calculationDoneMsg{generation: gen, result: res, err: err}
	}
}

// updateFocused forwards msg to the focused input and copies an edited value
// into the session.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.session.SetField(form.Fields[m.focus], after)
		m.snap = m.session.Snapshot()
	}
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
			m.inputs[j].PromptStyle = focusedPromptStyle
			continue
		}
		m.inputs[j].Blur()
		m.inputs[j].PromptStyle = blurredPromptStyle
	}
}

// Snapshot returns the state last read from the session.
func (m Model) Snapshot() form.Snapshot { return m.snap }

// Run starts the interactive form and blocks until the user quits. The exit
// code reflects the last settled submission.
func Run(ctx context.Context, session *form.Session, cfg config.AppConfig, version string) int {
	// Rebuild styles from the theme selected by the application.
	initTUIStyles()

	model := NewModel(ctx, session, cfg, version)
	defer session.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return exitCode(m.outcome)
	}
	return apperrors.ExitSuccess
}

// exitCode maps the outcome of the last submission attempt to a process
// exit code. Quitting before any attempt exits cleanly.
func exitCode(o form.Outcome) int {
	switch o {
	case form.OutcomeRejected:
		return apperrors.ExitErrorValidation
	case form.OutcomeEndpointError:
		return apperrors.ExitErrorEndpoint
	case form.OutcomeTransportError:
		return apperrors.ExitErrorTransport
	default:
		return apperrors.ExitSuccess
	}
}
