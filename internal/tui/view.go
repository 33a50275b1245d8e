package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/lcmform/internal/format"
	"github.com/agbru/lcmform/internal/form"
)

var fieldLabels = map[form.Field]string{
	form.FieldX: "Value of X (start of the interval)",
	form.FieldY: "Value of Y (end of the interval)",
}

// exampleHint is the worked example shown under the form.
const exampleHint = "Example: the interval 1 to 10 gives 2520, the smallest number divisible by 1, 2, ..., 10."

// View renders the form card.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.header.View(), ""}
	for i, f := range form.Fields {
		sections = append(sections, labelStyle.Render(fieldLabels[f]), m.inputs[i].View())
		if msg := m.snap.FieldError(f); msg != "" {
			sections = append(sections, fieldErrorStyle.Render("  "+msg))
		}
		sections = append(sections, "")
	}
	sections = append(sections, m.buttonView())

	switch {
	case m.snap.Result != nil:
		sections = append(sections, "", m.resultView(*m.snap.Result))
	case m.snap.ErrorMessage != "":
		sections = append(sections, "", errorPanelStyle.Render(m.snap.ErrorMessage))
	}

	sections = append(sections, "", hintStyle.Render(exampleHint))

	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.JoinVertical(lipgloss.Left, card, m.footerView())
}

func (m Model) buttonView() string {
	if m.snap.Loading {
		return buttonDisabledStyle.Render(m.spinner.View() + " Calculating...")
	}
	return buttonStyle.Render("Calculate LCM")
}

func (m Model) resultView(r form.Result) string {
	lines := []string{
		resultLabelStyle.Render("Result"),
		resultValueStyle.Render(format.FormatLargeNumber(r.Value)),
	}
	if format.IsScientific(r.Value) {
		lines = append(lines, noteStyle.Render("Large number shown in scientific notation."))
		if m.verbose {
			lines = append(lines, resultLabelStyle.Render("Exact value: ")+r.Value.String())
		}
	}
	if r.IntervalLabel != "" {
		lines = append(lines, resultLabelStyle.Render("Interval: ")+r.IntervalLabel)
	}
	if r.HasComputeTime {
		lines = append(lines, resultLabelStyle.Render("Compute time: ")+format.FormatExecutionDuration(r.ComputeTime))
	}
	if r.Message != "" {
		lines = append(lines, resultLabelStyle.Render(r.Message))
	}
	return resultPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) footerView() string {
	var parts []string
	for _, b := range m.keymap.footerBindings() {
		parts = append(parts, renderBinding(b))
	}
	return " " + strings.Join(parts, footerDescStyle.Render("  ·  "))
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("%s %s", footerKeyStyle.Render(h.Key), footerDescStyle.Render(h.Desc))
}
