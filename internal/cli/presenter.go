package cli

import (
	"fmt"
	"io"

	"github.com/agbru/lcmform/internal/format"
	"github.com/agbru/lcmform/internal/form"
	"github.com/agbru/lcmform/internal/ui"
)

// fieldNames are the labels used when printing field errors.
var fieldNames = map[form.Field]string{
	form.FieldX: "x",
	form.FieldY: "y",
}

// DisplayResult prints a successful calculation. Values from 10^12 up are
// shown in scientific notation with a note; verbose adds the exact digits and
// the server's message.
func DisplayResult(out io.Writer, r form.Result, verbose bool) {
	fmt.Fprintf(out, "%sResult:%s %s%s%s\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorGreen(), format.FormatLargeNumber(r.Value), ui.ColorReset())
	if format.IsScientific(r.Value) {
		fmt.Fprintf(out, "  %s(large number shown in scientific notation)%s\n", ui.ColorDim(), ui.ColorReset())
		if verbose {
			fmt.Fprintf(out, "  Exact value:  %s%s%s\n", ui.ColorCyan(), r.Value.String(), ui.ColorReset())
		}
	}
	if r.IntervalLabel != "" {
		fmt.Fprintf(out, "  Interval:     %s%s%s\n", ui.ColorCyan(), r.IntervalLabel, ui.ColorReset())
	}
	if r.HasComputeTime {
		fmt.Fprintf(out, "  Compute time: %s%s%s\n",
			ui.ColorYellow(), format.FormatExecutionDuration(r.ComputeTime), ui.ColorReset())
	}
	if verbose && r.Message != "" {
		fmt.Fprintf(out, "  %s%s%s\n", ui.ColorDim(), r.Message, ui.ColorReset())
	}
}

// DisplayFieldErrors prints one line per invalid field, in field order.
func DisplayFieldErrors(out io.Writer, errs form.Errors) {
	for _, f := range form.Fields {
		if msg, ok := errs[f]; ok {
			fmt.Fprintf(out, "%s✗ %s:%s %s\n", ui.ColorRed(), fieldNames[f], ui.ColorReset(), msg)
		}
	}
}

// DisplayError prints a request-level failure message.
func DisplayError(out io.Writer, msg string) {
	fmt.Fprintf(out, "%sError:%s %s\n", ui.ColorRed(), ui.ColorReset(), msg)
}

// DisplaySnapshot prints the whole form state, as the REPL's show command does.
func DisplaySnapshot(out io.Writer, s form.Snapshot, verbose bool) {
	for _, f := range form.Fields {
		value := s.Value(f)
		if value == "" {
			value = ui.ColorDim() + "(empty)" + ui.ColorReset()
		}
		fmt.Fprintf(out, "  %s%s%s = %s\n", ui.ColorYellow(), fieldNames[f], ui.ColorReset(), value)
		if msg := s.FieldError(f); msg != "" {
			fmt.Fprintf(out, "      %s%s%s\n", ui.ColorRed(), msg, ui.ColorReset())
		}
	}
	switch {
	case s.Loading:
		fmt.Fprintf(out, "  %sCalculating...%s\n", ui.ColorYellow(), ui.ColorReset())
	case s.Result != nil:
		DisplayResult(out, *s.Result, verbose)
	case s.ErrorMessage != "":
		DisplayError(out, s.ErrorMessage)
	}
}
