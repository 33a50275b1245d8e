package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agbru/lcmform/internal/form"
	"github.com/agbru/lcmform/internal/metrics"
	"github.com/agbru/lcmform/internal/ui"
)

// StatsSource reports submission counts for the stats command.
type StatsSource interface {
	Summary() ([]metrics.OutcomeCount, error)
}

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Endpoint is shown by the status command.
	Endpoint string
	// Verbose shows exact values of large results.
	Verbose bool
}

// REPL is a line-oriented front end over a form.Session. Each command edits
// or submits the same session the TUI would drive.
type REPL struct {
	config  REPLConfig
	session *form.Session
	stats   StatsSource
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a REPL bound to session. stats may be nil.
func NewREPL(session *form.Session, stats StatsSource, config REPLConfig) *REPL {
	return &REPL{
		config:  config,
		session: session,
		stats:   stats,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads commands until exit, EOF or cancellation of ctx.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for ctx.Err() == nil {
		fmt.Fprint(r.out, ui.ColorGreen()+"lcm> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.processCommand(ctx, input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s   %sLCM Calculator - Interactive Mode%s        %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sx <value>%s       - Set the start of the interval\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sy <value>%s       - Set the end of the interval\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scalc [x y]%s      - Calculate the LCM of every number in [x, y]\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %s<x> <y>%s         - Shortcut for calc x y\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sshow%s            - Display the form state\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sclear%s           - Clear both values\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstats%s           - Display submission counts\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s          - Display the current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s            - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s     - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "%sExample: 1 10 gives 2520.%s\n", ui.ColorDim(), ui.ColorReset())
}

// processCommand executes one line. It returns false when the REPL should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "x", "y":
		r.cmdSet(form.Field(cmd), args)
	case "calc", "c":
		r.cmdCalc(ctx, args)
	case "show", "s":
		DisplaySnapshot(r.out, r.session.Snapshot(), r.config.Verbose)
	case "clear":
		r.session.SetField(form.FieldX, "")
		r.session.SetField(form.FieldY, "")
		fmt.Fprintln(r.out, "Values cleared.")
	case "stats":
		r.cmdStats()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		if len(parts) == 2 {
			r.cmdCalc(ctx, parts)
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

// cmdSet stores the raw text for one field. Values are validated on calc.
func (r *REPL) cmdSet(f form.Field, args []string) {
	value := strings.Join(args, " ")
	r.session.SetField(f, value)
	fmt.Fprintf(r.out, "%s%s%s = %q\n", ui.ColorYellow(), fieldNames[f], ui.ColorReset(), value)
}

func (r *REPL) cmdCalc(ctx context.Context, args []string) {
	switch len(args) {
	case 0:
	case 2:
		r.session.SetField(form.FieldX, args[0])
		r.session.SetField(form.FieldY, args[1])
	default:
		fmt.Fprintf(r.out, "%sUsage: calc [x y]%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}

	stop := startSpinner(r.out, " Calculating LCM...")
	outcome := r.session.Submit(ctx)
	stop()

	snap := r.session.Snapshot()
	switch outcome {
	case form.OutcomeRejected:
		DisplayFieldErrors(r.out, snap.FieldErrors)
	case form.OutcomeSuccess:
		DisplayResult(r.out, *snap.Result, r.config.Verbose)
	default:
		if snap.ErrorMessage != "" {
			DisplayError(r.out, snap.ErrorMessage)
		}
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStats() {
	if r.stats == nil {
		fmt.Fprintln(r.out, "Statistics are not available.")
		return
	}
	rows, err := r.stats.Summary()
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "\n%sSubmissions:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, row := range rows {
		fmt.Fprintf(r.out, "  %s%-16s%s %s%d%s\n",
			ui.ColorYellow(), row.Outcome, ui.ColorReset(), ui.ColorCyan(), row.Count, ui.ColorReset())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Endpoint: %s%s%s\n", ui.ColorCyan(), r.config.Endpoint, ui.ColorReset())
	verbose := "no"
	if r.config.Verbose {
		verbose = "yes"
	}
	fmt.Fprintf(r.out, "  Verbose:  %s%s%s\n", ui.ColorCyan(), verbose, ui.ColorReset())
	fmt.Fprintln(r.out)
}
