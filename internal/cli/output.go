// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer] and handle
//     colorization. Examples: [DisplayResult], [DisplayFieldErrors].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/form"
	"github.com/agbru/lcmform/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only the exact result value.
	Quiet bool
	// Verbose adds the exact value of large results and the server message.
	Verbose bool
}

// WriteResultToFile saves a successful result with a commented header. It
// does nothing when cfg.OutputFile is empty.
func WriteResultToFile(r form.Result, cfg OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.WrapError(err, "failed to create directory")
		}
	}

	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return apperrors.WrapError(err, "failed to create output file")
	}
	defer file.Close()

	fmt.Fprintf(file, "# LCM Calculation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Interval: %s\n", r.IntervalLabel)
	if r.HasComputeTime {
		fmt.Fprintf(file, "# Compute time: %s\n", r.ComputeTime)
	}
	fmt.Fprintf(file, "# Digits: %d\n", len(r.Value.String()))
	fmt.Fprintf(file, "\nlcm =\n%s\n", r.Value.String())

	return file.Close()
}

// FormatQuietResult returns the exact result value, suitable for scripting.
func FormatQuietResult(r form.Result) string {
	return r.Value.String()
}

// DisplayQuietResult prints the exact result value on its own line.
func DisplayQuietResult(out io.Writer, r form.Result) {
	fmt.Fprintln(out, FormatQuietResult(r))
}

// DisplayResultWithConfig prints a result in the mode selected by cfg and
// saves it to cfg.OutputFile when set.
func DisplayResultWithConfig(out io.Writer, r form.Result, cfg OutputConfig) error {
	if cfg.Quiet {
		DisplayQuietResult(out, r)
	} else {
		DisplayResult(out, r, cfg.Verbose)
	}

	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(r, cfg); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), cfg.OutputFile, ui.ColorReset())
	}
	return nil
}
