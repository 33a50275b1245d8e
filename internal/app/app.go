// Package app wires configuration, logging, the endpoint client and the
// front ends into the lcmform command tree.
package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agbru/lcmform/internal/config"
	"github.com/agbru/lcmform/internal/endpoint"
	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/form"
	"github.com/agbru/lcmform/internal/logging"
	"github.com/agbru/lcmform/internal/metrics"
	"github.com/agbru/lcmform/internal/ui"
)

// Application represents the lcmform application instance.
type Application struct {
	Config    config.AppConfig
	Client    form.Client
	Out       io.Writer
	ErrWriter io.Writer

	logger   logging.Logger
	metrics  *metrics.SubmissionMetrics
	exitCode int
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithClient replaces the HTTP endpoint client, mainly for tests.
func WithClient(c form.Client) AppOption {
	return func(a *Application) { a.Client = c }
}

// New creates an Application writing results to out and diagnostics to errWriter.
func New(out, errWriter io.Writer, opts ...AppOption) *Application {
	app := &Application{
		Config:    config.DefaultConfig(),
		Out:       out,
		ErrWriter: errWriter,
		logger:    logging.NewNop(),
		metrics:   metrics.NewSubmissionMetrics(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run parses args, executes the selected command and returns the process
// exit code. SIGINT and SIGTERM cancel ctx for the running command.
func (a *Application) Run(ctx context.Context, args []string) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	root := a.Command()
	root.SetArgs(args)
	root.SetOut(a.Out)
	root.SetErr(a.ErrWriter)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "%sError:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
		return apperrors.ExitCodeFor(err)
	}
	a.writeMetrics()
	return a.exitCode
}

// setup resolves the configuration layers under the parsed flags and applies
// the process-wide settings derived from them.
func (a *Application) setup(cmd *cobra.Command) error {
	if err := config.Resolve(cmd.Flags(), &a.Config); err != nil {
		return err
	}
	ui.InitTheme(a.Config.Theme, a.Config.NoColor)
	a.logger = logging.NewConsoleLogger(a.ErrWriter, "lcmform", logging.ParseLevel(a.Config.LogLevel))
	a.logger.Debug("configuration resolved",
		logging.String("endpoint", a.Config.EndpointURL),
		logging.String("config_file", a.Config.ConfigFile))
	return nil
}

// newSession builds a form session pre-filled from the configuration and
// submitting through the configured client.
func (a *Application) newSession(logger logging.Logger) *form.Session {
	client := a.Client
	if client == nil {
		client = endpoint.New(a.Config.EndpointURL, a.Config.Timeout, endpoint.WithLogger(logger))
	}
	return form.NewSession(client,
		form.WithValues(a.Config.X, a.Config.Y),
		form.WithRecorder(a.metrics),
		form.WithLogger(logger),
	)
}

// writeMetrics exports the client metrics when --metrics-file is set.
func (a *Application) writeMetrics() {
	if a.Config.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.logger.Error("writing metrics file", err, logging.String("path", a.Config.MetricsFile))
		if a.exitCode == apperrors.ExitSuccess {
			a.exitCode = apperrors.ExitErrorGeneric
		}
	}
}
