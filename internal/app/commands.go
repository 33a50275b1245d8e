package app

import (
	"github.com/spf13/cobra"

	"github.com/agbru/lcmform/internal/cli"
	"github.com/agbru/lcmform/internal/config"
	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/logging"
	"github.com/agbru/lcmform/internal/server"
	"github.com/agbru/lcmform/internal/tui"
)

// Command builds the command tree. Running the root command without a
// subcommand opens the interactive form.
func (a *Application) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "lcmform",
		Short: "Compute the LCM of every integer in an interval through a remote endpoint",
		Long: `lcmform collects an interval [x, y] of positive integers, validates it and
asks a calculation endpoint for the least common multiple of every number in
the interval. Without a subcommand it opens an interactive terminal form.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Log lines would tear the alternate screen.
			session := a.newSession(logging.NewNop())
			defer session.Close()
			a.exitCode = tui.Run(cmd.Context(), session, a.Config, Version)
			return nil
		},
	}
	root.SetVersionTemplate(versionString() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("%v", err)
	})

	config.BindFlags(root.PersistentFlags(), &a.Config)
	config.BindInputFlags(root.PersistentFlags(), &a.Config)

	root.AddCommand(a.submitCommand(), a.replCommand(), a.serveCommand(), a.versionCommand())
	return root
}

func (a *Application) submitCommand() *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate --x and --y, submit once and print the result",
		Example: `  lcmform submit --x 1 --y 10
  lcmform submit --x 1 --y 50 --verbose -o result.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := a.newSession(a.logger)
			defer session.Close()
			a.exitCode = cli.RunSubmit(cmd.Context(), session, a.Out, a.ErrWriter, cli.OutputConfig{
				OutputFile: outputFile,
				Quiet:      a.Config.Quiet,
				Verbose:    a.Config.Verbose,
			})
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Also write the result to this file")
	return cmd
}

func (a *Application) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start a line-oriented interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := a.newSession(a.logger)
			defer session.Close()
			repl := cli.NewREPL(session, a.metrics, cli.REPLConfig{
				Endpoint: a.Config.EndpointURL,
				Verbose:  a.Config.Verbose,
			})
			repl.SetInput(cmd.InOrStdin())
			repl.SetOutput(a.Out)
			repl.Start(cmd.Context())
			return nil
		},
	}
}

func (a *Application) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference calculation endpoint",
		Long: `serve starts an HTTP server implementing the calculation endpoint at
` + server.CalculatePath + `, with /healthz and Prometheus /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := server.New(server.Config{
				Addr:        a.Config.ListenAddr,
				MaxInterval: a.Config.MaxInterval,
				RateLimit:   a.Config.RateLimit,
				RateBurst:   a.Config.RateBurst,
				Security:    server.DefaultSecurityConfig(),
			}, server.WithLogger(a.logger))
			return srv.ListenAndServe(cmd.Context())
		},
	}
	config.BindServerFlags(cmd.Flags(), &a.Config)
	return cmd
}

func (a *Application) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Printing the version must not depend on a valid configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			PrintVersion(cmd.OutOrStdout())
		},
	}
}
