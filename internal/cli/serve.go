package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram generation over HTTP",
		Long: `Serve diagram generation over HTTP.

  GET  /healthz
  POST /v1/diagrams/{models|controllers|states}?format=dot|svg|xmi

Diagram options default to the project configuration and can be set per
request with query parameters (brief, inheritance, filter, ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			timeouts, err := cfg.Server.Timeouts()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			observability.NewLogHooks(logger).Register()
			defer observability.Reset()

			defaults := cfg.Options("")
			defaults.FS = os.DirFS(c.projectDir)
			srv := server.New(runner, server.Config{
				Logger:       logger,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				Defaults:     defaults,
				ReadTimeout:  timeouts[0],
				WriteTimeout: timeouts[1],
			})
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
