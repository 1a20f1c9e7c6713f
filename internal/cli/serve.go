package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/internal/server"
	"github.com/matzehuels/pipegraph/pkg/observability"
)

type serveOpts struct {
	addr    string
	remote  string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline HTTP API",
		Long: `Serve starts the HTTP API the editor talks to:

  POST /pipelines/parse     analyze a snapshot
  POST /nodes/ports         resolve a node's ports and layout
  /workspaces/...           build and edit pipelines server-side
  GET  /health, /metrics    health and Prometheus metrics

Settings come from the [server], [analysis] and [cache] config sections.
The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  pipegraph serve
  pipegraph serve --addr :9000 --remote http://analyzer:8000/pipelines/parse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "analysis service URL (overrides analysis.remote_url)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.remote != "" {
		cfg.Analysis.RemoteURL = opts.remote
	}

	store, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer closeCache(logger, store)

	metrics := observability.NewPrometheus()
	observability.SetAnalysisHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	runner := c.newRunner(cfg, store, cfg.Analysis.RemoteURL)
	if cfg.Analysis.RemoteURL != "" {
		logger.Info("remote analysis enabled", "url", cfg.Analysis.RemoteURL)
	}

	srv := server.New(server.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration,
		WriteTimeout:   cfg.Server.WriteTimeout.Duration,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxWorkspaces:  cfg.Server.MaxWorkspaces,
		WorkspaceTTL:   cfg.Server.WorkspaceTTL.Duration,
	}, runner, metrics, logger)

	return srv.ListenAndServe(ctx)
}
