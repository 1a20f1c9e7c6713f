package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/internal/config"
	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/buildinfo"
	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/completion"
	"github.com/matzehuels/pipegraph/pkg/graph"
	"github.com/matzehuels/pipegraph/pkg/integrations/analyzer"
	pipeio "github.com/matzehuels/pipegraph/pkg/io"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pipegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrReported marks a failure the command already printed. main exits
// non-zero without printing it again.
var ErrReported = errors.New("error already reported")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config

	// newCompleter overrides the Anthropic completion backend.
	newCompleter func(config.Completion) (completion.Completer, string)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Pipegraph builds, checks and serves LLM pipeline graphs",
		Long: `Pipegraph works with the pipeline graphs drawn in the node editor: typed
nodes (inputs, outputs, model calls, text templates and more) connected
port to port. It checks snapshots for cycles, shows how ports are laid out,
renders diagrams and serves the HTTP API the editor submits to.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pipegraph/config.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.portsCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Cache and Runner Factories
// =============================================================================

// newCache opens the configured cache backend. noCache forces the null cache.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the configured cache directory or the per-user default.
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// newKeyer namespaces cache keys with the configured prefix.
func newKeyer(cfg config.Config) cache.Keyer {
	return cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
}

// newRunner builds an analysis runner. A non-empty remoteURL routes
// analysis to that service with local fallback.
func (c *CLI) newRunner(cfg config.Config, store cache.Cache, remoteURL string) *analysis.Runner {
	var a analysis.Analyzer
	if remoteURL != "" {
		a = analyzer.New(remoteURL, analyzer.Options{
			Timeout:     cfg.Analysis.Timeout.Duration,
			Attempts:    cfg.Analysis.Attempts,
			MaxFailures: cfg.Analysis.MaxFailures,
			OpenTimeout: cfg.Analysis.OpenTimeout.Duration,
		}, c.Logger)
	}
	runner := analysis.NewRunner(a, store, newKeyer(cfg), c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	return runner
}

// =============================================================================
// Input
// =============================================================================

// errNoInput is returned when a command has neither a file nor --sample.
var errNoInput = errors.New("no input: pass a snapshot file, - for stdin, or --sample")

// readSnapshot returns the snapshot named by args, read from stdin for "-",
// or the built-in sample. The second result names the source for display.
func readSnapshot(cmd *cobra.Command, args []string, sample bool) (graph.Snapshot, string, error) {
	switch {
	case sample:
		return graph.SamplePipeline(), "sample", nil
	case len(args) == 0:
		return graph.Snapshot{}, "", errNoInput
	case args[0] == "-":
		s, err := pipeio.ReadSnapshot(cmd.InOrStdin())
		return s, "stdin", err
	default:
		s, err := pipeio.ImportSnapshot(args[0])
		return s, args[0], err
	}
}

// closeCache closes c, logging rather than returning the error.
func closeCache(logger *log.Logger, c cache.Cache) {
	if err := c.Close(); err != nil {
		logger.Warn("close cache", "error", err)
	}
}

// stdinIsTerminal reports whether os.Stdin is an interactive terminal.
func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
