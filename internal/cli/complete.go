package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegraph/internal/config"
	"github.com/matzehuels/pipegraph/pkg/cache"
	"github.com/matzehuels/pipegraph/pkg/completion"
)

type completeOpts struct {
	model   string
	system  string
	noCache bool
}

// completeCommand creates the complete command.
func (c *CLI) completeCommand() *cobra.Command {
	var opts completeOpts

	cmd := &cobra.Command{
		Use:   "complete [prompt...]",
		Short: "Send a prompt to the completion model",
		Long: `Complete sends a prompt to the model configured in [completion] and prints
the reply. The prompt is taken from the arguments, or from stdin when there
are none. The API key is read from PIPEGRAPH_COMPLETION_API_KEY or
ANTHROPIC_API_KEY.

Replies are cached per model and prompt; use --no-cache to always ask.`,
		Example: `  pipegraph complete "Translate this: bonjour"
  echo "Summarize the release notes" | pipegraph complete --model claude-haiku-4-5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runComplete(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", "", "model name (overrides completion.model)")
	cmd.Flags().StringVar(&opts.system, "system", "", "system prompt (overrides completion.system)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or store cached replies")

	return cmd
}

func (c *CLI) runComplete(cmd *cobra.Command, args []string, opts completeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.model != "" {
		cfg.Completion.Model = opts.model
	}
	if opts.system != "" {
		cfg.Completion.System = opts.system
	}

	prompt, err := readPrompt(cmd, args)
	if err != nil {
		return err
	}

	store, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer closeCache(logger, store)

	inner, model := c.completer(cfg.Completion)
	completer := completion.NewCached(inner, store, newKeyer(cfg), model, cache.TTLCompletion)

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Waiting for "+model+"...")
	spinner.Start()
	prog := newProgress(logger)
	reply, err := completer.Complete(ctx, prompt)
	spinner.Stop()

	if err != nil {
		logger.Debug("completion failed", "model", model, "error", err)
		fmt.Fprintln(cmd.ErrOrStderr(), completion.Describe(err))
		return ErrReported
	}
	prog.done("Completed with " + model)

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// completer returns the completion backend and its model name. Tests
// replace it through CLI.newCompleter.
func (c *CLI) completer(cfg config.Completion) (completion.Completer, string) {
	if c.newCompleter != nil {
		return c.newCompleter(cfg)
	}
	a := completion.NewAnthropic(completion.AnthropicOptions{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		System:    cfg.System,
	})
	return a, a.Model()
}

// readPrompt joins args, or reads stdin when there are none.
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && f == os.Stdin && stdinIsTerminal() {
		return "", errors.New("no prompt: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", completion.ErrEmptyPrompt
	}
	return prompt, nil
}
