package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// shellCompletions maps each supported shell to its script generator.
var shellCompletions = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for pipegraph and write it to stdout.

  bash:        source <(pipegraph completion bash)
  zsh:         pipegraph completion zsh > "${fpath[1]}/_pipegraph"
  fish:        pipegraph completion fish > ~/.config/fish/completions/pipegraph.fish
  powershell:  pipegraph completion powershell | Out-String | Invoke-Expression

Start a new shell afterwards for the completions to load.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellCompletions[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}
