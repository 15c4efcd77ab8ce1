package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for afmtool.

Bash:
  $ source <(afmtool completion bash)

Zsh:
  $ afmtool completion zsh > "${fpath[1]}/_afmtool"

Fish:
  $ afmtool completion fish > ~/.config/fish/completions/afmtool.fish

PowerShell:
  PS> afmtool completion powershell | Out-String | Invoke-Expression
`,
		// Completion scripts are generated without loading any config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return &ExitError{Code: exitUsage, Err: fmt.Errorf("unsupported shell %q", args[0])}
			}
		},
	}
}
