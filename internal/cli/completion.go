package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/chartmeta/internal/config"
	"github.com/hupe1980/chartmeta/internal/metadata"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for chartmeta.

Completion covers subcommands, flags and, for sync-keywords --chart, the
chart names found in the metadata file.

Bash:
  $ source <(chartmeta completion bash)

Zsh:
  $ chartmeta completion zsh > "${fpath[1]}/_chartmeta"

Fish:
  $ chartmeta completion fish > ~/.config/fish/completions/chartmeta.fish

PowerShell:
  PS> chartmeta completion powershell | Out-String | Invoke-Expression
`,
		// completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}

// completeChartNames completes --chart from the chart keys of the metadata
// file selected by --repo-root and --metadata.
func completeChartNames(opts *sourceOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load(cmd, "")
		if err != nil {
			cfg = config.Default()
		}

		meta, err := metadata.Load(cfg.ResolvePath(opts.metadataPath))
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return meta.Keys(), cobra.ShellCompDirectiveNoFileComp
	}
}
