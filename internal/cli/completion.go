package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftree/pkg/pipeline"
	"github.com/matzehuels/reftree/pkg/source"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for reftree.

  bash:        source <(reftree completion bash)
  zsh:         reftree completion zsh > "${fpath[1]}/_reftree"
  fish:        reftree completion fish | source
  powershell:  reftree completion powershell | Out-String | Invoke-Expression

Format, type and source kind flags complete their accepted values.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// registerValueCompletions attaches value completion to every command that
// defines --format, --type or --kind.
func registerValueCompletions(root *cobra.Command) {
	values := []struct {
		flag string
		fn   cobra.CompletionFunc
	}{
		{"format", completeList(pipeline.ValidFormats)},
		{"type", cobra.FixedCompletions(pipeline.ValidVizTypes, cobra.ShellCompDirectiveNoFileComp)},
		{"kind", cobra.FixedCompletions(source.Kinds, cobra.ShellCompDirectiveNoFileComp)},
	}
	var walk func(*cobra.Command)
	walk = func(cmd *cobra.Command) {
		for _, v := range values {
			if cmd.Flags().Lookup(v.flag) != nil {
				_ = cmd.RegisterFlagCompletionFunc(v.flag, v.fn)
			}
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// completeList completes one entry of a comma-separated list, keeping the
// entries already typed.
func completeList(all []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		done, typed := "", toComplete
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			done, typed = toComplete[:i+1], toComplete[i+1:]
		}
		var out []string
		for _, v := range all {
			if strings.HasPrefix(v, typed) && !strings.Contains(","+done, ","+v+",") {
				out = append(out, done+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
