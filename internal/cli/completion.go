package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/dmenv/internal/fsutil"
)

var completionInstall bool

// completionShell knows how to generate a script and, optionally, where a
// user-local install of it lives.
type completionShell struct {
	generate func(w io.Writer) error
	// target returns the install path below home; nil when --install is
	// not supported.
	target func(home string) string
	hint   string
}

var completionShells = map[string]completionShell{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "dmenv")
		},
		hint: `eval "$(dmenv completion bash)"`,
	},
	"zsh": {
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_dmenv")
		},
		hint: `eval "$(dmenv completion zsh)"`,
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		target: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "dmenv.fish")
		},
		hint: "dmenv completion fish | source",
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		hint:     "dmenv completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Generate shell completions for dmenv",
	Long: `Print the completion script of dmenv for bash, zsh, fish or powershell.

Quick install (writes the script below your home directory):

  dmenv completion bash --install
  dmenv completion zsh --install
  dmenv completion fish --install`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		shell, ok := completionShells[args[0]]
		if !ok {
			return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
		}
		if completionInstall {
			return installCompletion(cmd, args[0], shell)
		}
		// The hint goes to stderr so that the script can be piped.
		fmt.Fprintf(cmd.ErrOrStderr(), "# To load completions in your current session:\n#   %s\n", shell.hint)
		return shell.generate(cmd.OutOrStdout())
	},
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false, "install the script below your home directory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func installCompletion(cmd *cobra.Command, name string, shell completionShell) error {
	if shell.target == nil {
		return fmt.Errorf("automatic install is not supported for %s; add `%s` to your profile", name, shell.hint)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := shell.target(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	var script bytes.Buffer
	if err := shell.generate(&script); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(target, script.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s completions installed to %s\n", name, target)
	if name == "zsh" {
		fmt.Fprintf(cmd.OutOrStdout(), "Make sure %s is in your fpath\n", filepath.Dir(target))
	}
	return nil
}
