package cli

import (
	"encoding/json"
	"fmt"

	"github.com/onetapdev/plughub/internal/installer"
	"github.com/spf13/cobra"
)

var (
	installRef    string
	installSubdir string
	installJSON   bool
)

var installCmd = &cobra.Command{
	Use:   "install <git-url>",
	Short: "Install a plugin from a Git repository",
	Long: `Clone a Git repository, read the plugin manifest it carries, and commit
the tree under the plugins directory. A prior installation with the
same plugin id is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installRef, "ref", "", "Branch, tag, or commit to check out")
	installCmd.Flags().StringVar(&installSubdir, "subdir", "", "Plugin root inside the repository")
	installCmd.Flags().BoolVar(&installJSON, "json", false, "Output the installed entry as JSON")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := logContext(cmd.Context())
	_, inst := buildCore()

	p, err := inst.InstallFromGit(ctx, installer.Request{
		GitURL: args[0],
		Ref:    installRef,
		Subdir: installSubdir,
	})
	if err != nil {
		return err
	}

	if installJSON {
		out, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling installed entry: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Installed %s %s\n  %s\n", p.PluginID, p.Version, p.Path)
	return nil
}
