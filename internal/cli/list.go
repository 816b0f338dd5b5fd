package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	Long:  `List all plugins installed under the plugins directory.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := logContext(cmd.Context())

	reg, _ := buildCore()
	if err := reg.Rescan(ctx); err != nil {
		return fmt.Errorf("scanning plugins: %w", err)
	}

	plugins := reg.List()

	if listJSON {
		out, err := json.MarshalIndent(plugins, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling plugin list: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(plugins) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plugins installed yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tPATH")
	for _, p := range plugins {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.PluginID, p.Name, p.Version, p.Path)
	}
	return w.Flush()
}
