package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/onetapdev/plughub/internal/branding"
	"github.com/onetapdev/plughub/internal/config"
	"github.com/onetapdev/plughub/internal/fetch"
	"github.com/onetapdev/plughub/internal/installer"
	"github.com/onetapdev/plughub/internal/manifest"
	"github.com/onetapdev/plughub/internal/registry"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs plugins by cloning a Git repository, reading the
manifest it carries, and committing the tree under the local plugins
directory. The serve command exposes the same operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// buildCore constructs the manifest loader, registry, and installer
// from the loaded configuration.
func buildCore() (*registry.Registry, *installer.Installer) {
	loader := &manifest.Loader{DisableYAML: config.YAMLManifestsDisabled()}
	reg := registry.New(config.PluginsDir(), loader)
	fetcher := &fetch.Fetcher{GitBin: config.GitBin(), Timeout: config.GitTimeout()}
	inst := installer.New(config.PluginsDir(), fetcher, loader, reg)
	return reg, inst
}

// logContext attaches a text logger to ctx for the slog-context
// consumers further down the stack.
func logContext(ctx context.Context) context.Context {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return slogctx.NewCtx(ctx, logger)
}
