package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/onetapdev/plughub/internal/config"
	"github.com/onetapdev/plughub/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the plugin installation HTTP service",
	Long: `Serve the plugin API: POST /plugins/install-from-git installs a plugin
from a Git repository, GET /plugins/installed lists what is installed.
The registry is rebuilt from the plugins directory before serving.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides the listen_addr config key)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logContext(ctx)

	if err := os.MkdirAll(config.PluginsDir(), 0755); err != nil {
		return fmt.Errorf("creating plugins directory: %w", err)
	}

	reg, inst := buildCore()
	if err := reg.Rescan(ctx); err != nil {
		return fmt.Errorf("startup rescan: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = config.ListenAddr()
	}

	return server.New(reg, inst).ListenAndServe(ctx, addr)
}
