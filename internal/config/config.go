package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/onetapdev/plughub/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyPluginsDir           = "plugins_dir"
	KeyGitBin               = "git_bin"
	KeyGitTimeout           = "git_timeout"
	KeyListenAddr           = "listen_addr"
	KeyDisableYAMLManifests = "disable_yaml_manifests"
)

// Defaults for keys that are not set in the config file or environment.
const (
	DefaultGitBin     = "git"
	DefaultGitTimeout = 5 * time.Minute
	DefaultListenAddr = ":8080"
	pluginsDirName    = "plugins"
)

// Dir returns the path to the PlugHub config directory (~/.plughub/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.plughub/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyGitBin, DefaultGitBin)
	viper.SetDefault(KeyGitTimeout, DefaultGitTimeout.String())
	viper.SetDefault(KeyListenAddr, DefaultListenAddr)
	viper.SetDefault(KeyDisableYAMLManifests, false)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// PluginsDir returns the plugins root directory. It checks the
// plugins_dir key (file or PLUGHUB_PLUGINS_DIR env var) first, then
// falls back to ~/.plughub/plugins.
func PluginsDir() string {
	if v := viper.GetString(KeyPluginsDir); v != "" {
		return v
	}
	return filepath.Join(Dir(), pluginsDirName)
}

// GitBin returns the git executable to invoke for clone and checkout.
func GitBin() string {
	if v := viper.GetString(KeyGitBin); v != "" {
		return v
	}
	return DefaultGitBin
}

// GitTimeout returns the bound applied to each external git command.
func GitTimeout() time.Duration {
	if d := viper.GetDuration(KeyGitTimeout); d > 0 {
		return d
	}
	return DefaultGitTimeout
}

// ListenAddr returns the HTTP listen address for the serve command.
func ListenAddr() string {
	if v := viper.GetString(KeyListenAddr); v != "" {
		return v
	}
	return DefaultListenAddr
}

// YAMLManifestsDisabled reports whether YAML manifest parsing has been
// switched off for this deployment. Plugins that only carry a YAML
// manifest fail to load while this is set.
func YAMLManifestsDisabled() bool {
	return viper.GetBool(KeyDisableYAMLManifests)
}
