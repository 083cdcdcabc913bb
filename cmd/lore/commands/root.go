package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/config"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lore",
	Short: "Lore - Hierarchical skill memory for AI coding agents",
	Long: `Lore gives AI coding agents a persistent, hierarchical memory of
learned skills. Skills are detected from completed sessions, routed into
universal, language, framework or project scopes, injected into new
sessions that match, and promoted upward as they prove themselves.

Lore runs alongside an OpenCode server and learns from its session
lifecycle events.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to lore.yml (default: ~/.config/lore/lore.yml)")
}

// loadConfig resolves the --config flag and loads the configuration.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}
