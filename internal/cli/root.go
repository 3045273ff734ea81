// Package cli implements the panel command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"botpanel/internal/conf"
)

var (
	configPath string
	envFile    string
	flagURL    string
	flagToken  string
)

var rootCmd = &cobra.Command{
	Use:   "panel",
	Short: "Live metrics panel for OneBot robots",
	Long: `panel serves the robot's metrics backend and watches it from a terminal.

  panel serve           Start the socket.io backend and HTTP API
  panel watch           Open the live dashboard
  panel token add NAME  Create an access token`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "panel.toml", "config file, created when missing")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file read before flags")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "panel base URL (overrides config and PANEL_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "access token (overrides config and PANEL_TOKEN)")
}

// loadConfig applies config file, dotenv and flags in that order.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := conf.LoadConfig(configPath); err != nil {
		return err
	}
	if err := conf.LoadEnv(envFile); err != nil {
		return err
	}
	if flagURL != "" || flagToken != "" {
		c := conf.Read()
		if flagURL != "" {
			c.Client.URL = flagURL
		}
		if flagToken != "" {
			c.Client.Token = flagToken
		}
		conf.Set(c)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		os.Exit(1)
	}
}
