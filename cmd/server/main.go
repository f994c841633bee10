// cmd/server/main.go
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Multiplayer Monopoly game server",
	Long: `Runs Monopoly game sessions over websockets and an HTTP lobby API.
Settings come from the environment (a .env file is loaded automatically)
or from a YAML file passed with --config.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
