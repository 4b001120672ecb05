package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intellectactl",
	Short: "Run and administer the Intellecta server",
	Long: `Run and administer the Intellecta project management server.

Settings are read from $INTELLECTA_CONFIG_PATH/intellecta.yml and the
environment. A .env file in the working directory, or the file named by
--env-file, is loaded before any command runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to load; a missing file is ignored")
}

// loadEnvFile loads path without overriding variables already set
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
