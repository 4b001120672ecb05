package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"
)

// configurationApplyCmd represents the configuration apply command
var configurationApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Validate the configuration and signal the server to reload it",
	Long: `Validate the current state of the configuration file and then send SIGHUP
to the running server so it reloads the configuration.

Changes to environment variables are NOT picked up because process
environments are static once a process has started.

Use --test to validate configuration without signalling.

Example:
  intellectactl configuration apply
  intellectactl configuration apply --test`,
	Run: func(cmd *cobra.Command, args []string) {
		testMode, _ := cmd.Flags().GetBool("test")

		if err := applyConfiguration(testMode); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationApplyCmd)
	configurationApplyCmd.Flags().Bool("test", false, "Validate configuration without signalling the server")
}

func applyConfiguration(testMode bool) error {
	fmt.Println("Validating configuration...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Config file: %s\n", cfg.ConfigFilePath())

	if os.Getenv("DATABASE_URL") == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	fmt.Println("Configuration is valid.")

	if testMode {
		fmt.Println("Test mode: not signalling server.")
		return nil
	}

	output, err := exec.Command("pgrep", "-f", "intellectactl server").Output()
	if err != nil {
		return fmt.Errorf("no running intellectactl server found")
	}

	var pid int
	if _, err := fmt.Sscanf(string(output), "%d", &pid); err != nil {
		return fmt.Errorf("failed to parse PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGHUP); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	fmt.Printf("Sent reload signal to process %d\n", pid)
	return nil
}
