package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/db"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect persisted audit records",
	Long:  `Inspect the audit records saved by a server started with --audit-log.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'audit' requires a subcommand (recent)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent audit records",
	Long: `Show the most recent audit records, newest first.

Example:
  intellectactl audit recent
  intellectactl audit recent --limit 100 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if err := showRecentAudit(cmd.Context(), limit, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read audit records: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditRecentCmd)
	auditRecentCmd.Flags().IntP("limit", "n", 20, "Number of records")
	auditRecentCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showRecentAudit(ctx context.Context, limit int, output string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, _, err := newLogger(cfg)
	if err != nil {
		return err
	}
	database, err := connectDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	messages, err := audit.NewStore(sqlDB).Recent(ctx, limit)
	if err != nil {
		return err
	}

	if output == "json" {
		return printJSON(messages)
	}
	for _, m := range messages {
		fmt.Printf("%s %-8s %s\n", m.Timestamp.Format("2006-01-02T15:04:05Z07:00"), m.Msgid, m.Message)
	}
	return nil
}
