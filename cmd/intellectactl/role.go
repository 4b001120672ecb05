package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intellecta-dev/intellecta/pkg/db"
)

// roleCmd represents the role command
var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Inspect the role catalog",
	Long:  `Inspect the project roles and ticket statuses seeded by the migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'role' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List project roles and ticket statuses",
	Long: `List the project roles and ticket statuses.

Example:
  intellectactl role list`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listRoles(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list roles: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleListCmd)
}

func listRoles(ctx context.Context) error {
	svc, database, err := newWorkflow()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	roles, err := svc.ListRoles(ctx)
	if err != nil {
		return err
	}
	statuses, err := svc.ListStatuses(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Roles:")
	for _, r := range roles {
		fmt.Printf("  %-4d %s\n", r.RoleID, r.Name)
	}
	fmt.Println("Statuses:")
	for _, s := range statuses {
		fmt.Printf("  %-4d %s\n", s.StatusID, s.Name)
	}
	return nil
}
