package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/intellecta-dev/intellecta/pkg/db"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects and their members",
	Long:  `Create projects, add members and list projects directly against the database.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'project' requires a subcommand (create, add-users, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project owned by a user",
	Long: `Create a project. The owner is granted the admin role and added as a
member in the same transaction.

Example:
  intellectactl project create --name Apollo --key APOLLO --owner 'auth0|alice'`,
	Run: func(cmd *cobra.Command, args []string) {
		in := workflow.CreateProjectInput{}
		in.Name, _ = cmd.Flags().GetString("name")
		in.ProjectKey, _ = cmd.Flags().GetString("key")
		in.Description, _ = cmd.Flags().GetString("description")
		in.OwnerUserID, _ = cmd.Flags().GetString("owner")

		if err := createProject(cmd.Context(), in); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create project: %v\n", err)
			os.Exit(1)
		}
	},
}

var projectAddUsersCmd = &cobra.Command{
	Use:   "add-users <project_id> <user_id>...",
	Short: "Add users to a project with the default member role",
	Long: `Add users to a project with the configured default member role. Users
already holding a role or membership in the project are skipped.

Example:
  intellectactl project add-users 1 'auth0|bob'
  intellectactl project add-users 1 'auth0|bob' 'auth0|carol'`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		projectID, err := strconv.Atoi(args[0])
		if err != nil || projectID <= 0 {
			fmt.Fprintf(os.Stderr, "Invalid project id: %s\n", args[0])
			os.Exit(1)
		}

		if err := addUsers(cmd.Context(), projectID, args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add users: %v\n", err)
			os.Exit(1)
		}
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List all projects, or the projects a user holds a role in.

Example:
  intellectactl project list
  intellectactl project list --user 'auth0|alice'`,
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetString("user")

		if err := listProjects(cmd.Context(), userID); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list projects: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectAddUsersCmd)
	projectCmd.AddCommand(projectListCmd)

	projectCreateCmd.Flags().String("name", "", "project name")
	projectCreateCmd.Flags().String("key", "", "unique project key")
	projectCreateCmd.Flags().String("description", "", "project description")
	projectCreateCmd.Flags().String("owner", "", "owner user id")
	_ = projectCreateCmd.MarkFlagRequired("name")
	_ = projectCreateCmd.MarkFlagRequired("key")
	_ = projectCreateCmd.MarkFlagRequired("owner")

	projectListCmd.Flags().String("user", "", "only list projects this user holds a role in")
}

func createProject(ctx context.Context, in workflow.CreateProjectInput) error {
	svc, database, err := newWorkflow()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	project, err := svc.CreateProject(ctx, in)
	if err != nil {
		return err
	}
	return printJSON(project)
}

func addUsers(ctx context.Context, projectID int, userIDs []string) error {
	svc, database, err := newWorkflow()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	if len(userIDs) == 1 {
		result, err := svc.AddUserToProject(ctx, projectID, userIDs[0])
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	result, err := svc.AddUsersToProject(ctx, userIDs, projectID)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func listProjects(ctx context.Context, userID string) error {
	svc, database, err := newWorkflow()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()

	if userID != "" {
		projects, err := svc.ListProjectsForUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, p := range projects {
			fmt.Printf("%-6d %-12s role=%-3d %s\n", p.ProjectID, p.ProjectKey, p.RoleID, p.Name)
		}
		return nil
	}

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Printf("%-6d %-12s %s\n", p.ProjectID, p.ProjectKey, p.Name)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
