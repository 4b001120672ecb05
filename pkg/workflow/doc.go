// Package workflow implements the project membership workflow.
//
// A Service creates projects together with the owner's admin grant and
// membership, adds users to projects one at a time or in bulk, and lists the
// projects a user holds a role in. Every multi-step write runs inside a
// single store.UnitOfWork transaction bounded by Options.UnitOfWorkTimeout.
//
// Tickets are handled by the same Service: a ticket is created together with
// its first assignment, and reassignment replaces the assignee.
//
// # Usage
//
//	svc := workflow.NewService(gormstore.NewStore(db), logger, workflow.Options{
//	    DefaultMemberRole: "member",
//	})
//	project, err := svc.CreateProject(ctx, workflow.CreateProjectInput{
//	    Name:        "Apollo",
//	    ProjectKey:  "APL",
//	    OwnerUserID: "auth0|123",
//	})
//	result, err := svc.AddUserToProject(ctx, project.ProjectID, "auth0|456")
//	if err == nil && !result.Added {
//	    // Already in the project
//	}
package workflow
