// Package store provides storage abstractions for the Intellecta server.
//
// This package defines interfaces for database operations, allowing the
// workflow and endpoint layers to be decoupled from the specific database
// implementation. This enables easier testing with mocks.
//
// # Available Stores
//
//   - UsersStore: Local user rows keyed by identity provider subject
//   - RolesStore: Role catalog (name to id) and ticket statuses
//   - ProjectsStore: Project rows
//   - MembershipsStore: Role grants and project memberships
//   - TicketsStore: Tickets and their assignments
//   - HealthStore: Database connectivity
//
// Multi-step writes run inside a UnitOfWork:
//
//	err := uow.Atomic(ctx, func(tx store.Tx) error {
//	    if err := tx.Projects().CreateProject(ctx, project); err != nil {
//	        return err
//	    }
//	    return tx.Memberships().CreateGrant(ctx, grant)
//	})
//	if errors.Is(err, store.ErrAlreadyExists) {
//	    // Handle duplicate
//	}
package store
