package store

import "context"

// Tx exposes the stores bound to one database session
type Tx interface {
	Users() UsersStore
	Roles() RolesStore
	Projects() ProjectsStore
	Memberships() MembershipsStore
	Tickets() TicketsStore
}

// UnitOfWork runs multi-step writes atomically. The stores it exposes
// directly run outside any transaction.
type UnitOfWork interface {
	Tx

	// Atomic runs fn inside a single transaction. Any error returned by fn
	// rolls the transaction back and is returned unchanged.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}
