package store

import (
	"context"

	"github.com/intellecta-dev/intellecta/pkg/model"
)

// TicketWithAssignee is a ticket joined with its current assignee
type TicketWithAssignee struct {
	model.Ticket
	AssigneeID *string `gorm:"column:assignee_id" json:"assignee_id"`
}

// TicketsStore abstracts ticket storage operations
type TicketsStore interface {
	// CreateTicket inserts the ticket and fills in its generated fields.
	// Returns ErrNotFound if the project or status doesn't exist.
	CreateTicket(ctx context.Context, ticket *model.Ticket) error

	// AssignTicket records the first assignee of a ticket
	AssignTicket(ctx context.Context, ticketID int, userID string) error

	// ReassignTicket replaces the assignee and returns the number of
	// assignments updated
	ReassignTicket(ctx context.Context, ticketID int, userID string) (int64, error)

	// GetTicket retrieves a ticket by id.
	// Returns ErrNotFound if the ticket doesn't exist.
	GetTicket(ctx context.Context, ticketID int) (*model.Ticket, error)

	// ListTickets returns all tickets ordered by id
	ListTickets(ctx context.Context) ([]model.Ticket, error)

	// ListTicketsByProject returns the project's tickets with their assignee
	ListTicketsByProject(ctx context.Context, projectID int) ([]TicketWithAssignee, error)
}
