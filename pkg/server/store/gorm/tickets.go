package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// Ensure TicketsStore implements store.TicketsStore
var _ store.TicketsStore = (*TicketsStore)(nil)

// TicketsStore implements store.TicketsStore using GORM
type TicketsStore struct {
	db *gorm.DB
}

// NewTicketsStore creates a new TicketsStore
func NewTicketsStore(db *gorm.DB) *TicketsStore {
	return &TicketsStore{db: db}
}

// CreateTicket inserts the ticket and fills in its generated fields
func (s *TicketsStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO tickets (project_id, name, description, status_id, created_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ticket_id, created_at
	`, ticket.ProjectID, ticket.Name, ticket.Description, ticket.StatusID, ticket.CreatedBy).
		Row().Scan(&ticket.TicketID, &ticket.CreatedAt)
	return mapError(err)
}

// AssignTicket records the first assignee of a ticket
func (s *TicketsStore) AssignTicket(ctx context.Context, ticketID int, userID string) error {
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO ticket_assignments (ticket_id, user_id) VALUES (?, ?)`,
		ticketID, userID,
	).Error
	return mapError(err)
}

// ReassignTicket replaces the assignee and returns the number of assignments updated
func (s *TicketsStore) ReassignTicket(ctx context.Context, ticketID int, userID string) (int64, error) {
	tx := s.db.WithContext(ctx).Exec(
		`UPDATE ticket_assignments SET user_id = ?, assigned_at = now() WHERE ticket_id = ?`,
		userID, ticketID,
	)
	if tx.Error != nil {
		return 0, mapError(tx.Error)
	}
	return tx.RowsAffected, nil
}

// GetTicket retrieves a ticket by id
func (s *TicketsStore) GetTicket(ctx context.Context, ticketID int) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := s.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Take(&ticket).Error; err != nil {
		return nil, mapError(err)
	}
	return &ticket, nil
}

// ListTickets returns all tickets ordered by id
func (s *TicketsStore) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	tickets := []model.Ticket{}
	if err := s.db.WithContext(ctx).Order("ticket_id").Find(&tickets).Error; err != nil {
		return nil, mapError(err)
	}
	return tickets, nil
}

// ListTicketsByProject returns the project's tickets with their assignee
func (s *TicketsStore) ListTicketsByProject(ctx context.Context, projectID int) ([]store.TicketWithAssignee, error) {
	tickets := []store.TicketWithAssignee{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT t.ticket_id, t.project_id, t.name, t.description, t.status_id, t.created_by, t.created_at,
		       a.user_id AS assignee_id
		FROM tickets t
		LEFT JOIN ticket_assignments a ON a.ticket_id = t.ticket_id
		WHERE t.project_id = ?
		ORDER BY t.ticket_id
	`, projectID).Scan(&tickets).Error
	if err != nil {
		return nil, mapError(err)
	}
	return tickets, nil
}
