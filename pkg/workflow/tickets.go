package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// TicketInput holds the fields of a new ticket
type TicketInput struct {
	ProjectID   int    `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StatusID    *int   `json:"status_id,omitempty"`
	CreatedBy   string `json:"created_by"`
}

// Validate checks the required fields
func (in TicketInput) Validate() error {
	var missing []string
	if in.ProjectID <= 0 {
		missing = append(missing, "project_id")
	}
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.CreatedBy) == "" {
		missing = append(missing, "created_by")
	}
	if len(missing) > 0 {
		return invalidInput("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// TicketWithAssignment is a newly created ticket and its first assignee
type TicketWithAssignment struct {
	Ticket     *model.Ticket `json:"ticket"`
	AssigneeID string        `json:"assignee_id"`
}

// CreateTicket creates a ticket and assigns it in one unit of work. The
// assignee must already exist locally.
func (s *Service) CreateTicket(ctx context.Context, in TicketInput, assigneeID string) (*TicketWithAssignment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(assigneeID) == "" {
		return nil, invalidInput("assignee user_id is required")
	}

	ticket := &model.Ticket{
		ProjectID:   in.ProjectID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		StatusID:    in.StatusID,
		CreatedBy:   in.CreatedBy,
	}

	err := s.atomic(ctx, func(tx store.Tx) error {
		exists, err := tx.Users().UserExists(ctx, assigneeID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %q: %w", assigneeID, store.ErrNotFound)
		}
		if err := tx.Users().EnsureUser(ctx, in.CreatedBy); err != nil {
			return err
		}
		if err := tx.Tickets().CreateTicket(ctx, ticket); err != nil {
			return err
		}
		return tx.Tickets().AssignTicket(ctx, ticket.TicketID, assigneeID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.logger.Info("ticket created",
		zap.Int("ticket_id", ticket.TicketID),
		zap.Int("project_id", ticket.ProjectID),
		zap.String("assignee", assigneeID))
	return &TicketWithAssignment{Ticket: ticket, AssigneeID: assigneeID}, nil
}

// GetTicket returns a ticket by id
func (s *Service) GetTicket(ctx context.Context, ticketID int) (*model.Ticket, error) {
	return s.uow.Tickets().GetTicket(ctx, ticketID)
}

// ListTickets returns every ticket
func (s *Service) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	return s.uow.Tickets().ListTickets(ctx)
}

// ListTicketsByProject returns a project's tickets with their assignee
func (s *Service) ListTicketsByProject(ctx context.Context, projectID int) ([]store.TicketWithAssignee, error) {
	return s.uow.Tickets().ListTicketsByProject(ctx, projectID)
}

// ReassignTicket replaces the ticket's assignee. The ticket, the user and an
// existing assignment are all required.
func (s *Service) ReassignTicket(ctx context.Context, ticketID int, userID string) error {
	if ticketID <= 0 || strings.TrimSpace(userID) == "" {
		return invalidInput("ticket id and user_id are required")
	}

	err := s.atomic(ctx, func(tx store.Tx) error {
		if _, err := tx.Tickets().GetTicket(ctx, ticketID); err != nil {
			return err
		}
		exists, err := tx.Users().UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %q: %w", userID, store.ErrNotFound)
		}
		updated, err := tx.Tickets().ReassignTicket(ctx, ticketID, userID)
		if err != nil {
			return err
		}
		if updated == 0 {
			return fmt.Errorf("no assignment for ticket %d: %w", ticketID, store.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reassign ticket %d: %w", ticketID, err)
	}

	s.logger.Info("ticket reassigned", zap.Int("ticket_id", ticketID), zap.String("assignee", userID))
	return nil
}
