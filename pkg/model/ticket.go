package model

import "time"

// Ticket is a work item within a project
type Ticket struct {
	TicketID    int       `gorm:"column:ticket_id;primaryKey;autoIncrement" json:"ticket_id"`
	ProjectID   int       `gorm:"column:project_id;not null;index" json:"project_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	StatusID    *int      `gorm:"column:status_id" json:"status_id"`
	CreatedBy   string    `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// TicketAssignment holds the current assignee of a ticket. Reassignment
// replaces the row's user_id.
type TicketAssignment struct {
	TicketID   int       `gorm:"column:ticket_id;primaryKey" json:"ticket_id"`
	UserID     string    `gorm:"column:user_id;not null" json:"user_id"`
	AssignedAt time.Time `gorm:"column:assigned_at;autoUpdateTime" json:"assigned_at"`
}

func (TicketAssignment) TableName() string {
	return "ticket_assignments"
}
