package audit

import (
	"fmt"
	"strings"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

func withError(msg, errorMessage string) string {
	if errorMessage != "" {
		msg += ": " + errorMessage
	}
	return msg
}

// LoginEvent represents a password login through the identity provider
type LoginEvent struct {
	Email        string
	UserID       string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "authn"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully logged in", e.Email)
	}
	return withError(fmt.Sprintf("%s failed to log in", e.Email), e.ErrorMessage)
}

func (e LoginEvent) Severity() Severity {
	return severity(e.Success)
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"email": e.Email,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "login",
			"result":    result(e.Success),
		},
	}
	if e.UserID != "" {
		sd[SDIDAuth]["user"] = e.UserID
	}
	return sd
}

// ProjectCreateEvent represents the creation of a project with its owner
type ProjectCreateEvent struct {
	UserID       string
	ClientIP     string
	ProjectID    int
	ProjectKey   string
	Success      bool
	ErrorMessage string
}

func (e ProjectCreateEvent) MessageID() string {
	return "project"
}

func (e ProjectCreateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s created project %d (%s)", e.UserID, e.ProjectID, e.ProjectKey)
	}
	return withError(fmt.Sprintf("%s tried to create project %s", e.UserID, e.ProjectKey), e.ErrorMessage)
}

func (e ProjectCreateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e ProjectCreateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ProjectCreateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"project_key": e.ProjectKey,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "create-project",
			"result":    result(e.Success),
		},
	}
	if e.ProjectID != 0 {
		sd[SDIDSubject]["project"] = fmt.Sprint(e.ProjectID)
	}
	return sd
}

// MemberAddEvent represents granting users a role in a project
type MemberAddEvent struct {
	UserID       string
	ClientIP     string
	ProjectID    int
	Role         string
	Added        []string
	Skipped      []string
	Success      bool
	ErrorMessage string
}

func (e MemberAddEvent) MessageID() string {
	return "members"
}

func (e MemberAddEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s added %d user(s) to project %d as %s (%d skipped)",
			e.UserID, len(e.Added), e.ProjectID, e.Role, len(e.Skipped))
	}
	return withError(fmt.Sprintf("%s tried to add users to project %d", e.UserID, e.ProjectID), e.ErrorMessage)
}

func (e MemberAddEvent) Severity() Severity {
	return severity(e.Success)
}

func (e MemberAddEvent) Facility() int {
	return FacilityAuthPriv
}

func (e MemberAddEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"project": fmt.Sprint(e.ProjectID),
			"role":    e.Role,
			"added":   strings.Join(e.Added, ","),
			"skipped": strings.Join(e.Skipped, ","),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "add-members",
			"result":    result(e.Success),
		},
	}
}

// TicketAssignEvent represents creating or reassigning a ticket
type TicketAssignEvent struct {
	UserID       string
	ClientIP     string
	TicketID     int
	AssigneeID   string
	Operation    string // "create", "reassign"
	Success      bool
	ErrorMessage string
}

func (e TicketAssignEvent) MessageID() string {
	return "ticket"
}

func (e TicketAssignEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s assigned ticket %d to %s (%s)", e.UserID, e.TicketID, e.AssigneeID, e.Operation)
	}
	return withError(fmt.Sprintf("%s tried to %s ticket %d", e.UserID, e.Operation, e.TicketID), e.ErrorMessage)
}

func (e TicketAssignEvent) Severity() Severity {
	return severity(e.Success)
}

func (e TicketAssignEvent) Facility() int {
	return FacilityAuthPriv
}

func (e TicketAssignEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"ticket":   fmt.Sprint(e.TicketID),
			"assignee": e.AssigneeID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation + "-ticket",
			"result":    result(e.Success),
		},
	}
}
