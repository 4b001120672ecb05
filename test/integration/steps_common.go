package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	projectIDs   map[string]int
	lastTicket   int
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		projectIDs: make(map[string]int),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^an Intellecta server is running$`, s.anIntellectaServerIsRunning)
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I am authenticated as "([^"]*)" with an expired token$`, s.iAmAuthenticatedWithExpiredToken)
	sc.Step(`^I am not authenticated$`, s.iAmNotAuthenticated)
	sc.Step(`^a user "([^"]*)" exists$`, s.aUserExists)

	// Project steps
	sc.Step(`^I create a project "([^"]*)" with key "([^"]*)"$`, s.iCreateProject)
	sc.Step(`^a project "([^"]*)" with key "([^"]*)" exists$`, s.aProjectExists)
	sc.Step(`^I add user "([^"]*)" to project "([^"]*)"$`, s.iAddUserToProject)
	sc.Step(`^I bulk add users "([^"]*)" to project "([^"]*)"$`, s.iBulkAddUsersToProject)
	sc.Step(`^I list the users of project "([^"]*)"$`, s.iListProjectUsers)
	sc.Step(`^I list the projects of user "([^"]*)"$`, s.iListProjectsOfUser)
	sc.Step(`^I request "([^"]*)"$`, s.iRequest)

	// Ticket steps
	sc.Step(`^I create a ticket "([^"]*)" in project "([^"]*)" assigned to "([^"]*)"$`, s.iCreateTicket)
	sc.Step(`^I reassign the ticket to "([^"]*)"$`, s.iReassignTicket)
	sc.Step(`^the ticket should be assigned to "([^"]*)"$`, s.theTicketShouldBeAssignedTo)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response should list (\d+) items?$`, s.theResponseShouldListItems)

	// Database assertions
	sc.Step(`^user "([^"]*)" should hold role "([^"]*)" in project "([^"]*)"$`, s.userShouldHoldRole)
	sc.Step(`^project "([^"]*)" should have (\d+) members?$`, s.projectShouldHaveMembers)
	sc.Step(`^the audit log should contain "([^"]*)"$`, s.theAuditLogShouldContain)
	sc.Step(`^(\d+) audit messages? should be stored$`, s.auditMessagesShouldBeStored)
}

// Background steps

func (s *StepsContext) anIntellectaServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) iAmAuthenticatedAs(subject string) error {
	token, err := s.tc.IdP.Token(subject)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iAmAuthenticatedWithExpiredToken(subject string) error {
	token, err := s.tc.IdP.ExpiredToken(subject)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iAmNotAuthenticated() error {
	s.authToken = ""
	return nil
}

func (s *StepsContext) aUserExists(userID string) error {
	return s.tc.DB.Exec(`INSERT INTO users (user_id) VALUES (?) ON CONFLICT DO NOTHING`, userID).Error
}

// Project steps

func (s *StepsContext) iCreateProject(name, key string) error {
	if err := s.do("POST", "/api/projects", map[string]string{
		"name":        name,
		"project_key": key,
		"description": "Created by " + name + " scenario",
	}); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return nil
	}

	var project struct {
		ProjectID int `json:"project_id"`
	}
	if err := json.Unmarshal(s.responseBody, &project); err != nil {
		return fmt.Errorf("failed to parse project: %w", err)
	}
	s.projectIDs[name] = project.ProjectID
	return nil
}

func (s *StepsContext) aProjectExists(name, key string) error {
	if err := s.iCreateProject(name, key); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusCreated)
}

func (s *StepsContext) iAddUserToProject(userID, project string) error {
	id, err := s.projectID(project)
	if err != nil {
		return err
	}
	return s.do("POST", fmt.Sprintf("/api/projects/%d/users", id), map[string]string{"user_id": userID})
}

func (s *StepsContext) iBulkAddUsersToProject(userIDs, project string) error {
	id, err := s.projectID(project)
	if err != nil {
		return err
	}
	var ids []string
	for _, u := range strings.Split(userIDs, ",") {
		ids = append(ids, strings.TrimSpace(u))
	}
	return s.do("POST", fmt.Sprintf("/api/projects/%d/users/bulk", id), map[string][]string{"user_ids": ids})
}

func (s *StepsContext) iListProjectUsers(project string) error {
	id, err := s.projectID(project)
	if err != nil {
		return err
	}
	return s.do("GET", fmt.Sprintf("/api/projects/%d/users", id), nil)
}

func (s *StepsContext) iListProjectsOfUser(userID string) error {
	return s.do("GET", "/api/projects/user/"+userID, nil)
}

func (s *StepsContext) iRequest(path string) error {
	return s.do("GET", path, nil)
}

// Ticket steps

func (s *StepsContext) iCreateTicket(name, project, assignee string) error {
	id, err := s.projectID(project)
	if err != nil {
		return err
	}
	if err := s.do("POST", "/api/tickets", map[string]interface{}{
		"project_id": id,
		"name":       name,
		"user_id":    assignee,
	}); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return nil
	}

	var created struct {
		Ticket struct {
			TicketID int `json:"ticket_id"`
		} `json:"ticket"`
	}
	if err := json.Unmarshal(s.responseBody, &created); err != nil {
		return fmt.Errorf("failed to parse ticket: %w", err)
	}
	s.lastTicket = created.Ticket.TicketID
	return nil
}

func (s *StepsContext) iReassignTicket(userID string) error {
	if s.lastTicket == 0 {
		return fmt.Errorf("no ticket was created in this scenario")
	}
	return s.do("PUT", fmt.Sprintf("/api/tickets/%d/assign", s.lastTicket), map[string]string{"user_id": userID})
}

func (s *StepsContext) theTicketShouldBeAssignedTo(userID string) error {
	var assignee string
	if err := s.tc.DB.Raw(`SELECT user_id FROM ticket_assignments WHERE ticket_id = ?`, s.lastTicket).Scan(&assignee).Error; err != nil {
		return err
	}
	if assignee != userID {
		return fmt.Errorf("expected ticket %d to be assigned to %q, got %q", s.lastTicket, userID, assignee)
	}
	return nil
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response == nil {
		return fmt.Errorf("no request was made")
	}
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	value, ok := body[field]
	if !ok {
		return fmt.Errorf("field %q not found in %s", field, string(s.responseBody))
	}
	if actual := fmt.Sprint(value); actual != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseShouldListItems(count int) error {
	var items []json.RawMessage
	if err := json.Unmarshal(s.responseBody, &items); err != nil {
		return fmt.Errorf("expected a JSON array: %w", err)
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items, got %d: %s", count, len(items), string(s.responseBody))
	}
	return nil
}

// Database assertions

func (s *StepsContext) userShouldHoldRole(userID, role, project string) error {
	id, err := s.projectID(project)
	if err != nil {
		return err
	}
	var names []string
	if err := s.tc.DB.Raw(`
		SELECT r.name FROM user_roles ur
		JOIN roles r ON r.role_id = ur.role_id
		WHERE ur.user_id = ? AND ur.project_id = ?
	`, userID, id).Scan(&names).Error; err != nil {
		return err
	}
	if len(names) != 1 || names[0] != role {
		return fmt.Errorf("expected %s to hold %q in project %d, got %v", userID, role, id, names)
	}
	return nil
}

func (s *StepsContext) projectShouldHaveMembers(project string, count int) error {
	id, err := s.projectID(project)
	if err != nil {
		return err
	}
	var members int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM project_users WHERE project_id = ?`, id).Scan(&members).Error; err != nil {
		return err
	}
	if int(members) != count {
		return fmt.Errorf("expected project %d to have %d members, got %d", id, count, members)
	}
	return nil
}

func (s *StepsContext) theAuditLogShouldContain(text string) error {
	if !strings.Contains(s.tc.AuditLog(), text) {
		return fmt.Errorf("audit log does not contain %q:\n%s", text, s.tc.AuditLog())
	}
	return nil
}

func (s *StepsContext) auditMessagesShouldBeStored(count int) error {
	var stored int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM messages`).Scan(&stored).Error; err != nil {
		return err
	}
	if int(stored) != count {
		return fmt.Errorf("expected %d stored audit messages, got %d", count, stored)
	}
	return nil
}

// projectID resolves a project by the name it was created with. Unknown
// names resolve to an id that no project has.
func (s *StepsContext) projectID(name string) (int, error) {
	if id, ok := s.projectIDs[name]; ok {
		return id, nil
	}
	if name == "missing" {
		return 999999, nil
	}
	return 0, fmt.Errorf("project %q was not created in this scenario", name)
}

// do sends a JSON request, with the bearer token when one is set
func (s *StepsContext) do(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}
