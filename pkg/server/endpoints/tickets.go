package endpoints

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/server"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

// CreateTicketRequest is the body of POST /tickets. CreatedBy defaults to
// the caller.
type CreateTicketRequest struct {
	workflow.TicketInput
	UserID string `json:"user_id"`
}

// ReassignRequest is the body of PUT /tickets/{ticketId}/assign
type ReassignRequest struct {
	UserID string `json:"user_id"`
}

// RegisterTicketsEndpoints registers the ticket endpoints
func RegisterTicketsEndpoints(s *server.Server) {
	ticketsRouter := s.API.PathPrefix("/tickets").Subrouter()
	ticketsRouter.Use(mux.MiddlewareFunc(s.Protect))

	ticketsRouter.HandleFunc("", handleCreateTicket(s)).Methods("POST")
	ticketsRouter.HandleFunc("", handleListTickets(s)).Methods("GET")
	ticketsRouter.HandleFunc("/project/{projectId:[0-9]+}", handleTicketsByProject(s)).Methods("GET")
	ticketsRouter.HandleFunc("/{ticketId:[0-9]+}", handleGetTicket(s)).Methods("GET")
	ticketsRouter.HandleFunc("/{ticketId:[0-9]+}/assign", handleReassignTicket(s)).Methods("PUT")
}

func handleCreateTicket(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTicketRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}

		who := caller(r)
		if strings.TrimSpace(req.CreatedBy) == "" {
			req.CreatedBy = who.UserID
		}

		created, err := s.Workflow.CreateTicket(r.Context(), req.TicketInput, req.UserID)
		event := audit.TicketAssignEvent{
			UserID:       who.UserID,
			ClientIP:     who.ClientIP(),
			AssigneeID:   req.UserID,
			Operation:    "create",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		}
		if created != nil {
			event.TicketID = created.Ticket.TicketID
		}
		s.Auditor.Log(r.Context(), event)

		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleListTickets(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parsePage(r, s.Config.APIListLimitMax)
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		tickets, err := s.Workflow.ListTickets(r.Context())
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, paginate(tickets, p))
	}
}

func handleGetTicket(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := pathInt(r, "ticketId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		ticket, err := s.Workflow.GetTicket(r.Context(), ticketID)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, ticket)
	}
}

func handleTicketsByProject(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathInt(r, "projectId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		tickets, err := s.Workflow.ListTicketsByProject(r.Context(), projectID)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, tickets)
	}
}

func handleReassignTicket(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := pathInt(r, "ticketId")
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		var req ReassignRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}

		err = s.Workflow.ReassignTicket(r.Context(), ticketID, req.UserID)
		who := caller(r)
		s.Auditor.Log(r.Context(), audit.TicketAssignEvent{
			UserID:       who.UserID,
			ClientIP:     who.ClientIP(),
			TicketID:     ticketID,
			AssigneeID:   req.UserID,
			Operation:    "reassign",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})

		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"ticket_id": ticketID,
			"user_id":   req.UserID,
			"message":   "Ticket reassigned",
		})
	}
}
