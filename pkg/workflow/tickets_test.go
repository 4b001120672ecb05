package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

func TestCreateTicket(t *testing.T) {
	svc, uow := newTestService(t)
	status := 1

	uow.UsersStore.On("UserExists", mock.Anything, "auth0|bob").Return(true, nil)
	uow.UsersStore.On("EnsureUser", mock.Anything, "auth0|alice").Return(nil)
	uow.TicketsStore.On("CreateTicket", mock.Anything, mock.AnythingOfType("*model.Ticket")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Ticket).TicketID = 11
		}).
		Return(nil)
	uow.TicketsStore.On("AssignTicket", mock.Anything, 11, "auth0|bob").Return(nil)

	created, err := svc.CreateTicket(context.Background(), TicketInput{
		ProjectID: 7,
		Name:      "Login page",
		StatusID:  &status,
		CreatedBy: "auth0|alice",
	}, "auth0|bob")
	require.NoError(t, err)
	assert.Equal(t, 11, created.Ticket.TicketID)
	assert.Equal(t, "auth0|bob", created.AssigneeID)
	assert.Equal(t, 1, uow.Commits)
	uow.AssertExpectations(t)
}

func TestCreateTicket_UnknownAssignee(t *testing.T) {
	svc, uow := newTestService(t)
	uow.UsersStore.On("UserExists", mock.Anything, "ghost").Return(false, nil)

	_, err := svc.CreateTicket(context.Background(), TicketInput{ProjectID: 7, Name: "Login", CreatedBy: "u1"}, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
	uow.TicketsStore.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestCreateTicket_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateTicket(context.Background(), TicketInput{Name: "Login", CreatedBy: "u1"}, "u2")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateTicket(context.Background(), TicketInput{ProjectID: 7, Name: "Login", CreatedBy: "u1"}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReassignTicket(t *testing.T) {
	svc, uow := newTestService(t)

	uow.TicketsStore.On("GetTicket", mock.Anything, 11).Return(&model.Ticket{TicketID: 11}, nil)
	uow.UsersStore.On("UserExists", mock.Anything, "u3").Return(true, nil)
	uow.TicketsStore.On("ReassignTicket", mock.Anything, 11, "u3").Return(int64(1), nil)

	require.NoError(t, svc.ReassignTicket(context.Background(), 11, "u3"))
	uow.AssertExpectations(t)
}

func TestReassignTicket_NoAssignment(t *testing.T) {
	svc, uow := newTestService(t)

	uow.TicketsStore.On("GetTicket", mock.Anything, 11).Return(&model.Ticket{TicketID: 11}, nil)
	uow.UsersStore.On("UserExists", mock.Anything, "u3").Return(true, nil)
	uow.TicketsStore.On("ReassignTicket", mock.Anything, 11, "u3").Return(int64(0), nil)

	err := svc.ReassignTicket(context.Background(), 11, "u3")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 1, uow.Rollbacks)
}

func TestReassignTicket_TicketMissing(t *testing.T) {
	svc, uow := newTestService(t)
	uow.TicketsStore.On("GetTicket", mock.Anything, 99).Return(nil, store.ErrNotFound)

	err := svc.ReassignTicket(context.Background(), 99, "u3")
	assert.ErrorIs(t, err, store.ErrNotFound)
	uow.UsersStore.AssertNotCalled(t, "UserExists", mock.Anything, mock.Anything)
}
