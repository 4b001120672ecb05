package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

func TestRegisterUser(t *testing.T) {
	svc, uow := newTestService(t)
	ctx := context.Background()

	uow.UsersStore.On("EnsureUser", mock.Anything, "auth0|alice").Return(nil).Once()
	assert.NoError(t, svc.RegisterUser(ctx, "auth0|alice"))

	uow.UsersStore.On("EnsureUser", mock.Anything, "auth0|bob").Return(store.ErrStoreUnavailable).Once()
	err := svc.RegisterUser(ctx, "auth0|bob")
	assert.True(t, errors.Is(err, store.ErrStoreUnavailable))

	err = svc.RegisterUser(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	uow.AssertExpectations(t)
}
