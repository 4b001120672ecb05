package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

func TestMapError(t *testing.T) {
	plain := errors.New("syntax error")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, store.ErrNotFound},
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"pgconn unique violation", &pgconn.PgError{Code: "23505"}, store.ErrAlreadyExists},
		{"pq unique violation", &pq.Error{Code: "23505"}, store.ErrAlreadyExists},
		{"pgconn foreign key violation", &pgconn.PgError{Code: "23503"}, store.ErrNotFound},
		{"pq foreign key violation", &pq.Error{Code: "23503"}, store.ErrNotFound},
		{"connection failure", &pgconn.PgError{Code: "08006"}, store.ErrStoreUnavailable},
		{"admin shutdown", &pq.Error{Code: "57P01"}, store.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, store.ErrStoreUnavailable},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), store.ErrStoreUnavailable},
		{"canceled", context.Canceled, store.ErrStoreUnavailable},
		{"already mapped", store.ErrAlreadyExists, store.ErrAlreadyExists},
		{"unknown", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, mapError(nil))
}
