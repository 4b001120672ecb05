package gorm

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/server/store"
)

// PostgreSQL SQLSTATE codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	connectionException = "08"
	adminShutdown       = "57P01"
)

// mapError translates driver and GORM errors into store sentinels. The
// original error stays in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrAlreadyExists) || errors.Is(err, store.ErrStoreUnavailable) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	if code := sqlState(err); code != "" {
		switch {
		case code == uniqueViolation:
			return fmt.Errorf("%w: %w", store.ErrAlreadyExists, err)
		case code == foreignKeyViolation:
			return fmt.Errorf("%w: %w", store.ErrNotFound, err)
		case strings.HasPrefix(code, connectionException), code == adminShutdown:
			return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	return err
}

// sqlState extracts the SQLSTATE from either driver's error type
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
