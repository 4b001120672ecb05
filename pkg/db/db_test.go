package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConnect_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Connect(Config{})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intellecta")
	assert.Equal(t, "postgres://localhost/intellecta", URL())
}

func TestNewGormLogger(t *testing.T) {
	assert.NotNil(t, newGormLogger(Config{}))
	assert.NotNil(t, newGormLogger(Config{Debug: true}))
	assert.NotNil(t, newGormLogger(Config{Debug: true, Logger: zap.NewNop()}))
}
