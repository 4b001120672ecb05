package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/config"
	"github.com/intellecta-dev/intellecta/pkg/db"
	"github.com/intellecta-dev/intellecta/pkg/logger"
	gormstore "github.com/intellecta-dev/intellecta/pkg/server/store/gorm"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

// loadConfig loads and validates the configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. The returned level can be changed
// while the logger is in use.
func newLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(logger.ParseLevel(cfg.LogLevel))
	log, err := logger.New(logger.Options{File: cfg.LogFile, AtomicLevel: &level})
	if err != nil {
		return nil, level, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, level, nil
}

func connectDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	return db.Connect(db.Config{
		Logger: log,
		Debug:  logger.ParseLevel(cfg.LogLevel) == zap.DebugLevel,
	})
}

// newWorkflow connects to the database and builds the workflow service
// used by the administrative commands
func newWorkflow() (*workflow.Service, *gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, _, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	database, err := connectDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	svc := workflow.NewService(gormstore.NewStore(database), log, workflow.Options{
		DefaultMemberRole: cfg.DefaultMemberRole.String(),
		UnitOfWorkTimeout: cfg.UnitOfWorkTimeout,
	})
	return svc, database, nil
}
