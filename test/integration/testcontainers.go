package integration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/config"
	"github.com/intellecta-dev/intellecta/pkg/db"
	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server"
	"github.com/intellecta-dev/intellecta/pkg/server/endpoints"
	"github.com/intellecta-dev/intellecta/pkg/server/middleware"
	gormstore "github.com/intellecta-dev/intellecta/pkg/server/store/gorm"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

const (
	testIssuer   = "https://intellecta.auth0.test/"
	testAudience = "https://api.intellecta.test"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	ServerURL   string
	DatabaseURL string
	HTTPClient  *http.Client
	IdP         *TestIdP
	Server      *server.Server

	auditMu  sync.Mutex
	auditLog *bytes.Buffer
}

// NewTestContext starts PostgreSQL in a container, migrates it and serves
// the API in-process on a free local port
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("intellecta_test"),
		tcpostgres.WithUsername("intellecta"),
		tcpostgres.WithPassword("intellecta"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(migrationsDir, connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	rawDB, err := database.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	idp, err := NewTestIdP()
	if err != nil {
		_ = rawDB.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	tc := &TestContext{
		DB:          database,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		IdP:         idp,
		auditLog:    &bytes.Buffer{},
	}

	if err := tc.startServer(); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to start server: %w", err)
	}
	if err := waitForServer(tc.ServerURL, 30*time.Second); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return tc, nil
}

// startServer wires the real store, workflow and JWT authenticator, the way
// the server command does, minus the directory and the assistant
func (tc *TestContext) startServer() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	cfg := &config.Config{
		DefaultMemberRole: model.RoleNameMember,
		UnitOfWorkTimeout: 10 * time.Second,
		APIListLimitMax:   100,
		Auth0Audience:     testAudience,
	}
	logger := zap.NewNop()

	svc := workflow.NewService(gormstore.NewStore(tc.DB), logger, workflow.Options{
		DefaultMemberRole: cfg.DefaultMemberRole.String(),
		UnitOfWorkTimeout: cfg.UnitOfWorkTimeout,
	})
	keys := middleware.NewKeySet(tc.IdP.JWKSURL(), nil)

	tc.Server = server.NewServer(server.Options{
		Config:      cfg,
		Workflow:    svc,
		HealthStore: gormstore.NewHealthStore(tc.DB),
		Auditor: audit.NewAuditor(audit.Options{
			Enabled: true,
			Writer:  &lockedWriter{mu: &tc.auditMu, w: tc.auditLog},
			Store:   audit.NewStore(tc.RawDB),
			Logger:  logger,
		}),
		Authenticator: middleware.NewJWTAuthenticator(keys, testIssuer, testAudience, logger),
		Logger:        logger,
		AccessLog:     io.Discard,
		Host:          "127.0.0.1",
		Port:          fmt.Sprintf("%d", port),
	})
	endpoints.RegisterAll(tc.Server)

	go func() {
		if err := tc.Server.Start(); err != nil {
			log.Printf("integration server stopped: %v", err)
		}
	}()

	tc.ServerURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	return nil
}

// AuditLog returns the syslog records written so far
func (tc *TestContext) AuditLog() string {
	tc.auditMu.Lock()
	defer tc.auditMu.Unlock()
	return tc.auditLog.String()
}

// Reset empties every table that scenarios write to. Seeded roles and
// statuses are kept.
func (tc *TestContext) Reset() error {
	tc.auditMu.Lock()
	tc.auditLog.Reset()
	tc.auditMu.Unlock()

	return tc.DB.Exec(`TRUNCATE ticket_assignments, tickets, project_users, user_roles, projects, users, messages RESTART IDENTITY CASCADE`).Error
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = tc.Server.Shutdown(shutdownCtx)
		cancel()
	}
	if tc.IdP != nil {
		tc.IdP.Close()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/api/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations applies every up migration with the same tool the CLI uses
func runMigrations(migrationsDir, dbURL string) error {
	m, err := migrate.New("file://"+migrationsDir, dbURL)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Printf("closing migrations: source=%v database=%v", srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
