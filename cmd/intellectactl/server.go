package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/intellecta-dev/intellecta/pkg/assistant"
	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/auth0"
	"github.com/intellecta-dev/intellecta/pkg/config"
	"github.com/intellecta-dev/intellecta/pkg/db"
	"github.com/intellecta-dev/intellecta/pkg/logger"
	"github.com/intellecta-dev/intellecta/pkg/server"
	"github.com/intellecta-dev/intellecta/pkg/server/endpoints"
	"github.com/intellecta-dev/intellecta/pkg/server/middleware"
	gormstore "github.com/intellecta-dev/intellecta/pkg/server/store/gorm"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

const shutdownTimeout = 30 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "5000"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Intellecta application server",
	Long: `Run the Intellecta application server.

The server requires DATABASE_URL. Bearer authentication is enforced when
AUTH0_DOMAIN and AUTH0_AUDIENCE are set; without them protected routes
answer 503. The assistant endpoints need OPENAI_API_KEY.

By default, database migrations are run on startup. Use --no-migrate to skip.
SIGHUP, or a change to the config file when --watch-config is set, reloads
the configuration. Only log_level takes effect without a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		if err := runServer(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload the configuration when the config file changes")
	serverCmd.Flags().String("audit-log", os.Getenv("INTELLECTA_AUDIT_LOG"), `audit destination: "stdout" or a file path; empty disables audit`)
}

func runServer(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, level, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		log.Info("running database migrations")
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	database, err := connectDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	uow := gormstore.NewStore(database)
	svc := workflow.NewService(uow, log, workflow.Options{
		DefaultMemberRole: cfg.DefaultMemberRole.String(),
		UnitOfWorkTimeout: cfg.UnitOfWorkTimeout,
	})

	auditLog, _ := cmd.Flags().GetString("audit-log")
	auditor, closeAudit, err := newAuditor(auditLog, database, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	opts := server.Options{
		Config:      cfg,
		Workflow:    svc,
		HealthStore: gormstore.NewHealthStore(database),
		Auditor:     auditor,
		Logger:      log,
	}
	opts.Host, _ = cmd.Flags().GetString("bind-address")
	opts.Port, _ = cmd.Flags().GetString("port")

	// Interface fields are only set for configured dependencies so that the
	// endpoints see a nil interface, not a typed nil.
	if cfg.Auth0Domain != "" {
		client, err := auth0.NewClient(auth0.Config{
			Domain:             cfg.Auth0Domain,
			ClientID:           cfg.Auth0ClientID,
			ClientSecret:       cfg.Auth0ClientSecret,
			Audience:           cfg.Auth0Audience,
			ManagementAudience: cfg.ManagementAudience(),
			Logger:             log,
		})
		if err != nil {
			return err
		}
		opts.Directory = client
	} else {
		log.Warn("auth0_domain is not set; login, signup and user lookups are disabled")
	}

	if cfg.AuthEnabled() {
		keys := middleware.NewKeySet(cfg.Auth0JWKSURL(), nil)
		opts.Authenticator = middleware.NewJWTAuthenticator(keys, cfg.Auth0Issuer(), cfg.Auth0Audience, log)
	} else {
		log.Warn("auth0_domain or auth0_audience is not set; protected routes will answer 503")
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := newAssistant(cfg, database, log)
		if err != nil {
			return err
		}
		opts.Assistant = a
	} else {
		log.Warn("openai_api_key is not set; assistant endpoints are disabled")
	}

	s := server.NewServer(opts)
	endpoints.RegisterAll(s)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if watch, _ := cmd.Flags().GetBool("watch-config"); watch {
		if err := watchConfig(ctx, cfg.ConfigFilePath(), func() { reloadConfig(log, level) }, log); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				reloadConfig(log, level)
				continue
			}
			log.Info("shutting down", zap.String("signal", sig.String()))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err := s.Shutdown(shutdownCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			return <-errCh
		}
	}
}

func newAssistant(cfg *config.Config, database *gorm.DB, log *zap.Logger) (*assistant.Assistant, error) {
	client, err := assistant.NewClient(assistant.ClientConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.OpenAIChatModel,
		QueryModel:     cfg.OpenAIQueryModel,
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}
	vectors, err := assistant.NewVectorStore(database, cfg.KnowledgeBaseTable)
	if err != nil {
		return nil, err
	}
	return assistant.New(client, vectors, log), nil
}

// newAuditor builds the auditor for dest. Records are also saved to the
// messages table.
func newAuditor(dest string, database *gorm.DB, log *zap.Logger) (*audit.Auditor, func(), error) {
	if dest == "" {
		return audit.NewAuditor(audit.Options{Enabled: false}), func() {}, nil
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	var w io.Writer = os.Stdout
	closer := func() {}
	if dest != "stdout" {
		rotating := &lumberjack.Logger{Filename: dest, MaxSize: 100, MaxBackups: 10, Compress: true}
		w = rotating
		closer = func() { _ = rotating.Close() }
	}

	return audit.NewAuditor(audit.Options{
		Enabled: true,
		Writer:  w,
		Store:   audit.NewStore(sqlDB),
		Logger:  log,
	}), closer, nil
}

// reloadConfig reloads the global configuration and applies the log level
func reloadConfig(log *zap.Logger, level zap.AtomicLevel) {
	if err := config.Reload(); err != nil {
		log.Error("configuration reload failed", zap.Error(err))
		return
	}
	cfg := config.Get()
	level.SetLevel(logger.ParseLevel(cfg.LogLevel))
	log.Info("configuration reloaded", zap.String("log_level", cfg.LogLevel))
}

// watchConfig calls onChange whenever path is written or replaced. The
// directory is watched so that editors replacing the file are noticed.
func watchConfig(ctx context.Context, path string, onChange func(), log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("config directory does not exist; not watching", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	log.Info("watching configuration file", zap.String("path", path))
	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
