package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gbit-go/internal/config"
	"gbit-go/internal/database"
	"gbit-go/internal/gbit"
	"gbit-go/internal/server"
	"gbit-go/internal/vault"
)

// ServerApp wires the gbitd server from config: store, vault mirror,
// service, logger, and HTTP server. All dependencies are constructed
// explicitly here and passed down; nothing reaches for global state.
type ServerApp struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	vault   gbit.Vault
	service *gbit.SnapshotService
	server  *server.Server
	logger  gbit.Logger
	logFile *os.File
}

// NewServerApp creates a fully wired ServerApp from the given config.
// The caller must call Close when done.
func NewServerApp(cfg *config.Config) (*ServerApp, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if cfg.Database.Type == "memory" {
		// In-memory databases start empty; bring them to the current schema.
		if err := store.MigrateUp(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
	} else if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date (run `gbitd migrate`): %w", err)
	}

	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	if v != nil {
		if err := v.ValidateSetup(); err != nil {
			store.Close()
			return nil, fmt.Errorf("validating vault: %w", err)
		}
	}

	slogger, logFile, err := newLogger(cfg.LogDir, "gbitd")
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	service := gbit.NewSnapshotService(store, gbit.UUIDTokenGenerator{}, logger)
	handler := server.NewHandler(service, cfg.MaxPayloadBytes, cfg.PublicURL, logger)
	srv := server.NewServer(cfg.Listen, handler, logger)

	return &ServerApp{
		cfg:     cfg,
		store:   store,
		vault:   v,
		service: service,
		server:  srv,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *ServerApp) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// Close mirrors the database to the vault (when one is configured) and
// releases all resources.
func (a *ServerApp) Close() error {
	var firstErr error

	if a.vault != nil && a.store.Path() != "" && a.store.Path() != ":memory:" {
		if err := a.mirrorDatabase(); err != nil {
			a.logger.Error("database mirror failed", "error", err)
			firstErr = err
		}
	}

	if err := a.store.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing store: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// mirrorDatabase snapshots the SQLite database to a temp file and uploads
// it to the vault with the current time as version marker.
func (a *ServerApp) mirrorDatabase() error {
	tmpFile, err := os.CreateTemp("", "gbit-db-mirror-*.db")
	if err != nil {
		return fmt.Errorf("creating temp file for db mirror: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := a.store.BackupTo(tmpPath); err != nil {
		return fmt.Errorf("snapshotting database: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("opening db mirror for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat db mirror: %w", err)
	}

	version := time.Now().Unix()
	if err := a.vault.Put("db", f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading db mirror to vault: %w", err)
	}

	a.logger.Info("database mirrored to vault", "version", version, "bytes", info.Size())
	return nil
}
