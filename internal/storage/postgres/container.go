package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/domain/ranking"
	"github.com/gravadigital/rankengine-api/internal/logger"
)

// Container implements a repository container for every CRUD repository
// plus a factory for the ranking engine's data port.
type Container struct {
	db             *gorm.DB
	log            *log.Logger
	venueRepo      VenueRepository
	userRepo       UserRepository
	submissionRepo SubmissionRepository
}

// NewContainer creates a new repository container with all repositories initialized
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := NewContainerWithDB(db)

	if err := container.Health(); err != nil {
		log.Error("Container health check failed", "error", err)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:             db,
		log:            logger.Repository("postgres_container"),
		venueRepo:      NewPostgresVenueRepository(db),
		userRepo:       NewPostgresUserRepository(db),
		submissionRepo: NewPostgresSubmissionRepository(db),
	}
}

// Venues returns the venue repository
func (c *Container) Venues() VenueRepository {
	return c.venueRepo
}

// Users returns the user repository
func (c *Container) Users() UserRepository {
	return c.userRepo
}

// Submissions returns the submission repository
func (c *Container) Submissions() SubmissionRepository {
	return c.submissionRepo
}

// WithRankingEngine opens a transaction-scoped ranking.DataPort, builds a
// ranking.Engine on top of it, and runs fn. fn's returned error rolls the
// transaction back; a nil error still requires fn to have called the
// engine method that itself issues the final Commit (every ranking.Engine
// entry point commits on success as part of its own contract).
func (c *Container) WithRankingEngine(ctx context.Context, fn func(*ranking.Engine, *RankingDataPort) error) error {
	port := NewRankingDataPort(c.db)
	defer port.Rollback()

	engine := ranking.NewEngine(port)
	if err := fn(engine, port); err != nil {
		return err
	}
	return nil
}

// Health performs a health check on all repositories and database connection
func (c *Container) Health() error {
	c.log.Debug("Performing container health check...")

	if err := HealthCheck(c.db); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}

	tables := []string{"venues", "users", "submissions", "comparisons", "tasks", "user_accuracy", "grades"}
	for _, table := range tables {
		var count int64
		if err := c.db.Table(table).Count(&count).Error; err != nil {
			c.log.Error("repository health check failed", "table", table, "error", err)
			return fmt.Errorf("table %s health check failed: %w", table, err)
		}
	}

	c.log.Debug("Container health check completed successfully")
	return nil
}

// Close gracefully shuts down the container and closes database connections
func (c *Container) Close() error {
	c.log.Info("Closing PostgreSQL repository container...")

	if c.db == nil {
		c.log.Warn("Database connection is nil, nothing to close")
		return nil
	}

	if err := Close(); err != nil {
		c.log.Error("Failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	c.venueRepo = nil
	c.userRepo = nil
	c.submissionRepo = nil
	c.db = nil

	c.log.Info("PostgreSQL repository container closed successfully")
	return nil
}

// CloseWithTimeout closes the container with a timeout
func (c *Container) CloseWithTimeout(timeout time.Duration) error {
	done := make(chan error, 1)

	go func() {
		done <- c.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		c.log.Error("Container close operation timed out", "timeout", timeout)
		return fmt.Errorf("container close operation timed out after %v", timeout)
	}
}

// GetDB returns the underlying database connection (for advanced usage)
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
