package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rankengine-api/internal/domain/venue"
	"github.com/gravadigital/rankengine-api/internal/logger"
)

// PostgresVenueRepository implements VenueRepository using GORM
type PostgresVenueRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresVenueRepository creates a new PostgreSQL venue repository
func NewPostgresVenueRepository(db *gorm.DB) *PostgresVenueRepository {
	return &PostgresVenueRepository{
		db:  db,
		log: logger.Repository("venue"),
	}
}

func (r *PostgresVenueRepository) Create(v *venue.Venue) error {
	r.log.Debug("creating venue", "name", v.Name, "author_id", v.AuthorID)

	if err := v.Validate(); err != nil {
		r.log.Error("venue validation failed", "error", err)
		return fmt.Errorf("venue validation failed: %w", err)
	}

	if err := r.db.Create(v).Error; err != nil {
		r.log.Error("failed to create venue", "error", err)
		return fmt.Errorf("failed to create venue: %w", err)
	}

	r.log.Info("venue created successfully", "id", v.ID, "name", v.Name)
	return nil
}

func (r *PostgresVenueRepository) GetByID(id string) (*venue.Venue, error) {
	r.log.Debug("retrieving venue by ID", "venue_id", id)

	venueID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid venue ID format", "venue_id", id, "error", err)
		return nil, errors.New("invalid venue ID format")
	}

	var v venue.Venue
	if err := r.db.First(&v, venueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("venue not found", "venue_id", id)
			return nil, errors.New("venue not found")
		}
		r.log.Error("failed to retrieve venue", "venue_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve venue: %w", err)
	}

	return &v, nil
}

func (r *PostgresVenueRepository) GetAll() ([]*venue.Venue, error) {
	var venues []*venue.Venue
	if err := r.db.Order("created_at DESC").Find(&venues).Error; err != nil {
		r.log.Error("failed to list venues", "error", err)
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	r.log.Debug("retrieved all venues", "count", len(venues))
	return venues, nil
}

func (r *PostgresVenueRepository) GetByAuthor(authorID string) ([]*venue.Venue, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		r.log.Error("invalid author ID format", "author_id", authorID, "error", err)
		return nil, errors.New("invalid author ID format")
	}

	var venues []*venue.Venue
	if err := r.db.Where("author_id = ?", authorUUID).Order("created_at DESC").Find(&venues).Error; err != nil {
		r.log.Error("failed to list venues by author", "author_id", authorID, "error", err)
		return nil, fmt.Errorf("failed to list venues by author: %w", err)
	}

	return venues, nil
}

func (r *PostgresVenueRepository) UpdateStage(venueID string, stage venue.Stage) error {
	r.log.Debug("updating venue stage", "venue_id", venueID, "stage", stage)

	id, err := uuid.Parse(venueID)
	if err != nil {
		r.log.Error("invalid venue ID format", "venue_id", venueID, "error", err)
		return errors.New("invalid venue ID format")
	}

	var v venue.Venue
	if err := r.db.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("venue not found for stage update", "venue_id", venueID)
			return errors.New("venue not found")
		}
		r.log.Error("failed to load venue for stage update", "venue_id", venueID, "error", err)
		return fmt.Errorf("failed to load venue for stage update: %w", err)
	}

	if err := v.UpdateStage(stage); err != nil {
		r.log.Error("invalid stage transition", "venue_id", venueID, "from", v.Stage, "to", stage, "error", err)
		return err
	}

	if err := r.db.Save(&v).Error; err != nil {
		r.log.Error("failed to persist venue stage", "venue_id", venueID, "error", err)
		return fmt.Errorf("failed to persist venue stage: %w", err)
	}

	r.log.Info("venue stage updated", "venue_id", venueID, "stage", stage)
	return nil
}

func (r *PostgresVenueRepository) Update(v *venue.Venue) error {
	r.log.Debug("updating venue", "id", v.ID)

	if err := v.Validate(); err != nil {
		r.log.Error("venue validation failed", "error", err)
		return fmt.Errorf("venue validation failed: %w", err)
	}

	if err := r.db.Save(v).Error; err != nil {
		r.log.Error("failed to update venue", "id", v.ID, "error", err)
		return fmt.Errorf("failed to update venue: %w", err)
	}

	r.log.Info("venue updated successfully", "id", v.ID)
	return nil
}
