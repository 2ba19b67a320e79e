package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rankengine-api/internal/domain/submission"
	"github.com/gravadigital/rankengine-api/internal/logger"
)

// PostgresSubmissionRepository implements SubmissionRepository using GORM
type PostgresSubmissionRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresSubmissionRepository creates a new PostgreSQL submission repository
func NewPostgresSubmissionRepository(db *gorm.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{
		db:  db,
		log: logger.Repository("submission"),
	}
}

func (r *PostgresSubmissionRepository) Create(s *submission.Submission) error {
	r.log.Debug("creating submission", "venue_id", s.VenueID, "author_id", s.AuthorID, "title", s.Title)

	if err := r.db.Create(s).Error; err != nil {
		r.log.Error("failed to create submission", "error", err)
		return fmt.Errorf("failed to create submission: %w", err)
	}

	r.log.Info("submission created successfully", "id", s.ID, "venue_id", s.VenueID)
	return nil
}

func (r *PostgresSubmissionRepository) GetByID(id string) (*submission.Submission, error) {
	submissionID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid submission ID format", "submission_id", id, "error", err)
		return nil, errors.New("invalid submission ID format")
	}

	var s submission.Submission
	if err := r.db.First(&s, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("submission not found", "submission_id", id)
			return nil, errors.New("submission not found")
		}
		r.log.Error("failed to retrieve submission", "submission_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve submission: %w", err)
	}

	return &s, nil
}

func (r *PostgresSubmissionRepository) GetByVenue(venueID string) ([]*submission.Submission, error) {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		r.log.Error("invalid venue ID format", "venue_id", venueID, "error", err)
		return nil, errors.New("invalid venue ID format")
	}

	var submissions []*submission.Submission
	if err := r.db.Where("venue_id = ?", venueUUID).Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		r.log.Error("failed to list submissions by venue", "venue_id", venueID, "error", err)
		return nil, fmt.Errorf("failed to list submissions by venue: %w", err)
	}

	return submissions, nil
}

func (r *PostgresSubmissionRepository) GetByAuthor(authorID string) ([]*submission.Submission, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		r.log.Error("invalid author ID format", "author_id", authorID, "error", err)
		return nil, errors.New("invalid author ID format")
	}

	var submissions []*submission.Submission
	if err := r.db.Where("author_id = ?", authorUUID).Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		r.log.Error("failed to list submissions by author", "author_id", authorID, "error", err)
		return nil, fmt.Errorf("failed to list submissions by author: %w", err)
	}

	return submissions, nil
}

func (r *PostgresSubmissionRepository) UpdateFilePath(id string, filePath string) error {
	submissionID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid submission ID format", "submission_id", id, "error", err)
		return errors.New("invalid submission ID format")
	}

	if err := r.db.Model(&submission.Submission{}).Where("id = ?", submissionID).Update("file_path", filePath).Error; err != nil {
		r.log.Error("failed to update submission file path", "submission_id", id, "error", err)
		return fmt.Errorf("failed to update submission file path: %w", err)
	}

	r.log.Info("submission file updated", "submission_id", id)
	return nil
}

func (r *PostgresSubmissionRepository) Delete(id string) error {
	submissionID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid submission ID format", "submission_id", id, "error", err)
		return errors.New("invalid submission ID format")
	}

	if err := r.db.Delete(&submission.Submission{}, submissionID).Error; err != nil {
		r.log.Error("failed to delete submission", "submission_id", id, "error", err)
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	r.log.Info("submission deleted successfully", "submission_id", id)
	return nil
}
