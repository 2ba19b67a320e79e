// Package submission models the items ranked by the engine: a reviewer's
// or participant's piece of work inside a venue, plus the belief and
// grade fields the ranking engine keeps in sync with internal/domain/ranking.
package submission

import (
	"time"

	"github.com/google/uuid"
	"github.com/gravadigital/rankengine-api/internal/domain/common"
	"gorm.io/gorm"
)

// Submission represents a single piece of work entered into a venue's
// ranking pool.
type Submission struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VenueID  uuid.UUID `json:"venue_id" gorm:"type:uuid;not null"`
	AuthorID uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	Title    string    `json:"title" gorm:"not null"`
	FilePath string    `json:"file_path" gorm:"not null"`

	// Mu, Sigma and Percentile mirror the quality belief the ranking
	// engine maintains; nil until the submission has taken part in at
	// least one comparison.
	Mu         *float64 `json:"mu,omitempty"`
	Sigma      *float64 `json:"sigma,omitempty"`
	Percentile *float64 `json:"percentile,omitempty"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`

	// Relations - using shared types to avoid circular imports.
	Venue  common.SharedVenue `json:"venue,omitempty" gorm:"foreignKey:VenueID"`
	Author common.SharedUser  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// TableName overrides the table name used by GORM.
func (Submission) TableName() string {
	return "submissions"
}

// BeforeCreate sets a UUID before creating the record.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// NewSubmission creates a new submission pending its first belief update.
func NewSubmission(venueID, authorID uuid.UUID, title, filePath string) *Submission {
	return &Submission{
		ID:          uuid.New(),
		VenueID:     venueID,
		AuthorID:    authorID,
		Title:       title,
		FilePath:    filePath,
		SubmittedAt: time.Now(),
	}
}

// HasBelief reports whether the submission has been touched by at least
// one comparison.
func (s *Submission) HasBelief() bool {
	return s.Mu != nil && s.Sigma != nil
}

// GetID, GetTitle and GetAuthorID implement common.SubmissionInterface to
// avoid circular imports between submission and the ranking storage
// adapter.
func (s *Submission) GetID() uuid.UUID {
	return s.ID
}

func (s *Submission) GetTitle() string {
	return s.Title
}

func (s *Submission) GetAuthorID() uuid.UUID {
	return s.AuthorID
}
