package postgres

import (
	"github.com/gravadigital/rankengine-api/internal/domain/reviewer"
	"github.com/gravadigital/rankengine-api/internal/domain/submission"
	"github.com/gravadigital/rankengine-api/internal/domain/venue"
)

// VenueRepository defines the methods for interacting with venues in the DB.
type VenueRepository interface {
	Create(v *venue.Venue) error
	GetByID(id string) (*venue.Venue, error)
	GetAll() ([]*venue.Venue, error)
	GetByAuthor(authorID string) ([]*venue.Venue, error)
	UpdateStage(venueID string, stage venue.Stage) error
	Update(v *venue.Venue) error
}

// UserRepository defines the methods for interacting with users in the DB.
type UserRepository interface {
	Create(user *reviewer.User) error
	GetByID(id string) (*reviewer.User, error)
	GetByEmail(email string) (*reviewer.User, error)
	GetAll() ([]*reviewer.User, error)
	Update(user *reviewer.User) error
}

// SubmissionRepository defines the methods for interacting with submissions in the DB.
type SubmissionRepository interface {
	Create(s *submission.Submission) error
	GetByID(id string) (*submission.Submission, error)
	GetByVenue(venueID string) ([]*submission.Submission, error)
	GetByAuthor(authorID string) ([]*submission.Submission, error)
	UpdateFilePath(id string, filePath string) error
	Delete(id string) error
}
