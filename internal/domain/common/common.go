// Package common holds the minimal shared types referenced across domain
// packages, avoiding circular imports between venue, reviewer, submission
// and ranking.
package common

import "github.com/google/uuid"

// SharedVenue is the minimal Venue shape used by GORM associations in
// other domains.
type SharedVenue struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name"`
}

// SharedUser is the minimal User shape used by GORM associations in
// other domains.
type SharedUser struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name"`
}

// SharedSubmission is the minimal Submission shape used by GORM
// associations in other domains.
type SharedSubmission struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title    string    `json:"title"`
	AuthorID uuid.UUID `json:"author_id"`
}

// SubmissionInterface decouples the ranking engine's storage adapter from
// the concrete submission.Submission type.
type SubmissionInterface interface {
	GetID() uuid.UUID
	GetTitle() string
	GetAuthorID() uuid.UUID
}

// UserInterface decouples the ranking engine's storage adapter from the
// concrete reviewer.User type.
type UserInterface interface {
	GetID() uuid.UUID
	GetName() string
}

// VenueInterface decouples the ranking engine's storage adapter from the
// concrete venue.Venue type.
type VenueInterface interface {
	GetID() uuid.UUID
	GetName() string
}
