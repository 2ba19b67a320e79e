package migrations

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Custom types for GORM

type VenueStage string

const (
	VenueStageCreation     VenueStage = "creation"
	VenueStageRegistration VenueStage = "registration"
	VenueStageSubmission   VenueStage = "submission"
	VenueStageReview       VenueStage = "review"
	VenueStageResults      VenueStage = "results"
)

func (s *VenueStage) Scan(value any) error {
	if value == nil {
		*s = VenueStageCreation
		return nil
	}
	if str, ok := value.(string); ok {
		*s = VenueStage(str)
		return nil
	}
	return fmt.Errorf("cannot scan %T into VenueStage", value)
}

func (s VenueStage) Value() (driver.Value, error) {
	return string(s), nil
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleReviewer UserRole = "reviewer"
)

func (r *UserRole) Scan(value any) error {
	if value == nil {
		*r = UserRoleReviewer
		return nil
	}
	if str, ok := value.(string); ok {
		*r = UserRole(str)
		return nil
	}
	return fmt.Errorf("cannot scan %T into UserRole", value)
}

func (r UserRole) Value() (driver.Value, error) {
	return string(r), nil
}

// Core models for the ranking system. These are the schema-level
// counterparts of the richer internal/domain types: AutoMigrate and the
// ranking engine's PostgreSQL adapter run against these, while the CRUD
// repositories and handlers work against the domain packages.

// User represents a reviewer or admin.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Lastname     string    `json:"lastname"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         UserRole  `gorm:"type:user_role;not null;default:'reviewer'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	AuthoredVenues []Venue      `gorm:"foreignKey:AuthorID" json:"authored_venues,omitempty"`
	Submissions    []Submission `gorm:"foreignKey:AuthorID" json:"submissions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Venue represents a ranking/grading venue.
type Venue struct {
	ID                             uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name                           string     `gorm:"not null" json:"name"`
	Description                    string     `gorm:"not null" json:"description"`
	AuthorID                       uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	StartDate                      time.Time  `gorm:"not null" json:"start_date"`
	EndDate                        time.Time  `gorm:"not null" json:"end_date"`
	Stage                          VenueStage `gorm:"type:venue_stage;not null;default:'creation'" json:"stage"`
	NumberOfSubmissionsPerReviewer *int       `json:"number_of_submissions_per_reviewer"`
	CanRankOwnSubmissions          bool       `gorm:"default:false" json:"can_rank_own_submissions"`
	RankCostCoefficient            float64    `gorm:"default:0" json:"rank_cost_coefficient"`
	LatestRankUpdateDate           *time.Time `json:"latest_rank_update_date"`
	LatestReviewersEvaluationDate  *time.Time `json:"latest_reviewers_evaluation_date"`
	LatestFinalGradesEvaluationDate *time.Time `json:"latest_final_grades_evaluation_date"`
	RankingAlgoDescription         string     `json:"ranking_algo_description"`
	CreatedAt                      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Author      User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Submissions []Submission `gorm:"foreignKey:VenueID" json:"submissions,omitempty"`
	Comparisons []Comparison `gorm:"foreignKey:VenueID" json:"comparisons,omitempty"`
}

func (Venue) TableName() string {
	return "venues"
}

// Submission represents one item ranked by the engine.
type Submission struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VenueID     uuid.UUID `gorm:"type:uuid;not null" json:"venue_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Title       string    `gorm:"not null" json:"title"`
	FilePath    string    `gorm:"not null" json:"file_path"`
	Mu          *float64  `json:"mu"`
	Sigma       *float64  `json:"sigma"`
	Percentile  *float64  `json:"percentile"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`

	Venue  Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Author User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Comparison represents one reviewer-submitted ordering over a handful
// of submissions, stored highest-quality-first.
type Comparison struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VenueID     uuid.UUID      `gorm:"type:uuid;not null" json:"venue_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null" json:"user_id"`
	Ordering    pq.StringArray `gorm:"type:uuid[];not null" json:"ordering"`
	NewItem     string         `gorm:"type:uuid" json:"new_item"`
	IsValid     bool           `gorm:"default:true" json:"is_valid"`
	SubmittedAt time.Time      `gorm:"autoCreateTime" json:"submitted_at"`

	Venue Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comparison) TableName() string {
	return "comparisons"
}

// Task records one submission being offered to a reviewer, used to
// balance offer frequency across the pool.
type Task struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VenueID    uuid.UUID `gorm:"type:uuid;not null" json:"venue_id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null" json:"submission_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	OfferedAt  time.Time `gorm:"autoCreateTime" json:"offered_at"`

	Venue      Venue      `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Submission Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// UserAccuracy is the venue-scoped accuracy/reputation row for a reviewer.
type UserAccuracy struct {
	VenueID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"venue_id"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Accuracy   float64   `json:"accuracy"`
	Reputation *float64  `json:"reputation"`
	NRatings   int       `json:"n_ratings"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Venue Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserAccuracy) TableName() string {
	return "user_accuracy"
}

// Grade is the venue-scoped final grade row for a reviewer/submitter.
type Grade struct {
	VenueID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"venue_id"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Grade      float64   `json:"grade"`
	Percentile float64   `json:"percentile"`
	ComputedAt time.Time `gorm:"autoUpdateTime" json:"computed_at"`

	Venue Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Grade) TableName() string {
	return "grades"
}

// AllModels returns every model for migration.
func AllModels() []any {
	return []any{
		&User{},
		&Venue{},
		&Submission{},
		&Comparison{},
		&Task{},
		&UserAccuracy{},
		&Grade{},
	}
}
