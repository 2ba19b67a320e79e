// Package venue models the review venue -- the scope within which
// submissions are ranked and reviewers build reputation.
package venue

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Venue represents a single ranking/grading venue (a peer-graded
// assignment or conference track).
type Venue struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	AuthorID    uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	Stage       Stage     `json:"stage" gorm:"type:venue_stage;not null;default:'creation'"`

	// NumberOfSubmissionsPerReviewer normalizes raw reviewer accuracy.
	// nil means "use the DefaultSubmissionsPerReviewer fallback".
	NumberOfSubmissionsPerReviewer *int `json:"number_of_submissions_per_reviewer"`
	CanRankOwnSubmissions          bool `json:"can_rank_own_submissions" gorm:"default:false"`
	RankCostCoefficient            float64 `json:"rank_cost_coefficient" gorm:"default:0"`

	LatestRankUpdateDate            *time.Time `json:"latest_rank_update_date"`
	LatestReviewersEvaluationDate   *time.Time `json:"latest_reviewers_evaluation_date"`
	LatestFinalGradesEvaluationDate *time.Time `json:"latest_final_grades_evaluation_date"`
	RankingAlgoDescription          string     `json:"ranking_algo_description"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM.
func (Venue) TableName() string {
	return "venues"
}

// BeforeCreate sets a UUID before creating the record.
func (v *Venue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// NewVenue creates a new venue with the given parameters.
func NewVenue(name, description string, authorID uuid.UUID, startDate, endDate time.Time) *Venue {
	return &Venue{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		AuthorID:    authorID,
		StartDate:   startDate,
		EndDate:     endDate,
		Stage:       StageCreation,
		CreatedAt:   time.Now(),
	}
}

// IsAuthor checks if the given user ID owns this venue.
func (v *Venue) IsAuthor(userID uuid.UUID) bool {
	return v.AuthorID == userID
}

// CanTransitionTo checks if the venue can transition to a new stage.
func (v *Venue) CanTransitionTo(newStage Stage) bool {
	transitions := map[Stage][]Stage{
		StageCreation:     {StageRegistration},
		StageRegistration: {StageSubmission},
		StageSubmission:   {StageReview},
		StageReview:       {StageResult},
		StageResult:       {},
	}
	allowed, exists := transitions[v.Stage]
	if !exists {
		return false
	}
	return slices.Contains(allowed, newStage)
}

// UpdateStage updates the stage if the transition is valid.
func (v *Venue) UpdateStage(newStage Stage) error {
	if !v.CanTransitionTo(newStage) {
		return fmt.Errorf("cannot transition from %s to %s", v.Stage, newStage)
	}
	v.Stage = newStage
	return nil
}

// Validate checks if the venue data is valid.
func (v *Venue) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if v.Description == "" {
		return fmt.Errorf("description is required")
	}
	if v.AuthorID == uuid.Nil {
		return fmt.Errorf("author_id is required")
	}
	if v.EndDate.Before(v.StartDate) {
		return fmt.Errorf("end_date must be after start_date")
	}
	return nil
}

func (v *Venue) GetID() uuid.UUID { return v.ID }
func (v *Venue) GetName() string  { return v.Name }

// Stage represents the current stage of a venue.
type Stage byte

const (
	StageCreation Stage = iota
	StageRegistration
	StageSubmission
	StageReview
	StageResult
)

func (s Stage) String() string {
	switch s {
	case StageCreation:
		return "creation"
	case StageRegistration:
		return "registration"
	case StageSubmission:
		return "submission"
	case StageReview:
		return "review"
	case StageResult:
		return "results"
	default:
		return "unknown"
	}
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	stage, valid := StageFromString(str)
	if !valid {
		return fmt.Errorf("invalid stage: %s", str)
	}
	*s = stage
	return nil
}

func StageFromString(s string) (Stage, bool) {
	switch s {
	case "creation":
		return StageCreation, true
	case "registration":
		return StageRegistration, true
	case "submission":
		return StageSubmission, true
	case "review":
		return StageReview, true
	case "results":
		return StageResult, true
	default:
		return StageCreation, false
	}
}

func (s *Stage) Scan(value interface{}) error {
	if value == nil {
		*s = StageCreation
		return nil
	}
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into Stage", value)
	}
	stage, valid := StageFromString(str)
	if !valid {
		return fmt.Errorf("invalid stage value: %s", str)
	}
	*s = stage
	return nil
}

func (s Stage) Value() (driver.Value, error) {
	return s.String(), nil
}
