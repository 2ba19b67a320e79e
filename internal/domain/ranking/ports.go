package ranking

import (
	"context"
	"time"
)

// ItemRecord is a submission as seen by the engine: a stable id, its
// author, and its current belief (nil Mu/Sigma means "never processed",
// defaults apply).
type ItemRecord struct {
	ID       string
	AuthorID string
	Mu       *float64
	Sigma    *float64
}

// ComparisonOrder selects the iteration order for ListComparisons.
type ComparisonOrder int

const (
	// Chronological returns comparisons oldest first.
	Chronological ComparisonOrder = iota
	// ReverseChronological returns comparisons newest first.
	ReverseChronological
)

// ComparisonRecord is one reviewer-submitted ordering as seen by the
// engine. Ordering is stored highest-first (the UI convention); the
// engine reverses it before feeding Rank.Update.
type ComparisonRecord struct {
	UserID    string
	Ordering  []string
	NewItem   string
	IsValid   bool
	Date      time.Time
}

// VenueConfig carries the per-venue settings the engine needs.
type VenueConfig struct {
	NumberOfSubmissionsPerReviewer *int
}

// GradeRow is one row of the fully-replaced grades table for a venue.
type GradeRow struct {
	UserID     string
	Grade      float64
	Percentile float64
}

// UserAccuracyRow is one upserted row of the user_accuracy table.
type UserAccuracyRow struct {
	UserID     string
	Accuracy   float64
	Reputation *float64
	NRatings   int
}

// DataPort is the engine's sole view of persistent storage: a narrow
// read surface and a narrow write surface, both storage-engine agnostic.
type DataPort interface {
	// ListItems returns every submission in the venue with author and
	// current belief (nil belief means "apply defaults").
	ListItems(ctx context.Context, venueID string) ([]ItemRecord, error)

	// ItemBeliefs returns (mu, sigma) for exactly the given ids, in the
	// same order, with defaults applied for anything unset.
	ItemBeliefs(ctx context.Context, venueID string, ids []string) ([]Belief, error)

	// ListComparisons returns every comparison recorded for the venue in
	// the requested order.
	ListComparisons(ctx context.Context, venueID string, order ComparisonOrder) ([]ComparisonRecord, error)

	// LatestComparison returns a user's most recent comparison in the
	// venue, or ok=false if they have none.
	LatestComparison(ctx context.Context, venueID, userID string) (ComparisonRecord, bool, error)

	// CountTasks returns how many times an item has been offered for
	// review in the venue.
	CountTasks(ctx context.Context, venueID, itemID string) (int, error)

	// VenueConfig returns the venue's ranking configuration.
	VenueConfig(ctx context.Context, venueID string) (VenueConfig, error)

	// WriteItemBelief persists an item's posterior. percentile is nil
	// for the single-comparison live-update path (see design notes on
	// percentile freshness).
	WriteItemBelief(ctx context.Context, venueID, itemID string, mu, sigma float64, percentile *float64) error

	// UpsertUserAccuracy writes or replaces a user's accuracy row.
	UpsertUserAccuracy(ctx context.Context, venueID string, row UserAccuracyRow) error

	// DeleteUserAccuracy removes a stale accuracy row, used when a
	// reviewer's last comparison can no longer be found.
	DeleteUserAccuracy(ctx context.Context, venueID, userID string) error

	// ReplaceGrades fully replaces the grades table for a venue.
	ReplaceGrades(ctx context.Context, venueID string, rows []GradeRow) error

	// TouchVenueTimestamps stamps the venue's latest_* fields and an
	// optional human-readable description of the algorithm that ran.
	TouchVenueTimestamps(ctx context.Context, venueID string, fields TimestampFields) error

	// Commit finalizes a batch of writes. Implementations backed by a
	// transactional store commit here; others may no-op.
	Commit(ctx context.Context) error
}

// TimestampFields selects which latest_* venue columns to stamp with the
// current time, and an optional algorithm description.
type TimestampFields struct {
	RankUpdate           bool
	ReviewersEvaluation  bool
	FinalGradesEvaluation bool
	AlgoDescription      string
}
