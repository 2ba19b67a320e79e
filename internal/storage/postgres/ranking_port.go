package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/rankengine-api/internal/domain/ranking"
	"github.com/gravadigital/rankengine-api/internal/logger"
	"github.com/gravadigital/rankengine-api/internal/storage/migrations"
)

// RankingDataPort implements ranking.DataPort against PostgreSQL via GORM.
// It batches every write inside a transaction opened on construction.
// The engine's write paths call Commit themselves; a caller commits only
// after a path that does not (NextTask).
type RankingDataPort struct {
	db  *gorm.DB
	tx  *gorm.DB
	log *log.Logger
}

// NewRankingDataPort opens a transaction against db and returns a port
// scoped to it. The caller owns the transaction's lifetime via Commit.
func NewRankingDataPort(db *gorm.DB) *RankingDataPort {
	return &RankingDataPort{
		db:  db,
		tx:  db.Begin(),
		log: logger.Repository("ranking"),
	}
}

func (p *RankingDataPort) ListItems(ctx context.Context, venueID string) ([]ranking.ItemRecord, error) {
	p.log.Debug("listing items", "venue_id", venueID)

	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return nil, fmt.Errorf("invalid venue id: %w", err)
	}

	var submissions []migrations.Submission
	if err := p.tx.WithContext(ctx).
		Where("venue_id = ?", venueUUID).
		Find(&submissions).Error; err != nil {
		p.log.Error("failed to list submissions", "venue_id", venueID, "error", err)
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	items := make([]ranking.ItemRecord, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, ranking.ItemRecord{
			ID:       s.ID.String(),
			AuthorID: s.AuthorID.String(),
			Mu:       s.Mu,
			Sigma:    s.Sigma,
		})
	}

	return items, nil
}

func (p *RankingDataPort) ItemBeliefs(ctx context.Context, venueID string, ids []string) ([]ranking.Belief, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return nil, fmt.Errorf("invalid venue id: %w", err)
	}

	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid submission id %q: %w", id, err)
		}
		uuids = append(uuids, parsed)
	}

	var submissions []migrations.Submission
	if err := p.tx.WithContext(ctx).
		Where("venue_id = ? AND id IN ?", venueUUID, uuids).
		Find(&submissions).Error; err != nil {
		p.log.Error("failed to load item beliefs", "venue_id", venueID, "error", err)
		return nil, fmt.Errorf("failed to load item beliefs: %w", err)
	}

	byID := make(map[string]migrations.Submission, len(submissions))
	for _, s := range submissions {
		byID[s.ID.String()] = s
	}

	beliefs := make([]ranking.Belief, len(ids))
	for i, id := range ids {
		s, ok := byID[id]
		if !ok || s.Mu == nil || s.Sigma == nil {
			beliefs[i] = ranking.Belief{Mu: ranking.DefaultMu, Sigma: ranking.DefaultSigma}
			continue
		}
		beliefs[i] = ranking.Belief{Mu: *s.Mu, Sigma: *s.Sigma}
	}

	return beliefs, nil
}

func (p *RankingDataPort) ListComparisons(ctx context.Context, venueID string, order ranking.ComparisonOrder) ([]ranking.ComparisonRecord, error) {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return nil, fmt.Errorf("invalid venue id: %w", err)
	}

	direction := "ASC"
	if order == ranking.ReverseChronological {
		direction = "DESC"
	}

	var comparisons []migrations.Comparison
	if err := p.tx.WithContext(ctx).
		Where("venue_id = ?", venueUUID).
		Order("submitted_at " + direction).
		Find(&comparisons).Error; err != nil {
		p.log.Error("failed to list comparisons", "venue_id", venueID, "error", err)
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}

	return toComparisonRecords(comparisons), nil
}

func (p *RankingDataPort) LatestComparison(ctx context.Context, venueID, userID string) (ranking.ComparisonRecord, bool, error) {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return ranking.ComparisonRecord{}, false, fmt.Errorf("invalid venue id: %w", err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ranking.ComparisonRecord{}, false, fmt.Errorf("invalid user id: %w", err)
	}

	var comparison migrations.Comparison
	err = p.tx.WithContext(ctx).
		Where("venue_id = ? AND user_id = ?", venueUUID, userUUID).
		Order("submitted_at DESC").
		First(&comparison).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ranking.ComparisonRecord{}, false, nil
		}
		p.log.Error("failed to load latest comparison", "venue_id", venueID, "user_id", userID, "error", err)
		return ranking.ComparisonRecord{}, false, fmt.Errorf("failed to load latest comparison: %w", err)
	}

	records := toComparisonRecords([]migrations.Comparison{comparison})
	return records[0], true, nil
}

func (p *RankingDataPort) CountTasks(ctx context.Context, venueID, itemID string) (int, error) {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return 0, fmt.Errorf("invalid venue id: %w", err)
	}

	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return 0, fmt.Errorf("invalid item id: %w", err)
	}

	var count int64
	if err := p.tx.WithContext(ctx).
		Model(&migrations.Task{}).
		Where("venue_id = ? AND submission_id = ?", venueUUID, itemUUID).
		Count(&count).Error; err != nil {
		p.log.Error("failed to count tasks", "venue_id", venueID, "item_id", itemID, "error", err)
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return int(count), nil
}

func (p *RankingDataPort) VenueConfig(ctx context.Context, venueID string) (ranking.VenueConfig, error) {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return ranking.VenueConfig{}, fmt.Errorf("invalid venue id: %w", err)
	}

	var venue migrations.Venue
	if err := p.tx.WithContext(ctx).First(&venue, "id = ?", venueUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ranking.VenueConfig{}, fmt.Errorf("venue %s not found", venueID)
		}
		p.log.Error("failed to load venue config", "venue_id", venueID, "error", err)
		return ranking.VenueConfig{}, fmt.Errorf("failed to load venue config: %w", err)
	}

	return ranking.VenueConfig{NumberOfSubmissionsPerReviewer: venue.NumberOfSubmissionsPerReviewer}, nil
}

func (p *RankingDataPort) WriteItemBelief(ctx context.Context, venueID, itemID string, mu, sigma float64, percentile *float64) error {
	itemUUID, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}

	updates := map[string]any{"mu": mu, "sigma": sigma}
	if percentile != nil {
		updates["percentile"] = *percentile
	}

	if err := p.tx.WithContext(ctx).
		Model(&migrations.Submission{}).
		Where("id = ? AND venue_id = ?", itemUUID, venueUUID).
		Updates(updates).Error; err != nil {
		p.log.Error("failed to write item belief", "venue_id", venueID, "item_id", itemID, "error", err)
		return fmt.Errorf("failed to write item belief: %w", err)
	}

	return nil
}

func (p *RankingDataPort) UpsertUserAccuracy(ctx context.Context, venueID string, row ranking.UserAccuracyRow) error {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}

	userUUID, err := uuid.Parse(row.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	record := migrations.UserAccuracy{
		VenueID:    venueUUID,
		UserID:     userUUID,
		Accuracy:   row.Accuracy,
		Reputation: row.Reputation,
		NRatings:   row.NRatings,
	}

	err = p.tx.WithContext(ctx).
		Where("venue_id = ? AND user_id = ?", venueUUID, userUUID).
		Assign(record).
		FirstOrCreate(&record).Error
	if err != nil {
		p.log.Error("failed to upsert user accuracy", "venue_id", venueID, "user_id", row.UserID, "error", err)
		return fmt.Errorf("failed to upsert user accuracy: %w", err)
	}

	return nil
}

func (p *RankingDataPort) DeleteUserAccuracy(ctx context.Context, venueID, userID string) error {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	if err := p.tx.WithContext(ctx).
		Where("venue_id = ? AND user_id = ?", venueUUID, userUUID).
		Delete(&migrations.UserAccuracy{}).Error; err != nil {
		p.log.Error("failed to delete user accuracy", "venue_id", venueID, "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete user accuracy: %w", err)
	}

	return nil
}

func (p *RankingDataPort) ReplaceGrades(ctx context.Context, venueID string, rows []ranking.GradeRow) error {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}

	if err := p.tx.WithContext(ctx).
		Where("venue_id = ?", venueUUID).
		Delete(&migrations.Grade{}).Error; err != nil {
		p.log.Error("failed to clear grades", "venue_id", venueID, "error", err)
		return fmt.Errorf("failed to clear grades: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	grades := make([]migrations.Grade, 0, len(rows))
	for _, row := range rows {
		userUUID, err := uuid.Parse(row.UserID)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", row.UserID, err)
		}
		grades = append(grades, migrations.Grade{
			VenueID:    venueUUID,
			UserID:     userUUID,
			Grade:      row.Grade,
			Percentile: row.Percentile,
		})
	}

	if err := p.tx.WithContext(ctx).Create(&grades).Error; err != nil {
		p.log.Error("failed to write grades", "venue_id", venueID, "error", err)
		return fmt.Errorf("failed to write grades: %w", err)
	}

	return nil
}

func (p *RankingDataPort) TouchVenueTimestamps(ctx context.Context, venueID string, fields ranking.TimestampFields) error {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}

	now := time.Now().UTC()
	updates := map[string]any{}
	if fields.RankUpdate {
		updates["latest_rank_update_date"] = now
	}
	if fields.ReviewersEvaluation {
		updates["latest_reviewers_evaluation_date"] = now
	}
	if fields.FinalGradesEvaluation {
		updates["latest_final_grades_evaluation_date"] = now
	}
	if fields.AlgoDescription != "" {
		updates["ranking_algo_description"] = fields.AlgoDescription
	}

	if len(updates) == 0 {
		return nil
	}

	if err := p.tx.WithContext(ctx).
		Model(&migrations.Venue{}).
		Where("id = ?", venueUUID).
		Updates(updates).Error; err != nil {
		p.log.Error("failed to touch venue timestamps", "venue_id", venueID, "error", err)
		return fmt.Errorf("failed to touch venue timestamps: %w", err)
	}

	return nil
}

func (p *RankingDataPort) Commit(ctx context.Context) error {
	if err := p.tx.WithContext(ctx).Commit().Error; err != nil {
		p.log.Error("failed to commit ranking transaction", "error", err)
		return fmt.Errorf("failed to commit ranking transaction: %w", err)
	}
	return nil
}

// Rollback aborts the underlying transaction. Handlers should defer this
// immediately after construction; it is a no-op once Commit succeeds.
func (p *RankingDataPort) Rollback() {
	p.tx.Rollback()
}

// RecordTaskOffer logs a submission being offered to a reviewer. It sits
// outside ranking.DataPort because the engine itself never issues a
// task offer on its own: the handler calls this after NextTask succeeds.
func (p *RankingDataPort) RecordTaskOffer(ctx context.Context, venueID, submissionID, userID string) error {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}
	submissionUUID, err := uuid.Parse(submissionID)
	if err != nil {
		return fmt.Errorf("invalid submission id: %w", err)
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	task := migrations.Task{
		VenueID:      venueUUID,
		SubmissionID: submissionUUID,
		UserID:       userUUID,
	}

	if err := p.tx.WithContext(ctx).Create(&task).Error; err != nil {
		p.log.Error("failed to record task offer", "venue_id", venueID, "submission_id", submissionID, "user_id", userID, "error", err)
		return fmt.Errorf("failed to record task offer: %w", err)
	}

	return nil
}

// CreateComparison persists the raw ordering a reviewer submitted. It
// sits outside ranking.DataPort because the engine's RecordComparison
// only folds the ordering into belief updates -- the handler is
// responsible for keeping the audit trail ListComparisons reads from.
func (p *RankingDataPort) CreateComparison(ctx context.Context, venueID, userID string, ordering []string, newItem string, isValid bool) error {
	venueUUID, err := uuid.Parse(venueID)
	if err != nil {
		return fmt.Errorf("invalid venue id: %w", err)
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	comparison := migrations.Comparison{
		VenueID:  venueUUID,
		UserID:   userUUID,
		Ordering: pq.StringArray(ordering),
		NewItem:  newItem,
		IsValid:  isValid,
	}

	if err := p.tx.WithContext(ctx).Create(&comparison).Error; err != nil {
		p.log.Error("failed to create comparison", "venue_id", venueID, "user_id", userID, "error", err)
		return fmt.Errorf("failed to create comparison: %w", err)
	}

	return nil
}

func toComparisonRecords(comparisons []migrations.Comparison) []ranking.ComparisonRecord {
	records := make([]ranking.ComparisonRecord, 0, len(comparisons))
	for _, c := range comparisons {
		records = append(records, ranking.ComparisonRecord{
			UserID:   c.UserID.String(),
			Ordering: append([]string(nil), pq.StringArray(c.Ordering)...),
			NewItem:  c.NewItem,
			IsValid:  c.IsValid,
			Date:     c.SubmittedAt,
		})
	}
	return records
}
