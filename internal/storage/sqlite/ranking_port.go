// Package sqlite provides an embedded ranking.DataPort implementation
// for local development and rankctl --local: no external
// database process, a single file (or :memory:) store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gravadigital/rankengine-api/internal/domain/ranking"
	"github.com/gravadigital/rankengine-api/internal/logger"
)

// Port implements ranking.DataPort against an embedded SQLite database.
// Unlike the PostgreSQL adapter it does not open a transaction per
// construction -- SQLite's single-writer model serializes writes anyway,
// so Commit is a no-op kept only to satisfy the interface.
type Port struct {
	db  *sql.DB
	log *log.Logger
}

// Open creates (or attaches to) a SQLite-backed ranking store at path.
// Use ":memory:" for an ephemeral store, as this package's tests do.
func Open(path string) (*Port, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	p := &Port{db: db, log: logger.Ranking()}
	if err := p.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return p, nil
}

func (p *Port) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		venue_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		mu REAL,
		sigma REAL,
		percentile REAL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_venue ON submissions(venue_id);

	CREATE TABLE IF NOT EXISTS comparisons (
		id TEXT PRIMARY KEY,
		venue_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		ordering TEXT NOT NULL,
		new_item TEXT NOT NULL,
		is_valid INTEGER NOT NULL DEFAULT 1,
		submitted_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comparisons_venue ON comparisons(venue_id);
	CREATE INDEX IF NOT EXISTS idx_comparisons_venue_user ON comparisons(venue_id, user_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		venue_id TEXT NOT NULL,
		submission_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		offered_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_venue_submission ON tasks(venue_id, submission_id);

	CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		number_of_submissions_per_reviewer INTEGER,
		latest_rank_update_date DATETIME,
		latest_reviewers_evaluation_date DATETIME,
		latest_final_grades_evaluation_date DATETIME,
		ranking_algo_description TEXT
	);

	CREATE TABLE IF NOT EXISTS user_accuracy (
		venue_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		accuracy REAL NOT NULL,
		reputation REAL,
		n_ratings INTEGER NOT NULL,
		PRIMARY KEY (venue_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS grades (
		venue_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		grade REAL NOT NULL,
		percentile REAL NOT NULL,
		PRIMARY KEY (venue_id, user_id)
	);
	`
	_, err := p.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (p *Port) Close() error {
	return p.db.Close()
}

func (p *Port) ListItems(ctx context.Context, venueID string) ([]ranking.ItemRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, author_id, mu, sigma FROM submissions WHERE venue_id = ?`, venueID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []ranking.ItemRecord
	for rows.Next() {
		var item ranking.ItemRecord
		var mu, sigma sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.AuthorID, &mu, &sigma); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if mu.Valid {
			v := mu.Float64
			item.Mu = &v
		}
		if sigma.Valid {
			v := sigma.Float64
			item.Sigma = &v
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *Port) ItemBeliefs(ctx context.Context, venueID string, ids []string) ([]ranking.Belief, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	beliefs := make([]ranking.Belief, len(ids))
	for i, id := range ids {
		var mu, sigma sql.NullFloat64
		err := p.db.QueryRowContext(ctx, `SELECT mu, sigma FROM submissions WHERE venue_id = ? AND id = ?`, venueID, id).Scan(&mu, &sigma)
		if err == sql.ErrNoRows || !mu.Valid || !sigma.Valid {
			beliefs[i] = ranking.Belief{Mu: ranking.DefaultMu, Sigma: ranking.DefaultSigma}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("item belief: %w", err)
		}
		beliefs[i] = ranking.Belief{Mu: mu.Float64, Sigma: sigma.Float64}
	}
	return beliefs, nil
}

func (p *Port) ListComparisons(ctx context.Context, venueID string, order ranking.ComparisonOrder) ([]ranking.ComparisonRecord, error) {
	direction := "ASC"
	if order == ranking.ReverseChronological {
		direction = "DESC"
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT user_id, ordering, new_item, is_valid, submitted_at FROM comparisons WHERE venue_id = ? ORDER BY submitted_at `+direction,
		venueID)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	defer rows.Close()

	var records []ranking.ComparisonRecord
	for rows.Next() {
		record, err := scanComparison(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *Port) LatestComparison(ctx context.Context, venueID, userID string) (ranking.ComparisonRecord, bool, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT user_id, ordering, new_item, is_valid, submitted_at FROM comparisons
		 WHERE venue_id = ? AND user_id = ? ORDER BY submitted_at DESC LIMIT 1`,
		venueID, userID)

	record, err := scanComparison(row)
	if err == sql.ErrNoRows {
		return ranking.ComparisonRecord{}, false, nil
	}
	if err != nil {
		return ranking.ComparisonRecord{}, false, fmt.Errorf("latest comparison: %w", err)
	}
	return record, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComparison(row scanner) (ranking.ComparisonRecord, error) {
	var record ranking.ComparisonRecord
	var orderingJSON string
	var isValid int
	if err := row.Scan(&record.UserID, &orderingJSON, &record.NewItem, &isValid, &record.Date); err != nil {
		return ranking.ComparisonRecord{}, err
	}
	record.IsValid = isValid != 0
	if err := json.Unmarshal([]byte(orderingJSON), &record.Ordering); err != nil {
		return ranking.ComparisonRecord{}, fmt.Errorf("decode ordering: %w", err)
	}
	return record, nil
}

func (p *Port) CountTasks(ctx context.Context, venueID, itemID string) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE venue_id = ? AND submission_id = ?`, venueID, itemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (p *Port) VenueConfig(ctx context.Context, venueID string) (ranking.VenueConfig, error) {
	var perReviewer sql.NullInt64
	err := p.db.QueryRowContext(ctx,
		`SELECT number_of_submissions_per_reviewer FROM venues WHERE id = ?`, venueID).Scan(&perReviewer)
	if err == sql.ErrNoRows {
		return ranking.VenueConfig{}, nil
	}
	if err != nil {
		return ranking.VenueConfig{}, fmt.Errorf("venue config: %w", err)
	}
	if !perReviewer.Valid {
		return ranking.VenueConfig{}, nil
	}
	n := int(perReviewer.Int64)
	return ranking.VenueConfig{NumberOfSubmissionsPerReviewer: &n}, nil
}

func (p *Port) WriteItemBelief(ctx context.Context, venueID, itemID string, mu, sigma float64, percentile *float64) error {
	if percentile != nil {
		_, err := p.db.ExecContext(ctx,
			`UPDATE submissions SET mu = ?, sigma = ?, percentile = ? WHERE id = ? AND venue_id = ?`,
			mu, sigma, *percentile, itemID, venueID)
		if err != nil {
			return fmt.Errorf("write item belief: %w", err)
		}
		return nil
	}

	_, err := p.db.ExecContext(ctx,
		`UPDATE submissions SET mu = ?, sigma = ? WHERE id = ? AND venue_id = ?`, mu, sigma, itemID, venueID)
	if err != nil {
		return fmt.Errorf("write item belief: %w", err)
	}
	return nil
}

func (p *Port) UpsertUserAccuracy(ctx context.Context, venueID string, row ranking.UserAccuracyRow) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO user_accuracy (venue_id, user_id, accuracy, reputation, n_ratings) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(venue_id, user_id) DO UPDATE SET accuracy = excluded.accuracy, reputation = excluded.reputation, n_ratings = excluded.n_ratings`,
		venueID, row.UserID, row.Accuracy, row.Reputation, row.NRatings)
	if err != nil {
		return fmt.Errorf("upsert user accuracy: %w", err)
	}
	return nil
}

func (p *Port) DeleteUserAccuracy(ctx context.Context, venueID, userID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM user_accuracy WHERE venue_id = ? AND user_id = ?`, venueID, userID)
	if err != nil {
		return fmt.Errorf("delete user accuracy: %w", err)
	}
	return nil
}

func (p *Port) ReplaceGrades(ctx context.Context, venueID string, rows []ranking.GradeRow) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grades replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grades WHERE venue_id = ?`, venueID); err != nil {
		return fmt.Errorf("clear grades: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO grades (venue_id, user_id, grade, percentile) VALUES (?, ?, ?, ?)`,
			venueID, row.UserID, row.Grade, row.Percentile); err != nil {
			return fmt.Errorf("write grade: %w", err)
		}
	}

	return tx.Commit()
}

func (p *Port) TouchVenueTimestamps(ctx context.Context, venueID string, fields ranking.TimestampFields) error {
	now := time.Now().UTC()

	if _, err := p.db.ExecContext(ctx, `INSERT OR IGNORE INTO venues (id) VALUES (?)`, venueID); err != nil {
		return fmt.Errorf("ensure venue row: %w", err)
	}

	if fields.RankUpdate {
		if _, err := p.db.ExecContext(ctx, `UPDATE venues SET latest_rank_update_date = ? WHERE id = ?`, now, venueID); err != nil {
			return fmt.Errorf("touch rank update: %w", err)
		}
	}
	if fields.ReviewersEvaluation {
		if _, err := p.db.ExecContext(ctx, `UPDATE venues SET latest_reviewers_evaluation_date = ? WHERE id = ?`, now, venueID); err != nil {
			return fmt.Errorf("touch reviewers evaluation: %w", err)
		}
	}
	if fields.FinalGradesEvaluation {
		if _, err := p.db.ExecContext(ctx, `UPDATE venues SET latest_final_grades_evaluation_date = ? WHERE id = ?`, now, venueID); err != nil {
			return fmt.Errorf("touch final grades evaluation: %w", err)
		}
	}
	if fields.AlgoDescription != "" {
		if _, err := p.db.ExecContext(ctx, `UPDATE venues SET ranking_algo_description = ? WHERE id = ?`, fields.AlgoDescription, venueID); err != nil {
			return fmt.Errorf("touch algo description: %w", err)
		}
	}

	return nil
}

// Commit is a no-op: every write above commits as it executes.
func (p *Port) Commit(ctx context.Context) error {
	return nil
}

// RecordTaskOffer mirrors postgres.RankingDataPort.RecordTaskOffer for the
// embedded store, used by rankctl --local.
func (p *Port) RecordTaskOffer(ctx context.Context, venueID, submissionID, userID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO tasks (id, venue_id, submission_id, user_id, offered_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), venueID, submissionID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record task offer: %w", err)
	}
	return nil
}

// CreateComparison mirrors postgres.RankingDataPort.CreateComparison for
// the embedded store.
func (p *Port) CreateComparison(ctx context.Context, venueID, userID string, ordering []string, newItem string, isValid bool) error {
	orderingJSON, err := json.Marshal(ordering)
	if err != nil {
		return fmt.Errorf("encode ordering: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO comparisons (id, venue_id, user_id, ordering, new_item, is_valid, submitted_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), venueID, userID, string(orderingJSON), newItem, boolToInt(isValid), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create comparison: %w", err)
	}
	return nil
}

// SeedSubmission inserts a submission row directly, used by tests and
// rankctl --local to bootstrap a venue without going through the HTTP API.
func (p *Port) SeedSubmission(ctx context.Context, venueID, submissionID, authorID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO submissions (id, venue_id, author_id) VALUES (?, ?, ?)`,
		submissionID, venueID, authorID)
	if err != nil {
		return fmt.Errorf("seed submission: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
