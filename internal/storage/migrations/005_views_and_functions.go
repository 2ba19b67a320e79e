package migrations

import "gorm.io/gorm"

// migration005Up creates analytical views for venue monitoring
func migration005Up(db *gorm.DB) error {
	views := []string{
		`CREATE VIEW venue_summary AS
        SELECT
            v.id as venue_id,
            v.name as venue_name,
            v.stage,
            COUNT(DISTINCT s.id) as total_submissions,
            COUNT(DISTINCT s.id) FILTER (WHERE s.mu IS NOT NULL) as ranked_submissions,
            COUNT(DISTINCT c.id) as total_comparisons,
            COUNT(DISTINCT c.user_id) as active_reviewers,
            v.latest_rank_update_date,
            v.latest_reviewers_evaluation_date,
            v.latest_final_grades_evaluation_date
        FROM venues v
        LEFT JOIN submissions s ON s.venue_id = v.id
        LEFT JOIN comparisons c ON c.venue_id = v.id
        GROUP BY v.id, v.name, v.stage, v.latest_rank_update_date,
                 v.latest_reviewers_evaluation_date, v.latest_final_grades_evaluation_date`,

		`CREATE VIEW reviewer_leaderboard AS
        SELECT
            ua.venue_id,
            ua.user_id,
            u.name,
            u.lastname,
            ua.accuracy,
            ua.reputation,
            ua.n_ratings,
            RANK() OVER (PARTITION BY ua.venue_id ORDER BY ua.reputation DESC NULLS LAST) as reputation_rank
        FROM user_accuracy ua
        JOIN users u ON u.id = ua.user_id`,

		`CREATE VIEW submission_rankings AS
        SELECT
            s.venue_id,
            s.id as submission_id,
            s.title,
            s.author_id,
            s.mu,
            s.sigma,
            s.percentile,
            g.grade,
            RANK() OVER (PARTITION BY s.venue_id ORDER BY s.percentile DESC NULLS LAST) as rank_position
        FROM submissions s
        LEFT JOIN grades g ON g.venue_id = s.venue_id AND g.user_id = s.author_id`,
	}

	for _, viewSQL := range views {
		if err := db.Exec(viewSQL).Error; err != nil {
			return err
		}
	}

	comments := []string{
		"COMMENT ON TABLE users IS 'Reviewers and administrators'",
		"COMMENT ON TABLE venues IS 'A ranking/grading round over a pool of submissions and reviewers'",
		"COMMENT ON TABLE submissions IS 'An item being ranked, carrying a Gaussian belief (mu, sigma) over its quality'",
		"COMMENT ON TABLE comparisons IS 'One reviewer-submitted ordering over a handful of submissions, best first'",
		"COMMENT ON TABLE tasks IS 'Record of a submission offered to a reviewer, used to balance offer frequency'",
		"COMMENT ON TABLE user_accuracy IS 'Venue-scoped reviewer accuracy and derived reputation'",
		"COMMENT ON TABLE grades IS 'Venue-scoped final grade and percentile for a submission author'",

		"COMMENT ON COLUMN submissions.mu IS 'Posterior mean of the submission quality belief'",
		"COMMENT ON COLUMN submissions.sigma IS 'Posterior standard deviation of the submission quality belief'",
		"COMMENT ON COLUMN comparisons.ordering IS 'Submission IDs ordered from highest to lowest perceived quality'",
		"COMMENT ON COLUMN user_accuracy.accuracy IS 'Consistency of the reviewer''s latest valid ordering with the current beliefs, normalised and capped at 1'",
		"COMMENT ON COLUMN user_accuracy.reputation IS 'Fixed-point reputation score derived from accuracy across rounds'",
	}

	for _, commentSQL := range comments {
		db.Exec(commentSQL)
	}

	return nil
}

// migration005Down drops analytical views
func migration005Down(db *gorm.DB) error {
	views := []string{
		"submission_rankings",
		"reviewer_leaderboard",
		"venue_summary",
	}

	for _, view := range views {
		if err := db.Exec("DROP VIEW IF EXISTS " + view + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
