package migrations

import "gorm.io/gorm"

// migration003Up creates performance indexes
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",

		"CREATE INDEX IF NOT EXISTS idx_venues_author ON venues(author_id)",
		"CREATE INDEX IF NOT EXISTS idx_venues_stage ON venues(stage)",
		"CREATE INDEX IF NOT EXISTS idx_venues_dates ON venues(start_date, end_date)",

		"CREATE INDEX IF NOT EXISTS idx_submissions_venue ON submissions(venue_id)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_author ON submissions(author_id)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_percentile ON submissions(percentile DESC)",

		"CREATE INDEX IF NOT EXISTS idx_comparisons_venue ON comparisons(venue_id)",
		"CREATE INDEX IF NOT EXISTS idx_comparisons_user ON comparisons(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_comparisons_venue_user ON comparisons(venue_id, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_comparisons_submitted_at ON comparisons(submitted_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_comparisons_valid ON comparisons(is_valid)",

		"CREATE INDEX IF NOT EXISTS idx_tasks_venue_submission ON tasks(venue_id, submission_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_venue_user ON tasks(venue_id, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_offered_at ON tasks(offered_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_user_accuracy_venue ON user_accuracy(venue_id)",
		"CREATE INDEX IF NOT EXISTS idx_user_accuracy_reputation ON user_accuracy(reputation DESC)",

		"CREATE INDEX IF NOT EXISTS idx_grades_venue ON grades(venue_id)",
		"CREATE INDEX IF NOT EXISTS idx_grades_percentile ON grades(percentile DESC)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops performance indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"idx_users_email",
		"idx_users_role",
		"idx_venues_author",
		"idx_venues_stage",
		"idx_venues_dates",
		"idx_submissions_venue",
		"idx_submissions_author",
		"idx_submissions_percentile",
		"idx_comparisons_venue",
		"idx_comparisons_user",
		"idx_comparisons_venue_user",
		"idx_comparisons_submitted_at",
		"idx_comparisons_valid",
		"idx_tasks_venue_submission",
		"idx_tasks_venue_user",
		"idx_tasks_offered_at",
		"idx_user_accuracy_venue",
		"idx_user_accuracy_reputation",
		"idx_grades_venue",
		"idx_grades_percentile",
	}

	for _, index := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + index).Error; err != nil {
			return err
		}
	}

	return nil
}
