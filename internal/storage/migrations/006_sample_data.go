package migrations

import "gorm.io/gorm"

// migration006Up inserts sample data for local development
func migration006Up(db *gorm.DB) error {
	// password_hash below is the bcrypt digest of "changeme123" — only usable
	// for local/dev seeding, never a secret worth protecting.
	usersSQL := `
        INSERT INTO users (id, name, lastname, email, password_hash, role) VALUES
            ('650e8400-e29b-41d4-a716-446655440000', 'System', 'Administrator', 'admin@rankengine.dev', '$2a$10$CwTycUXWue0Thq9StjUM0uJ8Nso5ZqWQ2JQOzBQ2Yhi5L9gG6Fa1C', 'admin'),
            ('650e8400-e29b-41d4-a716-446655440001', 'Alice', 'Reviewer', 'alice@rankengine.dev', '$2a$10$CwTycUXWue0Thq9StjUM0uJ8Nso5ZqWQ2JQOzBQ2Yhi5L9gG6Fa1C', 'reviewer'),
            ('650e8400-e29b-41d4-a716-446655440002', 'Bob', 'Reviewer', 'bob@rankengine.dev', '$2a$10$CwTycUXWue0Thq9StjUM0uJ8Nso5ZqWQ2JQOzBQ2Yhi5L9gG6Fa1C', 'reviewer'),
            ('650e8400-e29b-41d4-a716-446655440003', 'Carol', 'Reviewer', 'carol@rankengine.dev', '$2a$10$CwTycUXWue0Thq9StjUM0uJ8Nso5ZqWQ2JQOzBQ2Yhi5L9gG6Fa1C', 'reviewer'),
            ('650e8400-e29b-41d4-a716-446655440004', 'David', 'Reviewer', 'david@rankengine.dev', '$2a$10$CwTycUXWue0Thq9StjUM0uJ8Nso5ZqWQ2JQOzBQ2Yhi5L9gG6Fa1C', 'reviewer')
        ON CONFLICT (email) DO NOTHING
    `

	if err := db.Exec(usersSQL).Error; err != nil {
		return err
	}

	venueSQL := `
        INSERT INTO venues (
            id, name, description, author_id, start_date, end_date, stage,
            number_of_submissions_per_reviewer, can_rank_own_submissions,
            rank_cost_coefficient, ranking_algo_description
        ) VALUES (
            '750e8400-e29b-41d4-a716-446655440000',
            'Sample Review Round 2026',
            'A demo venue seeded for local development of the ranking engine.',
            '650e8400-e29b-41d4-a716-446655440000',
            '2026-01-15 00:00:00+00',
            '2026-06-30 23:59:59+00',
            'review',
            5,
            FALSE,
            0.1,
            'Gaussian-belief pairwise comparison ranking with reputation-weighted updates'
        ) ON CONFLICT (id) DO NOTHING
    `

	if err := db.Exec(venueSQL).Error; err != nil {
		return err
	}

	submissionsSQL := `
        INSERT INTO submissions (id, venue_id, author_id, title, file_path) VALUES
            ('850e8400-e29b-41d4-a716-446655440000', '750e8400-e29b-41d4-a716-446655440000', '650e8400-e29b-41d4-a716-446655440001', 'Submission from Alice', '/uploads/alice.pdf'),
            ('850e8400-e29b-41d4-a716-446655440001', '750e8400-e29b-41d4-a716-446655440000', '650e8400-e29b-41d4-a716-446655440002', 'Submission from Bob', '/uploads/bob.pdf'),
            ('850e8400-e29b-41d4-a716-446655440002', '750e8400-e29b-41d4-a716-446655440000', '650e8400-e29b-41d4-a716-446655440003', 'Submission from Carol', '/uploads/carol.pdf'),
            ('850e8400-e29b-41d4-a716-446655440003', '750e8400-e29b-41d4-a716-446655440000', '650e8400-e29b-41d4-a716-446655440004', 'Submission from David', '/uploads/david.pdf')
        ON CONFLICT (id) DO NOTHING
    `

	if err := db.Exec(submissionsSQL).Error; err != nil {
		return err
	}

	return nil
}

// migration006Down removes sample data
func migration006Down(db *gorm.DB) error {
	queries := []string{
		"DELETE FROM submissions WHERE venue_id = '750e8400-e29b-41d4-a716-446655440000'",
		"DELETE FROM venues WHERE id = '750e8400-e29b-41d4-a716-446655440000'",
		"DELETE FROM users WHERE email IN ('admin@rankengine.dev', 'alice@rankengine.dev', 'bob@rankengine.dev', 'carol@rankengine.dev', 'david@rankengine.dev')",
	}

	for _, query := range queries {
		if err := db.Exec(query).Error; err != nil {
			return err
		}
	}

	return nil
}
