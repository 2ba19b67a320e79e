package migrations

import "gorm.io/gorm"

// migration004Up creates validation functions, constraints and triggers
func migration004Up(db *gorm.DB) error {
	functions := []string{
		`CREATE OR REPLACE FUNCTION validate_comparison_ordering()
        RETURNS TRIGGER AS $$
        DECLARE
            ordering_len INTEGER;
            matching_submissions INTEGER;
        BEGIN
            ordering_len := array_length(NEW.ordering, 1);

            IF ordering_len IS NULL OR ordering_len < 2 THEN
                RAISE EXCEPTION 'Comparison ordering must contain at least two submissions, got %', ordering_len;
            END IF;

            SELECT COUNT(*) INTO matching_submissions
            FROM submissions
            WHERE id::text = ANY(NEW.ordering) AND venue_id = NEW.venue_id;

            IF matching_submissions != ordering_len THEN
                RAISE EXCEPTION 'Comparison ordering references submissions outside venue %', NEW.venue_id;
            END IF;

            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql`,

		`CREATE OR REPLACE FUNCTION touch_venue_on_submission_belief()
        RETURNS TRIGGER AS $$
        BEGIN
            IF NEW.mu IS DISTINCT FROM OLD.mu OR NEW.sigma IS DISTINCT FROM OLD.sigma THEN
                UPDATE venues SET latest_rank_update_date = CURRENT_TIMESTAMP WHERE id = NEW.venue_id;
            END IF;
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql`,
	}

	for _, funcSQL := range functions {
		if err := db.Exec(funcSQL).Error; err != nil {
			return err
		}
	}

	triggers := []string{
		"CREATE TRIGGER trigger_validate_comparison_ordering BEFORE INSERT OR UPDATE ON comparisons FOR EACH ROW EXECUTE FUNCTION validate_comparison_ordering()",
		"CREATE TRIGGER trigger_touch_venue_on_submission_belief AFTER UPDATE ON submissions FOR EACH ROW EXECUTE FUNCTION touch_venue_on_submission_belief()",
	}

	for _, triggerSQL := range triggers {
		if err := db.Exec(triggerSQL).Error; err != nil {
			return err
		}
	}

	constraints := []string{
		"ALTER TABLE users ADD CONSTRAINT valid_email CHECK (email ~* '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,}$')",
		"ALTER TABLE users ADD CONSTRAINT valid_password_hash CHECK (LENGTH(password_hash) > 0)",
		"ALTER TABLE venues ADD CONSTRAINT valid_venue_dates CHECK (end_date > start_date)",
		"ALTER TABLE venues ADD CONSTRAINT valid_submissions_per_reviewer CHECK (number_of_submissions_per_reviewer IS NULL OR number_of_submissions_per_reviewer > 0)",
		"ALTER TABLE venues ADD CONSTRAINT valid_rank_cost_coefficient CHECK (rank_cost_coefficient >= 0)",
		"ALTER TABLE submissions ADD CONSTRAINT valid_sigma CHECK (sigma IS NULL OR sigma > 0)",
		"ALTER TABLE submissions ADD CONSTRAINT valid_percentile CHECK (percentile IS NULL OR (percentile >= 0 AND percentile <= 100))",
		"ALTER TABLE comparisons ADD CONSTRAINT valid_ordering_length CHECK (array_length(ordering, 1) >= 2)",
		"ALTER TABLE user_accuracy ADD CONSTRAINT valid_accuracy CHECK (accuracy >= 0 AND accuracy <= 1)",
		"ALTER TABLE user_accuracy ADD CONSTRAINT valid_n_ratings CHECK (n_ratings >= 0)",
		"ALTER TABLE grades ADD CONSTRAINT valid_grade_percentile CHECK (percentile >= 0 AND percentile <= 100)",
	}

	for _, constraintSQL := range constraints {
		db.Exec(constraintSQL)
	}

	return nil
}

// migration004Down drops constraints and triggers
func migration004Down(db *gorm.DB) error {
	db.Exec("DROP TRIGGER IF EXISTS trigger_validate_comparison_ordering ON comparisons CASCADE")
	db.Exec("DROP TRIGGER IF EXISTS trigger_touch_venue_on_submission_belief ON submissions CASCADE")

	functions := []string{
		"validate_comparison_ordering",
		"touch_venue_on_submission_belief",
	}

	for _, function := range functions {
		if err := db.Exec("DROP FUNCTION IF EXISTS " + function + " CASCADE").Error; err != nil {
			return err
		}
	}

	return nil
}
