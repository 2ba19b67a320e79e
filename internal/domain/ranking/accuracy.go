package ranking

import "context"

// DefaultSubmissionsPerReviewer is the fallback normalizer for raw
// accuracy when a venue has no configured value (MissingVenueConfig).
const DefaultSubmissionsPerReviewer = 5

// Accuracy scores each reviewer's most recent valid ordering against the
// current belief model.
type Accuracy struct {
	port DataPort
}

// NewAccuracy wires an Accuracy evaluator to its data port.
func NewAccuracy(port DataPort) *Accuracy {
	return &Accuracy{port: port}
}

// EvaluateContributors scores every reviewer who produced at least one
// comparison in the venue against their last valid ordering, upserts
// user_accuracy, and stamps the venue's evaluation timestamp. Reviewers
// with no valid comparison have any existing accuracy row removed.
func (a *Accuracy) EvaluateContributors(ctx context.Context, venueID string) error {
	items, err := a.port.ListItems(ctx, venueID)
	if err != nil {
		return wrapStorage("list_items", err)
	}
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, 0, len(items))
	qparams := make([]float64, 0, len(items)*2)
	for _, it := range items {
		mu, sigma := DefaultMu, DefaultSigma
		if it.Mu != nil {
			mu = *it.Mu
		}
		if it.Sigma != nil && *it.Sigma > 0 {
			sigma = *it.Sigma
		}
		ids = append(ids, it.ID)
		qparams = append(qparams, mu, sigma)
	}
	rank := NewRank(ids, qparams, 1.0)

	comparisons, err := a.port.ListComparisons(ctx, venueID, Chronological)
	if err != nil {
		return wrapStorage("list_comparisons", err)
	}
	users := make(map[string]bool)
	latestValid := make(map[string]ComparisonRecord)
	for _, c := range comparisons {
		users[c.UserID] = true
		if c.IsValid {
			latestValid[c.UserID] = c
		}
	}

	cfg, err := a.port.VenueConfig(ctx, venueID)
	if err != nil {
		return wrapStorage("venue_config", err)
	}
	expected := DefaultSubmissionsPerReviewer
	if cfg.NumberOfSubmissionsPerReviewer != nil && *cfg.NumberOfSubmissionsPerReviewer > 0 {
		expected = *cfg.NumberOfSubmissionsPerReviewer
	}

	for user := range users {
		last, ok, err := a.port.LatestComparison(ctx, venueID, user)
		if err != nil {
			return wrapStorage("latest_comparison", err)
		}
		if ok && !last.IsValid {
			last, ok = latestValid[user]
		}
		if !ok {
			if err := a.port.DeleteUserAccuracy(ctx, venueID, user); err != nil {
				return wrapStorage("delete_user_accuracy", err)
			}
			continue
		}

		ordering := reversed(last.Ordering)
		raw := rank.EvaluateOrdering(ordering)
		value := raw / float64(expected)
		if value > 1 {
			value = 1
		}

		if err := a.port.UpsertUserAccuracy(ctx, venueID, UserAccuracyRow{
			UserID:     user,
			Accuracy:   value,
			Reputation: nil,
			NRatings:   len(ordering),
		}); err != nil {
			return wrapStorage("upsert_user_accuracy", err)
		}
	}

	if err := a.port.TouchVenueTimestamps(ctx, venueID, TimestampFields{ReviewersEvaluation: true}); err != nil {
		return wrapStorage("touch_venue_timestamps", err)
	}
	return a.port.Commit(ctx)
}

func reversed(s []string) []string {
	r := make([]string, len(s))
	for i, v := range s {
		r[len(s)-1-i] = v
	}
	return r
}
