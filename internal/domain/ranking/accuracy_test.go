package ranking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy_ScoresLastOrderingOnly(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addComparison(ComparisonRecord{
		UserID:   "reviewer",
		Ordering: []string{"i2", "i1"}, // stored highest-first: i2 is best
		IsValid:  true,
		Date:     time.Now().Add(-time.Hour),
	})
	port.addComparison(ComparisonRecord{
		UserID:   "reviewer",
		Ordering: []string{"i1", "i2"}, // most recent: i1 is best
		IsValid:  true,
		Date:     time.Now(),
	})

	a := NewAccuracy(port)
	require.NoError(t, a.EvaluateContributors(context.Background(), "v1"))

	row, ok := port.accuracy["reviewer"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, row.Accuracy, 0.0)
	assert.LessOrEqual(t, row.Accuracy, 1.0)
	assert.Equal(t, 2, row.NRatings)
}

func TestAccuracy_DeletesRowWhenNoValidComparison(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addComparison(ComparisonRecord{UserID: "ghost", Ordering: []string{"i1", "i2"}, IsValid: false, Date: time.Now()})
	port.accuracy["ghost"] = UserAccuracyRow{UserID: "ghost", Accuracy: 0.9}

	a := NewAccuracy(port)
	require.NoError(t, a.EvaluateContributors(context.Background(), "v1"))

	_, ok := port.accuracy["ghost"]
	assert.False(t, ok, "stale accuracy row must be removed when the user has no valid comparison")
}

func TestAccuracy_MissingVenueConfigDefaultsToFive(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addComparison(ComparisonRecord{UserID: "reviewer", Ordering: []string{"i2", "i1"}, IsValid: true, Date: time.Now()})

	a := NewAccuracy(port)
	require.NoError(t, a.EvaluateContributors(context.Background(), "v1"))
	// With the default normalizer of 5 the raw single-pair consistency
	// score (at most 1) can never saturate the min(1, .) clamp.
	assert.Less(t, port.accuracy["reviewer"].Accuracy, 1.0)
}
