package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/rankengine-api/internal/domain/ranking"
)

func newTestPort(t *testing.T) *Port {
	t.Helper()
	p, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPort_ListItemsReflectsWrittenBeliefs(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	require.NoError(t, p.SeedSubmission(ctx, "v1", "i1", "a1"))
	require.NoError(t, p.SeedSubmission(ctx, "v1", "i2", "a2"))

	items, err := p.ListItems(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].Mu, "unprocessed item has no belief yet")

	require.NoError(t, p.WriteItemBelief(ctx, "v1", "i1", 1100, 200, nil))

	items, err = p.ListItems(ctx, "v1")
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == "i1" {
			require.NotNil(t, it.Mu)
			assert.Equal(t, 1100.0, *it.Mu)
		}
	}
}

func TestPort_ItemBeliefsDefaultsUnknownItems(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	beliefs, err := p.ItemBeliefs(ctx, "v1", []string{"missing"})
	require.NoError(t, err)
	require.Len(t, beliefs, 1)
	assert.Equal(t, ranking.DefaultMu, beliefs[0].Mu)
	assert.Equal(t, ranking.DefaultSigma, beliefs[0].Sigma)
}

func TestPort_CreateAndListComparisonsRoundTripsOrdering(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	require.NoError(t, p.CreateComparison(ctx, "v1", "u1", []string{"i2", "i1"}, "i2", true))

	records, err := p.ListComparisons(ctx, "v1", ranking.Chronological)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"i2", "i1"}, records[0].Ordering)
	assert.Equal(t, "i2", records[0].NewItem)
	assert.True(t, records[0].IsValid)

	latest, ok, err := p.LatestComparison(ctx, "v1", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, records[0].Ordering, latest.Ordering)

	_, ok, err = p.LatestComparison(ctx, "v1", "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPort_CountTasksAndRecordTaskOffer(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	count, err := p.CountTasks(ctx, "v1", "i1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, p.RecordTaskOffer(ctx, "v1", "i1", "u1"))
	require.NoError(t, p.RecordTaskOffer(ctx, "v1", "i1", "u2"))

	count, err = p.CountTasks(ctx, "v1", "i1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPort_ReplaceGradesOverwritesPreviousRows(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	require.NoError(t, p.ReplaceGrades(ctx, "v1", []ranking.GradeRow{
		{UserID: "u1", Grade: 7, Percentile: 0.5},
	}))
	require.NoError(t, p.ReplaceGrades(ctx, "v1", []ranking.GradeRow{
		{UserID: "u2", Grade: 9, Percentile: 0.9},
	}))

	var count int
	require.NoError(t, p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grades WHERE venue_id = ?`, "v1").Scan(&count))
	assert.Equal(t, 1, count, "ReplaceGrades must clear prior rows for the venue")
}

func TestPort_TouchVenueTimestampsCreatesRowOnFirstTouch(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	err := p.TouchVenueTimestamps(ctx, "v1", ranking.TimestampFields{RankUpdate: true, AlgoDescription: "test run"})
	require.NoError(t, err)

	var desc string
	require.NoError(t, p.db.QueryRowContext(ctx, `SELECT ranking_algo_description FROM venues WHERE id = ?`, "v1").Scan(&desc))
	assert.Equal(t, "test run", desc)
}

func TestPort_UpsertAndDeleteUserAccuracy(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	require.NoError(t, p.UpsertUserAccuracy(ctx, "v1", ranking.UserAccuracyRow{UserID: "u1", Accuracy: 0.8, NRatings: 3}))
	require.NoError(t, p.UpsertUserAccuracy(ctx, "v1", ranking.UserAccuracyRow{UserID: "u1", Accuracy: 0.9, NRatings: 4}))

	var accuracy float64
	require.NoError(t, p.db.QueryRowContext(ctx, `SELECT accuracy FROM user_accuracy WHERE venue_id = ? AND user_id = ?`, "v1", "u1").Scan(&accuracy))
	assert.Equal(t, 0.9, accuracy)

	require.NoError(t, p.DeleteUserAccuracy(ctx, "v1", "u1"))
	err := p.db.QueryRowContext(ctx, `SELECT accuracy FROM user_accuracy WHERE venue_id = ? AND user_id = ?`, "v1", "u1").Scan(&accuracy)
	assert.Error(t, err, "row should be gone after delete")
}

func TestPort_EngineEndToEndOverSQLite(t *testing.T) {
	ctx := context.Background()
	p := newTestPort(t)

	require.NoError(t, p.SeedSubmission(ctx, "v1", "i1", "a1"))
	require.NoError(t, p.SeedSubmission(ctx, "v1", "i2", "a2"))

	engine := ranking.NewEngine(p)

	itemID, err := engine.NextTask(ctx, "v1", "reviewer", nil, true, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, itemID)

	require.NoError(t, engine.RecordComparison(ctx, "v1", "reviewer", []string{"i1", "i2"}, "i2", 0.6))

	items, err := p.ListItems(ctx, "v1")
	require.NoError(t, err)
	var i1, i2 *float64
	for _, it := range items {
		if it.ID == "i1" {
			i1 = it.Mu
		}
		if it.ID == "i2" {
			i2 = it.Mu
		}
	}
	require.NotNil(t, i1)
	require.NotNil(t, i2)
	assert.Greater(t, *i2, *i1, "i2 beat i1 in the ordering so it should end up ranked higher")
}
