package ranking

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReputation_EmptyVenueIsNoOp(t *testing.T) {
	port := newMemPort()
	r := NewReputation(port)

	require.NoError(t, r.RunReputationSystem(context.Background(), "v1", 0.5, 4, nil))
	assert.Empty(t, port.grades)
	assert.Empty(t, port.touched)
}

func TestReputation_ChronologicalModeProducesOneGradeRowPerUser(t *testing.T) {
	port := newMemPort()
	port.addItem("subA", "alice")
	port.addItem("subB", "bob")
	port.addItem("subC", "carol")
	port.addComparison(ComparisonRecord{UserID: "alice", Ordering: []string{"subB", "subA"}, IsValid: true, Date: time.Now().Add(-3 * time.Hour)})
	port.addComparison(ComparisonRecord{UserID: "bob", Ordering: []string{"subC", "subB"}, IsValid: true, Date: time.Now().Add(-2 * time.Hour)})
	port.addComparison(ComparisonRecord{UserID: "dave", Ordering: []string{"subA", "subC"}, IsValid: true, Date: time.Now().Add(-time.Hour)})

	r := NewReputation(port)
	require.NoError(t, r.RunReputationSystem(context.Background(), "v1", 0.5, 4, nil))

	users := map[string]bool{}
	for _, row := range port.grades {
		users[row.UserID] = true
	}
	assert.True(t, users["alice"])
	assert.True(t, users["bob"])
	assert.True(t, users["carol"])
	assert.True(t, users["dave"], "a reviewer with no submission still gets a grade row")

	percentiles := make(map[float64]bool)
	for _, row := range port.grades {
		percentiles[row.Percentile] = true
	}
	assert.Len(t, percentiles, len(port.grades), "percentiles must be distinct per §3 invariant 5")
}

func TestReputation_FinalGradeFormula(t *testing.T) {
	port := newMemPort()
	port.addItem("sA", "u1")
	port.addItem("sB", "u2")
	port.addItem("sC", "u3")

	userIDs := []string{"u1", "u2", "u3"}
	submissionGrade := map[string]float64{"u1": 0.9, "u2": 0.5, "u3": 0.1}
	reputation := map[string]float64{"u1": 0.6, "u2": 0.4, "u3": 0.0}

	percentile, finalGrade := computeFinalGrades(userIDs, submissionGrade, reputation)

	assert.InDelta(t, 0.8, finalGrade["u1"], 1e-9)
	assert.InDelta(t, 0.4667, finalGrade["u2"], 1e-3)
	assert.InDelta(t, 0.0667, finalGrade["u3"], 1e-3)

	assert.InDelta(t, 100.0, percentile["u1"], 1e-9)
	assert.InDelta(t, 66.67, percentile["u2"], 1e-2)
	assert.InDelta(t, 33.33, percentile["u3"], 1e-2)
}

func TestReputation_SmallAlphaOracleOutperformsNoise(t *testing.T) {
	port := newMemPort()
	// A handful of submissions with a clear quality gradient.
	items := []string{"s1", "s2", "s3", "s4", "s5"}
	for i, id := range items {
		port.addItem(id, "author"+string(rune('A'+i)))
	}

	base := time.Now().Add(-time.Hour)
	// The oracle always reports the true ascending order.
	port.addComparison(ComparisonRecord{UserID: "oracle", Ordering: reversed(items), IsValid: true, Date: base})
	// The noise source reports a scrambled, inconsistent order.
	port.addComparison(ComparisonRecord{UserID: "noise", Ordering: []string{"s3", "s1", "s5", "s2", "s4"}, IsValid: true, Date: base})

	r := NewReputation(port).WithRand(rand.New(rand.NewSource(42)))
	k := 10
	require.NoError(t, r.RunReputationSystem(context.Background(), "v1", 0.5, 4, &k))

	oracleRow := port.accuracy["oracle"]
	noiseRow := port.accuracy["noise"]
	require.NotNil(t, oracleRow.Reputation)
	require.NotNil(t, noiseRow.Reputation)
	assert.Greater(t, *oracleRow.Reputation, *noiseRow.Reputation)
}

func TestReputation_RankWithoutRepSystemMatchesSinglePass(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addComparison(ComparisonRecord{UserID: "reviewer", Ordering: []string{"i2", "i1"}, IsValid: true, Date: time.Now()})

	r := NewReputation(port)
	require.NoError(t, r.RankWithoutRepSystem(context.Background(), "v1"))
	assert.NotEmpty(t, port.grades)
	last := port.touched[len(port.touched)-1]
	assert.Equal(t, "Ranking without reputation system. All comparisons are used in chronological order", last.AlgoDescription)
}

func TestReputation_ReprocessTwiceReplaysBothDirections(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addComparison(ComparisonRecord{UserID: "reviewer", Ordering: []string{"i2", "i1"}, IsValid: true, Date: time.Now()})

	r := NewReputation(port)
	require.NoError(t, r.Reprocess(context.Background(), "v1", 0.5, true))
	assert.NotEmpty(t, port.beliefs)
}
