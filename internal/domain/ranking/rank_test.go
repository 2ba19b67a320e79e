package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPool(ids ...string) []float64 {
	params := make([]float64, 0, len(ids)*2)
	for range ids {
		params = append(params, DefaultMu, DefaultSigma)
	}
	return params
}

func TestRank_UpdateNarrowsBeliefAndReordersMeans(t *testing.T) {
	ids := []string{"i1", "i2"}
	rank := NewRank(ids, defaultPool(ids...), 0.6)

	before1, _ := rank.Belief("i1")
	before2, _ := rank.Belief("i2")

	result := rank.Update([]string{"i1", "i2"}, "", 0.6)
	require.Contains(t, result, "i1")
	require.Contains(t, result, "i2")

	assert.Greater(t, result["i2"].Mu, result["i1"].Mu, "winner should end up with a higher mean")
	assert.Less(t, result["i1"].Sigma, before1.Sigma, "loser belief should narrow")
	assert.Less(t, result["i2"].Sigma, before2.Sigma, "winner belief should narrow")
}

func TestRank_UpdateReturnsEveryConstructedItem(t *testing.T) {
	ids := []string{"a", "b", "c"}
	rank := NewRank(ids, defaultPool(ids...), 0.5)

	result := rank.Update([]string{"a", "b"}, "", 0.5)
	assert.Len(t, result, 3, "update must summarise every known item, not just the ordered subset")
	assert.Contains(t, result, "c")
}

func TestRank_SampleItemNeverReturnsBlacklisted(t *testing.T) {
	ids := []string{"x", "y", "z"}
	rank := NewRank(ids, defaultPool(ids...), 0.5)

	for i := 0; i < 50; i++ {
		got := rank.SampleItem([]string{"x"}, []string{"y", "z"})
		assert.Equal(t, "x", got)
	}
}

func TestRank_SampleItemUniformWhenNoOldItems(t *testing.T) {
	ids := []string{"only"}
	rank := NewRank(ids, defaultPool(ids...), 0.5)
	got := rank.SampleItem(nil, nil)
	assert.Equal(t, "only", got)
}

func TestRank_EvaluateOrderingRewardsConsistency(t *testing.T) {
	ids := []string{"lo", "hi"}
	params := []float64{500, 50, 1500, 50}
	rank := NewRank(ids, params, 0.5)

	consistent := rank.EvaluateOrdering([]string{"lo", "hi"})
	inconsistent := rank.EvaluateOrdering([]string{"hi", "lo"})
	assert.Greater(t, consistent, inconsistent)
}

func TestRank_EvaluateOrderingUsingDirichletIsNormalized(t *testing.T) {
	ids := []string{"a", "b", "c"}
	rank := NewRank(ids, defaultPool(ids...), 0.5)

	val := rank.EvaluateOrderingUsingDirichlet([]string{"a", "b", "c"})
	assert.GreaterOrEqual(t, val, 0.0)
	assert.LessOrEqual(t, val, 1.0)

	assert.Zero(t, rank.EvaluateOrderingUsingDirichlet([]string{"a"}))
}

func TestCost_ZeroCoefficientCollapsesToNil(t *testing.T) {
	assert.Nil(t, NewCost(0))
	assert.NotNil(t, NewCost(0.5))
}
