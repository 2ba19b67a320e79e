package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_ShortOrderingIsNoOp(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	p := NewProcessor(port)

	require.NoError(t, p.ProcessComparison(context.Background(), "v1", "reviewer", nil, "", 0.6))
	require.NoError(t, p.ProcessComparison(context.Background(), "v1", "reviewer", []string{"i1"}, "", 0.6))
	assert.Empty(t, port.beliefs, "no-op paths must not write any belief")
}

func TestProcessor_TwoItemComparisonNarrowsAndOrdersBeliefs(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	p := NewProcessor(port)

	err := p.ProcessComparison(context.Background(), "v1", "reviewer", []string{"i1", "i2"}, "", 0.6)
	require.NoError(t, err)

	b1 := port.beliefs["i1"]
	b2 := port.beliefs["i2"]
	assert.Greater(t, b2.Mu, b1.Mu, "i2 beat i1 so it should end up with a higher mean")
	assert.Less(t, b1.Sigma, DefaultSigma)
	assert.Less(t, b2.Sigma, DefaultSigma)
	assert.Len(t, port.touched, 1)
	assert.True(t, port.touched[0].RankUpdate)
}
