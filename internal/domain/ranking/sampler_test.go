package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampler_EmptyVenueReturnsNoItem(t *testing.T) {
	port := newMemPort()
	s := NewSampler(port)

	got, err := s.GetItem(context.Background(), "v1", "userA", nil, false, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSampler_SingleItemNotOwnedByAuthor(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "author")
	s := NewSampler(port)

	got, err := s.GetItem(context.Background(), "v1", "reviewer", nil, false, 0)
	require.NoError(t, err)
	assert.Equal(t, "i1", got)

	got, err = s.GetItem(context.Background(), "v1", "author", nil, false, 0)
	require.NoError(t, err)
	assert.Empty(t, got, "authors are never offered their own submission unless can_rank_own_submissions")
}

func TestSampler_LoadBalancingPrefersRarestItem(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addItem("i3", "a3")
	port.tasks["i1"] = 5
	port.tasks["i2"] = 5
	port.tasks["i3"] = 0
	s := NewSampler(port)

	got, err := s.GetItem(context.Background(), "v1", "reviewer", nil, false, 0)
	require.NoError(t, err)
	assert.Equal(t, "i3", got)
}

func TestSampler_NeverReturnsOldItems(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	s := NewSampler(port)

	got, err := s.GetItem(context.Background(), "v1", "reviewer", []string{"i1"}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, "i2", got)
}

func TestSampler_TiedRareItemsNeverReturnOldItems(t *testing.T) {
	port := newMemPort()
	port.addItem("i1", "a1")
	port.addItem("i2", "a2")
	port.addItem("i3", "a3")
	port.addItem("i4", "a4")
	s := NewSampler(port)

	for i := 0; i < 50; i++ {
		got, err := s.GetItem(context.Background(), "v1", "reviewer", []string{"i1", "i2"}, false, 0)
		require.NoError(t, err)
		assert.NotEqual(t, "i1", got, "i1 is in oldItems and tied for least offered, it must never be returned")
		assert.NotEqual(t, "i2", got, "i2 is in oldItems and tied for least offered, it must never be returned")
		assert.Contains(t, []string{"i3", "i4"}, got)
	}
}
