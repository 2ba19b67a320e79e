package ranking

import (
	"context"
	"sort"
)

// memPort is an in-memory DataPort used across the package's tests. It
// mirrors the narrow contract a Postgres-backed port exposes, without any
// database dependency.
type memPort struct {
	items       map[string]ItemRecord
	order       []string
	tasks       map[string]int
	comparisons []ComparisonRecord
	config      VenueConfig

	beliefs  map[string]Belief
	accuracy map[string]UserAccuracyRow
	grades   []GradeRow
	touched  []TimestampFields
}

func newMemPort() *memPort {
	return &memPort{
		items:    make(map[string]ItemRecord),
		tasks:    make(map[string]int),
		beliefs:  make(map[string]Belief),
		accuracy: make(map[string]UserAccuracyRow),
	}
}

func (m *memPort) addItem(id, author string) {
	m.items[id] = ItemRecord{ID: id, AuthorID: author}
	m.order = append(m.order, id)
}

func (m *memPort) addComparison(c ComparisonRecord) {
	m.comparisons = append(m.comparisons, c)
}

func (m *memPort) ListItems(ctx context.Context, venueID string) ([]ItemRecord, error) {
	out := make([]ItemRecord, 0, len(m.order))
	for _, id := range m.order {
		it := m.items[id]
		if b, ok := m.beliefs[id]; ok {
			mu, sigma := b.Mu, b.Sigma
			it.Mu, it.Sigma = &mu, &sigma
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *memPort) ItemBeliefs(ctx context.Context, venueID string, ids []string) ([]Belief, error) {
	out := make([]Belief, 0, len(ids))
	for _, id := range ids {
		if b, ok := m.beliefs[id]; ok {
			out = append(out, b)
		} else {
			out = append(out, Belief{Mu: DefaultMu, Sigma: DefaultSigma})
		}
	}
	return out, nil
}

func (m *memPort) ListComparisons(ctx context.Context, venueID string, order ComparisonOrder) ([]ComparisonRecord, error) {
	out := append([]ComparisonRecord(nil), m.comparisons...)
	sort.SliceStable(out, func(i, j int) bool {
		if order == Chronological {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (m *memPort) LatestComparison(ctx context.Context, venueID, userID string) (ComparisonRecord, bool, error) {
	var latest ComparisonRecord
	found := false
	for _, c := range m.comparisons {
		if c.UserID != userID {
			continue
		}
		if !found || c.Date.After(latest.Date) {
			latest = c
			found = true
		}
	}
	return latest, found, nil
}

func (m *memPort) CountTasks(ctx context.Context, venueID, itemID string) (int, error) {
	return m.tasks[itemID], nil
}

func (m *memPort) VenueConfig(ctx context.Context, venueID string) (VenueConfig, error) {
	return m.config, nil
}

func (m *memPort) WriteItemBelief(ctx context.Context, venueID, itemID string, mu, sigma float64, percentile *float64) error {
	m.beliefs[itemID] = Belief{Mu: mu, Sigma: sigma}
	return nil
}

func (m *memPort) UpsertUserAccuracy(ctx context.Context, venueID string, row UserAccuracyRow) error {
	m.accuracy[row.UserID] = row
	return nil
}

func (m *memPort) DeleteUserAccuracy(ctx context.Context, venueID, userID string) error {
	delete(m.accuracy, userID)
	return nil
}

func (m *memPort) ReplaceGrades(ctx context.Context, venueID string, rows []GradeRow) error {
	m.grades = rows
	return nil
}

func (m *memPort) TouchVenueTimestamps(ctx context.Context, venueID string, fields TimestampFields) error {
	m.touched = append(m.touched, fields)
	return nil
}

func (m *memPort) Commit(ctx context.Context) error { return nil }
