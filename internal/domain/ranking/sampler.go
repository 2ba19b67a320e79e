package ranking

import "context"

// Sampler chooses the next item to offer a reviewer, balancing offer
// frequency against the informativeness of a comparison against their
// previously-seen items.
type Sampler struct {
	port DataPort
}

// NewSampler wires a Sampler to its data port.
func NewSampler(port DataPort) *Sampler {
	return &Sampler{port: port}
}

// GetItem implements the task-sampling algorithm of the quality model:
// load current beliefs, restrict to the eligible pool, narrow to the
// least-offered items, and -- when more than one is tied for least
// offered -- sample proportional to informativeness against oldItems.
// It returns ("", nil) when the venue has no eligible item.
func (s *Sampler) GetItem(ctx context.Context, venueID, userID string, oldItems []string, canRankOwnSubmissions bool, rankCostCoefficient float64) (string, error) {
	items, err := s.port.ListItems(ctx, venueID)
	if err != nil {
		return "", wrapStorage("list_items", err)
	}
	if len(items) == 0 {
		return "", nil
	}

	seen := make(map[string]bool, len(oldItems))
	for _, id := range oldItems {
		seen[id] = true
	}

	type eligible struct {
		id string
	}
	var pool []eligible
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

		if seen[it.ID] {
			continue
		}
		if it.AuthorID == userID && !canRankOwnSubmissions {
			continue
		}
		pool = append(pool, eligible{id: it.ID})
	}

	if len(pool) == 0 {
		return "", nil
	}

	type freq struct {
		id    string
		count int
	}
	frequencies := make([]freq, 0, len(pool))
	minCount := -1
	for _, e := range pool {
		count, err := s.port.CountTasks(ctx, venueID, e.id)
		if err != nil {
			return "", wrapStorage("count_tasks", err)
		}
		frequencies = append(frequencies, freq{id: e.id, count: count})
		if minCount == -1 || count < minCount {
			minCount = count
		}
	}

	var rareItems []string
	for _, f := range frequencies {
		if f.count == minCount {
			rareItems = append(rareItems, f.id)
		}
	}
	if len(rareItems) == 1 {
		return rareItems[0], nil
	}

	poolItems := append(append([]string(nil), rareItems...), oldItems...)
	poolSet := make(map[string]bool, len(poolItems))
	var dedupedPool []string
	for _, id := range poolItems {
		if poolSet[id] {
			continue
		}
		poolSet[id] = true
		dedupedPool = append(dedupedPool, id)
	}

	idxOf := make(map[string]int, len(ids))
	for i, id := range ids {
		idxOf[id] = i
	}
	poolQparams := make([]float64, 0, len(dedupedPool)*2)
	for _, id := range dedupedPool {
		idx, ok := idxOf[id]
		if !ok {
			poolQparams = append(poolQparams, DefaultMu, DefaultSigma)
			continue
		}
		poolQparams = append(poolQparams, qparams[2*idx], qparams[2*idx+1])
	}

	rank := NewRank(dedupedPool, poolQparams, 1.0, WithCost(NewCost(rankCostCoefficient)))
	return rank.SampleItem(oldItems, oldItems), nil
}
