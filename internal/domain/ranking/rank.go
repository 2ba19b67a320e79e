// Package ranking implements the Gaussian-belief ranking and reputation
// engine described in the venue review pipeline: a quality model over
// submissions, a task sampler, a comparison processor, a reviewer
// accuracy evaluator and a reputation fixed-point iterator.
package ranking

import (
	"math"
	"math/rand"
	"sort"
)

// NumBins is the discretisation granularity of the quality scale.
const NumBins = 2001

// DefaultMu and DefaultSigma seed the belief of a submission that has not
// yet been touched by any comparison.
const (
	DefaultMu    = 1000.0
	DefaultSigma = 250.0
)

// UnknownReviewerRank is assigned to a reviewer with comparisons but no
// submission of their own in the venue. The original implementation
// leaves this as an open question (marked TODO); it is normative here.
const UnknownReviewerRank = 0.5

// CostType enumerates the supported cost functions for sample_item.
type CostType string

// CostRankPowerAlpha penalizes items whose current belief sits at either
// extreme of the ranking, trading informativeness for balanced review load.
const CostRankPowerAlpha CostType = "rank_power_alpha"

// Cost modulates sampleItem so that submissions already ranked near the
// top or bottom are less likely to be picked again. A Coefficient of zero
// is collapsed to a nil *Cost at construction time (NewCost).
type Cost struct {
	Type        CostType
	Coefficient float64
	Exponent    float64
}

// NewCost builds a Cost, returning nil when coefficient is zero so callers
// never need to special-case "no cost" in the sampling loop.
func NewCost(coefficient float64) *Cost {
	if coefficient == 0 {
		return nil
	}
	return &Cost{Type: CostRankPowerAlpha, Coefficient: coefficient, Exponent: 2}
}

// weight returns the non-negative cost of sampling an item currently at
// the given percentile (0..100). Extreme percentiles (near 0 or 100) cost
// more under the rank_power_alpha scheme.
func (c *Cost) weight(percentile float64) float64 {
	if c == nil {
		return 0
	}
	extremity := math.Abs(percentile-50) / 50
	return c.Coefficient * math.Pow(extremity, c.Exponent)
}

// Belief is the Gaussian quality belief of a single item.
type Belief struct {
	Mu    float64
	Sigma float64
}

// ItemResult summarises one item's posterior after an update: its
// percentile within the Rank's item pool, and its (mu, sigma).
type ItemResult struct {
	Percentile float64
	Mu         float64
	Sigma      float64
}

// Rank is the Gaussian-belief ranker. It is constructed over a fixed pool
// of item ids and mutated in place by Update.
type Rank struct {
	ids    []string
	index  map[string]int
	mu     []float64
	sigma  []float64
	cost   *Cost
	alpha  float64
	rng    *rand.Rand
}

// RankOption configures a Rank at construction time.
type RankOption func(*Rank)

// WithCost attaches a cost object used by SampleItem. A nil cost (or one
// built from a zero coefficient via NewCost) disables the cost function.
func WithCost(cost *Cost) RankOption {
	return func(r *Rank) { r.cost = cost }
}

// WithRand injects a deterministic random source, used by tests and by
// the small-alpha reputation loop when reproducibility is required.
func WithRand(rng *rand.Rand) RankOption {
	return func(r *Rank) { r.rng = rng }
}

// NewRank constructs a Rank from parallel items/qparams slices, where
// qparams[2*i] and qparams[2*i+1] are the mean and standard deviation of
// items[i]. alpha is the default annealing coefficient for Update calls
// that do not override it.
func NewRank(items []string, qparams []float64, alpha float64, opts ...RankOption) *Rank {
	r := &Rank{
		ids:   append([]string(nil), items...),
		index: make(map[string]int, len(items)),
		mu:    make([]float64, len(items)),
		sigma: make([]float64, len(items)),
		alpha: alpha,
		rng:   rand.New(rand.NewSource(1)),
	}
	for i, id := range items {
		r.index[id] = i
		if 2*i+1 < len(qparams) {
			r.mu[i] = qparams[2*i]
			r.sigma[i] = qparams[2*i+1]
		} else {
			r.mu[i] = DefaultMu
			r.sigma[i] = DefaultSigma
		}
		if r.sigma[i] <= 0 {
			r.sigma[i] = DefaultSigma
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Items returns the pool of item ids this Rank was constructed with.
func (r *Rank) Items() []string {
	return append([]string(nil), r.ids...)
}

// Belief returns the current (mu, sigma) for an item, or false if the
// item is not part of this Rank's pool.
func (r *Rank) Belief(item string) (Belief, bool) {
	idx, ok := r.index[item]
	if !ok {
		return Belief{}, false
	}
	return Belief{Mu: r.mu[idx], Sigma: r.sigma[idx]}, true
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// pairwiseUpdate applies a single "winner beats loser" Gaussian-belief
// refinement (a simplified TrueSkill-style moment match with no
// performance noise term), scaled by the annealing coefficient alpha.
// It mutates r.mu/r.sigma for the winner and loser indices in place.
func (r *Rank) pairwiseUpdate(loserIdx, winnerIdx int, alpha float64) {
	muL, sigL := r.mu[loserIdx], r.sigma[loserIdx]
	muW, sigW := r.mu[winnerIdx], r.sigma[winnerIdx]

	c2 := sigW*sigW + sigL*sigL
	c := math.Sqrt(c2)
	if c == 0 {
		return
	}
	t := (muW - muL) / c

	// Guard against overflow in the tail; a confidently-correct
	// comparison barely moves the beliefs.
	denom := normCDF(t)
	var v, w float64
	if denom < 1e-12 {
		v = -t
		w = 1
	} else {
		v = normPDF(t) / denom
		w = v * (v + t)
	}

	dMuW := alpha * (sigW * sigW / c) * v
	dMuL := alpha * (sigL * sigL / c) * v

	newSigW2 := sigW * sigW * (1 - alpha*(sigW*sigW/c2)*w)
	newSigL2 := sigL * sigL * (1 - alpha*(sigL*sigL/c2)*w)

	r.mu[winnerIdx] = muW + dMuW
	r.mu[loserIdx] = muL - dMuL
	r.sigma[winnerIdx] = clampSigma(newSigW2)
	r.sigma[loserIdx] = clampSigma(newSigL2)
}

func clampSigma(variance float64) float64 {
	const minSigma = 1.0
	if variance <= minSigma*minSigma {
		return minSigma
	}
	return math.Sqrt(variance)
}

// Update applies the observed ordering (lowest to highest quality) as a
// sequence of adjacent pairwise refinements, with an optional extra mass
// applied to newItem's updates. It returns the posterior for every item
// the Rank was constructed with, not only the ones named in ordering.
func (r *Rank) Update(ordering []string, newItem string, alpha float64) map[string]ItemResult {
	if alpha == 0 {
		alpha = r.alpha
	}
	for i := 0; i+1 < len(ordering); i++ {
		loserIdx, okL := r.index[ordering[i]]
		winnerIdx, okW := r.index[ordering[i+1]]
		if !okL || !okW {
			continue
		}
		a := alpha
		if newItem != "" && (ordering[i] == newItem || ordering[i+1] == newItem) {
			a = math.Min(1, alpha*1.5)
		}
		r.pairwiseUpdate(loserIdx, winnerIdx, a)
	}
	return r.Snapshot()
}

// Snapshot returns the current (percentile, mu, sigma) for every item in
// the pool, percentiles assigned by descending mu per the percentile
// invariant (top item gets 100, bottom gets 100/N).
func (r *Rank) Snapshot() map[string]ItemResult {
	n := len(r.ids)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return r.mu[order[i]] > r.mu[order[j]]
	})
	result := make(map[string]ItemResult, n)
	for rank, idx := range order {
		percentile := 0.0
		if n > 0 {
			percentile = 100.0 * float64(n-rank) / float64(n)
		}
		result[r.ids[idx]] = ItemResult{
			Percentile: percentile,
			Mu:         r.mu[idx],
			Sigma:      r.sigma[idx],
		}
	}
	return result
}

// mistakeProbability is the probability, under current beliefs, that the
// true quality order between a and b is the reverse of what their means
// suggest -- i.e. how informative a comparison between them would be.
func (r *Rank) mistakeProbability(aIdx, bIdx int) float64 {
	c2 := r.sigma[aIdx]*r.sigma[aIdx] + r.sigma[bIdx]*r.sigma[bIdx]
	c := math.Sqrt(c2)
	if c == 0 {
		return 0
	}
	d := math.Abs(r.mu[aIdx]-r.mu[bIdx]) / c
	return normCDF(-d)
}

// SampleItem draws an item from the pool, preferring items whose expected
// comparison against oldItems is most informative. It never returns an id
// in blackItems. If oldItems is empty it degenerates to uniform sampling.
func (r *Rank) SampleItem(oldItems []string, blackItems []string) string {
	black := make(map[string]bool, len(blackItems))
	for _, b := range blackItems {
		black[b] = true
	}

	type candidate struct {
		idx    int
		weight float64
	}

	snapshot := r.Snapshot()
	var candidates []candidate
	for i, id := range r.ids {
		if black[id] {
			continue
		}
		candidates = append(candidates, candidate{idx: i})
	}
	if len(candidates) == 0 {
		return ""
	}

	var oldIdx []int
	for _, old := range oldItems {
		if idx, ok := r.index[old]; ok {
			oldIdx = append(oldIdx, idx)
		}
	}

	total := 0.0
	for i := range candidates {
		c := &candidates[i]
		var informativeness float64
		if len(oldIdx) == 0 {
			informativeness = 1
		} else {
			for _, o := range oldIdx {
				informativeness += r.mistakeProbability(c.idx, o)
			}
			informativeness /= float64(len(oldIdx))
		}
		cost := 0.0
		if len(oldIdx) > 0 {
			cost = r.cost.weight(snapshot[r.ids[c.idx]].Percentile)
		}
		c.weight = informativeness / (1 + cost)
		if c.weight < 0 {
			c.weight = 0
		}
		total += c.weight
	}

	if total <= 0 {
		return r.ids[candidates[r.rng.Intn(len(candidates))].idx]
	}

	pick := r.rng.Float64() * total
	acc := 0.0
	for _, c := range candidates {
		acc += c.weight
		if pick <= acc {
			return r.ids[c.idx]
		}
	}
	return r.ids[candidates[len(candidates)-1].idx]
}

// EvaluateOrdering scores how consistent ordering (lowest to highest) is
// with current beliefs, accumulating a per-pair consistency probability
// over the len(ordering)-1 adjacent pairs. Larger is more consistent.
func (r *Rank) EvaluateOrdering(ordering []string) float64 {
	total := 0.0
	for i := 0; i+1 < len(ordering); i++ {
		loIdx, okL := r.index[ordering[i]]
		hiIdx, okH := r.index[ordering[i+1]]
		if !okL || !okH {
			continue
		}
		c2 := r.sigma[loIdx]*r.sigma[loIdx] + r.sigma[hiIdx]*r.sigma[hiIdx]
		c := math.Sqrt(c2)
		if c == 0 {
			total++
			continue
		}
		t := (r.mu[hiIdx] - r.mu[loIdx]) / c
		total += normCDF(t)
	}
	return total
}

// EvaluateOrderingUsingDirichlet normalizes EvaluateOrdering into [0, 1]
// by averaging over the number of adjacent pairs, used to derive
// per-reviewer accuracy inside the reputation loop.
func (r *Rank) EvaluateOrderingUsingDirichlet(ordering []string) float64 {
	pairs := len(ordering) - 1
	if pairs <= 0 {
		return 0
	}
	return r.EvaluateOrdering(ordering) / float64(pairs)
}
