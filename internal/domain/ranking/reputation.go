package ranking

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// Reputation runs the fixed-point loop that jointly estimates submission
// quality and reviewer reputation, and derives final grades from it.
type Reputation struct {
	port DataPort
	rng  *rand.Rand
}

// NewReputation wires a Reputation iterator to its data port.
func NewReputation(port DataPort) *Reputation {
	return &Reputation{port: port, rng: rand.New(rand.NewSource(1))}
}

// WithRand overrides the random source used to shuffle inner passes in
// small-alpha mode, for deterministic tests.
func (r *Reputation) WithRand(rng *rand.Rand) *Reputation {
	r.rng = rng
	return r
}

type orderingEntry struct {
	ordering []string
	userID   string
}

// readState loads every submission and valid comparison for the venue,
// and, when lastComparParam is non-nil, narrows orderings to each user's
// latest one (small-alpha mode).
func (r *Reputation) readState(ctx context.Context, venueID string, lastComparParam *int) (userIDs []string, submissionIDs []string, submissionOwner map[string]string, orderings []orderingEntry, latestOrderingByUser map[string][]string, err error) {
	items, err := r.port.ListItems(ctx, venueID)
	if err != nil {
		return nil, nil, nil, nil, nil, wrapStorage("list_items", err)
	}
	submissionOwner = make(map[string]string, len(items))
	userSet := make(map[string]bool)
	for _, it := range items {
		submissionIDs = append(submissionIDs, it.ID)
		submissionOwner[it.AuthorID] = it.ID
		userSet[it.AuthorID] = true
	}

	comparisons, err := r.port.ListComparisons(ctx, venueID, Chronological)
	if err != nil {
		return nil, nil, nil, nil, nil, wrapStorage("list_comparisons", err)
	}

	latestOrderingByUser = make(map[string][]string)
	for _, c := range comparisons {
		if !c.IsValid {
			continue
		}
		sorted := reversed(c.Ordering)
		if len(sorted) < 2 {
			continue
		}
		latestOrderingByUser[c.UserID] = sorted
		userSet[c.UserID] = true
		if lastComparParam == nil {
			orderings = append(orderings, orderingEntry{ordering: sorted, userID: c.UserID})
		}
	}
	if lastComparParam != nil {
		for user, ordering := range latestOrderingByUser {
			orderings = append(orderings, orderingEntry{ordering: ordering, userID: user})
		}
	}

	for user := range userSet {
		userIDs = append(userIDs, user)
	}
	return userIDs, submissionIDs, submissionOwner, orderings, latestOrderingByUser, nil
}

// RunReputationSystem implements the fixed-point reputation loop. alpha
// is the base annealing coefficient and the initial reputation estimate
// for every user; iterations is the outer loop count; lastComparParam
// nil selects chronological-all mode, a non-nil K selects small-alpha
// mode with K inner passes per outer iteration.
func (r *Reputation) RunReputationSystem(ctx context.Context, venueID string, alpha float64, iterations int, lastComparParam *int) error {
	userIDs, submissionIDs, submissionOwner, orderings, latestOrderingByUser, err := r.readState(ctx, venueID, lastComparParam)
	if err != nil {
		return err
	}
	if len(submissionIDs) == 0 && len(orderings) == 0 {
		return nil
	}

	defaultQparams := make([]float64, 0, len(submissionIDs)*2)
	for range submissionIDs {
		defaultQparams = append(defaultQparams, DefaultMu, DefaultSigma)
	}

	reputation := make(map[string]float64, len(userIDs))
	for _, u := range userIDs {
		reputation[u] = alpha
	}
	accuracy := make(map[string]float64, len(userIDs))

	var result map[string]ItemResult
	for iter := 0; iter < iterations; iter++ {
		rank := NewRank(submissionIDs, defaultQparams, alpha)

		if lastComparParam == nil {
			for _, e := range orderings {
				result = rank.Update(e.ordering, "", reputation[e.userID])
			}
		} else {
			k := *lastComparParam
			for i := 0; i < k; i++ {
				perm := r.rng.Perm(len(orderings))
				for _, idx := range perm {
					e := orderings[idx]
					rep := reputation[e.userID]
					a := 1 - math.Pow(1-rep, 1.0/float64(4*k))
					result = rank.Update(e.ordering, "", a)
				}
			}
		}

		if result == nil {
			return nil
		}

		for _, u := range userIDs {
			var rankScore float64
			if subm, ok := submissionOwner[u]; ok {
				rankScore = result[subm].Percentile / 100.0
			} else {
				rankScore = UnknownReviewerRank
			}
			var acc float64
			if ordering, ok := latestOrderingByUser[u]; ok {
				acc = dirichletFromResult(result, ordering)
			}
			accuracy[u] = acc
			reputation[u] = math.Sqrt(rankScore * acc)
		}
	}

	submissionGrade := make(map[string]float64, len(submissionOwner))
	for user, subm := range submissionOwner {
		submissionGrade[user] = result[subm].Percentile / 100.0
	}

	percentile, finalGrade := computeFinalGrades(userIDs, submissionGrade, reputation)

	description := describeMode(lastComparParam, iterations)

	return r.persist(ctx, venueID, result, submissionIDs, userIDs, latestOrderingByUser, accuracy, reputation, percentile, finalGrade, description)
}

// dirichletFromResult scores an ordering against an already-computed
// result snapshot (rather than a live Rank), since the reputation loop
// only keeps the final per-iteration snapshot.
func dirichletFromResult(result map[string]ItemResult, ordering []string) float64 {
	pairs := len(ordering) - 1
	if pairs <= 0 {
		return 0
	}
	total := 0.0
	for i := 0; i+1 < len(ordering); i++ {
		lo, okL := result[ordering[i]]
		hi, okH := result[ordering[i+1]]
		if !okL || !okH {
			continue
		}
		c2 := lo.Sigma*lo.Sigma + hi.Sigma*hi.Sigma
		c := math.Sqrt(c2)
		if c == 0 {
			total++
			continue
		}
		total += normCDF((hi.Mu - lo.Mu) / c)
	}
	return total / float64(pairs)
}

func computeFinalGrades(userIDs []string, submissionGrade map[string]float64, reputation map[string]float64) (percentile map[string]float64, finalGrade map[string]float64) {
	finalGrade = make(map[string]float64, len(userIDs))
	for _, u := range userIDs {
		finalGrade[u] = submissionGrade[u]*(2.0/3.0) + reputation[u]*(1.0/3.0)
	}

	type scored struct {
		user  string
		grade float64
	}
	scoredUsers := make([]scored, 0, len(userIDs))
	for _, u := range userIDs {
		scoredUsers = append(scoredUsers, scored{user: u, grade: finalGrade[u]})
	}
	sort.SliceStable(scoredUsers, func(i, j int) bool { return scoredUsers[i].grade > scoredUsers[j].grade })

	percentile = make(map[string]float64, len(userIDs))
	n := float64(len(scoredUsers))
	for i, s := range scoredUsers {
		if n == 0 {
			continue
		}
		percentile[s.user] = 100.0 * (n - float64(i)) / n
	}
	return percentile, finalGrade
}

func describeMode(lastComparParam *int, iterations int) string {
	if lastComparParam == nil {
		if iterations == 1 {
			return "Ranking without reputation system. All comparisons are used in chronological order"
		}
		return "Reputation system on all comparisons in chronological order"
	}
	if iterations == 1 {
		return "No reputation system and small alpha !?!?"
	}
	return "Reputation system with small alpha and only last comparisons"
}

func (r *Reputation) persist(ctx context.Context, venueID string, result map[string]ItemResult, submissionIDs, userIDs []string, latestOrderingByUser map[string][]string, accuracy, reputation, percentile, finalGrade map[string]float64, description string) error {
	for _, id := range submissionIDs {
		res, ok := result[id]
		if !ok {
			continue
		}
		percentileCopy := res.Percentile
		if err := r.port.WriteItemBelief(ctx, venueID, id, res.Mu, res.Sigma, &percentileCopy); err != nil {
			return wrapStorage("write_item_belief", err)
		}
	}

	for _, u := range userIDs {
		nRatings := 0
		if ordering, ok := latestOrderingByUser[u]; ok {
			nRatings = len(ordering)
		}
		rep := reputation[u]
		if err := r.port.UpsertUserAccuracy(ctx, venueID, UserAccuracyRow{
			UserID:     u,
			Accuracy:   accuracy[u],
			Reputation: &rep,
			NRatings:   nRatings,
		}); err != nil {
			return wrapStorage("upsert_user_accuracy", err)
		}
	}

	rows := make([]GradeRow, 0, len(userIDs))
	for _, u := range userIDs {
		rows = append(rows, GradeRow{UserID: u, Grade: finalGrade[u], Percentile: percentile[u]})
	}
	if err := r.port.ReplaceGrades(ctx, venueID, rows); err != nil {
		return wrapStorage("replace_grades", err)
	}

	if err := r.port.TouchVenueTimestamps(ctx, venueID, TimestampFields{
		RankUpdate:            true,
		ReviewersEvaluation:   true,
		FinalGradesEvaluation: true,
		AlgoDescription:       description,
	}); err != nil {
		return wrapStorage("touch_venue_timestamps", err)
	}
	return r.port.Commit(ctx)
}

// RankWithoutRepSystem is equivalent to RunReputationSystem(alpha=0.5,
// iterations=1, lastComparParam=nil): one chronological pass with no
// reputation weighting.
func (r *Reputation) RankWithoutRepSystem(ctx context.Context, venueID string) error {
	return r.RunReputationSystem(ctx, venueID, 0.5, 1, nil)
}

// Reprocess replays every valid comparison in chronological order against
// a freshly-seeded Rank, persisting (mu, sigma, percentile) for every
// submission. If twice is true, it replays again in reverse-chronological
// order on top of the same beliefs, matching the legacy double-pass mode.
func (r *Reputation) Reprocess(ctx context.Context, venueID string, alpha float64, twice bool) error {
	items, err := r.port.ListItems(ctx, venueID)
	if err != nil {
		return wrapStorage("list_items", err)
	}
	if len(items) == 0 {
		return nil
	}
	submissionIDs := make([]string, 0, len(items))
	qparams := make([]float64, 0, len(items)*2)
	for _, it := range items {
		submissionIDs = append(submissionIDs, it.ID)
		qparams = append(qparams, DefaultMu, DefaultSigma)
	}

	rank := NewRank(submissionIDs, qparams, alpha)

	apply := func(order ComparisonOrder) (map[string]ItemResult, error) {
		comparisons, err := r.port.ListComparisons(ctx, venueID, order)
		if err != nil {
			return nil, wrapStorage("list_comparisons", err)
		}
		var result map[string]ItemResult
		for _, c := range comparisons {
			if !c.IsValid {
				continue
			}
			sorted := reversed(c.Ordering)
			if len(sorted) < 2 {
				continue
			}
			result = rank.Update(sorted, c.NewItem, alpha)
		}
		return result, nil
	}

	result, err := apply(Chronological)
	if err != nil {
		return err
	}
	if twice {
		result, err = apply(ReverseChronological)
		if err != nil {
			return err
		}
	}
	if result == nil {
		return nil
	}

	for _, id := range submissionIDs {
		res, ok := result[id]
		if !ok {
			continue
		}
		percentile := res.Percentile
		if err := r.port.WriteItemBelief(ctx, venueID, id, res.Mu, res.Sigma, &percentile); err != nil {
			return wrapStorage("write_item_belief", err)
		}
	}

	description := "Ranking without reputation system. All comparisons are used in chronological order"
	if err := r.port.TouchVenueTimestamps(ctx, venueID, TimestampFields{RankUpdate: true, AlgoDescription: description}); err != nil {
		return wrapStorage("touch_venue_timestamps", err)
	}
	return r.port.Commit(ctx)
}
