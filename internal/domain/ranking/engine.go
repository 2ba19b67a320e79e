package ranking

import "context"

// Engine is the programmatic API surface described by the external
// interfaces: a reviewer-facing next-task/record-comparison pair, and an
// operator-facing score/grade/reputation/reprocess set.
type Engine struct {
	Sampler    *Sampler
	Processor  *Processor
	Accuracy   *Accuracy
	Reputation *Reputation
}

// NewEngine wires every component to a single DataPort implementation.
func NewEngine(port DataPort) *Engine {
	return &Engine{
		Sampler:    NewSampler(port),
		Processor:  NewProcessor(port),
		Accuracy:   NewAccuracy(port),
		Reputation: NewReputation(port),
	}
}

// NextTask returns the next item id to offer a reviewer, or "" when the
// venue has no eligible item.
func (e *Engine) NextTask(ctx context.Context, venueID, userID string, oldItems []string, canRankOwn bool, costCoefficient float64) (string, error) {
	return e.Sampler.GetItem(ctx, venueID, userID, oldItems, canRankOwn, costCoefficient)
}

// RecordComparison processes a single reviewer-submitted ordering.
func (e *Engine) RecordComparison(ctx context.Context, venueID, userID string, orderingLowToHigh []string, newItem string, alpha float64) error {
	return e.Processor.ProcessComparison(ctx, venueID, userID, orderingLowToHigh, newItem, alpha)
}

// ScoreReviewers re-evaluates every reviewer's accuracy in the venue.
func (e *Engine) ScoreReviewers(ctx context.Context, venueID string) error {
	return e.Accuracy.EvaluateContributors(ctx, venueID)
}

// ComputeGrades runs the reputation-weighted ranking with the default
// single-iteration, chronological, reputation-free mode and writes
// final grades -- the "rank_without_rep_sys" entry point.
func (e *Engine) ComputeGrades(ctx context.Context, venueID string) error {
	return e.Reputation.RankWithoutRepSystem(ctx, venueID)
}

// RunReputation runs the full fixed-point reputation loop. lastK nil
// selects chronological-all mode; a non-nil value selects small-alpha
// mode with that many inner passes per outer iteration.
func (e *Engine) RunReputation(ctx context.Context, venueID string, alpha float64, iterations int, lastK *int) error {
	return e.Reputation.RunReputationSystem(ctx, venueID, alpha, iterations, lastK)
}

// Reprocess replays the venue's full comparison history from scratch.
func (e *Engine) Reprocess(ctx context.Context, venueID string, alpha float64, twice bool) error {
	return e.Reputation.Reprocess(ctx, venueID, alpha, twice)
}
