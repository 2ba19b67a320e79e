package ranking

import "context"

// Default annealing coefficients for the two processing paths, per the
// original implementation's call sites.
const (
	AnnealingSingleComparison = 0.6
	AnnealingBatchReprocess   = 0.5
)

// Processor applies one observed ordering to the live belief model and
// persists the posterior.
type Processor struct {
	port DataPort
}

// NewProcessor wires a Processor to its data port.
func NewProcessor(port DataPort) *Processor {
	return &Processor{port: port}
}

// ProcessComparison updates quality beliefs for sortedItems (lowest to
// highest quality) and persists mu/sigma for each. A sortedItems slice of
// length <= 1 is a silent no-op, as is a nil slice.
func (p *Processor) ProcessComparison(ctx context.Context, venueID, userID string, sortedItems []string, newItem string, alpha float64) error {
	if len(sortedItems) <= 1 {
		return nil
	}
	if alpha == 0 {
		alpha = AnnealingSingleComparison
	}

	beliefs, err := p.port.ItemBeliefs(ctx, venueID, sortedItems)
	if err != nil {
		return wrapStorage("item_beliefs", err)
	}

	qparams := make([]float64, 0, len(sortedItems)*2)
	for _, b := range beliefs {
		qparams = append(qparams, b.Mu, b.Sigma)
	}

	rank := NewRank(sortedItems, qparams, alpha)
	result := rank.Update(sortedItems, newItem, alpha)

	for _, id := range sortedItems {
		r, ok := result[id]
		if !ok {
			continue
		}
		if err := p.port.WriteItemBelief(ctx, venueID, id, r.Mu, r.Sigma, nil); err != nil {
			return wrapStorage("write_item_belief", err)
		}
	}

	if err := p.port.TouchVenueTimestamps(ctx, venueID, TimestampFields{RankUpdate: true}); err != nil {
		return wrapStorage("touch_venue_timestamps", err)
	}
	return p.port.Commit(ctx)
}
