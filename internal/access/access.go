// Package access stubs the view-level permission checks the original
// ranking UI performed before rendering a venue or rater page. The Go
// port has no UI, so this package exists only to give handlers a seam
// to call through -- it implements no real authorization policy beyond
// "admins can see everything, reviewers can see their own".
package access

import (
	"github.com/google/uuid"

	"github.com/gravadigital/rankengine-api/internal/domain/reviewer"
)

// Policy answers the view-gating questions the original venue/rater
// pages asked before rendering.
type Policy struct {
	Viewer *reviewer.User
}

// NewPolicy builds a Policy scoped to the given viewer.
func NewPolicy(viewer *reviewer.User) Policy {
	return Policy{Viewer: viewer}
}

// CanViewRatings reports whether the viewer may see another user's raw
// ordering submissions for a venue.
func (p Policy) CanViewRatings(ownerID uuid.UUID) bool {
	return p.isAdminOrSelf(ownerID)
}

// CanViewRatingContributions reports whether the viewer may see how much
// a single comparison contributed to the current ranking.
func (p Policy) CanViewRatingContributions(ownerID uuid.UUID) bool {
	return p.isAdminOrSelf(ownerID)
}

// CanViewSubmissions reports whether the viewer may browse the venue's
// submission pool outside of being handed one as a task.
func (p Policy) CanViewSubmissions() bool {
	return p.Viewer != nil && p.Viewer.IsAdmin()
}

// CanViewFeedback reports whether the viewer may see written feedback
// left alongside a comparison.
func (p Policy) CanViewFeedback(ownerID uuid.UUID) bool {
	return p.isAdminOrSelf(ownerID)
}

// CanEnterTrueQuality reports whether the viewer may seed a submission's
// belief with a known ground-truth quality value (used for calibration
// items planted in a venue).
func (p Policy) CanEnterTrueQuality() bool {
	return p.Viewer != nil && p.Viewer.IsAdmin()
}

func (p Policy) isAdminOrSelf(ownerID uuid.UUID) bool {
	if p.Viewer == nil {
		return false
	}
	return p.Viewer.IsAdmin() || p.Viewer.ID == ownerID
}
