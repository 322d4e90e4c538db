package attendance

import "github.com/harrysonduke/bsc-project/internal/apperr"

// Outcome classifies a submission attempt.
type Outcome string

const (
	// OutcomeVerified: measured distance within range of an active session.
	OutcomeVerified Outcome = "verified"
	// OutcomeOutOfRange: the attempt is recorded but not verified.
	OutcomeOutOfRange Outcome = "out_of_range"
	// OutcomeUnlocated: no coordinate was supplied; the tolerant policy
	// records the attempt verified with a null distance and flags it for
	// lecturer review.
	OutcomeUnlocated Outcome = "location_unavailable"
)

// Policy decides whether a submission counts as verified. RejectUnlocated is
// the single strictness switch: when set, attempts without a coordinate are
// rejected instead of tolerated.
type Policy struct {
	RangeMeters     float64
	RejectUnlocated bool
}

func DefaultPolicy() Policy {
	return Policy{RangeMeters: 20}
}

// Evaluate renders a decision for one attempt. A closed session rejects every
// submission regardless of distance, as its own error, before any range
// check. A nil distance means the device could not supply a coordinate.
func (p Policy) Evaluate(isActive bool, distanceMeters *float64) (Outcome, error) {
	if !isActive {
		return "", apperr.SessionClosed()
	}
	if distanceMeters == nil {
		if p.RejectUnlocated {
			return "", apperr.LocationUnavailable()
		}
		return OutcomeUnlocated, nil
	}
	if *distanceMeters <= p.RangeMeters {
		return OutcomeVerified, nil
	}
	return OutcomeOutOfRange, nil
}
