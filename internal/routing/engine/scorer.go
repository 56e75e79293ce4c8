package engine

import "time"

// Scoring weights. Additive, order-independent, clamped to maxScore.
const (
	scorePhone         = 20
	scoreLongMessage   = 15
	scoreListing       = 25
	scoreUTM           = 10
	scoreBusinessHours = 10

	maxScore = 100

	longMessageThreshold = 100
)

// Scorer assigns a 0..100 engagement score to a submission. Scores rank
// leads relative to each other; the absolute value carries no meaning
// beyond the triage thresholds downstream consumers pick.
type Scorer struct {
	businessHoursStart int
	businessHoursEnd   int

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// NewScorer builds a scorer with the given business-hours window (start
// inclusive, end exclusive, 24h clock).
func NewScorer(startHour, endHour int) *Scorer {
	return &Scorer{
		businessHoursStart: startHour,
		businessHoursEnd:   endHour,
		Now:                time.Now,
	}
}

// Score computes the submission's lead score. Each signal contributes at
// most once, so the result never depends on evaluation order.
func (s *Scorer) Score(sub *Submission) int {
	score := 0

	if sub.Has("phone") {
		score += scorePhone
	}
	if len(sub.Field("message")) > longMessageThreshold {
		score += scoreLongMessage
	}
	if sub.ListingRef() != "" {
		score += scoreListing
	}
	if len(sub.Metadata.UTM) > 0 {
		score += scoreUTM
	}
	if s.inBusinessHours() {
		score += scoreBusinessHours
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

func (s *Scorer) inBusinessHours() bool {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	hour := now().Hour()
	return hour >= s.businessHoursStart && hour < s.businessHoursEnd
}
