package wxsame

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Build the weighted issue-time candidates the header
 *		averager reconciles the JJJHHMM field against.
 *
 * Description:	A header's issue time should be at or just before the
 *		moment the first copy arrived, so the averager offers a
 *		handful of nearby minutes as candidates rather than just
 *		one, weighted toward "just before" since transmission
 *		takes a beat to get going.
 *
 *------------------------------------------------------------------*/

const julianTimeFormat = "%j%H%M"

var timeCandidateOffsets = []struct {
	weight     float64
	offsetMins int
}{
	{0.5, -4},
	{0.7, -3},
	{0.9, -2},
	{1.1, -1},
	{1.0, 0},
}

// issueTimeCandidates returns the five weighted "%j%H%M" strings
// surrounding arrival (a Unix timestamp), formatted in UTC.
func issueTimeCandidates(arrival int64) []WeightedChoice {
	candidates := make([]WeightedChoice, 0, len(timeCandidateOffsets))
	for _, o := range timeCandidateOffsets {
		t := time.Unix(arrival, 0).UTC().Add(time.Duration(o.offsetMins) * time.Minute)
		formatted, err := strftime.Format(julianTimeFormat, t)
		if err != nil {
			// %j%H%M is a fixed, valid pattern; this cannot fail in
			// practice, but fall back to an obviously-wrong candidate
			// rather than panicking the averager over a formatting bug.
			formatted = "0000000"
		}
		candidates = append(candidates, WeightedChoice{Weight: o.weight, Value: formatted})
	}
	return candidates
}
