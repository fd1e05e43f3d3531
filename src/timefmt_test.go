package wxsame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueTimeCandidates_FormatsJulianDayHourMinute(t *testing.T) {
	// 2024 is a leap year; day 123 is May 2nd. Pick noon UTC to stay
	// well clear of any day boundary once offsets are applied.
	arrival := time.Date(2024, time.May, 2, 12, 0, 0, 0, time.UTC).Unix()

	candidates := issueTimeCandidates(arrival)
	require := assert.New(t)
	require.Len(candidates, 5)

	// The zero-offset (weight 1.0) candidate matches the arrival instant exactly.
	var zero WeightedChoice
	for _, c := range candidates {
		if c.Weight == 1.0 {
			zero = c
		}
	}
	require.Equal("1231200", zero.Value)
}

func TestIssueTimeCandidates_OffsetsAreOrderedByMinutesBefore(t *testing.T) {
	arrival := time.Date(2024, time.May, 2, 12, 10, 0, 0, time.UTC).Unix()
	candidates := issueTimeCandidates(arrival)

	values := make(map[float64]string)
	for _, c := range candidates {
		values[c.Weight] = c.Value
	}

	assert.Equal(t, "1231206", values[0.5])
	assert.Equal(t, "1231207", values[0.7])
	assert.Equal(t, "1231208", values[0.9])
	assert.Equal(t, "1231209", values[1.1])
	assert.Equal(t, "1231210", values[1.0])
}
