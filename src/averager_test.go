package wxsame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const krahClean = "-WXR-SVR-007183+0005-1232003-KRAH/NWS-"

func TestAverager_DirtyMessageVocabularyRescue(t *testing.T) {
	dirty := []byte(krahClean)
	confidences := make([]int, len(dirty))
	for i := range confidences {
		confidences[i] = 9
	}

	// Corrupt a handful of positions (high bit set, as if flipped by
	// noise) and mark them with low confidence, the way a real decoder
	// would report an uncertain byte rather than a confident wrong one.
	// One position per reconciled vocabulary: originator, FIPS, WFO, NWS.
	dirtyPositions := []int{2, 10, 30, 34}
	for _, pos := range dirtyPositions {
		dirty[pos] |= 0x80
		confidences[pos] = 1
	}

	m := NewSAMEMessage("KRAH", nil, nil)
	require.NoError(t, m.AddHeader(dirty, confidences, 1591829100))
	m.FullyReceived(true, false)

	avg := m.GetSAMEMessage()
	assert.Equal(t, krahClean, avg.Text)
}

func TestAverageHeaders_EmptyInputReturnsEmpty(t *testing.T) {
	avg := averageHeaders(nil, "KCLE")
	assert.Equal(t, "", avg.Text)
	assert.Nil(t, avg.Confidences)
}

func TestAverageHeaders_SingleCleanCopyPreservesConfidence(t *testing.T) {
	confidences := make([]int, len(cleanHeader))
	for i := range confidences {
		confidences[i] = 7
	}

	avg := averageHeaders([]RawHeader{{Bytes: []byte(cleanHeader), Confidences: confidences, ArrivalTime: 1591829100}}, "KCLE")

	assert.Equal(t, cleanHeader, avg.Text)
	for _, c := range avg.Confidences {
		assert.LessOrEqual(t, c, 9)
	}
}

func TestAverageHeaders_UnknownTransmitterStillReconciles(t *testing.T) {
	confidences := make([]int, len(cleanHeader))
	for i := range confidences {
		confidences[i] = 9
	}

	avg := averageHeaders([]RawHeader{{Bytes: []byte(cleanHeader), Confidences: confidences, ArrivalTime: 1591829100}}, "UNKNOWN")

	assert.Equal(t, "WXR", avg.Text[1:4])
	assert.Equal(t, "TOR", avg.Text[5:8])
}
