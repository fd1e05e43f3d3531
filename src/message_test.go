package wxsame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanHeader = "-WXR-TOR-039173-039051-139069+0030-1591829-KCLE/NWS-"

func TestSAMEMessage_RoundTripFromLiteral(t *testing.T) {
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)

	assert.Equal(t, "WXR", m.Originator())
	assert.Equal(t, "TOR", m.EventType())
	assert.Equal(t, []string{"039173", "039051", "139069"}, m.Counties())
	assert.Equal(t, "0030", m.DurationStr())
	assert.Equal(t, 1800, m.DurationSec())
	assert.Equal(t, "1591829", m.StartTimeStr())
	assert.Equal(t, "KCLE/NWS", m.Broadcaster())
}

func TestSAMEMessage_ThreeCleanIdenticalCopies(t *testing.T) {
	confidences := make([]int, len(cleanHeader))
	for i := range confidences {
		confidences[i] = 9
	}

	m := NewSAMEMessage("KCLE", nil, nil)
	for i := 0; i < 3; i++ {
		err := m.AddHeader([]byte(cleanHeader), confidences, 1591829100+int64(i))
		require.NoError(t, err)
	}

	require.True(t, m.FullyReceived(false, false))

	avg := m.GetSAMEMessage()
	assert.Equal(t, cleanHeader, avg.Text)
	for _, c := range avg.Confidences {
		assert.Equal(t, 9, c)
	}
}

func TestSAMEMessage_OneBitFlipInEventCodeMajorityVote(t *testing.T) {
	confidences := make([]int, len(cleanHeader))
	for i := range confidences {
		confidences[i] = 9
	}

	dirty := []byte(cleanHeader)
	dirty[6] = 'N' // -WXR-TNR-... : flip the event code's middle letter

	m := NewSAMEMessage("KCLE", nil, nil)
	require.NoError(t, m.AddHeader(dirty, confidences, 1591829100))
	require.NoError(t, m.AddHeader([]byte(cleanHeader), confidences, 1591829101))
	require.NoError(t, m.AddHeader([]byte(cleanHeader), confidences, 1591829102))
	require.True(t, m.FullyReceived(false, false))

	avg := m.GetSAMEMessage()
	assert.Equal(t, cleanHeader, avg.Text)
	// Two of three copies agree on 'O'; confidence survives the one dissent.
	assert.Greater(t, avg.Confidences[6], 0)
}

func TestSAMEMessage_AddHeaderRejectsMismatchedLengths(t *testing.T) {
	m := NewSAMEMessage("KCLE", nil, nil)
	err := m.AddHeader([]byte("ABC"), []int{9, 9}, 1)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestSAMEMessage_AddHeaderRejectsAfterComplete(t *testing.T) {
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)
	err := m.AddHeader([]byte(cleanHeader), make([]int, len(cleanHeader)), 1)
	assert.ErrorIs(t, err, ErrAlreadyComplete)
}

func TestSAMEMessage_FullyReceivedIsMonotone(t *testing.T) {
	m := NewSAMEMessage("KCLE", nil, nil)
	assert.False(t, m.FullyReceived(false, false))
	assert.True(t, m.FullyReceived(true, false))
	assert.True(t, m.FullyReceived(false, false))
}

func TestSAMEMessage_ReceivedCallbackFiresAtMostOnce(t *testing.T) {
	calls := 0
	m := NewSAMEMessage("KCLE", nil, func() { calls++ })

	m.FullyReceived(true, false)
	m.FullyReceived(true, false)
	m.FullyReceived(false, false)

	assert.Equal(t, 1, calls)
}

func TestSAMEMessage_AppliesToFIPS(t *testing.T) {
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)

	applies, err := m.AppliesToFIPS("039173")
	require.NoError(t, err)
	assert.True(t, applies)

	applies, err = m.AppliesToFIPS("39173")
	require.NoError(t, err)
	assert.True(t, applies)

	applies, err = m.AppliesToFIPS("099999")
	require.NoError(t, err)
	assert.False(t, applies)

	_, err = m.AppliesToFIPS("1234")
	assert.ErrorIs(t, err, ErrInvalidFIPSLength)
}

func TestSAMEMessage_AppliesToFIPS_LeadingZeroEquivalence(t *testing.T) {
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)

	withZero, err := m.AppliesToFIPS("039173")
	require.NoError(t, err)
	withoutZero, err := m.AppliesToFIPS("39173")
	require.NoError(t, err)

	assert.Equal(t, withZero, withoutZero)
}

func TestSAMEMessage_GetSAMEMessageOnEmptyMessage(t *testing.T) {
	m := NewSAMEMessage("KCLE", nil, nil)
	avg := m.GetSAMEMessage()
	assert.Equal(t, "", avg.Text)
	assert.Empty(t, avg.Confidences)
}

func TestSAMEMessage_LengthDetectionTruncatesTrailingGarbage(t *testing.T) {
	garbage := cleanHeader + "XXXXXXX"
	confidences := make([]int, len(garbage))
	for i := range confidences {
		confidences[i] = 9
	}

	m := NewSAMEMessage("KCLE", nil, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.AddHeader([]byte(garbage), confidences, 1591829100+int64(i)))
	}
	require.True(t, m.FullyReceived(false, false))

	avg := m.GetSAMEMessage()
	assert.Equal(t, len(cleanHeader), len(avg.Text))
}
