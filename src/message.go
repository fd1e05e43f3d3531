package wxsame

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

/*------------------------------------------------------------------
 *
 * Purpose:	SAMEMessage accumulates the 1-3 header copies a radio
 *		captures for a single over-the-air transmission and
 *		exposes the reconciled result.
 *
 * Description:	Headers arrive one at a time as they're decoded off the
 *		air. A message is "fully received" once three header
 *		copies have been seen, its receive timeout has elapsed,
 *		or the caller asserts completion directly. That latch is
 *		sticky: once set, it never un-sets, and the averaged
 *		header is cached the first time it's computed against a
 *		complete message.
 *
 *------------------------------------------------------------------*/

// headerReceiveWindow is how long AddHeader extends a message's timeout
// past the most recently received copy, giving the other 1-2 copies of
// the same over-the-air transmission a chance to arrive.
const headerReceiveWindow = 6 * time.Second

// RawHeader is one decoded-but-unreconciled copy of a SAME header, as
// handed to SAMEMessage by whatever demodulates the audio.
type RawHeader struct {
	Bytes       []byte
	Confidences []int
	ArrivalTime int64
}

// SAMEMessage is the aggregation state machine for a single SAME
// transmission: it owns every RawHeader copy received so far and caches
// the reconciled header once the message is complete.
type SAMEMessage struct {
	transmitter string
	clock       Clock
	headers     []RawHeader
	fullyRecvd  bool
	cached      *AveragedHeader
	timeout     int64
	startTime   int64
	literal     string
	onReceived  func()
	callbackRan bool
}

// NewSAMEMessage creates an empty message for transmitter, whose headers
// will be reconciled against that transmitter's FIPS/WFO reference data.
// clock is used to timestamp headers that arrive without their own
// ArrivalTime and to evaluate the receive timeout; pass nil to use the
// system wall clock. The receive timeout starts at clock()+6s. onReceived,
// if non-nil, fires exactly once, the first moment the message latches
// fully received.
func NewSAMEMessage(transmitter string, clock Clock, onReceived func()) *SAMEMessage {
	if clock == nil {
		clock = realClock
	}
	return &SAMEMessage{
		transmitter: transmitter,
		clock:       clock,
		onReceived:  onReceived,
		timeout:     clock() + int64(headerReceiveWindow.Seconds()),
	}
}

// NewSAMEMessageFromHeader creates a message already holding a single
// known-good header, bypassing reconciliation entirely: GetSAMEMessage
// returns it as-is with full confidence. Useful for tests and for
// replaying a message whose text was already established out of band.
func NewSAMEMessageFromHeader(transmitter, header string, clock Clock) *SAMEMessage {
	m := NewSAMEMessage(transmitter, clock, nil)
	confidences := make([]int, len(header))
	for i := range confidences {
		confidences[i] = 9
	}
	m.cached = &AveragedHeader{Text: header, Confidences: confidences}
	m.fullyRecvd = true
	m.callbackRan = true
	m.literal = header
	return m
}

// AddHeader appends one decoded header copy and extends the receive
// timeout to arrivalTime+6s (or clock()+6s if arrivalTime is 0). It
// returns ErrAlreadyComplete without modifying the message if the
// message has already latched fully received, and ErrMalformedInput if
// len(confidences) != len(bytes).
func (m *SAMEMessage) AddHeader(bytes []byte, confidences []int, arrivalTime int64) error {
	if m.fullyRecvd {
		return ErrAlreadyComplete
	}
	if len(bytes) != len(confidences) {
		return ErrMalformedInput
	}

	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	cc := make([]int, len(confidences))
	copy(cc, confidences)

	if arrivalTime == 0 {
		arrivalTime = m.clock()
	}

	m.headers = append(m.headers, RawHeader{Bytes: cp, Confidences: cc, ArrivalTime: arrivalTime})
	m.cached = nil
	m.timeout = arrivalTime + int64(headerReceiveWindow.Seconds())

	if len(m.headers) >= 3 {
		m.latch()
	}
	return nil
}

// FullyReceived reports whether the message has latched complete: three
// header copies have arrived, the receive timeout has elapsed, or a
// prior call passed makeItSo. makeItSo forces the latch immediately.
// extendTimeout, when the message is not yet latched, pushes the
// timeout to clock()+6s (e.g. because the caller knows more copies are
// still expected). The first call that observes the latch becoming true
// fires the onReceived callback exactly once.
func (m *SAMEMessage) FullyReceived(makeItSo, extendTimeout bool) bool {
	if m.fullyRecvd {
		return true
	}
	if makeItSo || len(m.headers) >= 3 || m.clock() > m.timeout {
		m.latch()
		return true
	}
	if extendTimeout {
		m.timeout = m.clock() + int64(headerReceiveWindow.Seconds())
	}
	return false
}

func (m *SAMEMessage) latch() {
	m.fullyRecvd = true
	if !m.callbackRan {
		m.callbackRan = true
		if m.onReceived != nil {
			m.onReceived()
		}
	}
}

// HeaderCount reports how many raw header copies have been added.
func (m *SAMEMessage) HeaderCount() int {
	return len(m.headers)
}

// GetSAMEMessage returns the best-effort reconciled header. Once
// FullyReceived is true the result is cached and stable; calling it
// against an incomplete message reconciles "best effort" on every call
// (and, matching the reference averager, without supplying a
// transmitter, since an in-progress message's candidate vocabulary isn't
// considered settled yet) and is never cached.
func (m *SAMEMessage) GetSAMEMessage() AveragedHeader {
	if len(m.headers) == 0 && m.cached == nil {
		return AveragedHeader{}
	}
	if m.fullyRecvd {
		if m.cached == nil {
			avg := averageHeaders(m.headers, m.transmitter)
			m.cached = &avg
		}
		return *m.cached
	}
	return averageHeaders(m.headers, "")
}

// field extracts the substring of the reconciled header at [start,end).
func (m *SAMEMessage) field(start, end int) string {
	text := m.GetSAMEMessage().Text
	if start >= len(text) {
		return ""
	}
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// fipsCount derives how many FIPS blocks the reconciled header carries
// from its total length: 31 + 7*n.
func (m *SAMEMessage) fipsCount() int {
	n := (len(m.GetSAMEMessage().Text) - 31) / 7
	if n < 1 {
		return 1
	}
	return n
}

// Originator returns the three-letter originator code (e.g. "WXR").
func (m *SAMEMessage) Originator() string {
	return m.field(1, 4)
}

// EventType returns the three-letter event code (e.g. "TOR").
func (m *SAMEMessage) EventType() string {
	return m.field(5, 8)
}

// Counties returns every six-digit FIPS/PSSCCC code named in the header.
func (m *SAMEMessage) Counties() []string {
	plusPos := plusIndex(m.fipsCount())
	body := m.field(9, plusPos)
	if body == "" {
		return nil
	}
	return strings.Split(strings.Trim(body, "-"), "-")
}

// DurationStr returns the raw HHMM purge-duration field.
func (m *SAMEMessage) DurationStr() string {
	plusPos := plusIndex(m.fipsCount())
	return m.field(plusPos+1, plusPos+5)
}

// DurationSec returns the announced valid duration, in seconds, or 0 if
// the DDDD field can't be parsed.
func (m *SAMEMessage) DurationSec() int {
	ddd := m.DurationStr()
	if len(ddd) != 4 {
		return 0
	}
	hours, err1 := strconv.Atoi(ddd[:2])
	minutes, err2 := strconv.Atoi(ddd[2:])
	if err1 != nil || err2 != nil {
		return 0
	}
	return hours*3600 + minutes*60
}

// StartTimeStr returns the JJJHHMM issue-time field verbatim.
func (m *SAMEMessage) StartTimeStr() string {
	plusPos := plusIndex(m.fipsCount())
	return m.field(plusPos+6, plusPos+13)
}

// StartTimeSec returns the issue time as a UTC Unix epoch, or 0 if the
// JJJHHMM field can't be parsed. Since the header never carries a year,
// the current UTC year is assumed, rolled back or forward one year at
// the turn-of-year boundary: if today's day-of-year is < 10 and the
// issued day-of-year is > 355, the message is assumed to be from last
// December; the mirror case rolls forward instead.
func (m *SAMEMessage) StartTimeSec() int64 {
	jjjhhmm := m.StartTimeStr()
	if len(jjjhhmm) != 7 {
		return 0
	}
	jjj, err1 := strconv.Atoi(jjjhhmm[:3])
	hh, err2 := strconv.Atoi(jjjhhmm[3:5])
	mm, err3 := strconv.Atoi(jjjhhmm[5:7])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}

	now := time.Unix(m.clock(), 0).UTC()
	year := now.Year()
	switch {
	case now.YearDay() < 10 && jjj > 355:
		year--
	case now.YearDay() > 355 && jjj < 10:
		year++
	}

	t := time.Date(year, time.January, 1, hh, mm, 0, 0, time.UTC).AddDate(0, 0, jjj-1)
	return t.Unix()
}

// EndTimeSec returns StartTimeSec + DurationSec.
func (m *SAMEMessage) EndTimeSec() int64 {
	return m.StartTimeSec() + int64(m.DurationSec())
}

// Broadcaster returns the station/network identifier, the eight
// characters between the '+' offset and the trailing dash (e.g.
// "KCLE/NWS").
func (m *SAMEMessage) Broadcaster() string {
	plusPos := plusIndex(m.fipsCount())
	return m.field(plusPos+14, plusPos+22)
}

// Published returns the arrival time of the first header copy, or 0 if
// none have arrived yet.
func (m *SAMEMessage) Published() int64 {
	if len(m.headers) == 0 {
		return 0
	}
	return m.headers[0].ArrivalTime
}

// EventID identifies the over-the-air transmission this message
// represents, for grouping related updates (e.g. a warning and its
// follow-on statements) into one EventMessageGroup. For a message built
// from raw header copies it's derived from the transmitter and
// first-header arrival time rather than anything in the header text
// itself, since the SAME protocol has no update-linking field of its
// own. A message built with NewSAMEMessageFromHeader uses its header
// text as the EventID.
func (m *SAMEMessage) EventID() string {
	if m.literal != "" {
		return m.literal
	}
	return fmt.Sprintf("%s-%.3f", m.transmitter, float64(m.Published()))
}

// AppliesToFIPS reports whether this message's FIPS list contains code,
// which must be five or six characters (a five-character code is
// treated as having an implicit leading "0" P-code).
func (m *SAMEMessage) AppliesToFIPS(code string) (bool, error) {
	switch len(code) {
	case 5:
		code = "0" + code
	case 6:
	default:
		return false, ErrInvalidFIPSLength
	}

	for _, fips := range m.Counties() {
		if len(fips) != 6 {
			continue
		}
		if fips[1:] != code[1:] {
			continue
		}
		if fips[0] == '0' || code[0] == '0' || fips[0] == code[0] {
			return true, nil
		}
	}
	return false, nil
}

// Confidence returns the per-byte confidence vector behind the reconciled
// header text returned by GetSAMEMessage.
func (m *SAMEMessage) Confidence() []int {
	return m.GetSAMEMessage().Confidences
}
