package wxsame

import (
	"regexp"
	"sort"
	"sync"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Hold the set of currently-effective messages for a
 *		configured location, score and rank them, expire them, and
 *		notify listeners when the top score changes.
 *
 * Description:	MessageCache is driven by two external inputs: message
 *		submission (as headers finish decoding) and a periodic
 *		tick (to notice expiries even when nothing new arrives).
 *		Both go through Submit/Tick rather than a shared event
 *		bus -- this core has no bus of its own, just the two
 *		entry points and one outbound notification.
 *
 *------------------------------------------------------------------*/

// DefaultMessageScores is the priority table used when a MessageCache
// isn't configured with one of its own. Event codes absent from the
// table score 0.
var DefaultMessageScores = map[string]int{
	"SVA": 20, "SV.A": 20,
	"SVR": 30, "SV.W": 30,
	"TOA": 35, "TO.A": 35,
	"TOR": 40, "TO.W": 45,
}

// ByScoreAndTime sorts ScoredMessages descending by score, then
// descending by start time -- the cache's default ordering.
func ByScoreAndTime(a, b ScoredMessage) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Message.StartTimeSec() > b.Message.StartTimeSec()
}

// ScoredMessage pairs a message with the priority score it was given at
// the moment it was retrieved.
type ScoredMessage struct {
	Message *SAMEMessage
	Score   int
}

// Location is the place a MessageCache cares about: a point, for
// polygon containment, and the county FIPS code that contains it.
type Location struct {
	Lat    float64
	Lon    float64
	HaveLL bool
	FIPS   string
}

// MessageCache holds a collection of recent EventMessageGroups and
// ranks them for one configured location.
//
// All mutation (Submit, and the expiry sweep inside Tick) is done under
// the cache's lock. Score recomputation reads a snapshot and runs
// outside the lock afterward; the cache tolerates scoring a view
// slightly behind the authoritative state rather than holding the lock
// across a listener callback.
type MessageCache struct {
	mu        sync.Mutex
	location  Location
	less      func(a, b ScoredMessage) bool
	scores    map[string]int
	clock     Clock
	groups    map[string]*EventMessageGroup
	onScore   func(score int, triggering *SAMEMessage)
	lastScore int
}

// NewMessageCache builds a cache for location. less defaults to
// ByScoreAndTime, scores to DefaultMessageScores, and clock to the
// system wall clock when nil.
func NewMessageCache(location Location, less func(a, b ScoredMessage) bool, scores map[string]int, clock Clock) *MessageCache {
	if less == nil {
		less = ByScoreAndTime
	}
	if scores == nil {
		scores = DefaultMessageScores
	}
	if clock == nil {
		clock = realClock
	}
	return &MessageCache{
		location: location,
		less:     less,
		scores:   scores,
		clock:    clock,
		groups:   make(map[string]*EventMessageGroup),
	}
}

// OnScoreChanged registers the cache's single score-change listener,
// invoked outside the lock whenever the top score differs from the last
// emitted value. A panic inside fn is caught and logged; it does not
// propagate to the caller of Submit/Tick.
func (c *MessageCache) OnScoreChanged(fn func(score int, triggering *SAMEMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onScore = fn
}

// Submit adds msg (with its optional polygon container) to the group
// keyed by its EventID, creating the group if this is the first message
// seen for that event, then recomputes and (if changed) emits the top
// score.
func (c *MessageCache) Submit(msg *SAMEMessage, container PointInRegion) {
	c.mu.Lock()
	group, ok := c.groups[msg.EventID()]
	if !ok {
		group = NewEventMessageGroup()
		c.groups[msg.EventID()] = group
	}
	group.AddMessage(msg, container)
	c.mu.Unlock()

	c.recomputeScore(msg)
}

// Tick runs the expiry sweep: any group whose last message has already
// ended is dropped. It returns the number of seconds until the next
// group's expiry is worth re-checking, capped at 15 minutes, so the
// caller's scheduler knows when to call Tick again.
func (c *MessageCache) Tick() int64 {
	now := c.clock()

	c.mu.Lock()
	firstExpiry := c.firstExpiryLocked()
	expired := firstExpiry < now
	if expired {
		for id, g := range c.groups {
			if g.EndTimeSec() < now {
				delete(c.groups, id)
			}
		}
	}
	c.mu.Unlock()

	if expired {
		c.recomputeScore(nil)
	}

	const maxWait = 15 * 60
	wait := firstExpiry - now
	if wait < 0 {
		wait = 0
	}
	if wait > maxWait {
		wait = maxWait
	}
	return wait
}

func (c *MessageCache) firstExpiryLocked() int64 {
	first := int64(1<<63 - 1)
	for _, g := range c.groups {
		if end := g.EndTimeSec(); end < first {
			first = end
		}
	}
	return first
}

// recomputeScore computes the top score across local and non-local
// active messages (non-local scores are penalized by 10) and, if it
// differs from the last emitted value, invokes the score-change
// listener with triggering (which may be nil, e.g. after an expiry
// sweep with no single culprit message).
func (c *MessageCache) recomputeScore(triggering *SAMEMessage) {
	c.mu.Lock()
	here := c.activeMessagesLocked(nil, true)
	elsewhere := c.activeMessagesLocked(nil, false)
	listener := c.onScore
	c.mu.Unlock()

	score := 0
	for _, sm := range here {
		if sm.Score > score {
			score = sm.Score
		}
	}
	for _, sm := range elsewhere {
		if adjusted := sm.Score - 10; adjusted > score {
			score = adjusted
		}
	}

	if score == c.lastScore {
		return
	}
	c.lastScore = score

	if listener == nil {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				logListenerPanic(r)
			}
		}()
		listener(score, triggering)
	}()
}

// GetActiveMessages returns the currently-effective messages matching
// eventPattern (nil matches everything), sorted by the cache's
// configured comparator. here selects messages effective at the
// configured location versus elsewhere.
func (c *MessageCache) GetActiveMessages(eventPattern *regexp.Regexp, here bool) []ScoredMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeMessagesLocked(eventPattern, here)
}

func (c *MessageCache) activeMessagesLocked(eventPattern *regexp.Regexp, here bool) []ScoredMessage {
	now := c.clock()
	result := make([]ScoredMessage, 0, len(c.groups))
	for _, g := range c.groups {
		msg := g.IsEffective(c.location.Lat, c.location.Lon, c.location.HaveLL, c.location.FIPS, here, now)
		if msg == nil {
			continue
		}
		if eventPattern != nil && !eventPattern.MatchString(msg.EventType()) {
			continue
		}
		result = append(result, ScoredMessage{Message: msg, Score: c.scores[msg.EventType()]})
	}
	sort.Slice(result, func(i, j int) bool { return c.less(result[i], result[j]) })
	return result
}
