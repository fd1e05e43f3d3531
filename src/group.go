package wxsame

import (
	"github.com/golang/geo/s2"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Group SAME/VTEC messages that describe the same ongoing
 *		event and answer "is this effective here and now?"
 *
 * Description:	A severe weather warning often arrives as a sequence of
 *		updates (the initial warning, then follow-on statements)
 *		sharing one event identifier. EventMessageGroup keeps them
 *		together, tracks every county any of them has touched, and
 *		resolves locality either against a simple county match or,
 *		when a message carries one, a polygon refining that county
 *		down to a sub-area.
 *
 *------------------------------------------------------------------*/

// PointInRegion is the locality test a message's geographic container
// provides. A message with no polygon has no PointInRegion at all, and
// locality falls back to county (FIPS) matching alone.
type PointInRegion interface {
	Contains(lat, lon float64) bool
}

// RectRegion is a PointInRegion bounded by a latitude/longitude
// rectangle, useful for tests and for coarse containers that don't
// warrant a full polygon.
type RectRegion struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether (lat, lon) falls within the rectangle,
// inclusive of its edges.
func (r RectRegion) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// S2PolygonRegion is a PointInRegion backed by an s2.Polygon, for the
// arbitrary storm-warning polygons NWS products actually carry.
type S2PolygonRegion struct {
	Polygon *s2.Polygon
}

// Contains reports whether (lat, lon) falls within the polygon.
func (r S2PolygonRegion) Contains(lat, lon float64) bool {
	if r.Polygon == nil {
		return false
	}
	return r.Polygon.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}

// GroupedMessage is the subset of SAMEMessage's surface EventMessageGroup
// needs from each of its members, plus the optional polygon refining the
// message's counties to a sub-area.
type GroupedMessage struct {
	Message   *SAMEMessage
	Container PointInRegion
}

// EventMessageGroup accumulates the messages that share one EventID and
// answers effectiveness queries against them. Append-only: adding the
// same message instance twice is a no-op.
type EventMessageGroup struct {
	messages []GroupedMessage
	areas    map[string]struct{}
}

// NewEventMessageGroup returns an empty group.
func NewEventMessageGroup() *EventMessageGroup {
	return &EventMessageGroup{areas: make(map[string]struct{})}
}

// AddMessage appends msg (with its optional polygon container) to the
// group, union-ing its counties into the group's area set. A message
// already present (by pointer identity) is ignored.
func (g *EventMessageGroup) AddMessage(msg *SAMEMessage, container PointInRegion) {
	for _, gm := range g.messages {
		if gm.Message == msg {
			return
		}
	}
	g.messages = append(g.messages, GroupedMessage{Message: msg, Container: container})
	for _, fips := range msg.Counties() {
		g.areas[fips] = struct{}{}
	}
}

// EventID returns the shared event identifier of this group's members,
// or "" if the group is empty.
func (g *EventMessageGroup) EventID() string {
	if len(g.messages) == 0 {
		return ""
	}
	return g.messages[0].Message.EventID()
}

// EndTimeSec returns the last-added message's end time, matching the
// convention that the most recent update governs the group's overall
// expiry.
func (g *EventMessageGroup) EndTimeSec() int64 {
	if len(g.messages) == 0 {
		return 0
	}
	return g.messages[len(g.messages)-1].Message.EndTimeSec()
}

// StartTimeSec returns the first-added message's start time.
func (g *EventMessageGroup) StartTimeSec() int64 {
	if len(g.messages) == 0 {
		return 0
	}
	return g.messages[0].Message.StartTimeSec()
}

// EventType returns the last-added message's event type, matching the
// convention that the most recent update governs the group's
// classification (e.g. a warning superseding an earlier watch).
func (g *EventMessageGroup) EventType() string {
	if len(g.messages) == 0 {
		return ""
	}
	return g.messages[len(g.messages)-1].Message.EventType()
}

// IsEffective is this group's central query: is some message in it
// currently in force for (lat, lon, fips)? now is the current Unix
// time. testForHere asks about the point itself; false asks about
// "somewhere other than here", e.g. to raise general alertness about a
// nearby but not-yet-local threat.
//
// The latest (by append order) message matching fips and the time
// window wins. If it carries a polygon and latlon is known, the polygon
// -- not the county match -- decides locality. Without a polygon,
// matching the county is enough to be "here". The "not here" branch
// returns the match itself only when a polygon excludes the point.
// When no message literally covers fips at all, "here" has no answer,
// and "not here" instead recurses into the group's other known areas
// looking for one where the message is effective.
func (g *EventMessageGroup) IsEffective(lat, lon float64, haveLatLon bool, fips string, testForHere bool, now int64) *SAMEMessage {
	var match *GroupedMessage
	for i := range g.messages {
		gm := &g.messages[i]
		applies, err := gm.Message.AppliesToFIPS(fips)
		if err != nil || !applies {
			continue
		}
		if gm.Message.EndTimeSec() <= now {
			continue
		}
		start := gm.Message.StartTimeSec()
		if start == 0 {
			if gm.Message.Published() > now {
				continue
			}
		} else if start > now {
			continue
		}
		match = gm
	}

	if match == nil {
		// Nothing literally covers fips. "Here" has no answer; "elsewhere"
		// checks whether any of the group's other known areas are
		// currently effective instead.
		if testForHere {
			return nil
		}
		for area := range g.areas {
			if area == fips {
				continue
			}
			if other := g.IsEffective(0, 0, false, area, true, now); other != nil {
				return other
			}
		}
		return nil
	}

	itsHere := true
	var polygon PointInRegion
	if haveLatLon {
		polygon = match.Container
		if polygon != nil {
			itsHere = polygon.Contains(lat, lon)
		}
	}

	if testForHere {
		if itsHere {
			return match.Message
		}
		return nil
	}

	if polygon != nil && !itsHere {
		return match.Message
	}
	return nil
}
