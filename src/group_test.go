package wxsame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMessageGroup_AddMessageIsIdempotent(t *testing.T) {
	g := NewEventMessageGroup()
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)

	g.AddMessage(m, nil)
	g.AddMessage(m, nil)

	assert.Len(t, g.messages, 1)
	assert.Len(t, g.areas, 3)
}

func TestEventMessageGroup_IsEffective_LocalMatch(t *testing.T) {
	g := NewEventMessageGroup()
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)
	g.AddMessage(m, nil)

	start := m.StartTimeSec()
	within := start + 60

	got := g.IsEffective(0, 0, false, "039173", true, within)
	require.NotNil(t, got)
	assert.Same(t, m, got)

	outsideFIPS := g.IsEffective(0, 0, false, "099999", true, within)
	assert.Nil(t, outsideFIPS)
}

func TestEventMessageGroup_IsEffective_ExpiresAfterEndTime(t *testing.T) {
	g := NewEventMessageGroup()
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)
	g.AddMessage(m, nil)

	afterEnd := m.EndTimeSec() + 1
	got := g.IsEffective(0, 0, false, "039173", true, afterEnd)
	assert.Nil(t, got)
}

func TestEventMessageGroup_IsEffective_PolygonExcludesPoint(t *testing.T) {
	g := NewEventMessageGroup()
	m := NewSAMEMessageFromHeader("KRAH", krahClean, nil)

	// A rectangle far from the point under test.
	region := RectRegion{MinLat: 10, MaxLat: 11, MinLon: 10, MaxLon: 11}
	g.AddMessage(m, region)

	within := m.StartTimeSec() + 60

	here := g.IsEffective(35.0, -78.0, true, "007183", true, within)
	assert.Nil(t, here, "point outside the polygon should not be 'here'")

	elsewhere := g.IsEffective(35.0, -78.0, true, "007183", false, within)
	assert.Same(t, m, elsewhere, "point outside the polygon should count as 'elsewhere'")
}

func TestEventMessageGroup_IsEffective_PolygonIncludesPoint(t *testing.T) {
	g := NewEventMessageGroup()
	m := NewSAMEMessageFromHeader("KRAH", krahClean, nil)

	region := RectRegion{MinLat: 34.0, MaxLat: 36.0, MinLon: -79.0, MaxLon: -77.0}
	g.AddMessage(m, region)

	within := m.StartTimeSec() + 60

	here := g.IsEffective(35.0, -78.0, true, "007183", true, within)
	assert.Same(t, m, here)
}

func TestEventMessageGroup_IsEffective_RecursesIntoSiblingAreaWhenFIPSNotCovered(t *testing.T) {
	g := NewEventMessageGroup()
	m := NewSAMEMessageFromHeader("KCLE", cleanHeader, nil)
	g.AddMessage(m, nil)

	within := m.StartTimeSec() + 60

	// "099999" isn't one of cleanHeader's counties, so there's no literal
	// match for it; "elsewhere" should still find the message via one of
	// the group's other known areas (e.g. "039173").
	here := g.IsEffective(0, 0, false, "099999", true, within)
	assert.Nil(t, here)

	elsewhere := g.IsEffective(0, 0, false, "099999", false, within)
	assert.Same(t, m, elsewhere)
}

func TestEventMessageGroup_IsEffective_NoMessagesReturnsNil(t *testing.T) {
	g := NewEventMessageGroup()
	assert.Nil(t, g.IsEffective(0, 0, false, "039173", true, 0))
}

func TestRectRegion_Contains(t *testing.T) {
	r := RectRegion{MinLat: 0, MaxLat: 10, MinLon: 0, MaxLon: 10}
	assert.True(t, r.Contains(5, 5))
	assert.True(t, r.Contains(0, 0))
	assert.False(t, r.Contains(11, 5))
}
