package queue

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

const tel = "tel-1"

func ptr(s string) *string { return &s }

func statusTable() map[string]*domain.ContactStatus {
	return map[string]*domain.ContactStatus{
		"s5":   {Tracking: domain.Tracking{ID: "s5"}, Order: 5},
		"s10":  {Tracking: domain.Tracking{ID: "s10"}, Order: 10},
		"dead": {Tracking: domain.Tracking{ID: "dead"}, Order: 1, ExcludeFromCallList: true},
	}
}

func contact(id, statusID string, calls int, callTime time.Time) *domain.Contact {
	c := domain.NewContact("5140000000")
	c.ID = id
	c.StatusID = ptr(statusID)
	c.AssignedToTelephonisteID = ptr(tel)
	for i := 0; i < calls; i++ {
		c.CallHistory = append(c.CallHistory, domain.CallLogEntry{CalledBy: ptr("someone-else"), CalledAt: callTime})
	}
	return c
}

func TestSelectOrdersByStatusThenUncalled(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	lastWeek := now.AddDate(0, 0, -7)
	x := contact("x", "s10", 1, lastWeek)
	y := contact("y", "s10", 0, lastWeek)
	z := contact("z", "s5", 0, lastWeek)

	for seed := uint64(0); seed < 50; seed++ {
		sel := NewSelector(rand.NewPCG(seed, seed+1))
		res := sel.Select(tel, []*domain.Contact{x, y, z}, statusTable(), now)
		require.True(t, res.Found)
		assert.Equal(t, "z", res.Contact.ID)
		assert.Equal(t, 3, res.TotalAvailable)
	}

	worked := contact("z", "s5", 0, lastWeek)
	worked.CallHistory = append(worked.CallHistory, domain.CallLogEntry{CalledBy: ptr(tel), CalledAt: now.Add(-time.Hour)})
	for seed := uint64(0); seed < 50; seed++ {
		sel := NewSelector(rand.NewPCG(seed, seed+1))
		res := sel.Select(tel, []*domain.Contact{x, y, worked}, statusTable(), now)
		require.True(t, res.Found)
		assert.Equal(t, "y", res.Contact.ID)
		assert.Equal(t, 2, res.TotalAvailable)
	}
}

func TestSelectExcludesWorkedTodayUntilNextDay(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	c := contact("a", "s10", 0, now)
	c.CallHistory = append(c.CallHistory, domain.CallLogEntry{CalledBy: ptr(tel), CalledAt: now.Add(-time.Hour)})

	sel := NewSelector(rand.NewPCG(1, 2))
	res := sel.Select(tel, []*domain.Contact{c}, statusTable(), now)
	assert.False(t, res.Found)

	tomorrow := now.Add(24 * time.Hour)
	res = sel.Select(tel, []*domain.Contact{c}, statusTable(), tomorrow)
	require.True(t, res.Found)
	assert.Equal(t, "a", res.Contact.ID)
}

func TestSelectExcludesStatusChangedToday(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	c := contact("a", "s10", 0, now)
	c.StatusHistory = append(c.StatusHistory, domain.StatusChange{StatusID: "s10", UpdatedBy: ptr(tel), UpdatedAt: StartOfDay(now)})

	res := NewSelector(nil).Select(tel, []*domain.Contact{c}, statusTable(), now)
	assert.False(t, res.Found)

	c.StatusHistory[0].UpdatedBy = ptr("admin")
	res = NewSelector(nil).Select(tel, []*domain.Contact{c}, statusTable(), now)
	assert.True(t, res.Found)
}

func TestSelectNeverReturnsExcludedStatus(t *testing.T) {
	now := time.Now()
	excluded := contact("dead", "dead", 0, now)
	res := NewSelector(nil).Select(tel, []*domain.Contact{excluded}, statusTable(), now)
	assert.False(t, res.Found)
	assert.Equal(t, 0, res.TotalAvailable)
	assert.Nil(t, res.Contact)
}

func TestSelectIgnoresOtherAssignees(t *testing.T) {
	now := time.Now()
	mine := contact("mine", "s10", 0, now)
	theirs := contact("theirs", "s5", 0, now)
	theirs.AssignedToTelephonisteID = ptr("tel-2")
	unassigned := contact("none", "s5", 0, now)
	unassigned.AssignedToTelephonisteID = nil

	res := NewSelector(nil).Select(tel, []*domain.Contact{mine, theirs, unassigned}, statusTable(), now)
	require.True(t, res.Found)
	assert.Equal(t, "mine", res.Contact.ID)
	assert.Equal(t, 1, res.TotalAvailable)
}

func TestSelectMissingStatusSortsLast(t *testing.T) {
	now := time.Now()
	orphan := contact("orphan", "gone", 0, now)
	known := contact("known", "s10", 3, now.AddDate(0, 0, -2))

	res := NewSelector(nil).Select(tel, []*domain.Contact{orphan, known}, statusTable(), now)
	require.True(t, res.Found)
	assert.Equal(t, "known", res.Contact.ID)
	assert.Equal(t, 2, res.TotalAvailable)
}

func TestSelectShufflesTies(t *testing.T) {
	now := time.Now()
	contacts := []*domain.Contact{
		contact("a", "s10", 0, now),
		contact("b", "s10", 0, now),
		contact("c", "s10", 0, now),
	}
	seen := map[string]bool{}
	sel := NewSelector(rand.NewPCG(42, 7))
	for i := 0; i < 200; i++ {
		res := sel.Select(tel, contacts, statusTable(), now)
		require.True(t, res.Found)
		seen[res.Contact.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestStartOfDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	now := time.Date(2024, 6, 3, 2, 30, 0, 0, time.UTC).In(loc)
	midnight := StartOfDay(now)
	assert.Equal(t, 2, midnight.Day())
	assert.Equal(t, 0, midnight.Hour())
	assert.Equal(t, loc, midnight.Location())
}
