package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

func TestNextContactSkipsContactsWorkedToday(t *testing.T) {
	f := newFixture(t)
	c := f.assignedContact(t, "5142000001")

	result, err := f.queue.NextContact(f.ctx, f.tel)
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, c.ID, result.Contact.ID)

	_, err = f.contacts.LogCall(f.ctx, f.tel, c.ID, LogCallInput{CallSid: "CA1", Status: "no-answer"})
	require.NoError(t, err)

	result, err = f.queue.NextContact(f.ctx, f.tel)
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, 0, result.TotalAvailable)

	f.clock.Advance(24 * time.Hour)
	result, err = f.queue.NextContact(f.ctx, f.tel)
	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, c.ID, result.Contact.ID)
}

func TestNextContactRequiresTelephoniste(t *testing.T) {
	f := newFixture(t)
	_, err := f.queue.NextContact(f.ctx, f.agent)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestActivityTodayListsContactsWorkedSinceMidnight(t *testing.T) {
	f := newFixture(t)
	yesterday := f.assignedContact(t, "5142000011")
	today := f.assignedContact(t, "5142000012")
	f.assignedContact(t, "5142000013")

	_, err := f.contacts.LogCall(f.ctx, f.tel, yesterday.ID, LogCallInput{CallSid: "CA-old", Status: "completed"})
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.contacts.LogCall(f.ctx, f.tel, today.ID, LogCallInput{CallSid: "CA-1", Status: "no-answer"})
	require.NoError(t, err)
	_, err = f.contacts.LogCall(f.ctx, f.tel, today.ID, LogCallInput{CallSid: "CA-2", Status: "completed"})
	require.NoError(t, err)
	_, err = f.contacts.AddNote(f.ctx, f.tel, today.ID, "call back after 5pm")
	require.NoError(t, err)

	report, err := f.queue.ActivityToday(f.ctx, f.tel)
	require.NoError(t, err)
	require.Len(t, report.Contacts, 1)
	assert.Equal(t, today.ID, report.Contacts[0].ID)
	assert.Equal(t, ActivityStats{ContactsWorked: 1, CallsMade: 2, NotesAdded: 1}, report.Stats)

	f.clock.Advance(24 * time.Hour)
	report, err = f.queue.ActivityToday(f.ctx, f.tel)
	require.NoError(t, err)
	assert.Empty(t, report.Contacts)
	assert.Equal(t, ActivityStats{}, report.Stats)

	_, err = f.queue.ActivityToday(f.ctx, f.agent)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
