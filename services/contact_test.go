package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpefoundation/website/models"
)

func TestContactSubmitInsertsOneRow(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
	freezeTime(t, now)
	svc := NewContactService(db)

	row, err := svc.Submit(context.Background(), ContactInput{
		FullName: "Jane Doe",
		Email:    "jane@example.org",
		Message:  "  Hello <b>there</b>\n",
	})
	require.NoError(t, err)
	assert.NotZero(t, row.ID)

	var rows []models.ContactSubmission
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].FullName)
	assert.Equal(t, "jane@example.org", rows[0].Email)
	assert.Equal(t, "Hello <b>there</b>", rows[0].Message)
	assert.True(t, rows[0].SubmissionTime.Equal(now))
}

func TestContactSubmitKeepsAngleBrackets(t *testing.T) {
	db := newTestDB(t)
	svc := NewContactService(db)

	for _, msg := range []string{"if a<b and c>d", "reach me at <jane@example.org>", "Tom & Jerry"} {
		row, err := svc.Submit(context.Background(), ContactInput{FullName: "Jane", Email: "jane@example.org", Message: msg})
		require.NoError(t, err, msg)

		var stored models.ContactSubmission
		require.NoError(t, db.First(&stored, row.ID).Error)
		assert.Equal(t, msg, stored.Message)
	}
}

func TestContactSubmitAcceptsNameAlias(t *testing.T) {
	db := newTestDB(t)
	row, err := NewContactService(db).Submit(context.Background(), ContactInput{Name: "Jo", Email: "jo@example.org", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Jo", row.FullName)
}

func TestContactSubmitRejectsMissingFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewContactService(db)

	_, err := svc.Submit(context.Background(), ContactInput{FullName: "Jane", Message: "   "})
	require.ErrorIs(t, err, ErrMissingField)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"email", "message"}, fe.Fields)

	_, err = svc.Submit(context.Background(), ContactInput{FullName: "Jane", Email: "not-an-email", Message: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.NotErrorIs(t, err, ErrMissingField)

	var n int64
	db.Model(&models.ContactSubmission{}).Count(&n)
	assert.Zero(t, n)
}

func TestListContactsFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewContactService(db)
	ctx := context.Background()
	for _, in := range []ContactInput{
		{FullName: "Jane", Email: "jane@example.org", Message: "About the Weiss scholarship"},
		{FullName: "Tom", Email: "tom@example.org", Message: "Facilities rental"},
	} {
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)
	}

	dash := NewDashboardService(db, newFakeStore(), time.UTC)
	rows, err := dash.ListContacts(ctx, ListQuery{Q: "weiss"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane", rows[0].FullName)

	rows, err = dash.ListContacts(ctx, ListQuery{Sort: "email", Dir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Tom", rows[0].FullName)
}
