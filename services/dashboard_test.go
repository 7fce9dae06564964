package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dpefoundation/website/models"
)

func seedBleakley(t *testing.T, db *gorm.DB, rows ...models.BleakleySubmission) {
	t.Helper()
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
}

func bleakley(name string, at time.Time, notes string) models.BleakleySubmission {
	return models.BleakleySubmission{
		SubmissionBase:         models.SubmissionBase{FullName: name, SubmissionTime: at, AdminNotes: notes, ApplicationFilePath: strings.ToLower(name) + "-app.pdf"},
		AttendanceFilePath:     strings.ToLower(name) + "-att.pdf",
		TestCompletionFilePath: strings.ToLower(name) + "-fsot.pdf",
	}
}

func names(rows []ScholarshipRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.FullName
	}
	return out
}

func TestListScholarshipsDefaultsToNewestFirst(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedBleakley(t, db,
		bleakley("Ada", day, ""),
		bleakley("Grace", day.Add(48*time.Hour), ""),
		bleakley("Alan", day.Add(24*time.Hour), ""),
	)
	svc := NewDashboardService(db, newFakeStore(), time.UTC)

	rows, err := svc.ListScholarships(context.Background(), "bleakley", ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Grace", "Alan", "Ada"}, names(rows))
	assert.Equal(t, models.DefaultStatus, rows[0].Status)
	assert.Equal(t, "grace-fsot.pdf", rows[0].File(models.RoleTestCompletion))
}

func TestListScholarshipsStableOnTies(t *testing.T) {
	db := newTestDB(t)
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedBleakley(t, db, bleakley("First", same, ""), bleakley("Second", same, ""), bleakley("Third", same, ""))
	svc := NewDashboardService(db, newFakeStore(), time.UTC)

	for _, dir := range []string{SortAsc, SortDesc} {
		rows, err := svc.ListScholarships(context.Background(), "bleakley", ListQuery{Sort: "submission_time", Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, []string{"First", "Second", "Third"}, names(rows), dir)
	}
}

func TestListScholarshipsSortAndFilter(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedBleakley(t, db,
		bleakley("Charlie", day, "needs transcript"),
		bleakley("alice", day, ""),
		bleakley("Bob", day, "TRANSCRIPT received"),
	)
	svc := NewDashboardService(db, newFakeStore(), time.UTC)
	ctx := context.Background()

	rows, err := svc.ListScholarships(ctx, "bleakley", ListQuery{Sort: "full_name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Charlie", "alice"}, names(rows))

	rows, err = svc.ListScholarships(ctx, "bleakley", ListQuery{Sort: "full_name", Dir: "desc", Q: "Transcript"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Bob"}, names(rows))

	rows, err = svc.ListScholarships(ctx, "bleakley", ListQuery{Q: "alice-att"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names(rows))

	_, err = svc.ListScholarships(ctx, "bleakley", ListQuery{Sort: "password"})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestListQueryToggle(t *testing.T) {
	q := ListQuery{}
	next := q.Toggle("submission_time")
	assert.Equal(t, ListQuery{Sort: "submission_time", Dir: SortAsc}, next)
	assert.Equal(t, SortDesc, next.Toggle("submission_time").Dir)
	assert.Equal(t, ListQuery{Sort: "status", Dir: SortAsc, Q: "x"}, ListQuery{Sort: "full_name", Dir: SortDesc, Q: "x"}.Toggle("status"))
}

func TestUpdateReviewPersists(t *testing.T) {
	db := newTestDB(t)
	seedBleakley(t, db, bleakley("Ada", time.Now(), ""))
	svc := NewDashboardService(db, newFakeStore(), time.UTC)
	ctx := context.Background()

	reviewed := true
	status := models.StatusApprovedPending
	notes := "call back Monday"
	row, err := svc.UpdateReview(ctx, "bleakley", 1, ReviewUpdate{Reviewed: &reviewed, Status: &status, AdminNotes: &notes})
	require.NoError(t, err)
	assert.True(t, row.Reviewed)

	rows, err := svc.ListScholarships(ctx, "bleakley", ListQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Reviewed)
	assert.Equal(t, status, rows[0].Status)
	assert.Equal(t, notes, rows[0].AdminNotes)

	// only the given column changes
	unreviewed := false
	_, err = svc.UpdateReview(ctx, "bleakley", 1, ReviewUpdate{Reviewed: &unreviewed})
	require.NoError(t, err)
	rows, _ = svc.ListScholarships(ctx, "bleakley", ListQuery{})
	assert.False(t, rows[0].Reviewed)
	assert.Equal(t, status, rows[0].Status)
}

func TestUpdateReviewErrors(t *testing.T) {
	db := newTestDB(t)
	seedBleakley(t, db, bleakley("Ada", time.Now(), ""))
	svc := NewDashboardService(db, newFakeStore(), time.UTC)
	ctx := context.Background()

	bad := "Maybe"
	_, err := svc.UpdateReview(ctx, "bleakley", 1, ReviewUpdate{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	notes := "x"
	_, err = svc.UpdateReview(ctx, "bleakley", 99, ReviewUpdate{AdminNotes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateReview(ctx, "bleakley", 1, ReviewUpdate{})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestSaveAllReportsPerRow(t *testing.T) {
	db := newTestDB(t)
	seedBleakley(t, db, bleakley("Ada", time.Now(), ""), bleakley("Alan", time.Now(), ""))
	svc := NewDashboardService(db, newFakeStore(), time.UTC)

	yes := true
	results, err := svc.SaveAll(context.Background(), "bleakley", []ReviewUpdate{
		{ID: 1, Reviewed: &yes},
		{ID: 42, Reviewed: &yes},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
}

func TestFileURL(t *testing.T) {
	db := newTestDB(t)
	seedBleakley(t, db, bleakley("Ada", time.Now(), ""))
	svc := NewDashboardService(db, newFakeStore(), time.UTC)
	ctx := context.Background()

	url, err := svc.FileURL(ctx, "bleakley", 1, models.RoleTestCompletion)
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/fsot/ada-fsot.pdf", url)

	_, err = svc.FileURL(ctx, "bleakley", 2, models.RoleTestCompletion)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.FileURL(ctx, "bleakley", 1, models.RoleResume)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestWriteScholarshipCSV(t *testing.T) {
	v, err := LookupVariant("bleakley")
	require.NoError(t, err)
	rows := []ScholarshipRow{
		{
			FullName:       `Smith, "Jo"`,
			Files:          []FileRef{{Role: models.RoleApplication, Path: "a.pdf"}, {Role: models.RoleAttendance, Path: "b.pdf"}, {Role: models.RoleTestCompletion, Path: "c.pdf"}},
			SubmissionTime: time.Date(2024, 5, 1, 17, 4, 5, 0, time.UTC),
			Reviewed:       true,
			Status:         models.StatusApprovedPaid,
			AdminNotes:     "line one\nline two",
		},
		{FullName: "Plain", SubmissionTime: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), Status: models.DefaultStatus},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteScholarshipCSV(&buf, v, rows, time.UTC))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Full Name", "Application File", "Attendance File", "Test Completion File", "Submitted At", "Reviewed", "Status", "Admin Notes"}, records[0])
	assert.Equal(t, []string{`Smith, "Jo"`, "a.pdf", "b.pdf", "c.pdf", "5/1/2024, 5:04:05 PM", "Yes", "Approved - Paid", "line one\nline two"}, records[1])
	assert.Equal(t, "No", records[2][5])
	assert.Equal(t, "", records[2][1])

	assert.Equal(t, "bleakley_submissions.csv", ScholarshipCSVName(v))
}

func TestWriteContactCSVEscapes(t *testing.T) {
	var buf bytes.Buffer
	rows := []models.ContactSubmission{{FullName: "Ann", Email: "ann@example.org", Message: `He said "hi", then left`, SubmissionTime: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}}
	require.NoError(t, WriteContactCSV(&buf, rows, time.UTC))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Full Name,Email,Message,Submitted At", lines[0])
	assert.Equal(t, `Ann,ann@example.org,"He said ""hi"", then left","5/1/2024, 12:00:00 AM"`, lines[1])
}

func TestListScholarshipsSearchMatchesReviewed(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	done := bleakley("Ada", day, "")
	done.Reviewed = true
	seedBleakley(t, db, done, bleakley("Grace", day.Add(time.Hour), ""))
	svc := NewDashboardService(db, newFakeStore(), time.UTC)

	rows, err := svc.ListScholarships(context.Background(), "bleakley", ListQuery{Q: "YES"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada"}, names(rows))
}
