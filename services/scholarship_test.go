package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/models"
)

func TestSubmitStoresEveryDocumentInItsBucket(t *testing.T) {
	for _, variant := range VariantNames() {
		t.Run(variant, func(t *testing.T) {
			db := newTestDB(t)
			store := newFakeStore()
			freezeTime(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
			svc := NewScholarshipService(db, store, config.Get())

			rec, err := svc.Submit(context.Background(), variant, fullApplication(t, variant, "Ada Lovelace"))
			require.NoError(t, err)

			v, _ := LookupVariant(variant)
			assert.Equal(t, len(v.Slots), store.count())
			for _, slot := range v.Slots {
				path := rec.FilePath(slot.Role)
				require.NotEmpty(t, path, slot.Role)
				assert.True(t, strings.HasSuffix(path, ".pdf"))
				bucket, err := BucketFor(variant, slot.Role)
				require.NoError(t, err)
				assert.True(t, store.has(bucket, path), "object %s/%s", bucket, path)
			}

			stored := v.NewRecord()
			require.NoError(t, db.First(stored, rec.Common().ID).Error)
			assert.Equal(t, "Ada Lovelace", stored.Common().FullName)
			assert.Equal(t, models.DefaultStatus, stored.Common().Status)
			assert.False(t, stored.Common().Reviewed)
			assert.True(t, stored.Common().SubmissionTime.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

			var unattached int64
			require.NoError(t, db.Model(&models.UploadedFile{}).Where("attached = ?", false).Count(&unattached).Error)
			assert.Zero(t, unattached)
		})
	}
}

func TestSubmitMissingFileNeverTouchesStorage(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewScholarshipService(db, store, config.Get())

	in := fullApplication(t, "bleakley", "Ada")
	delete(in.Files, "test_completion")

	_, err := svc.Submit(context.Background(), "bleakley", in)
	require.ErrorIs(t, err, ErrMissingFile)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"test_completion"}, fe.Fields)
	assert.Zero(t, store.calls)

	var n int64
	db.Model(&models.BleakleySubmission{}).Count(&n)
	assert.Zero(t, n)
}

func TestSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewScholarshipService(db, store, config.Get())
	ctx := context.Background()

	_, err := svc.Submit(ctx, "unknown", ApplicationInput{FullName: "x"})
	assert.ErrorIs(t, err, ErrUnknownVariant)

	in := fullApplication(t, "weiss", "  ")
	_, err = svc.Submit(ctx, "weiss", in)
	assert.ErrorIs(t, err, ErrMissingField)

	in = fullApplication(t, "weiss", "Ada")
	in.Files["attendance"] = doc("proof.exe", "MZ")
	_, err = svc.Submit(ctx, "weiss", in)
	assert.ErrorIs(t, err, ErrFileType)

	in = fullApplication(t, "weiss", "Ada")
	in.Files["application"] = &UploadFile{
		Filename: "big.docx",
		Size:     2 << 20,
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("")), nil },
	}
	_, err = svc.Submit(ctx, "weiss", in)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Zero(t, store.calls)
}

func TestSubmitUploadFailureRemovesEarlierObjects(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	store.failOn = "lemoine-transcripts"
	svc := NewScholarshipService(db, store, config.Get())

	_, err := svc.Submit(context.Background(), "lemoine", fullApplication(t, "lemoine", "Ada"))
	require.ErrorIs(t, err, ErrUploadFailed)

	// application and resume were written before the transcript failed
	assert.Equal(t, 3, store.calls)
	assert.Zero(t, store.count())

	var rows, ledger int64
	db.Model(&models.LemoineSubmission{}).Count(&rows)
	db.Model(&models.UploadedFile{}).Count(&ledger)
	assert.Zero(t, rows)
	assert.Zero(t, ledger)
}

func TestSubmitInsertFailureRemovesUploadedObjects(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewScholarshipService(db, store, config.Get())

	require.NoError(t, db.Migrator().DropTable(&models.ButtsSubmission{}))

	_, err := svc.Submit(context.Background(), "butts", fullApplication(t, "butts", "Ada"))
	require.Error(t, err)
	assert.Equal(t, 3, store.calls)
	assert.Zero(t, store.count())
}

func TestBucketFor(t *testing.T) {
	cases := []struct{ variant, role, bucket string }{
		{"bleakley", models.RoleApplication, "applications"},
		{"bleakley", models.RoleAttendance, "proofs"},
		{"bleakley", models.RoleTestCompletion, "fsot"},
		{"weiss", models.RoleIntern, "weiss-intern-proof"},
		{"butts", models.RoleRequirements, "butts-requirements"},
		{"lemoine", models.RoleRecommendation, "lemoine-recommendations"},
	}
	for _, c := range cases {
		got, err := BucketFor(c.variant, c.role)
		require.NoError(t, err)
		assert.Equal(t, c.bucket, got)
	}

	_, err := BucketFor("weiss", models.RoleResume)
	assert.ErrorIs(t, err, ErrUnknownRole)
	_, err = BucketFor("nobody", models.RoleApplication)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
