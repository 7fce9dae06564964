package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/models"
)

func TestHeartbeatUpsertsSingleRow(t *testing.T) {
	db := newTestDB(t)
	clock := freezeTime(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewHeartbeatService(db)
	ctx := context.Background()

	_, err := svc.Beat(ctx)
	require.NoError(t, err)
	*clock = clock.Add(10 * time.Minute)
	require.NoError(t, svc.BeatOnly(ctx))

	rows, err := svc.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(models.HeartbeatID), rows[0].ID)
	assert.True(t, rows[0].LastBeat.Equal(time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)))

	var n int64
	db.Model(&models.Heartbeat{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestStatsCollect(t *testing.T) {
	db := newTestDB(t)
	freezeTime(t, time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC))
	store := newFakeStore()
	sch := NewScholarshipService(db, store, config.Get())
	ctx := context.Background()

	_, err := sch.Submit(ctx, "weiss", fullApplication(t, "weiss", "Ada"))
	require.NoError(t, err)
	_, err = sch.Submit(ctx, "weiss", fullApplication(t, "weiss", "Alan"))
	require.NoError(t, err)

	status := models.StatusDeniedFinal
	yes := true
	_, err = NewDashboardService(db, store, time.UTC).UpdateReview(ctx, "weiss", 2, ReviewUpdate{Status: &status, Reviewed: &yes})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.PageView{Date: models.PageViewDay(nowFunc(), time.UTC), Path: "/", Count: 7}).Error)

	stats := NewStatsService(db, time.UTC).Collect(ctx)
	assert.Equal(t, int64(2), stats.Scholarships["weiss"].Total)
	assert.Equal(t, int64(1), stats.Scholarships["weiss"].Reviewed)
	assert.Equal(t, int64(1), stats.Scholarships["weiss"].ByStatus[models.StatusDeniedFinal])
	assert.Equal(t, int64(1), stats.Scholarships["weiss"].ByStatus[models.DefaultStatus])
	assert.Equal(t, int64(0), stats.Scholarships["lemoine"].Total)
	assert.Equal(t, int64(7), stats.PageViewsToday)
}

func TestAdminAuth(t *testing.T) {
	a, err := NewAdminAuth(config.AppConfig{})
	require.NoError(t, err)
	assert.ErrorIs(t, a.Verify("x", "y"), ErrAuthNotConfigured)

	a, err = NewAdminAuth(config.AppConfig{AdminUsername: "trustee", AdminPassword: "pw"})
	require.NoError(t, err)
	assert.NoError(t, a.Verify("trustee", "pw"))
	assert.ErrorIs(t, a.Verify("trustee", "nope"), ErrInvalidCredentials)
	assert.ErrorIs(t, a.Verify("someone", "pw"), ErrInvalidCredentials)
}
