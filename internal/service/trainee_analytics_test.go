package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

func timedEntry(traineeID, date, clock string) models.Entry {
	return models.Entry{
		ID:        traineeID + "-" + date + "-" + clock,
		TraineeID: traineeID,
		BaseID:    "b1",
		EntryDate: date,
		EntryTime: clock,
		Status:    models.EntryStatusSuccess,
	}
}

func TestComputeTraineeAnalyticsWindowAndHistograms(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	trainees := []models.Trainee{{ID: "t1"}, {ID: "t2"}}
	entries := []models.Entry{
		timedEntry("t1", "2024-06-02", "08:15:00"), // Sunday
		timedEntry("t1", "2024-06-02", "18:40:00"),
		timedEntry("t1", "2024-05-06", "08:05:00"), // Monday
		timedEntry("t1", "2023-11-01", "09:00:00"), // outside the six-month window
		timedEntry("t2", "2024-06-02", "10:00:00"),
	}

	result := ComputeTraineeAnalytics("t1", entries, trainees, time.UTC, now)

	assert.Equal(t, 3, result.TotalEntries, "entries older than six months are excluded")

	require.Len(t, result.Hourly, 2)
	assert.Equal(t, 8, result.Hourly[0].Hour)
	assert.Equal(t, 2, result.Hourly[0].Count)
	assert.Equal(t, 18, result.Hourly[1].Hour)

	require.Len(t, result.Weekdays, 7)
	assert.Equal(t, "ראשון", result.Weekdays[0].Label)
	assert.Equal(t, 2, result.Weekdays[0].Count)
	assert.Equal(t, 1, result.Weekdays[1].Count)
	assert.Zero(t, result.Weekdays[6].Count)

	// 3 entries across 2 distinct months.
	assert.InDelta(t, 1.5, result.MonthlyAverage, 1e-9)
}

func TestComputeTraineeAnalyticsRankAndPercentile(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	trainees := []models.Trainee{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}, {ID: "t4"}}
	entries := []models.Entry{
		timedEntry("t1", "2024-06-01", "08:00:00"),
		timedEntry("t1", "2024-06-02", "08:00:00"),
		timedEntry("t1", "2024-06-03", "08:00:00"),
		timedEntry("t2", "2024-06-01", "08:00:00"),
		timedEntry("t2", "2024-06-02", "08:00:00"),
		timedEntry("t3", "2024-06-01", "08:00:00"),
	}

	first := ComputeTraineeAnalytics("t1", entries, trainees, time.UTC, now)
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 75, first.Percentile)

	last := ComputeTraineeAnalytics("t3", entries, trainees, time.UTC, now)
	assert.Equal(t, 3, last.Rank)
	assert.Equal(t, 25, last.Percentile)
}

func TestComputeTraineeAnalyticsPercentileFloorsAtZero(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	solo := ComputeTraineeAnalytics("t1", []models.Entry{
		timedEntry("t1", "2024-06-01", "08:00:00"),
	}, []models.Trainee{{ID: "t1"}}, time.UTC, now)
	assert.Equal(t, 1, solo.Rank)
	assert.Zero(t, solo.Percentile, "a single-trainee roster pins the percentile at 0")

	empty := ComputeTraineeAnalytics("t1", nil, nil, time.UTC, now)
	assert.Zero(t, empty.TotalEntries)
	assert.Zero(t, empty.Percentile, "empty roster must not divide by zero")
	assert.Zero(t, empty.MonthlyAverage)
}
