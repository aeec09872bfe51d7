package service

import (
	"math"
	"time"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// ComputeTraineeAnalytics builds one trainee's activity profile over the trailing six
// months: hourly spread, weekday histogram, monthly average, and standing among every
// trainee in the snapshot. Dates are compared as ISO strings, so the cutoff is simply
// now minus six months formatted the same way.
func ComputeTraineeAnalytics(traineeID string, entries []models.Entry, trainees []models.Trainee, loc *time.Location, now time.Time) models.TraineeAnalytics {
	if loc == nil {
		loc = time.UTC
	}
	cutoff := now.In(loc).AddDate(0, -6, 0).Format(isoDate)

	hourCounts := make(map[int]int)
	weekdayCounts := make(map[int]int)
	weekdayDates := make(map[int]map[string]struct{})
	months := make(map[string]struct{})
	countsByTrainee := make(map[string]int)
	total := 0

	for _, entry := range entries {
		if entry.Status != models.EntryStatusSuccess || entry.EntryDate < cutoff {
			continue
		}
		countsByTrainee[entry.TraineeID]++
		if entry.TraineeID != traineeID {
			continue
		}
		total++
		if hour, ok := entryHour(entry.EntryTime); ok {
			hourCounts[hour]++
		}
		if day, ok := parseEntryDate(entry.EntryDate, loc); ok {
			weekday := int(day.Weekday())
			weekdayCounts[weekday]++
			dates := weekdayDates[weekday]
			if dates == nil {
				dates = make(map[string]struct{})
				weekdayDates[weekday] = dates
			}
			dates[entry.EntryDate] = struct{}{}
		}
		if len(entry.EntryDate) >= 7 {
			months[entry.EntryDate[:7]] = struct{}{}
		}
	}

	hourly := make([]models.HourBucket, 0, len(hourCounts))
	for hour := 0; hour < 24; hour++ {
		if count, ok := hourCounts[hour]; ok {
			hourly = append(hourly, models.HourBucket{Hour: hour, Count: count})
		}
	}

	weekdays := make([]models.WeekdayBucket, 7)
	for day := 0; day < 7; day++ {
		bucket := models.WeekdayBucket{Weekday: day, Label: models.HebrewWeekdays[day], Count: weekdayCounts[day]}
		if distinct := len(weekdayDates[day]); distinct > 0 {
			bucket.Average = float64(bucket.Count) / float64(distinct)
		}
		weekdays[day] = bucket
	}

	monthSpan := len(months)
	if monthSpan < 1 {
		monthSpan = 1
	}

	rank := 1
	own := countsByTrainee[traineeID]
	for id, count := range countsByTrainee {
		if id != traineeID && count > own {
			rank++
		}
	}

	population := len(trainees)
	percentile := 0
	if population > 0 {
		percentile = int(math.Round((1 - float64(rank)/float64(population)) * 100))
		if percentile < 0 {
			percentile = 0
		}
	}

	return models.TraineeAnalytics{
		TraineeID:      traineeID,
		TotalEntries:   total,
		Hourly:         hourly,
		Weekdays:       weekdays,
		MonthlyAverage: float64(total) / float64(monthSpan),
		Rank:           rank,
		Percentile:     percentile,
	}
}

// entryHour extracts the hour component from an HH:MM:SS clock string.
func entryHour(clock string) (int, bool) {
	if len(clock) < 2 {
		return 0, false
	}
	hour := 0
	for _, ch := range clock[:2] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		hour = hour*10 + int(ch-'0')
	}
	if hour > 23 {
		return 0, false
	}
	return hour, true
}
