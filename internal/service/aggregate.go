package service

import (
	"sort"
	"time"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// The aggregation functions below are pure: they fold already-filtered record sets
// into chart-ready datasets, never touch their inputs, and recompute identically on
// every call. Lookup misses degrade to empty labels so the charts stay renderable.

const isoDate = "2006-01-02"

func parseEntryDate(value string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(isoDate, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WeekdayHistogram partitions entries into seven weekday buckets (Sunday first). The
// per-bucket average divides the count by the distinct dates observed in that bucket
// and is 0, never NaN, for empty buckets.
func WeekdayHistogram(entries []models.Entry, loc *time.Location) []models.WeekdayBucket {
	counts := [7]int{}
	dates := [7]map[string]struct{}{}
	for i := range dates {
		dates[i] = make(map[string]struct{})
	}

	for _, entry := range entries {
		day, ok := parseEntryDate(entry.EntryDate, loc)
		if !ok {
			continue
		}
		weekday := int(day.Weekday())
		counts[weekday]++
		dates[weekday][entry.EntryDate] = struct{}{}
	}

	buckets := make([]models.WeekdayBucket, 7)
	for i := 0; i < 7; i++ {
		bucket := models.WeekdayBucket{
			Weekday: i,
			Label:   models.HebrewWeekdays[i],
			Count:   counts[i],
		}
		if distinct := len(dates[i]); distinct > 0 {
			bucket.Average = float64(counts[i]) / float64(distinct)
		}
		buckets[i] = bucket
	}
	return buckets
}

// MonthlyHistogram partitions entries into twelve month buckets (January first). The
// average divides the count by the distinct days observed within that month.
func MonthlyHistogram(entries []models.Entry, loc *time.Location) []models.MonthBucket {
	counts := [12]int{}
	days := [12]map[string]struct{}{}
	for i := range days {
		days[i] = make(map[string]struct{})
	}

	for _, entry := range entries {
		day, ok := parseEntryDate(entry.EntryDate, loc)
		if !ok {
			continue
		}
		month := int(day.Month()) - 1
		counts[month]++
		days[month][entry.EntryDate] = struct{}{}
	}

	buckets := make([]models.MonthBucket, 12)
	for i := 0; i < 12; i++ {
		bucket := models.MonthBucket{
			Month: i,
			Label: models.HebrewMonths[i],
			Count: counts[i],
		}
		if distinct := len(days[i]); distinct > 0 {
			bucket.Average = float64(counts[i]) / float64(distinct)
		}
		buckets[i] = bucket
	}
	return buckets
}

// GenderDistribution pairs, per gender, the distinct filtered trainees with the
// entries attributable to that gender. Entries whose trainee cannot be resolved are
// silently excluded from the entry counts.
func GenderDistribution(entries []models.Entry, trainees []models.Trainee, snap *models.Snapshot) []models.GenderCount {
	traineeCounts := map[models.Gender]int{}
	for _, trainee := range trainees {
		traineeCounts[trainee.Gender]++
	}

	entryCounts := map[models.Gender]int{}
	for _, entry := range entries {
		trainee, ok := snap.TraineeByID(entry.TraineeID)
		if !ok {
			continue
		}
		entryCounts[trainee.Gender]++
	}

	return []models.GenderCount{
		{Gender: models.GenderMale, Trainees: traineeCounts[models.GenderMale], Entries: entryCounts[models.GenderMale]},
		{Gender: models.GenderFemale, Trainees: traineeCounts[models.GenderFemale], Entries: entryCounts[models.GenderFemale]},
	}
}

// AgeDistribution buckets trainees by whole-year age and builds the drill-down detail
// per bucket. Trainees without a birth date are excluded.
func AgeDistribution(trainees []models.Trainee, snap *models.Snapshot, now time.Time) ([]models.AgeBucket, map[int][]models.AgeDetailRow) {
	counts := map[int]int{}
	details := map[int][]models.AgeDetailRow{}

	for _, trainee := range trainees {
		age := trainee.Age(now)
		if age < 0 {
			continue
		}
		counts[age]++
		details[age] = append(details[age], models.AgeDetailRow{
			FullName:       trainee.FullName,
			Gender:         trainee.Gender,
			MedicalProfile: trainee.MedicalProfile,
			DepartmentName: snap.DepartmentName(trainee.DepartmentID),
		})
	}

	ages := make([]int, 0, len(counts))
	for age := range counts {
		ages = append(ages, age)
	}
	sort.Ints(ages)

	buckets := make([]models.AgeBucket, 0, len(ages))
	for _, age := range ages {
		buckets = append(buckets, models.AgeBucket{Age: age, Count: counts[age]})
	}
	return buckets, details
}

const topLimit = 5

// TopTrainees ranks trainees by successful entry count, descending, keeping at most
// five. Ties preserve first-appearance order.
func TopTrainees(entries []models.Entry, snap *models.Snapshot) []models.RankedTrainee {
	counts := map[string]int{}
	order := make([]string, 0)
	for _, entry := range entries {
		if entry.TraineeID == "" {
			continue
		}
		if _, seen := counts[entry.TraineeID]; !seen {
			order = append(order, entry.TraineeID)
		}
		counts[entry.TraineeID]++
	}

	ranked := make([]models.RankedTrainee, 0, len(order))
	for _, id := range order {
		row := models.RankedTrainee{TraineeID: id, Count: counts[id]}
		if trainee, ok := snap.TraineeByID(id); ok {
			row.FullName = trainee.FullName
			row.PersonalID = trainee.PersonalID
		}
		ranked = append(ranked, row)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topLimit {
		ranked = ranked[:topLimit]
	}
	return ranked
}

// TopDepartments ranks departments by entries relative to roster size. Departments
// with a non-positive roster are excluded so the percentage stays defined.
func TopDepartments(entries []models.Entry, snap *models.Snapshot) []models.RankedDepartment {
	counts := map[string]int{}
	order := make([]string, 0)
	for _, entry := range entries {
		if entry.DepartmentID == "" {
			continue
		}
		if _, seen := counts[entry.DepartmentID]; !seen {
			order = append(order, entry.DepartmentID)
		}
		counts[entry.DepartmentID]++
	}

	ranked := make([]models.RankedDepartment, 0, len(order))
	for _, id := range order {
		department, ok := snap.DepartmentByID(id)
		if !ok || department.NumOfPeople <= 0 {
			continue
		}
		ranked = append(ranked, models.RankedDepartment{
			DepartmentID: id,
			Name:         department.Name,
			Count:        counts[id],
			NumOfPeople:  department.NumOfPeople,
			Percentage:   float64(counts[id]) / float64(department.NumOfPeople) * 100,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Percentage > ranked[j].Percentage
	})
	if len(ranked) > topLimit {
		ranked = ranked[:topLimit]
	}
	return ranked
}

// TopSubDepartments ranks sub-departments by entry count, descending, at most five.
func TopSubDepartments(entries []models.Entry, snap *models.Snapshot) []models.RankedSubDepartment {
	counts := map[string]int{}
	order := make([]string, 0)
	for _, entry := range entries {
		if entry.SubDepartmentID == "" {
			continue
		}
		if _, seen := counts[entry.SubDepartmentID]; !seen {
			order = append(order, entry.SubDepartmentID)
		}
		counts[entry.SubDepartmentID]++
	}

	ranked := make([]models.RankedSubDepartment, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, models.RankedSubDepartment{
			SubDepartmentID: id,
			Name:            snap.SubDepartmentName(id),
			Count:           counts[id],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topLimit {
		ranked = ranked[:topLimit]
	}
	return ranked
}

// BaseDistribution groups entry counts by base, descending.
func BaseDistribution(entries []models.Entry, snap *models.Snapshot) []models.BaseCount {
	counts := map[string]int{}
	order := make([]string, 0)
	for _, entry := range entries {
		if _, seen := counts[entry.BaseID]; !seen {
			order = append(order, entry.BaseID)
		}
		counts[entry.BaseID]++
	}

	distribution := make([]models.BaseCount, 0, len(order))
	for _, id := range order {
		distribution = append(distribution, models.BaseCount{
			BaseID: id,
			Name:   snap.BaseName(id),
			Count:  counts[id],
		})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].Count > distribution[j].Count
	})
	return distribution
}

// AverageEntriesPerTrainee divides the filtered entry count by the filtered trainee
// count, 0 when there are no trainees.
func AverageEntriesPerTrainee(entries []models.Entry, trainees []models.Trainee) float64 {
	if len(trainees) == 0 {
		return 0
	}
	return float64(len(entries)) / float64(len(trainees))
}
