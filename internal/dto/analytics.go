package dto

import "github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"

// AnalyticsOverviewResponse carries the headline dashboard datasets.
type AnalyticsOverviewResponse struct {
	Weekdays                 []models.WeekdayBucket `json:"weekdays"`
	Months                   []models.MonthBucket   `json:"months"`
	Genders                  []models.GenderCount   `json:"genders"`
	TotalEntries             int                    `json:"total_entries"`
	TotalTrainees            int                    `json:"total_trainees"`
	AverageEntriesPerTrainee float64                `json:"average_entries_per_trainee"`
}

// TopPerformersResponse carries the three leaderboards.
type TopPerformersResponse struct {
	Trainees       []models.RankedTrainee       `json:"trainees"`
	Departments    []models.RankedDepartment    `json:"departments"`
	SubDepartments []models.RankedSubDepartment `json:"sub_departments"`
}

// AgeDistributionResponse carries the age histogram and its drill-down detail.
type AgeDistributionResponse struct {
	Buckets []models.AgeBucket            `json:"buckets"`
	Details map[int][]models.AgeDetailRow `json:"details"`
}

// BaseDistributionResponse carries per-base entry counts (generalAdmin only).
type BaseDistributionResponse struct {
	Bases []models.BaseCount `json:"bases"`
}
