package models

// HebrewWeekdays are the chart labels for the seven weekday buckets, Sunday first.
var HebrewWeekdays = [7]string{
	"ראשון", "שני", "שלישי", "רביעי", "חמישי", "שישי", "שבת",
}

// HebrewMonths are the chart labels for the twelve month buckets, January first.
var HebrewMonths = [12]string{
	"ינואר", "פברואר", "מרץ", "אפריל", "מאי", "יוני",
	"יולי", "אוגוסט", "ספטמבר", "אוקטובר", "נובמבר", "דצמבר",
}

// WeekdayBucket aggregates entries falling on one weekday. Average is the bucket
// count divided by the number of distinct dates observed in the bucket, 0 when the
// bucket is empty.
type WeekdayBucket struct {
	Weekday int     `json:"weekday"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// MonthBucket aggregates entries falling in one calendar month across the filtered
// range. Average is count divided by the distinct days observed in that month.
type MonthBucket struct {
	Month   int     `json:"month"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// GenderCount pairs the distinct-trainee and entry counts attributed to one gender.
type GenderCount struct {
	Gender   Gender `json:"gender"`
	Trainees int    `json:"trainees"`
	Entries  int    `json:"entries"`
}

// AgeBucket counts trainees of one whole-year age.
type AgeBucket struct {
	Age   int `json:"age"`
	Count int `json:"count"`
}

// AgeDetailRow is the drill-down record behind an age bucket.
type AgeDetailRow struct {
	FullName       string         `json:"fullName"`
	Gender         Gender         `json:"gender"`
	MedicalProfile MedicalProfile `json:"medicalProfile"`
	DepartmentName string         `json:"departmentName"`
}

// RankedTrainee is one row of the top-trainees leaderboard.
type RankedTrainee struct {
	TraineeID  string `json:"traineeId"`
	FullName   string `json:"fullName"`
	PersonalID string `json:"personalId"`
	Count      int    `json:"count"`
}

// RankedDepartment ranks a department by entries relative to its roster size.
type RankedDepartment struct {
	DepartmentID string  `json:"departmentId"`
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	NumOfPeople  int     `json:"numOfPeople"`
	Percentage   float64 `json:"percentage"`
}

// RankedSubDepartment is one row of the top-sub-departments leaderboard.
type RankedSubDepartment struct {
	SubDepartmentID string `json:"subDepartmentId"`
	Name            string `json:"name"`
	Count           int    `json:"count"`
}

// BaseCount groups entry counts by base; visible to generalAdmin only.
type BaseCount struct {
	BaseID string `json:"baseId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// HourBucket counts one trainee's entries in a single hour of day.
type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// TraineeAnalytics summarises one trainee's activity over the trailing six months.
type TraineeAnalytics struct {
	TraineeID      string          `json:"traineeId"`
	TotalEntries   int             `json:"totalEntries"`
	Hourly         []HourBucket    `json:"hourly"`
	Weekdays       []WeekdayBucket `json:"weekdays"`
	MonthlyAverage float64         `json:"monthlyAverage"`
	Rank           int             `json:"rank"`
	Percentile     int             `json:"percentile"`
}
