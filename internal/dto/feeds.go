package dto

import "github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"

// TraineeFeedQuery carries the trainee listing filter from the query string.
type TraineeFeedQuery struct {
	Search          string `form:"search"`
	ShowOnlyExpired bool   `form:"showOnlyExpired"`
	ExpirationDate  string `form:"expirationDate" validate:"omitempty,datetime=2006-01-02"`
	LoadMore        bool   `form:"loadMore"`
}

// TraineeFeedResponse is the accumulated scroll window plus the load-more signal.
type TraineeFeedResponse struct {
	Trainees []models.Trainee `json:"trainees"`
	HasMore  bool             `json:"hasMore"`
}

// EntriesFeedQuery carries the entries table filter from the query string.
type EntriesFeedQuery struct {
	Page            int    `form:"page"`
	Search          string `form:"search"`
	DepartmentID    string `form:"departmentId"`
	SubDepartmentID string `form:"subDepartmentId"`
	StartDate       string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Debounce        bool   `form:"debounce"`
}

// EntriesFeedResponse is one page of the entries table.
type EntriesFeedResponse struct {
	Entries []models.Entry `json:"entries"`
}
