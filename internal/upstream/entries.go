package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// EntryPageRequest carries the query parameters of GET /entries/paginated.
type EntryPageRequest struct {
	Token string `json:"-"`

	Page            int
	Limit           int
	Search          string
	DepartmentID    string
	SubDepartmentID string
	BaseID          string
	StartDate       string
	EndDate         string
}

type entryPageResponse struct {
	Entries    []models.Entry `json:"entries"`
	Pagination PageInfo       `json:"pagination"`
}

type entryListResponse struct {
	Entries []models.Entry `json:"entries"`
}

func (r EntryPageRequest) query() url.Values {
	query := url.Values{}
	if r.Page > 0 {
		query.Set("page", strconv.Itoa(r.Page))
	}
	if r.Limit > 0 {
		query.Set("limit", strconv.Itoa(r.Limit))
	}
	if r.Search != "" {
		query.Set("search", r.Search)
	}
	if r.DepartmentID != "" {
		query.Set("departmentId", r.DepartmentID)
	}
	if r.SubDepartmentID != "" {
		query.Set("subDepartmentId", r.SubDepartmentID)
	}
	if r.BaseID != "" {
		query.Set("baseId", r.BaseID)
	}
	if r.StartDate != "" {
		query.Set("startDate", r.StartDate)
	}
	if r.EndDate != "" {
		query.Set("endDate", r.EndDate)
	}
	return query
}

// ListEntriesPage fetches one page of entries matching the filter.
func (c *Client) ListEntriesPage(ctx context.Context, req EntryPageRequest) ([]models.Entry, PageInfo, error) {
	var payload entryPageResponse
	if err := c.get(ctx, req.Token, "/entries/paginated", req.query(), &payload); err != nil {
		return nil, PageInfo{}, err
	}
	return payload.Entries, payload.Pagination, nil
}

// FilteredEntries fetches the full, unpaginated entry list matching the filter. Used
// by exports, where pagination offsets would tear the dataset.
func (c *Client) FilteredEntries(ctx context.Context, req EntryPageRequest) ([]models.Entry, error) {
	req.Page = 0
	req.Limit = 0
	var payload entryListResponse
	if err := c.get(ctx, req.Token, "/entries/filtered", req.query(), &payload); err != nil {
		return nil, err
	}
	return payload.Entries, nil
}

// AllEntries walks the paginated endpoint for the bulk snapshot load.
func (c *Client) AllEntries(ctx context.Context, token, baseID string) ([]models.Entry, error) {
	var all []models.Entry
	page := 1
	for {
		entries, info, err := c.ListEntriesPage(ctx, EntryPageRequest{
			Token:  token,
			Page:   page,
			Limit:  c.bulkPageSize,
			BaseID: baseID,
		})
		if err != nil {
			return nil, fmt.Errorf("load entries page %d: %w", page, err)
		}
		all = append(all, entries...)
		if page >= info.Pages || len(entries) == 0 {
			return all, nil
		}
		page++
	}
}
