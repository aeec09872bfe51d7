package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// TraineePageRequest carries the query parameters of GET /trainees/paginated.
type TraineePageRequest struct {
	Token string `json:"-"`

	Page            int
	Limit           int
	Search          string
	BaseID          string
	ShowOnlyExpired bool
	ExpirationDate  string
}

type traineePageResponse struct {
	Trainees   []models.Trainee `json:"trainees"`
	Pagination PageInfo         `json:"pagination"`
}

// ListTraineesPage fetches one page of trainees matching the filter.
func (c *Client) ListTraineesPage(ctx context.Context, req TraineePageRequest) ([]models.Trainee, PageInfo, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("limit", strconv.Itoa(req.Limit))
	if req.Search != "" {
		query.Set("search", req.Search)
	}
	if req.BaseID != "" {
		query.Set("baseId", req.BaseID)
	}
	if req.ShowOnlyExpired {
		query.Set("showOnlyExpired", "true")
	}
	if req.ExpirationDate != "" {
		query.Set("expirationDate", req.ExpirationDate)
	}

	var payload traineePageResponse
	if err := c.get(ctx, req.Token, "/trainees/paginated", query, &payload); err != nil {
		return nil, PageInfo{}, err
	}
	return payload.Trainees, payload.Pagination, nil
}

// AllTrainees walks the paginated endpoint until exhaustion and returns the full
// roster visible to the session, for the bulk snapshot load.
func (c *Client) AllTrainees(ctx context.Context, token, baseID string) ([]models.Trainee, error) {
	var all []models.Trainee
	page := 1
	for {
		trainees, info, err := c.ListTraineesPage(ctx, TraineePageRequest{
			Token:  token,
			Page:   page,
			Limit:  c.bulkPageSize,
			BaseID: baseID,
		})
		if err != nil {
			return nil, fmt.Errorf("load trainees page %d: %w", page, err)
		}
		all = append(all, trainees...)
		if page >= info.Pages || len(trainees) == 0 {
			return all, nil
		}
		page++
	}
}
