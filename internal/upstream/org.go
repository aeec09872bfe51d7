package upstream

import (
	"context"
	"net/url"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// Departments lists departments, optionally restricted to one base.
func (c *Client) Departments(ctx context.Context, token, baseID string) ([]models.Department, error) {
	query := url.Values{}
	if baseID != "" {
		query.Set("baseId", baseID)
	}
	var departments []models.Department
	if err := c.get(ctx, token, "/departments", query, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// SubDepartments lists all sub-departments visible to the session.
func (c *Client) SubDepartments(ctx context.Context, token string) ([]models.SubDepartment, error) {
	var subDepartments []models.SubDepartment
	if err := c.get(ctx, token, "/subDepartments", nil, &subDepartments); err != nil {
		return nil, err
	}
	return subDepartments, nil
}

// Bases lists all bases.
func (c *Client) Bases(ctx context.Context, token string) ([]models.Base, error) {
	var bases []models.Base
	if err := c.get(ctx, token, "/bases", nil, &bases); err != nil {
		return nil, err
	}
	return bases, nil
}
