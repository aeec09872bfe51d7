package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/dto"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/middleware"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/service"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/response"
)

// EntriesHandler serves the paginated entries table. With debounce=true a changed
// search term is only scheduled; the page updates once the debounce interval elapses
// and a subsequent poll picks up the result. Without it the search applies
// immediately.
type EntriesHandler struct {
	feeds     *service.FeedService
	validator *validator.Validate
}

// NewEntriesHandler constructs the entries handler.
func NewEntriesHandler(feeds *service.FeedService, validate *validator.Validate) *EntriesHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &EntriesHandler{feeds: feeds, validator: validate}
}

// List returns one page of the entries table under the requested filter.
func (h *EntriesHandler) List(c *gin.Context) {
	if h.feeds == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.EntriesFeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entries query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid entries query"))
		return
	}

	scope := models.ScopeFor(claims.Role, claims.BaseID)
	feed := h.feeds.EntriesFeedFor(claims.AdminID, tokenFromContext(c), scope)

	desired := service.EntriesFilter{
		Search:          query.Search,
		DepartmentID:    query.DepartmentID,
		SubDepartmentID: query.SubDepartmentID,
		StartDate:       query.StartDate,
		EndDate:         query.EndDate,
	}
	current := feed.Filter()
	_, pagination := feed.Current()

	var err error
	switch {
	case desired != current:
		structural := desired
		structural.Search = current.Search
		if query.Debounce && structural == current {
			// Only the search term changed; let the debounce settle it.
			feed.SetSearch(desired.Search)
		} else {
			err = feed.SetFilters(c.Request.Context(), desired)
		}
	case query.Page > 0 && query.Page != pagination.Page:
		err = feed.Page(c.Request.Context(), query.Page)
	case pagination.TotalPages == 0:
		// First touch of the feed; load page one.
		err = feed.Refresh(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, pagination := feed.Current()
	response.JSON(c, http.StatusOK, dto.EntriesFeedResponse{Entries: entries}, &pagination, middleware.ExtractMeta(c))
}
