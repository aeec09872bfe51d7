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

// TraineeHandler serves the infinite-scroll trainee listing. The feed accumulates
// pages per admin; a changed filter restarts it at page one, loadMore=true appends the
// next page under the unchanged filter.
type TraineeHandler struct {
	feeds     *service.FeedService
	validator *validator.Validate
}

// NewTraineeHandler constructs the trainee handler.
func NewTraineeHandler(feeds *service.FeedService, validate *validator.Validate) *TraineeHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &TraineeHandler{feeds: feeds, validator: validate}
}

// List returns the accumulated trainee window for the current filter.
func (h *TraineeHandler) List(c *gin.Context) {
	if h.feeds == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.TraineeFeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trainee query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trainee query"))
		return
	}

	scope := models.ScopeFor(claims.Role, claims.BaseID)
	feed := h.feeds.TraineeFeedFor(claims.AdminID, tokenFromContext(c), scope)

	filter := service.TraineeFilter{
		Search:          query.Search,
		ShowOnlyExpired: query.ShowOnlyExpired,
		ExpirationDate:  query.ExpirationDate,
	}

	var err error
	if query.LoadMore && filter == feed.Filter() {
		err = feed.LoadMore(c.Request.Context())
	} else {
		err = feed.SetFilter(c.Request.Context(), filter)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	trainees, hasMore := feed.Visible()
	response.JSON(c, http.StatusOK, dto.TraineeFeedResponse{
		Trainees: trainees,
		HasMore:  hasMore,
	}, nil, middleware.ExtractMeta(c))
}
