package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/middleware"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/service"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/response"
)

// AnalyticsHandler exposes dashboard-ready analytics endpoints. Every endpoint accepts
// the filter state in the query string (dates plus comma-separated id lists).
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview returns weekday/monthly histograms, gender split, and utilization.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter, err := parseFilterState(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	scope := models.ScopeFor(claims.Role, claims.BaseID)
	overview, cacheHit, err := h.analytics.Overview(c.Request.Context(), tokenFromContext(c), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMetaValue(c, "processing_time_ms", time.Since(start).Milliseconds())
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// Top returns the trainee, department, and sub-department leaderboards.
func (h *AnalyticsHandler) Top(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter, err := parseFilterState(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	scope := models.ScopeFor(claims.Role, claims.BaseID)
	top, cacheHit, err := h.analytics.Top(c.Request.Context(), tokenFromContext(c), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, top, nil, middleware.ExtractMeta(c))
}

// Ages returns the age histogram with drill-down details.
func (h *AnalyticsHandler) Ages(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter, err := parseFilterState(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	scope := models.ScopeFor(claims.Role, claims.BaseID)
	ages, cacheHit, err := h.analytics.Ages(c.Request.Context(), tokenFromContext(c), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, ages, nil, middleware.ExtractMeta(c))
}

// Bases returns per-base entry counts. generalAdmin only.
func (h *AnalyticsHandler) Bases(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter, err := parseFilterState(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	scope := models.ScopeFor(claims.Role, claims.BaseID)
	bases, cacheHit, err := h.analytics.Bases(c.Request.Context(), tokenFromContext(c), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, bases, nil, middleware.ExtractMeta(c))
}

// Trainee returns one trainee's six-month activity profile.
func (h *AnalyticsHandler) Trainee(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	traineeID := c.Param("id")
	if traineeID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "trainee id required"))
		return
	}
	scope := models.ScopeFor(claims.Role, claims.BaseID)
	analytics, err := h.analytics.Trainee(c.Request.Context(), tokenFromContext(c), scope, traineeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analytics, nil, middleware.ExtractMeta(c))
}

// System returns instrumentation metrics snapshots.
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	metrics := h.analytics.SystemMetrics()
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, metrics, nil, middleware.ExtractMeta(c))
}

func parseFilterState(c *gin.Context) (*models.FilterState, error) {
	filter := models.NewFilterState()

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	for _, raw := range []string{startDate, endDate} {
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dates must be YYYY-MM-DD")
		}
	}
	filter.SetDateRange(startDate, endDate)

	for _, id := range splitIDList(c.Query("departmentIds")) {
		filter.DepartmentIDs[id] = struct{}{}
	}
	for _, id := range splitIDList(c.Query("subDepartmentIds")) {
		filter.SubDepartmentIDs[id] = struct{}{}
	}
	for _, id := range splitIDList(c.Query("traineeIds")) {
		filter.TraineeIDs[id] = struct{}{}
	}
	return filter, nil
}

func splitIDList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
