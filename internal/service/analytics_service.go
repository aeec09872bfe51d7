package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/dto"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
)

// SnapshotProvider supplies the session-scoped record snapshot the aggregations fold.
type SnapshotProvider interface {
	Get(ctx context.Context, token string, scope models.Scope) (*models.Snapshot, bool, error)
}

// AnalyticsService computes chart-ready derived datasets over the record snapshot,
// with optional cache integration. The booleans returned alongside datasets indicate
// whether the payload originated from cache.
type AnalyticsService struct {
	snapshots SnapshotProvider
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewAnalyticsService constructs an analytics service. loc is the assumed timezone for
// every date interpretation; nil falls back to UTC.
func NewAnalyticsService(snapshots SnapshotProvider, cache *CacheService, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		snapshots: snapshots,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// Overview returns the weekday/monthly histograms, gender split, and utilization
// figure for the current filter state.
func (s *AnalyticsService) Overview(ctx context.Context, token string, scope models.Scope, filter *models.FilterState) (*dto.AnalyticsOverviewResponse, bool, error) {
	cacheKey := makeAnalyticsCacheKey("overview", scopeKey(scope), filter.Fingerprint())
	var cached dto.AnalyticsOverviewResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	snap, _, err := s.snapshots.Get(ctx, token, scope)
	if err != nil {
		return nil, false, err
	}
	view := ApplyFilters(snap, scope, filter)

	result := &dto.AnalyticsOverviewResponse{
		Weekdays:                 WeekdayHistogram(view.Entries, s.loc),
		Months:                   MonthlyHistogram(view.Entries, s.loc),
		Genders:                  GenderDistribution(view.Entries, view.Trainees, snap),
		TotalEntries:             len(view.Entries),
		TotalTrainees:            len(view.Trainees),
		AverageEntriesPerTrainee: AverageEntriesPerTrainee(view.Entries, view.Trainees),
	}
	s.persistCache(ctx, cacheKey, result)
	return result, false, nil
}

// Top returns the trainee, department, and sub-department leaderboards.
func (s *AnalyticsService) Top(ctx context.Context, token string, scope models.Scope, filter *models.FilterState) (*dto.TopPerformersResponse, bool, error) {
	cacheKey := makeAnalyticsCacheKey("top", scopeKey(scope), filter.Fingerprint())
	var cached dto.TopPerformersResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	snap, _, err := s.snapshots.Get(ctx, token, scope)
	if err != nil {
		return nil, false, err
	}
	view := ApplyFilters(snap, scope, filter)

	result := &dto.TopPerformersResponse{
		Trainees:       TopTrainees(view.Entries, snap),
		Departments:    TopDepartments(view.Entries, snap),
		SubDepartments: TopSubDepartments(view.Entries, snap),
	}
	s.persistCache(ctx, cacheKey, result)
	return result, false, nil
}

// Ages returns the age histogram plus drill-down detail for the filtered roster.
func (s *AnalyticsService) Ages(ctx context.Context, token string, scope models.Scope, filter *models.FilterState) (*dto.AgeDistributionResponse, bool, error) {
	cacheKey := makeAnalyticsCacheKey("ages", scopeKey(scope), filter.Fingerprint())
	var cached dto.AgeDistributionResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	snap, _, err := s.snapshots.Get(ctx, token, scope)
	if err != nil {
		return nil, false, err
	}
	view := ApplyFilters(snap, scope, filter)

	buckets, details := AgeDistribution(view.Trainees, snap, s.now().In(s.loc))
	result := &dto.AgeDistributionResponse{Buckets: buckets, Details: details}
	s.persistCache(ctx, cacheKey, result)
	return result, false, nil
}

// Bases returns per-base entry counts. Restricted to generalAdmin; a gymAdmin sees a
// single base by construction, so the dataset would only leak scope.
func (s *AnalyticsService) Bases(ctx context.Context, token string, scope models.Scope, filter *models.FilterState) (*dto.BaseDistributionResponse, bool, error) {
	if scope.Role != models.RoleGeneralAdmin {
		return nil, false, appErrors.ErrForbidden
	}

	cacheKey := makeAnalyticsCacheKey("bases", scopeKey(scope), filter.Fingerprint())
	var cached dto.BaseDistributionResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	snap, _, err := s.snapshots.Get(ctx, token, scope)
	if err != nil {
		return nil, false, err
	}
	view := ApplyFilters(snap, scope, filter)

	result := &dto.BaseDistributionResponse{Bases: BaseDistribution(view.Entries, snap)}
	s.persistCache(ctx, cacheKey, result)
	return result, false, nil
}

// Trainee computes one trainee's six-month activity profile. Always recomputed fresh;
// switching trainees must never serve another trainee's cached numbers.
func (s *AnalyticsService) Trainee(ctx context.Context, token string, scope models.Scope, traineeID string) (*models.TraineeAnalytics, error) {
	snap, _, err := s.snapshots.Get(ctx, token, scope)
	if err != nil {
		return nil, err
	}
	trainee, ok := snap.TraineeByID(traineeID)
	if !ok || !scope.AllowsBase(trainee.BaseID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
	}
	result := ComputeTraineeAnalytics(traineeID, snap.Entries, snap.Trainees, s.loc, s.now())
	return &result, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	// CacheService logs write failures; a stale recompute is always safe here.
	_ = s.cache.Set(ctx, key, value, 0)
}

func scopeKey(scope models.Scope) string {
	if scope.BaseID == "" {
		return string(scope.Role)
	}
	return string(scope.Role) + "@" + scope.BaseID
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
