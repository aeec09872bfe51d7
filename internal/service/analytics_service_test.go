package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
)

type fakeSnapshotProvider struct {
	snap  *models.Snapshot
	calls int
	err   error
}

func (f *fakeSnapshotProvider) Get(_ context.Context, _ string, _ models.Scope) (*models.Snapshot, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	return f.snap, false, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func analyticsSnapshot() *models.Snapshot {
	snap := testSnapshot()
	entries := []models.Entry{
		successEntry("e1", "t1", "d1", "s1", "b1", "2024-01-07"),
		successEntry("e2", "t2", "d2", "", "b1", "2024-01-08"),
		successEntry("e3", "t3", "d1", "", "b2", "2024-01-08"),
	}
	return models.NewSnapshot(snap.Trainees, entries, snap.Departments, snap.SubDepartments, snap.Bases)
}

func TestAnalyticsServiceOverviewCaching(t *testing.T) {
	provider := &fakeSnapshotProvider{snap: analyticsSnapshot()}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(provider, cacheSvc, nil, zap.NewNop(), time.UTC)
	scope := models.ScopeFor(models.RoleGeneralAdmin, "")
	filter := models.NewFilterState()

	first, cached, err := svc.Overview(context.Background(), "tok", scope, filter)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, first.TotalEntries)
	assert.Equal(t, 3, first.TotalTrainees)
	assert.InDelta(t, 1.0, first.AverageEntriesPerTrainee, 1e-9)

	second, cached, err := svc.Overview(context.Background(), "tok", scope, filter)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.TotalEntries, second.TotalEntries)
	assert.Equal(t, 1, provider.calls, "cache hit skips the snapshot load")
}

func TestAnalyticsServiceCacheKeyedByFilter(t *testing.T) {
	provider := &fakeSnapshotProvider{snap: analyticsSnapshot()}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(provider, cacheSvc, nil, zap.NewNop(), time.UTC)
	scope := models.ScopeFor(models.RoleGeneralAdmin, "")

	unfiltered, _, err := svc.Overview(context.Background(), "tok", scope, models.NewFilterState())
	require.NoError(t, err)

	narrowed := models.NewFilterState()
	narrowed.DepartmentIDs["d1"] = struct{}{}
	filtered, cached, err := svc.Overview(context.Background(), "tok", scope, narrowed)
	require.NoError(t, err)
	assert.False(t, cached, "a different filter fingerprint misses the cache")
	assert.Less(t, filtered.TotalEntries, unfiltered.TotalEntries)
}

func TestAnalyticsServiceWorksWithoutCache(t *testing.T) {
	provider := &fakeSnapshotProvider{snap: analyticsSnapshot()}
	svc := NewAnalyticsService(provider, nil, nil, zap.NewNop(), time.UTC)
	scope := models.ScopeFor(models.RoleGymAdmin, "b1")

	overview, cached, err := svc.Overview(context.Background(), "tok", scope, models.NewFilterState())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, overview.TotalEntries, "gymAdmin sees only their base")
}

func TestAnalyticsServiceBasesForbiddenForGymAdmin(t *testing.T) {
	provider := &fakeSnapshotProvider{snap: analyticsSnapshot()}
	svc := NewAnalyticsService(provider, nil, nil, zap.NewNop(), time.UTC)

	_, _, err := svc.Bases(context.Background(), "tok", models.ScopeFor(models.RoleGymAdmin, "b1"), models.NewFilterState())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Zero(t, provider.calls, "rejected before any snapshot load")

	bases, _, err := svc.Bases(context.Background(), "tok", models.ScopeFor(models.RoleGeneralAdmin, ""), models.NewFilterState())
	require.NoError(t, err)
	assert.Len(t, bases.Bases, 2)
}

func TestAnalyticsServiceTraineeScoping(t *testing.T) {
	provider := &fakeSnapshotProvider{snap: analyticsSnapshot()}
	svc := NewAnalyticsService(provider, nil, nil, zap.NewNop(), time.UTC)

	_, err := svc.Trainee(context.Background(), "tok", models.ScopeFor(models.RoleGeneralAdmin, ""), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// t3 belongs to b2; a b1 gymAdmin must not see it even by direct id.
	_, err = svc.Trainee(context.Background(), "tok", models.ScopeFor(models.RoleGymAdmin, "b1"), "t3")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	analytics, err := svc.Trainee(context.Background(), "tok", models.ScopeFor(models.RoleGymAdmin, "b1"), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", analytics.TraineeID)
}
