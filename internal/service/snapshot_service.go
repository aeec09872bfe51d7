package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// SnapshotLoader fetches the full record set visible to one scope from the backend.
type SnapshotLoader interface {
	AllTrainees(ctx context.Context, token, baseID string) ([]models.Trainee, error)
	AllEntries(ctx context.Context, token, baseID string) ([]models.Entry, error)
	Departments(ctx context.Context, token, baseID string) ([]models.Department, error)
	SubDepartments(ctx context.Context, token string) ([]models.SubDepartment, error)
	Bases(ctx context.Context, token string) ([]models.Base, error)
}

type snapshotEntry struct {
	snap     *models.Snapshot
	loadedAt time.Time
}

// SnapshotService loads and memoises per-scope record snapshots. All analytics and
// feed reads fold over a snapshot; a live push invalidates the affected scopes so the
// next read refetches authoritative data instead of splicing the pushed record in.
type SnapshotService struct {
	loader  SnapshotLoader
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration

	mu        sync.RWMutex
	snapshots map[string]snapshotEntry
	group     singleflight.Group
	now       func() time.Time
}

// NewSnapshotService constructs a snapshot service. ttl bounds staleness when no live
// feed is connected; zero disables expiry.
func NewSnapshotService(loader SnapshotLoader, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		loader:    loader,
		metrics:   metrics,
		logger:    logger,
		ttl:       ttl,
		snapshots: make(map[string]snapshotEntry),
		now:       time.Now,
	}
}

// Get returns the snapshot for the scope, loading it from the backend on first use or
// after invalidation. The boolean reports whether the snapshot was served from memory.
func (s *SnapshotService) Get(ctx context.Context, token string, scope models.Scope) (*models.Snapshot, bool, error) {
	key := scopeKey(scope)

	s.mu.RLock()
	cached, ok := s.snapshots[key]
	s.mu.RUnlock()
	if ok && !s.expired(cached) {
		return cached.snap, true, nil
	}

	// Collapse concurrent loads for the same scope into one upstream round trip.
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		current, ok := s.snapshots[key]
		s.mu.RUnlock()
		if ok && !s.expired(current) {
			return current.snap, nil
		}
		snap, err := s.load(ctx, token, scope)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snapshots[key] = snapshotEntry{snap: snap, loadedAt: s.now()}
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, false, err
	}
	return result.(*models.Snapshot), false, nil
}

// Invalidate drops the cached snapshots covering baseID. An empty baseID drops all.
func (s *SnapshotService) Invalidate(baseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if baseID == "" {
		s.snapshots = make(map[string]snapshotEntry)
		return
	}
	for key := range s.snapshots {
		// generalAdmin snapshots span every base, so they go too.
		if key == string(models.RoleGeneralAdmin) || key == string(models.RoleGymAdmin)+"@"+baseID || key == string(models.RoleGeneralAdmin)+"@"+baseID {
			delete(s.snapshots, key)
		}
	}
}

func (s *SnapshotService) expired(entry snapshotEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.loadedAt) > s.ttl
}

func (s *SnapshotService) load(ctx context.Context, token string, scope models.Scope) (*models.Snapshot, error) {
	start := s.now()
	baseID := ""
	if scope.Role == models.RoleGymAdmin {
		baseID = scope.BaseID
	}

	trainees, err := s.loader.AllTrainees(ctx, token, baseID)
	if err != nil {
		return nil, err
	}
	entries, err := s.loader.AllEntries(ctx, token, baseID)
	if err != nil {
		return nil, err
	}
	departments, err := s.loader.Departments(ctx, token, baseID)
	if err != nil {
		return nil, err
	}
	subDepartments, err := s.loader.SubDepartments(ctx, token)
	if err != nil {
		return nil, err
	}
	bases, err := s.loader.Bases(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveUpstreamCall("snapshot", s.now().Sub(start))
	}
	s.logger.Info("snapshot loaded",
		zap.String("scope", scopeKey(scope)),
		zap.Int("trainees", len(trainees)),
		zap.Int("entries", len(entries)),
		zap.Duration("duration", s.now().Sub(start)))

	return models.NewSnapshot(trainees, entries, departments, subDepartments, bases), nil
}
