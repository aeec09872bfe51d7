package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

type fakeSnapshotLoader struct {
	mu           sync.Mutex
	traineeCalls int
	lastBaseID   string
	err          error
}

func (f *fakeSnapshotLoader) AllTrainees(_ context.Context, _ string, baseID string) ([]models.Trainee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.traineeCalls++
	f.lastBaseID = baseID
	if f.err != nil {
		return nil, f.err
	}
	return []models.Trainee{{ID: "t1", BaseID: "b1"}}, nil
}

func (f *fakeSnapshotLoader) AllEntries(_ context.Context, _ string, _ string) ([]models.Entry, error) {
	return []models.Entry{successEntry("e1", "t1", "d1", "", "b1", "2024-02-01")}, nil
}

func (f *fakeSnapshotLoader) Departments(_ context.Context, _ string, _ string) ([]models.Department, error) {
	return []models.Department{{ID: "d1", Name: "לוגיסטיקה", BaseID: "b1", NumOfPeople: 10}}, nil
}

func (f *fakeSnapshotLoader) SubDepartments(_ context.Context, _ string) ([]models.SubDepartment, error) {
	return nil, nil
}

func (f *fakeSnapshotLoader) Bases(_ context.Context, _ string) ([]models.Base, error) {
	return []models.Base{{ID: "b1", Name: "צפון"}}, nil
}

func (f *fakeSnapshotLoader) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.traineeCalls
}

func (f *fakeSnapshotLoader) lastBase() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBaseID
}

func TestSnapshotServiceMemoisesPerScope(t *testing.T) {
	loader := &fakeSnapshotLoader{}
	svc := NewSnapshotService(loader, nil, 0, zap.NewNop())
	scope := models.ScopeFor(models.RoleGeneralAdmin, "")

	first, fromMemory, err := svc.Get(context.Background(), "tok", scope)
	require.NoError(t, err)
	assert.False(t, fromMemory)
	assert.Len(t, first.Trainees, 1)

	second, fromMemory, err := svc.Get(context.Background(), "tok", scope)
	require.NoError(t, err)
	assert.True(t, fromMemory)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls())
}

func TestSnapshotServiceScopesLoadToBase(t *testing.T) {
	loader := &fakeSnapshotLoader{}
	svc := NewSnapshotService(loader, nil, 0, zap.NewNop())

	_, _, err := svc.Get(context.Background(), "tok", models.ScopeFor(models.RoleGymAdmin, "b1"))
	require.NoError(t, err)
	assert.Equal(t, "b1", loader.lastBase())

	_, _, err = svc.Get(context.Background(), "tok", models.ScopeFor(models.RoleGeneralAdmin, ""))
	require.NoError(t, err)
	assert.Empty(t, loader.lastBase(), "generalAdmin loads every base")
	assert.Equal(t, 2, loader.calls(), "scopes do not share snapshots")
}

func TestSnapshotServiceInvalidateForcesReload(t *testing.T) {
	loader := &fakeSnapshotLoader{}
	svc := NewSnapshotService(loader, nil, 0, zap.NewNop())
	general := models.ScopeFor(models.RoleGeneralAdmin, "")
	gym := models.ScopeFor(models.RoleGymAdmin, "b1")

	_, _, err := svc.Get(context.Background(), "tok", general)
	require.NoError(t, err)
	_, _, err = svc.Get(context.Background(), "tok", gym)
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls())

	svc.Invalidate("b1")

	_, fromMemory, err := svc.Get(context.Background(), "tok", general)
	require.NoError(t, err)
	assert.False(t, fromMemory, "generalAdmin snapshots span every base and must drop too")
	_, fromMemory, err = svc.Get(context.Background(), "tok", gym)
	require.NoError(t, err)
	assert.False(t, fromMemory)
	assert.Equal(t, 4, loader.calls())
}

func TestSnapshotServiceTTLExpiry(t *testing.T) {
	loader := &fakeSnapshotLoader{}
	svc := NewSnapshotService(loader, nil, time.Minute, zap.NewNop())
	scope := models.ScopeFor(models.RoleGeneralAdmin, "")

	now := time.Now()
	svc.now = func() time.Time { return now }
	_, _, err := svc.Get(context.Background(), "tok", scope)
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, fromMemory, err := svc.Get(context.Background(), "tok", scope)
	require.NoError(t, err)
	assert.False(t, fromMemory, "a stale snapshot is reloaded")
	assert.Equal(t, 2, loader.calls())
}

func TestSnapshotServiceLoadErrorPropagates(t *testing.T) {
	loader := &fakeSnapshotLoader{err: errors.New("backend down")}
	svc := NewSnapshotService(loader, nil, 0, zap.NewNop())

	_, _, err := svc.Get(context.Background(), "tok", models.ScopeFor(models.RoleGeneralAdmin, ""))
	require.Error(t, err)

	// Nothing cached; the next call tries again.
	loader.err = nil
	_, fromMemory, err := svc.Get(context.Background(), "tok", models.ScopeFor(models.RoleGeneralAdmin, ""))
	require.NoError(t, err)
	assert.False(t, fromMemory)
}
