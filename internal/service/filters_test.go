package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

func filterSnapshot() *models.Snapshot {
	trainees := []models.Trainee{
		{ID: "t1", BaseID: "b1", DepartmentID: "d1", SubDepartmentID: "s1"},
		{ID: "t2", BaseID: "b1", DepartmentID: "d2"},
		{ID: "t3", BaseID: "b2", DepartmentID: "d3"},
	}
	entries := []models.Entry{
		successEntry("e1", "t1", "d1", "s1", "b1", "2024-02-01"),
		successEntry("e2", "t2", "d2", "", "b1", "2024-02-10"),
		successEntry("e3", "t3", "d3", "", "b2", "2024-02-05"),
		{ID: "e4", TraineeID: "t1", DepartmentID: "d1", BaseID: "b1", EntryDate: "2024-02-01", EntryTime: "09:00:00", Status: models.EntryStatusNoMedicalApproval},
	}
	return models.NewSnapshot(trainees, entries, nil, nil, nil)
}

func TestApplyFiltersScopeRestriction(t *testing.T) {
	snap := filterSnapshot()
	filter := models.NewFilterState()

	general := ApplyFilters(snap, models.ScopeFor(models.RoleGeneralAdmin, ""), filter)
	assert.Len(t, general.Entries, 3, "only success entries count")
	assert.Len(t, general.Trainees, 3)

	gym := ApplyFilters(snap, models.ScopeFor(models.RoleGymAdmin, "b1"), filter)
	assert.Len(t, gym.Entries, 2)
	assert.Len(t, gym.Trainees, 2)
	for _, entry := range gym.Entries {
		assert.Equal(t, "b1", entry.BaseID)
	}
}

func TestApplyFiltersConjunctiveSets(t *testing.T) {
	snap := filterSnapshot()
	scope := models.ScopeFor(models.RoleGeneralAdmin, "")

	filter := models.NewFilterState()
	filter.DepartmentIDs["d1"] = struct{}{}
	view := ApplyFilters(snap, scope, filter)
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "e1", view.Entries[0].ID)
	require.Len(t, view.Trainees, 1)
	assert.Equal(t, "t1", view.Trainees[0].ID)

	filter.SubDepartmentIDs["s-other"] = struct{}{}
	view = ApplyFilters(snap, scope, filter)
	assert.Empty(t, view.Entries, "predicates are conjunctive")
	assert.Empty(t, view.Trainees)
}

func TestApplyFiltersDateRangeInclusive(t *testing.T) {
	snap := filterSnapshot()
	scope := models.ScopeFor(models.RoleGeneralAdmin, "")

	filter := models.NewFilterState()
	filter.SetDateRange("2024-02-01", "2024-02-05")
	view := ApplyFilters(snap, scope, filter)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, "e1", view.Entries[0].ID)
	assert.Equal(t, "e3", view.Entries[1].ID)
}

func TestApplyFiltersIsPure(t *testing.T) {
	snap := filterSnapshot()
	scope := models.ScopeFor(models.RoleGymAdmin, "b1")
	filter := models.NewFilterState()
	filter.DepartmentIDs["d1"] = struct{}{}

	before := len(snap.Entries)
	first := ApplyFilters(snap, scope, filter)
	second := ApplyFilters(snap, scope, filter)

	assert.Equal(t, first, second, "same inputs must produce identical output")
	assert.Len(t, snap.Entries, before, "snapshot must never be mutated")
	assert.Len(t, filter.DepartmentIDs, 1)
}
