package service

import (
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// FilteredView pairs the entry and trainee sets derived from one filter application.
type FilteredView struct {
	Entries  []models.Entry
	Trainees []models.Trainee
}

// ApplyFilters derives the filtered entry and trainee sets from a snapshot. Predicates
// are conjunctive and applied in a fixed order: role-based base restriction, then for
// entries the success-status and inclusive date-range tests, then department,
// sub-department, and explicit trainee membership. An empty selection set places no
// restriction on its group. The snapshot is never mutated; applying the same filter
// twice yields identical output.
func ApplyFilters(snap *models.Snapshot, scope models.Scope, filter *models.FilterState) FilteredView {
	view := FilteredView{
		Entries:  make([]models.Entry, 0, len(snap.Entries)),
		Trainees: make([]models.Trainee, 0, len(snap.Trainees)),
	}

	for _, entry := range snap.Entries {
		if !scope.AllowsBase(entry.BaseID) {
			continue
		}
		if entry.Status != models.EntryStatusSuccess {
			continue
		}
		if !filter.InDateRange(entry.EntryDate) {
			continue
		}
		if !inSet(filter.DepartmentIDs, entry.DepartmentID) {
			continue
		}
		if !inSet(filter.SubDepartmentIDs, entry.SubDepartmentID) {
			continue
		}
		if !inSet(filter.TraineeIDs, entry.TraineeID) {
			continue
		}
		view.Entries = append(view.Entries, entry)
	}

	for _, trainee := range snap.Trainees {
		if !scope.AllowsBase(trainee.BaseID) {
			continue
		}
		if !inSet(filter.DepartmentIDs, trainee.DepartmentID) {
			continue
		}
		if !inSet(filter.SubDepartmentIDs, trainee.SubDepartmentID) {
			continue
		}
		if !inSet(filter.TraineeIDs, trainee.ID) {
			continue
		}
		view.Trainees = append(view.Trainees, trainee)
	}

	return view
}

func inSet(set map[string]struct{}, id string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[id]
	return ok
}
