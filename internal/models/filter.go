package models

import (
	"sort"
	"strings"
)

// FilterState holds the dashboard filter selections. Dates are inclusive YYYY-MM-DD
// bounds ("" means unbounded); ID sets are conjunctive and an empty set places no
// restriction on its group.
type FilterState struct {
	StartDate string
	EndDate   string

	DepartmentIDs    map[string]struct{}
	SubDepartmentIDs map[string]struct{}
	TraineeIDs       map[string]struct{}
}

// NewFilterState returns an empty filter state.
func NewFilterState() *FilterState {
	return &FilterState{
		DepartmentIDs:    make(map[string]struct{}),
		SubDepartmentIDs: make(map[string]struct{}),
		TraineeIDs:       make(map[string]struct{}),
	}
}

// SetDateRange replaces the inclusive date bounds.
func (f *FilterState) SetDateRange(start, end string) {
	f.StartDate = start
	f.EndDate = end
}

// ToggleDepartment adds or removes one department id. Sub-department selections that
// no longer sit under any selected department are cascade-cleared so a stale child
// filter can never empty the result set silently.
func (f *FilterState) ToggleDepartment(id string, subDepartments []SubDepartment) {
	if _, ok := f.DepartmentIDs[id]; ok {
		delete(f.DepartmentIDs, id)
	} else {
		f.DepartmentIDs[id] = struct{}{}
	}
	f.dropOrphanSubDepartments(subDepartments)
}

// ToggleSubDepartment adds or removes one sub-department id.
func (f *FilterState) ToggleSubDepartment(id string) {
	if _, ok := f.SubDepartmentIDs[id]; ok {
		delete(f.SubDepartmentIDs, id)
		return
	}
	f.SubDepartmentIDs[id] = struct{}{}
}

// ToggleTrainee adds or removes one trainee id.
func (f *FilterState) ToggleTrainee(id string) {
	if _, ok := f.TraineeIDs[id]; ok {
		delete(f.TraineeIDs, id)
		return
	}
	f.TraineeIDs[id] = struct{}{}
}

// ClearDepartments empties the department group and, by the cascade policy, the
// dependent sub-department and trainee selections with it.
func (f *FilterState) ClearDepartments() {
	f.DepartmentIDs = make(map[string]struct{})
	f.SubDepartmentIDs = make(map[string]struct{})
	f.TraineeIDs = make(map[string]struct{})
}

// ClearSubDepartments empties the sub-department group.
func (f *FilterState) ClearSubDepartments() {
	f.SubDepartmentIDs = make(map[string]struct{})
}

// ClearTrainees empties the trainee group.
func (f *FilterState) ClearTrainees() {
	f.TraineeIDs = make(map[string]struct{})
}

// ClearDates removes the date bounds.
func (f *FilterState) ClearDates() {
	f.StartDate = ""
	f.EndDate = ""
}

func (f *FilterState) dropOrphanSubDepartments(subDepartments []SubDepartment) {
	if len(f.SubDepartmentIDs) == 0 || len(f.DepartmentIDs) == 0 {
		return
	}
	parentOf := make(map[string]string, len(subDepartments))
	for _, sub := range subDepartments {
		parentOf[sub.ID] = sub.DepartmentID
	}
	for id := range f.SubDepartmentIDs {
		if _, ok := f.DepartmentIDs[parentOf[id]]; !ok {
			delete(f.SubDepartmentIDs, id)
		}
	}
}

// InDateRange reports whether the ISO date falls within the inclusive bounds.
// ISO dates order lexically, so the comparison needs no parsing.
func (f *FilterState) InDateRange(isoDate string) bool {
	if f.StartDate != "" && isoDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && isoDate > f.EndDate {
		return false
	}
	return true
}

// Fingerprint returns a stable string identity for the current selections, used as a
// cache-key component for derived datasets.
func (f *FilterState) Fingerprint() string {
	parts := []string{f.StartDate, f.EndDate, sortedKeys(f.DepartmentIDs), sortedKeys(f.SubDepartmentIDs), sortedKeys(f.TraineeIDs)}
	return strings.Join(parts, "|")
}

// Clone returns an independent copy of the filter state.
func (f *FilterState) Clone() *FilterState {
	clone := NewFilterState()
	clone.StartDate = f.StartDate
	clone.EndDate = f.EndDate
	for id := range f.DepartmentIDs {
		clone.DepartmentIDs[id] = struct{}{}
	}
	for id := range f.SubDepartmentIDs {
		clone.SubDepartmentIDs[id] = struct{}{}
	}
	for id := range f.TraineeIDs {
		clone.TraineeIDs[id] = struct{}{}
	}
	return clone
}

func sortedKeys(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
