package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testSubDepartments = []SubDepartment{
	{ID: "s1", Name: "צוות א", DepartmentID: "d1"},
	{ID: "s2", Name: "צוות ב", DepartmentID: "d2"},
}

func TestToggleDepartmentCascadesOrphanSubDepartments(t *testing.T) {
	f := NewFilterState()
	f.ToggleDepartment("d1", testSubDepartments)
	f.ToggleDepartment("d2", testSubDepartments)
	f.ToggleSubDepartment("s1")
	f.ToggleSubDepartment("s2")

	// Removing d1 must drop s1; s2 still sits under the selected d2.
	f.ToggleDepartment("d1", testSubDepartments)
	assert.NotContains(t, f.SubDepartmentIDs, "s1")
	assert.Contains(t, f.SubDepartmentIDs, "s2")
}

func TestClearDepartmentsCascades(t *testing.T) {
	f := NewFilterState()
	f.ToggleDepartment("d1", testSubDepartments)
	f.ToggleSubDepartment("s1")
	f.ToggleTrainee("t1")

	f.ClearDepartments()
	assert.Empty(t, f.DepartmentIDs)
	assert.Empty(t, f.SubDepartmentIDs)
	assert.Empty(t, f.TraineeIDs)
}

func TestToggleIsAnInvolution(t *testing.T) {
	f := NewFilterState()
	f.ToggleTrainee("t1")
	assert.Contains(t, f.TraineeIDs, "t1")
	f.ToggleTrainee("t1")
	assert.Empty(t, f.TraineeIDs)
}

func TestInDateRange(t *testing.T) {
	f := NewFilterState()
	assert.True(t, f.InDateRange("2024-01-01"), "no bounds means everything passes")

	f.SetDateRange("2024-02-01", "2024-02-28")
	assert.True(t, f.InDateRange("2024-02-01"), "start bound is inclusive")
	assert.True(t, f.InDateRange("2024-02-28"), "end bound is inclusive")
	assert.False(t, f.InDateRange("2024-01-31"))
	assert.False(t, f.InDateRange("2024-03-01"))

	f.ClearDates()
	assert.True(t, f.InDateRange("1999-01-01"))
}

func TestFingerprintIsOrderIndependent(t *testing.T) {
	a := NewFilterState()
	a.ToggleDepartment("d1", nil)
	a.ToggleDepartment("d2", nil)

	b := NewFilterState()
	b.ToggleDepartment("d2", nil)
	b.ToggleDepartment("d1", nil)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.SetDateRange("2024-01-01", "")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFilterState()
	f.ToggleDepartment("d1", nil)
	f.SetDateRange("2024-01-01", "2024-02-01")

	clone := f.Clone()
	clone.ToggleDepartment("d2", nil)
	clone.ClearDates()

	assert.Contains(t, f.DepartmentIDs, "d1")
	assert.NotContains(t, f.DepartmentIDs, "d2")
	assert.Equal(t, "2024-01-01", f.StartDate)
}
