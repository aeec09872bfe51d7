package models

// EntryStatus records the outcome of a gym-entry attempt.
type EntryStatus string

const (
	EntryStatusSuccess           EntryStatus = "success"
	EntryStatusNoMedicalApproval EntryStatus = "noMedicalApproval"
	EntryStatusNotRegistered     EntryStatus = "notRegistered"
	EntryStatusNotAssociated     EntryStatus = "notAssociated"
)

// Valid returns true when the status is a supported value.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusSuccess, EntryStatusNoMedicalApproval, EntryStatusNotRegistered, EntryStatusNotAssociated:
		return true
	default:
		return false
	}
}

// Entry is an immutable gym-entry event. Dates are YYYY-MM-DD strings and times
// HH:MM:SS strings, exactly as the upstream backend transmits them; neither carries
// timezone information.
type Entry struct {
	ID                string      `json:"_id"`
	TraineeID         string      `json:"traineeId,omitempty"`
	TraineeFullName   string      `json:"traineeFullName"`
	TraineePersonalID string      `json:"traineePersonalId"`
	DepartmentID      string      `json:"departmentId,omitempty"`
	SubDepartmentID   string      `json:"subDepartmentId,omitempty"`
	BaseID            string      `json:"baseId"`
	EntryDate         string      `json:"entryDate"`
	EntryTime         string      `json:"entryTime"`
	Status            EntryStatus `json:"status"`
}
